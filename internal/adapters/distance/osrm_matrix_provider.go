package distance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"vrp-dispatch-service/internal/adapters/cache"
	"vrp-dispatch-service/internal/domain"
	"vrp-dispatch-service/internal/platform/obs"
)

// OSRMMatrixProvider implements MatrixProvider using the OSRM table service.
//
// It coordinates:
//   - Location-string normalization and coordinate parsing
//   - Persistent pairwise distance caching
//   - External API calls with retry/backoff
//
// The provider is safe for concurrent use.
type OSRMMatrixProvider struct {
	session *http.Client
	baseURL string
	profile string

	// roadFactor scales straight OSRM distances to account for the gap
	// between the routing graph and real driving distance.
	roadFactor float64

	matrixCache *cache.SQLMatrixCache
}

func NewOSRMMatrixProvider(baseURL string, roadFactor float64, matrixCache *cache.SQLMatrixCache) (*OSRMMatrixProvider, error) {
	if baseURL == "" {
		return nil, errors.New("OSRM base URL is empty")
	}
	if roadFactor <= 0 {
		roadFactor = 1.0
	}

	provider := &OSRMMatrixProvider{
		session:     &http.Client{Timeout: 30 * time.Second},
		baseURL:     strings.TrimRight(baseURL, "/"),
		profile:     "driving",
		roadFactor:  roadFactor,
		matrixCache: matrixCache,
	}

	return provider, nil
}

type tableResponse struct {
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	Distances [][]*float64 `json:"distances"`
}

// Matrix returns the full pairwise driving distance matrix in kilometers.
// The call is atomic: any unresolved location or missing cell fails the
// whole matrix rather than degrading it.
func (o *OSRMMatrixProvider) Matrix(ctx context.Context, locations []string) (_ [][]float64, err error) {
	defer obs.Time(ctx, "osrm.Matrix")(&err)

	if len(locations) == 0 {
		return nil, errors.New("OSRM matrix: location list is empty")
	}

	norm := make([]string, len(locations))
	coords := make([]domain.Coordinates, len(locations))
	for i, loc := range locations {
		norm[i] = strings.Join(strings.Fields(loc), " ")
		c, err := domain.ParseLatLong(norm[i])
		if err != nil {
			return nil, fmt.Errorf("OSRM matrix: %w", err)
		}
		coords[i] = c
	}

	// Serve entirely from cache when every pair is known.
	if o.matrixCache != nil {
		hits, err := o.matrixCache.GetAmong(ctx, norm)
		if err != nil {
			return nil, fmt.Errorf("OSRM matrix cache: %w", err)
		}
		if matrix, ok := matrixFromCache(norm, hits); ok {
			return matrix, nil
		}
	}

	matrix, err := o.fetchTable(ctx, coords)
	if err != nil {
		return nil, fmt.Errorf("OSRM matrix: %w", err)
	}

	if o.matrixCache != nil {
		pairs := make([]cache.PairKm, 0, len(norm)*len(norm))
		for i := range norm {
			for j := range norm {
				pairs = append(pairs, cache.PairKm{From: norm[i], To: norm[j], Km: matrix[i][j]})
			}
		}
		if err := o.matrixCache.PutMany(ctx, pairs); err != nil {
			log.Printf("matrix cache write failed: %v", err)
		}
	}

	return matrix, nil
}

func matrixFromCache(locations []string, hits map[[2]string]float64) ([][]float64, bool) {
	matrix := make([][]float64, len(locations))
	for i, from := range locations {
		matrix[i] = make([]float64, len(locations))
		for j, to := range locations {
			km, ok := hits[[2]string{from, to}]
			if !ok {
				return nil, false
			}
			matrix[i][j] = km
		}
	}
	return matrix, true
}

// fetchTable calls the OSRM table endpoint once for all coordinates.
// OSRM expects "lon,lat" ordering.
func (o *OSRMMatrixProvider) fetchTable(ctx context.Context, coords []domain.Coordinates) ([][]float64, error) {
	parts := make([]string, len(coords))
	for i, c := range coords {
		parts[i] = fmt.Sprintf("%f,%f", c.Lon, c.Lat)
	}
	endpoint := fmt.Sprintf("%s/table/v1/%s/%s?annotations=distance",
		o.baseURL, o.profile, strings.Join(parts, ";"))

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, endpoint)
	})
	if err != nil {
		return nil, fmt.Errorf("table request failed: %w", err)
	}
	defer resp.Body.Close()

	var tr tableResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decode table response: %w", err)
	}
	if tr.Code != "Ok" {
		return nil, fmt.Errorf("table service returned %q: %s", tr.Code, tr.Message)
	}
	if len(tr.Distances) != len(coords) {
		return nil, fmt.Errorf("expected %d rows; got %d", len(coords), len(tr.Distances))
	}

	matrix := make([][]float64, len(coords))
	for i, row := range tr.Distances {
		if len(row) != len(coords) {
			return nil, fmt.Errorf("row %d has %d cells; want %d", i, len(row), len(coords))
		}
		matrix[i] = make([]float64, len(coords))
		for j, metersPtr := range row {
			if metersPtr == nil {
				return nil, fmt.Errorf("no route between location %d and %d", i, j)
			}
			matrix[i][j] = *metersPtr / 1000 * o.roadFactor
		}
	}

	return matrix, nil
}
