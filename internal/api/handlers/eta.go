package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"vrp-dispatch-service/internal/api/dto"
	"vrp-dispatch-service/internal/domain"
)

type etaRequest struct {
	Locations   []string `json:"locations"`
	AvgSpeedKmh float64  `json:"avg_speed_kmh,omitempty"`
}

type etaResponse struct {
	DistanceKm  float64 `json:"distance_km"`
	DurationMin float64 `json:"duration_min"`
}

// ETA estimates travel distance and time along an ordered stop list using
// great-circle distance. It is a quick approximation that never calls the
// routing backend.
func ETA(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req etaRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	if len(req.Locations) < 2 {
		writeError(w, r, http.StatusBadRequest, "at least two locations are required")
		return
	}
	speed := req.AvgSpeedKmh
	if speed <= 0 {
		speed = 50
	}

	coords := make([]domain.Coordinates, len(req.Locations))
	for i, loc := range req.Locations {
		c, err := domain.ParseLatLong(loc)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		coords[i] = c
	}

	total := 0.0
	for i := 1; i < len(coords); i++ {
		total += domain.HaversineKm(coords[i-1], coords[i])
	}

	writeJSON(w, r, http.StatusOK, dto.Envelope{
		Status:  "success",
		Message: "ETA Computed",
		Data: etaResponse{
			DistanceKm:  total,
			DurationMin: total / speed * 60,
		},
	})
}
