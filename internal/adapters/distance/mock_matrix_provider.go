package distance

import (
	"context"
	"fmt"
)

type MockPair struct {
	From, To string
	Km       float64
}

// MockMatrixProvider serves distances from a fixed pair table. Diagonal
// cells default to zero; any other missing pair is an error.
type MockMatrixProvider struct {
	m map[string]float64
}

func NewMockMatrixProvider(pairs []MockPair) *MockMatrixProvider {
	m := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		m[p.From+"|"+p.To] = p.Km
	}
	return &MockMatrixProvider{m: m}
}

func (p *MockMatrixProvider) Matrix(ctx context.Context, locations []string) ([][]float64, error) {
	matrix := make([][]float64, len(locations))
	for i, from := range locations {
		matrix[i] = make([]float64, len(locations))
		for j, to := range locations {
			if from == to {
				continue
			}
			km, ok := p.m[from+"|"+to]
			if !ok {
				return nil, fmt.Errorf("missing pair %q -> %q", from, to)
			}
			matrix[i][j] = km
		}
	}
	return matrix, nil
}
