package boundary

import (
	"context"
	"sector-partition-service/internal/domain"
	"sector-partition-service/internal/ports"
	"strconv"
	"strings"
	"sync"
)

// MockRegion is one canned answer of the mock provider.
type MockRegion struct {
	ParentName string
	ChildLevel int
	Features   []domain.AdminFeature
}

// MockBoundaryProvider answers from canned regions and records every query.
// Unknown regions yield no features. Setting Err makes every call fail.
type MockBoundaryProvider struct {
	m   map[string][]domain.AdminFeature
	Err error

	mu      sync.Mutex
	Queries []ports.BoundaryQuery
}

func NewMockBoundaryProvider(regions []MockRegion) *MockBoundaryProvider {
	m := make(map[string][]domain.AdminFeature, len(regions))
	for _, r := range regions {
		m[mockKey(r.ParentName, r.ChildLevel)] = r.Features
	}
	return &MockBoundaryProvider{m: m}
}

func (p *MockBoundaryProvider) FetchSubdivisions(ctx context.Context, q ports.BoundaryQuery) ([]domain.AdminFeature, error) {
	p.mu.Lock()
	p.Queries = append(p.Queries, q)
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.Err != nil {
		return nil, p.Err
	}

	return p.m[mockKey(q.ParentName, q.ChildLevel)], nil
}

func mockKey(name string, level int) string {
	return strings.ToLower(strings.TrimSpace(name)) + "|" + strconv.Itoa(level)
}
