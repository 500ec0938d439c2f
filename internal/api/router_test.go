package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sector-partition-service/internal/adapters/boundary"
	"sector-partition-service/internal/domain"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticOutlets []domain.Outlet

func (s staticOutlets) ListOutlets(ctx context.Context) ([]domain.Outlet, error) {
	return s, nil
}

type memorySectors struct {
	mu   sync.Mutex
	runs map[string]domain.PartitionRun
}

func (m *memorySectors) SaveRun(ctx context.Context, run domain.PartitionRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.runs == nil {
		m.runs = map[string]domain.PartitionRun{}
	}
	m.runs[run.ID] = run
	return nil
}

func (m *memorySectors) GetRun(ctx context.Context, id string) (*domain.PartitionRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return &run, nil
}

type partitionBody struct {
	RunID               string    `json:"run_id"`
	Strategy            string    `json:"strategy"`
	Persisted           bool      `json:"persisted"`
	Bounds              []float64 `json:"bounds"`
	SectorCount         int       `json:"sector_count"`
	Message             string    `json:"message"`
	UnassignedOutletIDs []string  `json:"unassigned_outlet_ids"`
	Sectors             struct {
		Type     string `json:"type"`
		Features []struct {
			ID         any                   `json:"id"`
			Geometry   struct{ Type string } `json:"geometry"`
			Properties struct {
				Name            string    `json:"name"`
				Centroid        []float64 `json:"centroid"`
				MemberOutletIDs []string  `json:"member_outlet_ids"`
			} `json:"properties"`
		} `json:"features"`
	} `json:"sectors"`
}

func testOutlets() staticOutlets {
	return staticOutlets{
		{ID: "o1", Name: "A", Location: domain.GeoPoint{Lat: 0, Lon: 0}},
		{ID: "o2", Name: "B", Location: domain.GeoPoint{Lat: 0, Lon: 2}},
		{ID: "o3", Name: "C", Location: domain.GeoPoint{Lat: 2, Lon: 2}},
		{ID: "o4", Name: "D", Location: domain.GeoPoint{Lat: 2, Lon: 0}},
		{ID: "o5", Name: "E", Location: domain.GeoPoint{Lat: 1, Lon: 1}},
	}
}

func newTestRouter(t *testing.T) (http.Handler, *memorySectors, *boundary.MockBoundaryProvider) {
	t.Helper()
	sectors := &memorySectors{}
	provider := boundary.NewMockBoundaryProvider([]boundary.MockRegion{{
		ParentName: "Abidjan",
		ChildLevel: 8,
		Features: []domain.AdminFeature{{
			ID:   1,
			Name: "Cocody",
			OuterRings: [][]domain.GeoPoint{{
				{Lat: -1, Lon: -1}, {Lat: -1, Lon: 3}, {Lat: 3, Lon: 3}, {Lat: 3, Lon: -1},
			}},
		}},
	}})
	return NewRouter(Deps{Outlets: testOutlets(), Sectors: sectors, Provider: provider, ClusterSeed: 42}), sectors, provider
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/partitions", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) partitionBody {
	t.Helper()
	var out partitionBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	h, _, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthReportsDatabaseFailure(t *testing.T) {
	h := NewRouter(Deps{Outlets: testOutlets(), Ping: func(context.Context) error { return errors.New("down") }})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestIDIsPropagated(t *testing.T) {
	h, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestListOutlets(t *testing.T) {
	h, _, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/outlets", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Outlets []struct {
			ID  string  `json:"id"`
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"outlets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Outlets, 5)
	assert.Equal(t, "o2", out.Outlets[1].ID)
	assert.Equal(t, 2.0, out.Outlets[1].Lon)
}

func TestCreateClusterPartition(t *testing.T) {
	h, _, _ := newTestRouter(t)

	rec := post(t, h, `{"strategy": "cluster", "k": 1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, "cluster", body.Strategy)
	assert.NotEmpty(t, body.RunID)
	assert.False(t, body.Persisted)
	assert.Equal(t, []float64{0, 0, 2, 2}, body.Bounds)
	assert.Equal(t, "FeatureCollection", body.Sectors.Type)
	require.Len(t, body.Sectors.Features, 1)

	f := body.Sectors.Features[0]
	assert.Equal(t, "Polygon", f.Geometry.Type)
	assert.Equal(t, "Sector A", f.Properties.Name)
	assert.Equal(t, []float64{1, 1}, f.Properties.Centroid)
	assert.Equal(t, []string{"o1", "o2", "o3", "o4", "o5"}, f.Properties.MemberOutletIDs)
}

func TestCreateGridPartitionPersistsAndReloads(t *testing.T) {
	h, sectors, _ := newTestRouter(t)

	rec := post(t, h, `{"strategy": "grid", "rows": 2, "cols": 2, "bbox": [0, 0, 10, 10], "persist": true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	created := decode(t, rec)
	assert.True(t, created.Persisted)
	assert.Equal(t, 4, created.SectorCount)
	require.Len(t, sectors.runs, 1)

	names := make([]string, 0, 4)
	for _, f := range created.Sectors.Features {
		names = append(names, f.Properties.Name)
	}
	assert.Equal(t, []string{"A1", "A2", "B1", "B2"}, names)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/partitions/"+created.RunID, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	loaded := decode(t, rec)
	assert.Equal(t, created.RunID, loaded.RunID)
	assert.Equal(t, []float64{0, 0, 10, 10}, loaded.Bounds)
	assert.Len(t, loaded.Sectors.Features, 4)
}

func TestCreateHierarchyPartition(t *testing.T) {
	h, _, provider := newTestRouter(t)

	rec := post(t, h, `{"strategy": "hierarchy", "region": "Abidjan", "level": "commune", "assign_outlets": true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	require.Len(t, body.Sectors.Features, 1)
	assert.Equal(t, "Cocody", body.Sectors.Features[0].Properties.Name)
	assert.Len(t, body.Sectors.Features[0].Properties.MemberOutletIDs, 5)
	assert.Empty(t, body.UnassignedOutletIDs)
	assert.Len(t, provider.Queries, 1)
}

func TestCreatePartitionStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"unknown field", `{"strategy": "grid", "zoom": 3}`, http.StatusBadRequest},
		{"unknown strategy", `{"strategy": "voronoi"}`, http.StatusBadRequest},
		{"k too large", `{"strategy": "cluster", "k": 51}`, http.StatusBadRequest},
		{"k missing", `{"strategy": "cluster"}`, http.StatusBadRequest},
		{"rows zero", `{"strategy": "grid", "rows": 0, "cols": 2}`, http.StatusBadRequest},
		{"cols too large", `{"strategy": "grid", "rows": 2, "cols": 11}`, http.StatusBadRequest},
		{"inverted bbox", `{"strategy": "grid", "rows": 2, "cols": 2, "bbox": [10, 0, 0, 10]}`, http.StatusBadRequest},
		{"missing region", `{"strategy": "hierarchy", "level": "city"}`, http.StatusBadRequest},
		{"bad level", `{"strategy": "hierarchy", "region": "Abidjan", "level": "galaxy"}`, http.StatusBadRequest},
		{"no subdivisions", `{"strategy": "hierarchy", "region": "Atlantis", "level": "city"}`, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, _, _ := newTestRouter(t)
			rec := post(t, h, tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}
}

func TestCreatePartitionProviderDown(t *testing.T) {
	h, _, provider := newTestRouter(t)
	provider.Err = errors.New("connection refused")

	rec := post(t, h, `{"strategy": "hierarchy", "region": "Abidjan", "level": "commune"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestCreatePartitionWithNoOutlets(t *testing.T) {
	h := NewRouter(Deps{Outlets: staticOutlets{}})

	rec := post(t, h, `{"strategy": "cluster", "k": 3}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Zero(t, body.SectorCount)
	assert.Nil(t, body.Bounds)
	assert.Equal(t, "no sectors generated", body.Message)
}

func TestGetUnknownRun(t *testing.T) {
	h, _, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/partitions/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h, _, _ := newTestRouter(t)
	post(t, h, `{"strategy": "grid", "rows": 1, "cols": 1, "bbox": [0, 0, 1, 1]}`)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "partition_requests_total")
}
