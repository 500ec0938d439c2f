package boundary

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sector-partition-service/internal/domain"
	"sector-partition-service/internal/ports"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const overpassFixture = `{
  "version": 0.6,
  "elements": [
    {"type": "node", "id": 1, "lat": 5.3, "lon": -4.0},
    {
      "type": "relation", "id": 101,
      "tags": {"name": "Cocody", "admin_level": "8", "boundary": "administrative"},
      "members": [
        {"type": "way", "ref": 1, "role": "outer", "geometry": [
          {"lat": 0, "lon": 0}, {"lat": 0, "lon": 1}, {"lat": 1, "lon": 1}
        ]},
        {"type": "way", "ref": 2, "role": "outer", "geometry": [
          {"lat": 0, "lon": 0}, {"lat": 1, "lon": 0}, {"lat": 1, "lon": 1}
        ]},
        {"type": "node", "ref": 9, "role": "admin_centre"}
      ]
    },
    {
      "type": "relation", "id": 102,
      "tags": {"admin_level": "8"},
      "members": [
        {"type": "way", "ref": 3, "role": "outer", "geometry": [
          {"lat": 5, "lon": 5}, {"lat": 5, "lon": 6}, {"lat": 6, "lon": 6}, {"lat": 5, "lon": 5}
        ]},
        {"type": "way", "ref": 4, "role": "outer", "geometry": [
          {"lat": 8, "lon": 8}, {"lat": 8, "lon": 9}, {"lat": 9, "lon": 9}, {"lat": 8, "lon": 8}
        ]},
        {"type": "way", "ref": 5, "role": "inner", "geometry": [
          {"lat": 5.1, "lon": 5.5}, {"lat": 5.2, "lon": 5.6}, {"lat": 5.1, "lon": 5.5}
        ]}
      ]
    },
    {
      "type": "relation", "id": 103,
      "tags": {"name": "Wrong level", "admin_level": "9"},
      "members": [
        {"type": "way", "ref": 6, "role": "outer", "geometry": [
          {"lat": 0, "lon": 0}, {"lat": 0, "lon": 1}, {"lat": 1, "lon": 1}, {"lat": 0, "lon": 0}
        ]}
      ]
    }
  ]
}`

func newTestProvider(t *testing.T, url string, opts ...OverpassOption) *OverpassProvider {
	t.Helper()
	opts = append([]OverpassOption{WithBackoff(time.Millisecond)}, opts...)
	p, err := NewOverpassProvider(url, 5*time.Second, opts...)
	require.NoError(t, err)
	return p
}

func TestOverpassFetchSubdivisions(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotQuery = r.PostForm.Get("data")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, overpassFixture)
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)
	features, err := p.FetchSubdivisions(context.Background(), ports.BoundaryQuery{
		ParentName:  `Abidjan "Sud"`,
		ParentLevel: 6,
		ChildLevel:  8,
	})
	require.NoError(t, err)

	assert.Contains(t, gotQuery, `["name"="Abidjan \"Sud\""]`)
	assert.Contains(t, gotQuery, `["admin_level"="6"]->.parent;`)
	assert.Contains(t, gotQuery, `rel(area.parent)["boundary"="administrative"]["admin_level"="8"];`)
	assert.True(t, strings.HasSuffix(gotQuery, "out geom;"))

	require.Len(t, features, 2)

	cocody := features[0]
	assert.Equal(t, int64(101), cocody.ID)
	assert.Equal(t, "Cocody", cocody.Name)
	assert.Equal(t, 8, cocody.AdminLevel)
	require.Len(t, cocody.OuterRings, 1, "two ways sharing endpoints form one ring")
	ring := cocody.OuterRings[0]
	assert.Len(t, ring, 5)
	assert.Equal(t, ring[0], ring[len(ring)-1])

	unnamed := features[1]
	assert.Empty(t, unnamed.Name)
	assert.Len(t, unnamed.OuterRings, 2, "inner ways are ignored and disjoint parts kept")
}

func TestOverpassRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, overpassFixture)
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL, WithMaxAttempts(3))
	features, err := p.FetchSubdivisions(context.Background(), ports.BoundaryQuery{ParentName: "Abidjan", ChildLevel: 8})
	require.NoError(t, err)
	assert.Len(t, features, 2)
	assert.Equal(t, int32(3), calls.Load())
}

func TestOverpassDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad query", http.StatusBadRequest)
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL, WithMaxAttempts(4))
	_, err := p.FetchSubdivisions(context.Background(), ports.BoundaryQuery{ParentName: "Abidjan", ChildLevel: 8})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Code 400")
	assert.Equal(t, int32(1), calls.Load())
}

func TestOverpassRejectsInvalidQuery(t *testing.T) {
	p := newTestProvider(t, "http://127.0.0.1:0")

	_, err := p.FetchSubdivisions(context.Background(), ports.BoundaryQuery{ParentName: " ", ChildLevel: 8})
	assert.Error(t, err)

	_, err = p.FetchSubdivisions(context.Background(), ports.BoundaryQuery{ParentName: "Abidjan"})
	assert.Error(t, err)
}

func TestAssembleRings(t *testing.T) {
	a := domain.GeoPoint{Lat: 0, Lon: 0}
	b := domain.GeoPoint{Lat: 0, Lon: 1}
	c := domain.GeoPoint{Lat: 1, Lon: 1}
	d := domain.GeoPoint{Lat: 1, Lon: 0}

	tests := []struct {
		name      string
		segments  [][]domain.GeoPoint
		wantRings int
		wantLens  []int
	}{
		{"empty", nil, 0, nil},
		{"already closed", [][]domain.GeoPoint{{a, b, c, a}}, 1, []int{4}},
		{"chained forward", [][]domain.GeoPoint{{a, b}, {b, c}, {c, d}, {d, a}}, 1, []int{5}},
		{"chained reversed", [][]domain.GeoPoint{{a, b, c}, {a, d, c}}, 1, []int{5}},
		{"unconnectable stays open", [][]domain.GeoPoint{{a, b}, {c, d}}, 2, []int{2, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rings := assembleRings(tt.segments)
			require.Len(t, rings, tt.wantRings)
			for i, want := range tt.wantLens {
				assert.Len(t, rings[i], want)
			}
		})
	}
}
