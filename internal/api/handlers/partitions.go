package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sector-partition-service/internal/api/dto"
	"sector-partition-service/internal/domain"
	"sector-partition-service/internal/platform/geo"
	"sector-partition-service/internal/platform/obs"
	"sector-partition-service/internal/ports"
	"sector-partition-service/internal/services"
	"strings"
)

const (
	MaxClusterCount = 50
	MaxGridSide     = 10
)

type PartitionHandler struct {
	Outlets  ports.OutletRepository
	Sectors  ports.SectorRepository
	Provider ports.BoundaryProvider
	// Used for cluster requests without an explicit seed; 0 means random.
	DefaultSeed uint64
}

// Create runs one partitioning strategy and optionally persists the result.
func (h *PartitionHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.PartitionRequest

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

	svcReq, err := h.toServiceRequest(req)
	if err != nil {
		status, msg := statusFor(err)
		writeError(w, r, status, msg)
		return
	}

	res, err := services.PartitionTerritory(r.Context(), svcReq, h.Outlets, h.Provider)
	if err != nil {
		status, msg := statusFor(err)
		log.Printf("req_id=%s partition territory failed status=%d: %v", obs.RequestID(r.Context()), status, err)
		writeError(w, r, status, msg)
		return
	}

	persisted := false
	if req.Persist {
		if h.Sectors == nil {
			writeError(w, r, http.StatusBadRequest, "persistence is not configured")
			return
		}
		if err := h.Sectors.SaveRun(r.Context(), res.Run()); err != nil {
			log.Printf("req_id=%s save run failed run_id=%s: %v", obs.RequestID(r.Context()), res.RunID, err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
			return
		}
		persisted = true
	}

	out := toPartitionResponse(res.Run(), res.Bounds, persisted)
	out.UnassignedOutletIDs = res.Unassigned

	writeJSON(w, r, http.StatusOK, out)
}

// Get returns a persisted run.
func (h *PartitionHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.Sectors == nil {
		writeError(w, r, http.StatusNotFound, "persistence is not configured")
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "run id is required")
		return
	}

	run, err := h.Sectors.GetRun(r.Context(), id)
	if err != nil {
		status, msg := statusFor(err)
		if status >= http.StatusInternalServerError {
			log.Printf("req_id=%s get run failed run_id=%s: %v", obs.RequestID(r.Context()), id, err)
		}
		writeError(w, r, status, msg)
		return
	}

	writeJSON(w, r, http.StatusOK, toPartitionResponse(*run, services.ComputeBBox(run.Sectors), true))
}

// toServiceRequest validates ranges; the services package accepts anything.
func (h *PartitionHandler) toServiceRequest(req dto.PartitionRequest) (services.PartitionRequest, error) {
	strategy, err := services.ParseStrategy(req.Strategy)
	if err != nil {
		return services.PartitionRequest{}, err
	}

	out := services.PartitionRequest{Strategy: strategy, AssignOutlets: req.AssignOutlets}

	switch strategy {
	case services.StrategyCluster:
		if req.K < 1 || req.K > MaxClusterCount {
			return out, fmt.Errorf("k must be between 1 and %d: %w", MaxClusterCount, domain.ErrInvalidParameter)
		}
		out.K = req.K
		out.Seed = req.Seed
		if out.Seed == nil && h.DefaultSeed != 0 {
			seed := h.DefaultSeed
			out.Seed = &seed
		}

	case services.StrategyGrid:
		if req.Rows < 1 || req.Rows > MaxGridSide || req.Cols < 1 || req.Cols > MaxGridSide {
			return out, fmt.Errorf("rows and cols must be between 1 and %d: %w", MaxGridSide, domain.ErrInvalidParameter)
		}
		out.Rows, out.Cols = req.Rows, req.Cols
		if req.BBox != nil {
			bbox, err := parseBBox(*req.BBox)
			if err != nil {
				return out, err
			}
			out.BBox = &bbox
		}

	case services.StrategyHierarchy:
		region := strings.TrimSpace(req.Region)
		if region == "" {
			return out, fmt.Errorf("region is required: %w", domain.ErrInvalidParameter)
		}
		level, err := domain.ParseSubdivisionLevel(req.Level)
		if err != nil {
			return out, err
		}
		out.RegionName, out.Level = region, level
	}

	return out, nil
}

func parseBBox(v [4]float64) (domain.BoundingBox, error) {
	b := domain.BoundingBox{MinLng: v[0], MinLat: v[1], MaxLng: v[2], MaxLat: v[3]}
	switch {
	case !b.IsFinite():
		return b, fmt.Errorf("bbox must be finite: %w", domain.ErrInvalidParameter)
	case b.MinLng < -180 || b.MaxLng > 180 || b.MinLat < -90 || b.MaxLat > 90:
		return b, fmt.Errorf("bbox outside WGS84 range: %w", domain.ErrInvalidParameter)
	case b.MinLng >= b.MaxLng || b.MinLat >= b.MaxLat:
		return b, fmt.Errorf("bbox must be [min_lng, min_lat, max_lng, max_lat] with min < max: %w", domain.ErrInvalidParameter)
	}
	return b, nil
}

func toPartitionResponse(run domain.PartitionRun, bounds domain.BoundingBox, persisted bool) dto.PartitionResponse {
	res := dto.PartitionResponse{
		RunID:       run.ID,
		Strategy:    run.Strategy,
		CreatedAt:   run.CreatedAt.UTC(),
		Persisted:   persisted,
		SectorCount: len(run.Sectors),
		Sectors:     geo.SectorsToFeatureCollection(run.Sectors),
	}
	// JSON has no encoding for the infinite envelope of an empty result.
	if bounds.IsFinite() {
		res.Bounds = &[4]float64{bounds.MinLng, bounds.MinLat, bounds.MaxLng, bounds.MaxLat}
	}
	if len(run.Sectors) == 0 {
		res.Message = "no sectors generated"
	}
	return res
}
