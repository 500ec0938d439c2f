package handlers

import (
	"log"
	"net/http"
	"sector-partition-service/internal/api/dto"
	"sector-partition-service/internal/platform/obs"
	"sector-partition-service/internal/ports"
)

// OutletHandler exposes read-only outlet retrieval endpoints.
type OutletHandler struct {
	Repo ports.OutletRepository
}

func (h *OutletHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	outlets, err := h.Repo.ListOutlets(r.Context())
	if err != nil {
		log.Printf("req_id=%s list outlets failed: %v", obs.RequestID(r.Context()), err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListOutletsResponse{
		Outlets: make([]dto.OutletResponse, 0, len(outlets)),
	}
	for _, o := range outlets {
		res.Outlets = append(res.Outlets, dto.OutletResponse{
			ID:   o.ID,
			Name: o.Name,
			Lat:  o.Location.Lat,
			Lon:  o.Location.Lon,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
