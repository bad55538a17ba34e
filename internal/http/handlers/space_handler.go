// README: Space handlers for the pool view and block/reserve toggles.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"parkdesk/internal/modules/parking"
	"parkdesk/internal/modules/spaces"
	"parkdesk/internal/types"
)

type SpaceHandler struct {
	parking *parking.Service
}

func NewSpaceHandler(svc *parking.Service) *SpaceHandler {
	return &SpaceHandler{parking: svc}
}

// List returns the pool, optionally narrowed with ?type= and ?status=.
func (h *SpaceHandler) List(c *gin.Context) {
	vt := types.VehicleType(c.Query("type"))
	status := spaces.Status(c.Query("status"))
	out := spaces.Pool{}
	for _, s := range h.parking.Spaces() {
		if vt != "" && s.Type != vt {
			continue
		}
		if status != "" && s.Status != status {
			continue
		}
		out = append(out, s)
	}
	writeJSON(c, http.StatusOK, out)
}

func (h *SpaceHandler) Occupancy(c *gin.Context) {
	writeJSON(c, http.StatusOK, h.parking.Occupancy())
}

func (h *SpaceHandler) ToggleBlock(c *gin.Context) {
	h.update(c, h.parking.ToggleBlock)
}

func (h *SpaceHandler) Reserve(c *gin.Context) {
	h.update(c, h.parking.Reserve)
}

func (h *SpaceHandler) Unreserve(c *gin.Context) {
	h.update(c, h.parking.Unreserve)
}

func (h *SpaceHandler) update(c *gin.Context, op func(ctx context.Context, id types.ID) (spaces.Space, error)) {
	s, err := op(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDeskError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, s)
}
