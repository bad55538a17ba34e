// README: Fee preview and plate detection handlers.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"parkdesk/internal/modules/plate"
	"parkdesk/internal/modules/pricing"
	"parkdesk/internal/types"
)

type QuoteHandler struct {
	pricing *pricing.Service
}

func NewQuoteHandler(svc *pricing.Service) *QuoteHandler {
	return &QuoteHandler{pricing: svc}
}

type estimateReq struct {
	VehicleType string     `json:"vehicle_type" binding:"required"`
	RateType    string     `json:"rate_type" binding:"required"`
	Minutes     int        `json:"minutes"`
	Entry       *time.Time `json:"entry"`
	Exit        *time.Time `json:"exit"`
	Convenio    bool       `json:"convenio"`
}

func (h *QuoteHandler) Estimate(c *gin.Context) {
	var req estimateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Minutes <= 0 && req.Entry == nil {
		writeError(c, http.StatusBadRequest, "minutes or entry is required")
		return
	}
	er := pricing.EstimateRequest{
		VehicleType: types.VehicleType(req.VehicleType),
		RateType:    types.RateType(req.RateType),
		Minutes:     req.Minutes,
		Convenio:    req.Convenio,
	}
	if req.Entry != nil {
		er.Entry = *req.Entry
	}
	if req.Exit != nil {
		er.Exit = *req.Exit
	}
	q, err := h.pricing.Estimate(c.Request.Context(), er)
	if err != nil {
		writeDeskError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, q)
}

type plateResp struct {
	Plate       string            `json:"plate"`
	VehicleType types.VehicleType `json:"vehicle_type"`
}

// DetectPlate normalizes :plate and reports the vehicle type it implies.
// With ?type= it checks the plate against that type instead.
func (h *QuoteHandler) DetectPlate(c *gin.Context) {
	p := plate.Normalize(c.Param("plate"))
	if vt := types.VehicleType(c.Query("type")); vt != "" {
		if err := plate.Validate(p, vt); err != nil {
			writeDeskError(c, err)
			return
		}
		writeJSON(c, http.StatusOK, plateResp{Plate: p, VehicleType: vt})
		return
	}
	vt, err := plate.DetectStrict(p)
	if err != nil {
		writeDeskError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, plateResp{Plate: p, VehicleType: vt})
}
