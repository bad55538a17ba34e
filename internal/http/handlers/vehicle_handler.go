// README: Vehicle handlers for gate entry, exit, listing and live quotes.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parkdesk/internal/modules/ledger"
	"parkdesk/internal/modules/parking"
	"parkdesk/internal/types"
)

type VehicleHandler struct {
	parking *parking.Service
}

func NewVehicleHandler(svc *parking.Service) *VehicleHandler {
	return &VehicleHandler{parking: svc}
}

type entryReq struct {
	Plate        string `json:"plate" binding:"required"`
	VehicleType  string `json:"vehicle_type" binding:"required"`
	RateType     string `json:"rate_type"`
	HelmetNumber string `json:"helmet_number"`
}

type exitReq struct {
	VehicleID string `json:"vehicle_id"`
	Plate     string `json:"plate"`
	Method    string `json:"method"`
	Convenio  bool   `json:"convenio"`
}

func (h *VehicleHandler) Entry(c *gin.Context) {
	var req entryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	v, err := h.parking.RegisterEntry(c.Request.Context(), parking.EntryCommand{
		Plate:        req.Plate,
		VehicleType:  types.VehicleType(req.VehicleType),
		RateType:     types.RateType(req.RateType),
		HelmetNumber: req.HelmetNumber,
	})
	if err != nil {
		writeDeskError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, v)
}

func (h *VehicleHandler) Exit(c *gin.Context) {
	var req exitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.VehicleID == "" && req.Plate == "" {
		writeError(c, http.StatusBadRequest, "vehicle_id or plate is required")
		return
	}
	p, err := h.parking.RegisterExit(c.Request.Context(), parking.ExitCommand{
		VehicleID: types.ID(req.VehicleID),
		Plate:     req.Plate,
		Method:    types.PaymentMethod(req.Method),
		Convenio:  req.Convenio,
	})
	if err != nil {
		writeDeskError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, p)
}

// List filters by ?status=parked|exited, ?type= and ?plate=.
func (h *VehicleHandler) List(c *gin.Context) {
	f := ledger.Filter{
		Status: ledger.VehicleStatus(c.Query("status")),
		Type:   types.VehicleType(c.Query("type")),
		Plate:  c.Query("plate"),
	}
	writeJSON(c, http.StatusOK, h.parking.Vehicles(f))
}

func (h *VehicleHandler) Get(c *gin.Context) {
	v, err := h.parking.Vehicle(types.ID(c.Param("id")))
	if err != nil {
		writeDeskError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, v)
}

// Quote previews the exit charge of a parked vehicle; ?convenio=true applies the discount.
func (h *VehicleHandler) Quote(c *gin.Context) {
	q, err := h.parking.Quote(c.Request.Context(), types.ID(c.Param("id")), queryBool(c, "convenio"))
	if err != nil {
		writeDeskError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, q)
}
