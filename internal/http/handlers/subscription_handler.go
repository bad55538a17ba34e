// README: Monthly subscription handlers.
package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"parkdesk/internal/modules/parking"
	"parkdesk/internal/modules/subscription"
	"parkdesk/internal/types"
)

type SubscriptionHandler struct {
	parking *parking.Service
}

func NewSubscriptionHandler(svc *parking.Service) *SubscriptionHandler {
	return &SubscriptionHandler{parking: svc}
}

type createSubscriptionReq struct {
	Plate       string `json:"plate" binding:"required"`
	ClientName  string `json:"client_name"`
	Phone       string `json:"phone"`
	VehicleType string `json:"vehicle_type" binding:"required"`
	CutDay      int    `json:"cut_day"`
	PayNow      bool   `json:"pay_now"`
}

type paySubscriptionReq struct {
	Method string `json:"method"`
}

func (h *SubscriptionHandler) List(c *gin.Context) {
	writeJSON(c, http.StatusOK, h.parking.Subscriptions())
}

func (h *SubscriptionHandler) Get(c *gin.Context) {
	sub, err := h.parking.Subscription(types.ID(c.Param("id")))
	if err != nil {
		writeDeskError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, sub)
}

func (h *SubscriptionHandler) Create(c *gin.Context) {
	var req createSubscriptionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	sub, err := h.parking.AddSubscription(c.Request.Context(), subscription.NewCommand{
		Plate:       req.Plate,
		ClientName:  req.ClientName,
		Phone:       req.Phone,
		VehicleType: types.VehicleType(req.VehicleType),
		CutDay:      req.CutDay,
		PayNow:      req.PayNow,
	})
	if err != nil {
		writeDeskError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, sub)
}

// Pay accepts an empty body; the method then defaults to cash.
func (h *SubscriptionHandler) Pay(c *gin.Context) {
	var req paySubscriptionReq
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	sub, err := h.parking.PaySubscription(c.Request.Context(), parking.PaySubscriptionCommand{
		SubscriptionID: types.ID(c.Param("id")),
		Method:         types.PaymentMethod(req.Method),
	})
	if err != nil {
		writeDeskError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, sub)
}

func (h *SubscriptionHandler) Delete(c *gin.Context) {
	if err := h.parking.DeleteSubscription(c.Request.Context(), types.ID(c.Param("id"))); err != nil {
		writeDeskError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SubscriptionHandler) Refresh(c *gin.Context) {
	n := h.parking.RefreshSubscriptions(c.Request.Context())
	writeJSON(c, http.StatusOK, map[string]any{"changed": n})
}
