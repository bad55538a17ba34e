// README: Tariff settings handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parkdesk/internal/modules/parking"
	"parkdesk/internal/modules/pricing"
	"parkdesk/internal/types"
)

type ConfigHandler struct {
	parking *parking.Service
}

func NewConfigHandler(svc *parking.Service) *ConfigHandler {
	return &ConfigHandler{parking: svc}
}

type updateConfigReq struct {
	Name                 *string                                `json:"name"`
	Rates                map[types.VehicleType]map[string]int64 `json:"rates"`
	GracePeriod          *int                                   `json:"grace_period"`
	GraceDisabled        *bool                                  `json:"grace_disabled"`
	ConvenioMinimumHours *int                                   `json:"convenio_minimum_hours"`
	MonthlySinglePayment *bool                                  `json:"monthly_single_payment"`
	ReceiptEntry         *pricing.Receipt                       `json:"receipt_entry"`
	ReceiptExit          *pricing.Receipt                       `json:"receipt_exit"`
	ReceiptMonthly       *pricing.Receipt                       `json:"receipt_monthly"`
}

func (h *ConfigHandler) Get(c *gin.Context) {
	writeJSON(c, http.StatusOK, h.parking.Tariff())
}

func (h *ConfigHandler) Update(c *gin.Context) {
	var req updateConfigReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	upd := parking.TariffUpdate{
		Name:                 req.Name,
		GracePeriod:          req.GracePeriod,
		GraceDisabled:        req.GraceDisabled,
		ConvenioMinimumHours: req.ConvenioMinimumHours,
		MonthlySinglePayment: req.MonthlySinglePayment,
		ReceiptEntry:         req.ReceiptEntry,
		ReceiptExit:          req.ReceiptExit,
		ReceiptMonthly:       req.ReceiptMonthly,
	}
	if len(req.Rates) > 0 {
		upd.Rates = make(map[types.VehicleType]pricing.Rates, len(req.Rates))
		for vt, rates := range req.Rates {
			r := pricing.Rates{}
			for rt, v := range rates {
				if !types.RateType(rt).Valid() {
					writeError(c, http.StatusBadRequest, "unknown rate type "+rt)
					return
				}
				r[types.RateType(rt)] = v
			}
			upd.Rates[vt] = r
		}
	}
	t, err := h.parking.UpdateConfig(c.Request.Context(), upd)
	if err != nil {
		writeDeskError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, t)
}
