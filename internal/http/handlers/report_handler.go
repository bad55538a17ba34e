// README: Payment listing, dashboard summary, income reports and exports.
package handlers

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"

	"parkdesk/internal/modules/ledger"
	"parkdesk/internal/modules/parking"
	"parkdesk/internal/modules/report"
)

type ReportHandler struct {
	parking *parking.Service
	now     func() time.Time
	loc     *time.Location
}

// NewReportHandler buckets and formats times in loc; nil means time.Local.
func NewReportHandler(svc *parking.Service, now func() time.Time, loc *time.Location) *ReportHandler {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &ReportHandler{parking: svc, now: now, loc: loc}
}

func (h *ReportHandler) Payments(c *gin.Context) {
	writeJSON(c, http.StatusOK, h.parking.Payments())
}

func (h *ReportHandler) Summary(c *gin.Context) {
	st := h.parking.Snapshot()
	writeJSON(c, http.StatusOK, report.Today(st.Vehicles, st.Payments, st.Spaces, h.now().In(h.loc)))
}

// Income reports ?period=daily|weekly|monthly, daily by default.
func (h *ReportHandler) Income(c *gin.Context) {
	period := report.Period(c.DefaultQuery("period", string(report.PeriodDaily)))
	inc, err := report.IncomeFor(h.parking.Payments(), period, h.now().In(h.loc))
	if err != nil {
		writeDeskError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, inc)
}

func (h *ReportHandler) ExportCSV(c *gin.Context) {
	payments := h.parking.Payments()
	c.Header("Content-Disposition", `attachment; filename="pagos.csv"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := report.WritePaymentsCSV(c.Writer, payments, h.loc); err != nil {
		_ = c.Error(err)
	}
}

func (h *ReportHandler) ExportJSON(c *gin.Context) {
	st := h.parking.Snapshot()
	c.Header("Content-Disposition", `attachment; filename="parqueadero.json"`)
	c.Header("Content-Type", "application/json; charset=utf-8")
	c.Status(http.StatusOK)
	if err := report.WriteJSON(c.Writer, st.Payments, exitedFirst(st.Vehicles)); err != nil {
		_ = c.Error(err)
	}
}

// exitedFirst orders exited vehicles by exit time, most recent first, so the
// export cap keeps the latest stays.
func exitedFirst(vs []ledger.Vehicle) []ledger.Vehicle {
	out := ledger.Select(vs, ledger.Filter{Status: ledger.VehicleExited})
	slices.SortStableFunc(out, func(a, b ledger.Vehicle) int {
		return exitTime(b).Compare(exitTime(a))
	})
	return out
}

func exitTime(v ledger.Vehicle) time.Time {
	if v.ExitTime == nil {
		return time.Time{}
	}
	return *v.ExitTime
}
