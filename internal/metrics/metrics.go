// README: Prometheus collectors for HTTP traffic and desk activity.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"parkdesk/internal/modules/parking"
	"parkdesk/internal/modules/plate"
	"parkdesk/internal/modules/pricing"
	"parkdesk/internal/modules/spaces"
	"parkdesk/internal/modules/subscription"
	"parkdesk/internal/types"
)

type Metrics struct {
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	entries   *prometheus.CounterVec
	exits     *prometheus.CounterVec
	revenue   *prometheus.CounterVec
	rejected  *prometheus.CounterVec
	occupancy *prometheus.GaugeVec
}

// New registers every collector on reg.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "vehicle_entries_total", Help: "Vehicles registered at the gate.",
		}, []string{"vehicle_type"}),
		exits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "vehicle_exits_total", Help: "Vehicles charged and released.",
		}, []string{"vehicle_type", "rate_type"}),
		revenue: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "revenue_total", Help: "Amount charged at exit, whole currency units.",
		}, []string{"vehicle_type"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "operations_rejected_total", Help: "Rejected desk operations by reason.",
		}, []string{"op", "reason"}),
		occupancy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "spaces", Help: "Spaces by vehicle type and status.",
		}, []string{"vehicle_type", "status"}),
	}
	reg.MustRegister(m.requests, m.latency, m.entries, m.exits, m.revenue, m.rejected, m.occupancy)
	return m
}

func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func (m *Metrics) Entry(vt types.VehicleType) {
	m.entries.WithLabelValues(string(vt)).Inc()
}

func (m *Metrics) Exit(vt types.VehicleType, rt types.RateType, amount int64) {
	m.exits.WithLabelValues(string(vt), string(rt)).Inc()
	m.revenue.WithLabelValues(string(vt)).Add(float64(amount))
}

func (m *Metrics) Rejected(op string, err error) {
	m.rejected.WithLabelValues(op, Reason(err)).Inc()
}

func (m *Metrics) Occupancy(stats []spaces.Occupancy) {
	for _, o := range stats {
		vt := string(o.Type)
		m.occupancy.WithLabelValues(vt, string(spaces.StatusFree)).Set(float64(o.Free))
		m.occupancy.WithLabelValues(vt, string(spaces.StatusOccupied)).Set(float64(o.Occupied))
		m.occupancy.WithLabelValues(vt, string(spaces.StatusBlocked)).Set(float64(o.Blocked))
		m.occupancy.WithLabelValues(vt, string(spaces.StatusReserved)).Set(float64(o.Reserved))
	}
}

var reasons = []struct {
	err    error
	reason string
}{
	{plate.ErrInvalidFormat, "invalid_plate"},
	{plate.ErrTypeMismatch, "plate_type_mismatch"},
	{parking.ErrDuplicateActiveEntry, "duplicate_entry"},
	{spaces.ErrNoFreeSpace, "no_free_space"},
	{parking.ErrMissingRequiredField, "missing_field"},
	{parking.ErrSubscribedVehicle, "subscribed_vehicle"},
	{parking.ErrNotFound, "not_found"},
	{spaces.ErrNotFound, "not_found"},
	{subscription.ErrNotFound, "not_found"},
	{spaces.ErrInvalidTransition, "invalid_transition"},
	{spaces.ErrVehicleMismatch, "invalid_transition"},
	{subscription.ErrAlreadyPaidThisMonth, "already_paid"},
	{pricing.ErrInvalidTariff, "invalid_tariff"},
}

// Reason maps an error to a low-cardinality label.
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return "other"
}
