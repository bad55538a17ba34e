// README: Pricing service computes billable duration and parking fees.
package pricing

import (
	"context"
	"fmt"
	"time"

	"parkdesk/internal/types"
)

// CalcDuration returns the billable minutes between entry and exit, rounded
// up to the next minute and never less than one.
func CalcDuration(entry, exit time.Time) int {
	ms := exit.Sub(entry).Milliseconds()
	if ms <= 0 {
		return 1
	}
	minutes := int(ceilDiv(ms, 60000))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// BillableHours applies the grace window after each hour boundary:
// max(1, ceil((minutes - grace) / 60)).
func BillableHours(minutes, grace int) int {
	h := int(ceilDiv(int64(minutes-grace), 60))
	if h < 1 {
		return 1
	}
	return h
}

// CalcFee returns the charge for a stay.
func CalcFee(minutes int, vt types.VehicleType, rt types.RateType, t Tariff, convenio bool) (int64, error) {
	q, err := NewQuote(minutes, vt, rt, t, convenio)
	if err != nil {
		return 0, err
	}
	return q.Amount, nil
}

// NewQuote computes subtotal (no convenio), amount and discount for a stay.
//
// Flat rates charge the configured price; convenio subtracts one hourly rate,
// floored at zero. Hourly stays bill BillableHours hours; convenio removes
// one of them, floored at the tariff's ConvenioMinimumHours.
func NewQuote(minutes int, vt types.VehicleType, rt types.RateType, t Tariff, convenio bool) (Quote, error) {
	if minutes < 1 {
		minutes = 1
	}
	hourly, err := t.Rate(vt, types.RateHour)
	if err != nil {
		return Quote{}, err
	}
	q := Quote{VehicleType: vt, RateType: rt, Minutes: minutes, Convenio: convenio}

	switch {
	case rt.IsFlat():
		flat, err := t.Rate(vt, rt)
		if err != nil {
			return Quote{}, err
		}
		q.Subtotal = flat
		q.Amount = flat
		if convenio {
			q.Amount = max(0, flat-hourly)
		}
	case rt == types.RateHour:
		hours := BillableHours(minutes, t.Grace())
		q.BillableHours = hours
		q.Subtotal = int64(hours) * hourly
		if convenio {
			hours = max(t.ConvenioMinimumHours, hours-1)
		}
		q.Amount = int64(hours) * hourly
	default:
		return Quote{}, fmt.Errorf("%w: %s/%s", ErrUnknownRate, vt, rt)
	}

	q.Discount = q.Subtotal - q.Amount
	return q, nil
}

// Waived returns a zero-charge quote, used for vehicles covered by an active
// monthly subscription.
func Waived(minutes int, vt types.VehicleType) Quote {
	return Quote{VehicleType: vt, RateType: types.RateMonthly, Minutes: max(1, minutes)}
}

func ceilDiv(a, b int64) int64 {
	if a <= 0 {
		return -((-a) / b)
	}
	return (a + b - 1) / b
}

// TariffSource yields the tariff currently in effect.
type TariffSource interface {
	Tariff() Tariff
}

type Service struct {
	tariffs TariffSource
}

func NewService(tariffs TariffSource) *Service {
	return &Service{tariffs: tariffs}
}

type EstimateRequest struct {
	VehicleType types.VehicleType
	RateType    types.RateType
	Entry       time.Time
	Exit        time.Time
	// Minutes overrides Entry/Exit when positive.
	Minutes  int
	Convenio bool
}

// Estimate previews the charge for a stay against the live tariff.
func (s *Service) Estimate(ctx context.Context, req EstimateRequest) (Quote, error) {
	minutes := req.Minutes
	if minutes <= 0 {
		exit := req.Exit
		if exit.IsZero() {
			exit = time.Now()
		}
		minutes = CalcDuration(req.Entry, exit)
	}
	t := s.tariffs.Tariff()
	if !t.Supports(req.VehicleType) {
		return Quote{}, fmt.Errorf("%w: %s is not enabled", ErrUnknownRate, req.VehicleType)
	}
	return NewQuote(minutes, req.VehicleType, req.RateType, t, req.Convenio)
}
