// README: Tariff (rates, pool sizes, grace period) and fee quote definitions.
package pricing

import (
	"errors"
	"fmt"
	"strings"

	"parkdesk/internal/types"
)

// DefaultGraceMinutes applies when the tariff leaves GracePeriod unset.
const DefaultGraceMinutes = 5

var (
	ErrUnknownRate   = errors.New("no rate configured for vehicle type and rate type")
	ErrInvalidTariff = errors.New("invalid tariff")
)

// Rates holds the price per rate type for one vehicle type, including the
// monthly subscription price.
type Rates map[types.RateType]int64

type Receipt struct {
	HeaderText string `toml:"header_text" json:"header_text"`
	FooterText string `toml:"footer_text" json:"footer_text"`
	LogoURL    string `toml:"logo_url" json:"logo_url"`
	WidthMM    int    `toml:"width_mm" json:"width_mm"`
}

// Tariff is the process-wide parking configuration. It is read-only while a
// fee is computed; changes go through an explicit update.
type Tariff struct {
	Name         string                       `toml:"name" json:"name"`
	Currency     string                       `toml:"currency" json:"currency"`
	VehicleTypes []types.VehicleType          `toml:"vehicle_types" json:"vehicle_types"`
	Rates        map[types.VehicleType]Rates  `toml:"rates" json:"rates"`
	TotalSpaces  map[types.VehicleType]int    `toml:"total_spaces" json:"total_spaces"`
	Prefixes     map[types.VehicleType]string `toml:"prefixes" json:"prefixes,omitempty"`

	// GracePeriod is nil when unset; DefaultGraceMinutes is used then.
	GracePeriod   *int `toml:"grace_period" json:"grace_period,omitempty"`
	GraceDisabled bool `toml:"grace_disabled" json:"grace_disabled"`

	// ConvenioMinimumHours is the floor applied after the convenio hour is
	// discounted from an hourly stay: 0 lets the discount zero the charge,
	// 1 always bills one hour.
	ConvenioMinimumHours int `toml:"convenio_minimum_hours" json:"convenio_minimum_hours"`

	// MonthlySinglePayment rejects a second subscription payment in the same month.
	MonthlySinglePayment bool `toml:"monthly_single_payment" json:"monthly_single_payment"`

	ReceiptEntry   Receipt `toml:"receipt_entry" json:"receipt_entry"`
	ReceiptExit    Receipt `toml:"receipt_exit" json:"receipt_exit"`
	ReceiptMonthly Receipt `toml:"receipt_monthly" json:"receipt_monthly"`
}

// Quote is the outcome of a fee computation. Discount is Subtotal - Amount.
type Quote struct {
	VehicleType   types.VehicleType `json:"vehicle_type"`
	RateType      types.RateType    `json:"rate_type"`
	Minutes       int               `json:"minutes"`
	BillableHours int               `json:"billable_hours,omitempty"`
	Subtotal      int64             `json:"subtotal"`
	Amount        int64             `json:"amount"`
	Discount      int64             `json:"discount"`
	Convenio      bool              `json:"convenio"`
}

// Grace returns the grace minutes in effect.
func (t Tariff) Grace() int {
	if t.GraceDisabled {
		return 0
	}
	if t.GracePeriod == nil {
		return DefaultGraceMinutes
	}
	if *t.GracePeriod < 0 {
		return 0
	}
	return *t.GracePeriod
}

// Rate returns the configured price for (vt, rt).
func (t Tariff) Rate(vt types.VehicleType, rt types.RateType) (int64, error) {
	rates, ok := t.Rates[vt]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownRate, vt)
	}
	v, ok := rates[rt]
	if !ok {
		return 0, fmt.Errorf("%w: %s/%s", ErrUnknownRate, vt, rt)
	}
	return v, nil
}

// Supports reports whether vt is one of the configured vehicle types.
func (t Tariff) Supports(vt types.VehicleType) bool {
	for _, v := range t.VehicleTypes {
		if v == vt {
			return true
		}
	}
	return false
}

// Prefix returns the space label prefix for vt.
func (t Tariff) Prefix(vt types.VehicleType) string {
	if p, ok := t.Prefixes[vt]; ok && p != "" {
		return p
	}
	switch vt {
	case types.VehicleCar:
		return "C"
	case types.VehicleMotorcycle:
		return "M"
	case types.VehicleTruck:
		return "T"
	}
	if vt == "" {
		return "X"
	}
	return strings.ToUpper(string([]rune(string(vt))[:1]))
}

// Validate checks the tariff for values the fee calculator cannot work with.
func (t Tariff) Validate() error {
	if len(t.VehicleTypes) == 0 {
		return fmt.Errorf("%w: no vehicle types", ErrInvalidTariff)
	}
	if t.ConvenioMinimumHours != 0 && t.ConvenioMinimumHours != 1 {
		return fmt.Errorf("%w: convenio_minimum_hours must be 0 or 1, got %d", ErrInvalidTariff, t.ConvenioMinimumHours)
	}
	if t.GracePeriod != nil && *t.GracePeriod < 0 {
		return fmt.Errorf("%w: grace_period must not be negative, got %d", ErrInvalidTariff, *t.GracePeriod)
	}
	for _, vt := range t.VehicleTypes {
		rates, ok := t.Rates[vt]
		if !ok {
			return fmt.Errorf("%w: missing rates for %s", ErrInvalidTariff, vt)
		}
		if _, ok := rates[types.RateHour]; !ok {
			return fmt.Errorf("%w: missing hourly rate for %s", ErrInvalidTariff, vt)
		}
		for rt, v := range rates {
			if v < 0 {
				return fmt.Errorf("%w: negative %s rate for %s", ErrInvalidTariff, rt, vt)
			}
		}
		if t.TotalSpaces[vt] < 0 {
			return fmt.Errorf("%w: negative space count for %s", ErrInvalidTariff, vt)
		}
	}
	return nil
}

// Clone returns a deep copy so callers can hand out snapshots safely.
func (t Tariff) Clone() Tariff {
	out := t
	out.VehicleTypes = append([]types.VehicleType(nil), t.VehicleTypes...)
	out.Rates = make(map[types.VehicleType]Rates, len(t.Rates))
	for vt, rates := range t.Rates {
		r := make(Rates, len(rates))
		for k, v := range rates {
			r[k] = v
		}
		out.Rates[vt] = r
	}
	out.TotalSpaces = make(map[types.VehicleType]int, len(t.TotalSpaces))
	for k, v := range t.TotalSpaces {
		out.TotalSpaces[k] = v
	}
	if t.Prefixes != nil {
		out.Prefixes = make(map[types.VehicleType]string, len(t.Prefixes))
		for k, v := range t.Prefixes {
			out.Prefixes[k] = v
		}
	}
	if t.GracePeriod != nil {
		g := *t.GracePeriod
		out.GracePeriod = &g
	}
	return out
}

// DefaultTariff mirrors the rates the lot shipped with.
func DefaultTariff() Tariff {
	grace := DefaultGraceMinutes
	receipt := Receipt{HeaderText: "ParkSystem Pro", FooterText: "Gracias por su visita", WidthMM: 80}
	return Tariff{
		Name:         "ParkSystem Pro",
		Currency:     "COP",
		VehicleTypes: []types.VehicleType{types.VehicleCar, types.VehicleMotorcycle},
		Rates: map[types.VehicleType]Rates{
			types.VehicleCar: {
				types.RateHour: 5000, types.RateDay: 25000, types.RateNight: 15000,
				types.Rate24h: 35000, types.RateMonthly: 250000,
			},
			types.VehicleMotorcycle: {
				types.RateHour: 3000, types.RateDay: 15000, types.RateNight: 10000,
				types.Rate24h: 20000, types.RateMonthly: 150000,
			},
			types.VehicleTruck: {
				types.RateHour: 8000, types.RateDay: 40000, types.RateNight: 25000,
				types.Rate24h: 50000, types.RateMonthly: 400000,
			},
		},
		TotalSpaces: map[types.VehicleType]int{
			types.VehicleCar:        20,
			types.VehicleMotorcycle: 10,
			types.VehicleTruck:      5,
		},
		GracePeriod:    &grace,
		ReceiptEntry:   receipt,
		ReceiptExit:    receipt,
		ReceiptMonthly: receipt,
	}
}
