package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkdesk/internal/types"
)

func TestCalcDuration(t *testing.T) {
	base := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		exit time.Time
		want int
	}{
		{"zero delta clamps to one minute", base, 1},
		{"negative delta (clock skew) clamps to one minute", base.Add(-10 * time.Minute), 1},
		{"one millisecond rounds up", base.Add(time.Millisecond), 1},
		{"exactly one minute", base.Add(time.Minute), 1},
		{"one minute and one second rounds up", base.Add(61 * time.Second), 2},
		{"125 minutes", base.Add(125 * time.Minute), 125},
		{"a full day", base.Add(24 * time.Hour), 1440},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalcDuration(base, tt.exit); got != tt.want {
				t.Errorf("CalcDuration() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCalcFee_Hourly(t *testing.T) {
	cfg := DefaultTariff() // car 5000/h, motorcycle 3000/h, grace 5

	tests := []struct {
		name     string
		minutes  int
		vt       types.VehicleType
		convenio bool
		want     int64
	}{
		{"one minute bills one hour", 1, types.VehicleCar, false, 5000},
		{"inside first hour", 59, types.VehicleCar, false, 5000},
		{"grace boundary 65 min stays at one hour", 65, types.VehicleCar, false, 5000},
		{"66 min moves to the second hour", 66, types.VehicleCar, false, 10000},
		// ceil((125-5)/60) = 2 hours
		{"125 min car", 125, types.VehicleCar, false, 10000},
		{"125 min car with convenio", 125, types.VehicleCar, true, 5000},
		{"motorcycle 3h10m", 190, types.VehicleMotorcycle, false, 12000},
		{"motorcycle 3h10m with convenio", 190, types.VehicleMotorcycle, true, 9000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalcFee(tt.minutes, tt.vt, types.RateHour, cfg, tt.convenio)
			if err != nil {
				t.Fatalf("CalcFee() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CalcFee() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCalcFee_ConvenioMinimumHours(t *testing.T) {
	floorZero := DefaultTariff()
	floorZero.ConvenioMinimumHours = 0
	floorOne := DefaultTariff()
	floorOne.ConvenioMinimumHours = 1

	// A one-hour stay with convenio: the discount covers the whole charge at
	// floor 0 and leaves one billed hour at floor 1.
	got, err := CalcFee(30, types.VehicleCar, types.RateHour, floorZero, true)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)

	got, err = CalcFee(30, types.VehicleCar, types.RateHour, floorOne, true)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), got)

	// Longer stays are unaffected by the floor.
	for _, cfg := range []Tariff{floorZero, floorOne} {
		got, err := CalcFee(125, types.VehicleCar, types.RateHour, cfg, true)
		require.NoError(t, err)
		assert.Equal(t, int64(5000), got, "floor=%d", cfg.ConvenioMinimumHours)
	}
}

func TestCalcFee_Flat(t *testing.T) {
	cfg := DefaultTariff()

	tests := []struct {
		name     string
		vt       types.VehicleType
		rt       types.RateType
		convenio bool
		want     int64
	}{
		{"car day", types.VehicleCar, types.RateDay, false, 25000},
		{"car night", types.VehicleCar, types.RateNight, false, 15000},
		{"car 24h", types.VehicleCar, types.Rate24h, false, 35000},
		{"car day convenio subtracts one hour", types.VehicleCar, types.RateDay, true, 20000},
		{"motorcycle night convenio", types.VehicleMotorcycle, types.RateNight, true, 7000},
		{"truck 24h", types.VehicleTruck, types.Rate24h, false, 50000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, minutes := range []int{1, 60, 600, 3000} {
				got, err := CalcFee(minutes, tt.vt, tt.rt, cfg, tt.convenio)
				if err != nil {
					t.Fatalf("CalcFee() error = %v", err)
				}
				if got != tt.want {
					t.Errorf("CalcFee(%d min) = %d, want %d", minutes, got, tt.want)
				}
			}
		})
	}
}

func TestCalcFee_FlatConvenioNeverNegative(t *testing.T) {
	cfg := DefaultTariff()
	cfg.Rates[types.VehicleCar][types.RateNight] = 3000 // below the hourly rate

	got, err := CalcFee(600, types.VehicleCar, types.RateNight, cfg, true)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)
}

func TestCalcFee_Properties(t *testing.T) {
	for _, floor := range []int{0, 1} {
		cfg := DefaultTariff()
		cfg.ConvenioMinimumHours = floor
		for _, vt := range []types.VehicleType{types.VehicleCar, types.VehicleMotorcycle, types.VehicleTruck} {
			hourly := cfg.Rates[vt][types.RateHour]
			for minutes := 1; minutes <= 1500; minutes++ {
				plain, err := CalcFee(minutes, vt, types.RateHour, cfg, false)
				require.NoError(t, err)
				if plain < hourly {
					t.Fatalf("%s %d min: hourly fee %d below one hour %d", vt, minutes, plain, hourly)
				}
				for _, rt := range types.BillableRates {
					without, err := CalcFee(minutes, vt, rt, cfg, false)
					require.NoError(t, err)
					with, err := CalcFee(minutes, vt, rt, cfg, true)
					require.NoError(t, err)
					if with > without || with < 0 {
						t.Fatalf("%s/%s %d min: convenio %d vs plain %d", vt, rt, minutes, with, without)
					}
				}
			}
		}
	}
}

func TestCalcFee_GraceSettings(t *testing.T) {
	cfg := DefaultTariff()
	cfg.GracePeriod = nil
	assert.Equal(t, DefaultGraceMinutes, cfg.Grace(), "unset grace falls back to the default")

	cfg.GraceDisabled = true
	got, err := CalcFee(61, types.VehicleCar, types.RateHour, cfg, false)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), got, "without grace 61 minutes is two hours")

	fifteen := 15
	cfg = DefaultTariff()
	cfg.GracePeriod = &fifteen
	got, err = CalcFee(75, types.VehicleCar, types.RateHour, cfg, false)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), got)
}

func TestNewQuote_SubtotalAndDiscount(t *testing.T) {
	cfg := DefaultTariff()

	q, err := NewQuote(125, types.VehicleCar, types.RateHour, cfg, true)
	require.NoError(t, err)
	assert.Equal(t, 2, q.BillableHours)
	assert.Equal(t, int64(10000), q.Subtotal)
	assert.Equal(t, int64(5000), q.Amount)
	assert.Equal(t, int64(5000), q.Discount)

	q, err = NewQuote(300, types.VehicleMotorcycle, types.RateDay, cfg, false)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), q.Subtotal)
	assert.Equal(t, q.Subtotal, q.Amount)
	assert.Zero(t, q.Discount)
}

func TestNewQuote_UnknownRate(t *testing.T) {
	cfg := DefaultTariff()

	_, err := NewQuote(60, types.VehicleType("bus"), types.RateHour, cfg, false)
	assert.True(t, errors.Is(err, ErrUnknownRate))

	_, err = NewQuote(60, types.VehicleCar, types.RateMonthly, cfg, false)
	assert.True(t, errors.Is(err, ErrUnknownRate), "monthly is not billed by the fee calculator")
}

type staticTariff struct{ t Tariff }

func (s staticTariff) Tariff() Tariff { return s.t }

func TestService_Estimate(t *testing.T) {
	s := NewService(staticTariff{t: DefaultTariff()})
	entry := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)

	q, err := s.Estimate(context.Background(), EstimateRequest{
		VehicleType: types.VehicleCar,
		RateType:    types.RateHour,
		Entry:       entry,
		Exit:        entry.Add(125 * time.Minute),
	})
	require.NoError(t, err)
	assert.Equal(t, 125, q.Minutes)
	assert.Equal(t, int64(10000), q.Amount)

	q, err = s.Estimate(context.Background(), EstimateRequest{
		VehicleType: types.VehicleCar,
		RateType:    types.RateHour,
		Minutes:     66,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10000), q.Amount)

	// Truck rates ship in the defaults, but trucks are not enabled.
	_, err = s.Estimate(context.Background(), EstimateRequest{
		VehicleType: types.VehicleTruck,
		RateType:    types.RateHour,
		Minutes:     60,
	})
	assert.ErrorIs(t, err, ErrUnknownRate)
}
