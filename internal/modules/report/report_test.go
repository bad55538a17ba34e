package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkdesk/internal/modules/ledger"
	"parkdesk/internal/modules/pricing"
	"parkdesk/internal/modules/spaces"
	"parkdesk/internal/types"
)

var now = time.Date(2026, 3, 11, 15, 30, 0, 0, time.UTC) // a Wednesday

func pay(at time.Time, amount int64, minutes int) ledger.Payment {
	return ledger.Payment{
		ID: types.ID(fmt.Sprintf("p-%d", at.Unix())), Plate: "ABC123", Amount: amount, Date: at,
		Method: types.PaymentCash, VehicleType: types.VehicleCar, RateType: types.RateHour, Duration: minutes,
	}
}

func TestIncomeFor_Daily(t *testing.T) {
	payments := []ledger.Payment{
		pay(now.Add(-30*time.Minute), 5000, 60), // 15:00
		pay(now.Add(-20*time.Minute), 3000, 45), // 15:10
		pay(now.Add(-10*time.Hour), 10000, 125), // 05:30
		pay(now.Add(-24*time.Hour), 99999, 60),  // yesterday
	}
	inc, err := IncomeFor(payments, PeriodDaily, now)
	require.NoError(t, err)
	require.Len(t, inc.Buckets, 24)
	assert.Equal(t, "0:00", inc.Buckets[0].Label)
	assert.Equal(t, "15:00", inc.Buckets[15].Label)
	assert.Equal(t, Bucket{Label: "15:00", Total: 8000, Count: 2}, inc.Buckets[15])
	assert.Equal(t, int64(10000), inc.Buckets[5].Total)
	assert.Equal(t, int64(18000), inc.Total)
}

func TestIncomeFor_WeeklyAndMonthly(t *testing.T) {
	payments := []ledger.Payment{
		pay(now, 1000, 30),
		pay(now.AddDate(0, 0, -6), 2000, 30),
		pay(now.AddDate(0, 0, -7), 4000, 30),
		pay(now.AddDate(0, 0, -29), 8000, 30),
		pay(now.AddDate(0, 0, -30), 16000, 30),
		pay(now.AddDate(0, 0, 1), 32000, 30), // clock skew into tomorrow
	}

	week, err := IncomeFor(payments, PeriodWeekly, now)
	require.NoError(t, err)
	require.Len(t, week.Buckets, 7)
	assert.Equal(t, "jue 5", week.Buckets[0].Label)
	assert.Equal(t, "mié 11", week.Buckets[6].Label)
	assert.Equal(t, int64(2000), week.Buckets[0].Total)
	assert.Equal(t, int64(1000), week.Buckets[6].Total)
	assert.Equal(t, int64(3000), week.Total)

	month, err := IncomeFor(payments, PeriodMonthly, now)
	require.NoError(t, err)
	require.Len(t, month.Buckets, 30)
	assert.Equal(t, "10", month.Buckets[0].Label) // Feb 10
	assert.Equal(t, "11", month.Buckets[29].Label)
	assert.Equal(t, int64(1000+2000+4000+8000), month.Total)

	_, err = IncomeFor(payments, "yearly", now)
	assert.ErrorIs(t, err, ErrUnknownPeriod)
}

func TestToday(t *testing.T) {
	tariff := pricing.DefaultTariff()
	tariff.TotalSpaces = map[types.VehicleType]int{types.VehicleCar: 3, types.VehicleMotorcycle: 1}
	pool := spaces.InitSpaces(tariff)
	pool, _, _ = pool.Allocate(types.VehicleCar, "v1")
	pool, _, _ = pool.Allocate(types.VehicleMotorcycle, "v2")
	pool, _ = pool.ToggleBlock("car-3")

	vehicles := []ledger.Vehicle{
		{ID: "v1", Type: types.VehicleCar, RateType: types.RateHour, Status: ledger.VehicleParked},
		{ID: "v2", Type: types.VehicleMotorcycle, RateType: types.RateNight, Status: ledger.VehicleParked},
		{ID: "v3", Type: types.VehicleCar, RateType: types.RateDay, Status: ledger.VehicleExited},
	}
	payments := []ledger.Payment{
		pay(now.Add(-time.Hour), 5000, 60),
		pay(now.Add(-2*time.Hour), 10000, 125),
		pay(now.AddDate(0, 0, -1), 7000, 300),
	}

	s := Today(vehicles, payments, pool, now)
	assert.Equal(t, int64(15000), s.IncomeToday)
	assert.Equal(t, 2, s.PaymentsToday)
	assert.Equal(t, 93, s.AverageMinutes) // (60+125)/2 rounded
	assert.Equal(t, 2, s.ParkedVehicles)
	assert.Equal(t, map[types.VehicleType]int{types.VehicleCar: 1, types.VehicleMotorcycle: 1}, s.ParkedByType)
	assert.Equal(t, 1, s.ParkedByRate[types.RateHour])
	assert.Equal(t, 1, s.ParkedByRate[types.RateNight])
	assert.Equal(t, 0, s.ParkedByRate[types.Rate24h])
	assert.Equal(t, 1, s.SpacesByStatus[spaces.StatusBlocked])
	assert.Equal(t, 50, s.OccupiedPercent)
	require.Len(t, s.Occupancy, 2)
	assert.Equal(t, 1, s.Occupancy[0].Occupied)
	require.Len(t, s.LastSevenDays, 7)
	assert.Equal(t, int64(7000), s.LastSevenDays[5].Total)
}

func TestToday_Empty(t *testing.T) {
	s := Today(nil, nil, nil, now)
	assert.Zero(t, s.AverageMinutes)
	assert.Zero(t, s.OccupiedPercent)
	assert.Empty(t, s.Occupancy)
}

func TestWritePaymentsCSV(t *testing.T) {
	payments := []ledger.Payment{
		pay(time.Date(2026, 3, 11, 9, 5, 0, 0, time.UTC), 25000, 125),
		{Plate: "HOQ79C", Amount: 3000, Date: time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC),
			Method: types.PaymentCard, VehicleType: types.VehicleMotorcycle, Duration: 45},
	}
	var buf bytes.Buffer
	require.NoError(t, WritePaymentsCSV(&buf, payments, time.UTC))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"fecha", "placa", "tipo", "duracion", "metodo", "monto"}, rows[0])
	assert.Equal(t, []string{"11/03/2026 09:05", "ABC123", "Carro", "2h 5min", "Efectivo", "25000"}, rows[1])
	assert.Equal(t, []string{"11/03/2026 10:00", "HOQ79C", "Moto", "45 min", "Tarjeta", "3000"}, rows[2])
}

func TestWriteJSON(t *testing.T) {
	var vehicles []ledger.Vehicle
	for i := 0; i < 60; i++ {
		vehicles = append(vehicles, ledger.Vehicle{ID: types.ID(fmt.Sprintf("v%d", i)), Status: ledger.VehicleExited})
	}
	vehicles = append(vehicles, ledger.Vehicle{ID: "parked", Status: ledger.VehicleParked})

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil, vehicles))

	var out struct {
		Payments []ledger.Payment `json:"payments"`
		Vehicles []ledger.Vehicle `json:"vehicles"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.NotNil(t, out.Payments)
	assert.Empty(t, out.Payments)
	require.Len(t, out.Vehicles, MaxExportedVehicles)
	assert.Equal(t, types.ID("v0"), out.Vehicles[0].ID)
}

func TestFormatting(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "0 min"},
		{45, "45 min"},
		{60, "1h 0min"},
		{125, "2h 5min"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.minutes))
		})
	}
	assert.Equal(t, "$25.000", FormatCurrency(25000))
	assert.Equal(t, "$1.250.000", FormatCurrency(1250000))
	assert.Equal(t, "$500", FormatCurrency(500))
	assert.Equal(t, "Camioneta", VehicleLabel(types.VehicleTruck))
	assert.Equal(t, "bus", VehicleLabel("bus"))
}
