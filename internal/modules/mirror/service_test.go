package mirror

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkdesk/internal/modules/ledger"
	"parkdesk/internal/modules/pricing"
	"parkdesk/internal/modules/subscription"
	"parkdesk/internal/types"
)

var at = time.Date(2026, 7, 3, 14, 0, 0, 0, time.UTC)

func exitedVehicle() (ledger.Vehicle, ledger.Payment) {
	v := ledger.Vehicle{
		ID: "v1", Plate: "ABC123", Type: types.VehicleCar, RateType: types.RateHour,
		EntryTime: at.Add(-125 * time.Minute), SpaceID: "car-1", Status: ledger.VehicleParked,
		TicketCode: "PKS-AAAA1111",
	}
	v = ledger.Exit(v, at, true)
	p := ledger.Payment{
		ID: "p1", VehicleID: "v1", Plate: "ABC123", Amount: 5000, Subtotal: 10000, Discount: 5000,
		Method: types.PaymentCash, Status: ledger.PaymentPaid, Date: at,
		VehicleType: types.VehicleCar, RateType: types.RateHour, Duration: 125, Convenio: true,
	}
	return v, p
}

func TestEntryRecorded_Statements(t *testing.T) {
	v, _ := exitedVehicle()
	v.Status = ledger.VehicleParked
	v.ExitTime = nil

	stmts, err := EntryRecorded{Vehicle: v}.Statements()
	require.NoError(t, err)
	require.Len(t, stmts, 2)

	assert.True(t, strings.HasPrefix(stmts[0].SQL, "INSERT INTO vehiculos"))
	assert.Contains(t, stmts[0].SQL, "ON CONFLICT (placa) DO NOTHING")

	assert.True(t, strings.HasPrefix(stmts[1].SQL, "INSERT INTO ingresos"))
	assert.Contains(t, stmts[1].SQL, "ON CONFLICT (id) DO UPDATE SET estado = EXCLUDED.estado")
	assert.Contains(t, stmts[1].SQL, "$9")
	assert.NotContains(t, stmts[1].SQL, "?")
	require.Len(t, stmts[1].Args, 9)
	assert.Equal(t, "ABC123", stmts[1].Args[1])
	assert.Nil(t, stmts[1].Args[7], "no helmet for cars")
	assert.Equal(t, "parked", stmts[1].Args[8])
}

func TestExitRecorded_Statements(t *testing.T) {
	v, p := exitedVehicle()
	stmts, err := ExitRecorded{Vehicle: v, Payment: p}.Statements()
	require.NoError(t, err)
	require.Len(t, stmts, 3)

	// The entry row is upserted so an exit never depends on its entry having been mirrored.
	assert.True(t, strings.HasPrefix(stmts[0].SQL, "INSERT INTO ingresos"))
	assert.Contains(t, stmts[0].SQL, "ON CONFLICT (id) DO UPDATE SET estado = EXCLUDED.estado")
	ingreso := stmts[0].Args
	require.Len(t, ingreso, 9)
	assert.Equal(t, "v1", ingreso[0])
	assert.Equal(t, at.Add(-125*time.Minute), ingreso[4])
	assert.Equal(t, "exited", ingreso[8])

	assert.True(t, strings.HasPrefix(stmts[1].SQL, "INSERT INTO salidas"))
	salida := stmts[1].Args
	require.Len(t, salida, 12)
	assert.Equal(t, "v1", salida[1])
	assert.Equal(t, at, salida[6])
	assert.Equal(t, 125, salida[7])
	assert.Equal(t, []any{int64(10000), int64(5000), int64(5000), true}, salida[8:])

	assert.True(t, strings.HasPrefix(stmts[2].SQL, "INSERT INTO pagos"))
	assert.Equal(t, "p1", stmts[2].Args[1], "pago references the salida")
	assert.Equal(t, "cash", stmts[2].Args[8])
}

func TestSubscriptionStatements(t *testing.T) {
	sub := subscription.Subscription{
		ID: "s1", Plate: "HOQ79C", ClientName: "Luis", VehicleType: types.VehicleMotorcycle,
		StartDate: at, CutDay: 5, Price: 150000, Status: subscription.StatusActive,
	}

	saved, err := SubscriptionSaved{Subscription: sub}.Statements()
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Contains(t, saved[0].SQL, "INSERT INTO mensualidades")
	assert.Contains(t, saved[0].SQL, "ON CONFLICT (id) DO UPDATE")
	assert.Nil(t, saved[0].Args[3], "empty phone stored as NULL")

	pay := subscription.Payment{ID: "mp1", Date: at, Amount: 150000, Month: 7, Year: 2026}
	paid, err := SubscriptionPaid{Subscription: sub, Payment: pay}.Statements()
	require.NoError(t, err)
	require.Len(t, paid, 3)
	assert.Contains(t, paid[0].SQL, "INSERT INTO mensualidad_pagos")
	assert.Equal(t, []any{"mp1", "s1", 7, 2026, int64(150000), at}, paid[0].Args)
	assert.Contains(t, paid[1].SQL, "INSERT INTO pagos")
	assert.Equal(t, "monthly", paid[1].Args[4])
	assert.Equal(t, "cash", paid[1].Args[8])
	assert.Contains(t, paid[2].SQL, "UPDATE mensualidades SET estado = $1")

	deleted, err := SubscriptionDeleted{ID: "s1"}.Statements()
	require.NoError(t, err)
	require.Len(t, deleted, 2)
	assert.Equal(t, "DELETE FROM mensualidad_pagos WHERE mensualidad_id = $1", deleted[0].SQL)
	assert.Equal(t, "DELETE FROM mensualidades WHERE id = $1", deleted[1].SQL)
}

func TestTariffUpdated_Statements(t *testing.T) {
	tariff := pricing.DefaultTariff() // car + motorcycle, five rates each
	stmts, err := TariffUpdated{Tariff: tariff}.Statements()
	require.NoError(t, err)

	var tarifas, config int
	for _, st := range stmts {
		switch {
		case strings.HasPrefix(st.SQL, "INSERT INTO tarifas"):
			tarifas++
		case strings.HasPrefix(st.SQL, "INSERT INTO configuracion"):
			config++
		}
	}
	assert.Equal(t, 10, tarifas)
	assert.Equal(t, 4+2, config)
	assert.Equal(t, []any{"car_hour", "car", "hour", int64(5000)}, stmts[0].Args)
}

func TestOffer_DropsWhenFull(t *testing.T) {
	svc := NewService(nil, slog.New(slog.NewTextHandler(io.Discard, nil)), 1)
	svc.Offer(SubscriptionDeleted{ID: "a"})
	svc.Offer(SubscriptionDeleted{ID: "b"})
	assert.EqualValues(t, 1, svc.Dropped())
}

// unreachableDB fails every Begin and counts the attempts.
type unreachableDB struct {
	begins atomic.Int32
}

func (d *unreachableDB) Begin(context.Context) (pgx.Tx, error) {
	d.begins.Add(1)
	return nil, errors.New("connection refused")
}

func TestRun_DrainsBufferedEventsOnShutdown(t *testing.T) {
	db := &unreachableDB{}
	svc := NewService(db, slog.New(slog.NewTextHandler(io.Discard, nil)), 8)
	for _, id := range []types.ID{"a", "b", "c"} {
		svc.Offer(SubscriptionDeleted{ID: id})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.Run(ctx)

	assert.EqualValues(t, 3, db.begins.Load(), "every buffered event is attempted after cancel")
	assert.Zero(t, svc.Applied())
}

func TestApply_Postgres(t *testing.T) {
	dsn := os.Getenv("PARKDESK_TEST_DSN")
	if dsn == "" {
		t.Skip("PARKDESK_TEST_DSN not set; skipping integration test")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	svc := NewService(pool, slog.New(slog.NewTextHandler(io.Discard, nil)), 0)
	require.NoError(t, svc.EnsureSchema(ctx))

	v, p := exitedVehicle()
	suffix := time.Now().Format("150405.000000")
	v.ID = types.ID("v-" + suffix)
	p.ID = types.ID("p-" + suffix)
	p.VehicleID = v.ID

	require.NoError(t, svc.Apply(ctx, EntryRecorded{Vehicle: v}))
	require.NoError(t, svc.Apply(ctx, ExitRecorded{Vehicle: v, Payment: p}))

	var total int64
	require.NoError(t, pool.QueryRow(ctx, "SELECT total FROM salidas WHERE ingreso_id = $1", string(v.ID)).Scan(&total))
	assert.Equal(t, int64(5000), total)

	t.Run("exit without mirrored entry", func(t *testing.T) {
		orphan, pay := exitedVehicle()
		orphan.ID = types.ID("seed-" + suffix)
		pay.ID = types.ID("pay-seed-" + suffix)
		pay.VehicleID = orphan.ID
		require.NoError(t, svc.Apply(ctx, ExitRecorded{Vehicle: orphan, Payment: pay}))

		var estado string
		require.NoError(t, pool.QueryRow(ctx, "SELECT estado FROM ingresos WHERE id = $1", string(orphan.ID)).Scan(&estado))
		assert.Equal(t, "exited", estado)
		var pagos int
		require.NoError(t, pool.QueryRow(ctx, "SELECT count(*) FROM pagos WHERE salida_id = $1", string(pay.ID)).Scan(&pagos))
		assert.Equal(t, 1, pagos)
	})
}
