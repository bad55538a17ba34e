package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkdesk/internal/modules/plate"
	"parkdesk/internal/modules/pricing"
	"parkdesk/internal/types"
)

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 9, 30, 0, 0, time.UTC)
}

func fixture(cutDay int, status Status) Subscription {
	return Subscription{
		ID:          "sub-1",
		Plate:       "ABC123",
		ClientName:  "Ana",
		VehicleType: types.VehicleCar,
		CutDay:      cutDay,
		Price:       250000,
		Status:      status,
	}
}

func TestResolve(t *testing.T) {
	paidMarch := fixture(10, StatusPending)
	paidMarch.Payments = []Payment{{Month: 3, Year: 2026, Amount: 250000}}

	paidLastYear := fixture(10, StatusActive)
	paidLastYear.Payments = []Payment{{Month: 3, Year: 2025, Amount: 250000}}

	tests := []struct {
		name string
		sub  Subscription
		now  time.Time
		want Status
	}{
		{"past cut day without payment goes pending", fixture(10, StatusActive), day(15), StatusPending},
		{"on the cut day without payment goes pending", fixture(10, StatusActive), day(10), StatusPending},
		{"before cut day keeps active", fixture(10, StatusActive), day(5), StatusActive},
		{"before cut day keeps pending", fixture(10, StatusPending), day(5), StatusPending},
		{"paid this month is active", paidMarch, day(20), StatusActive},
		{"same month of another year does not count", paidLastYear, day(15), StatusPending},
		{"unset status before cut day resolves pending", fixture(28, ""), day(2), StatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.sub, tt.now); got != tt.want {
				t.Errorf("Resolve() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPay_ActivatesPendingSubscription(t *testing.T) {
	sub := fixture(10, StatusActive)
	now := day(15)
	sub.Status = Resolve(sub, now)
	require.Equal(t, StatusPending, sub.Status)

	paid, err := Pay(sub, now, false)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, paid.Status)
	require.Len(t, paid.Payments, 1)
	assert.Equal(t, Payment{ID: paid.Payments[0].ID, Date: now, Amount: 250000, Month: 3, Year: 2026}, paid.Payments[0])
	assert.NotEmpty(t, paid.Payments[0].ID)
	assert.Equal(t, StatusActive, Resolve(paid, now))

	// receiver untouched
	assert.Empty(t, sub.Payments)
}

func TestPay_SameMonth(t *testing.T) {
	sub, err := Pay(fixture(10, StatusPending), day(3), false)
	require.NoError(t, err)

	t.Run("accepted as duplicate by default", func(t *testing.T) {
		again, err := Pay(sub, day(20), false)
		require.NoError(t, err)
		assert.Len(t, again.Payments, 2)
	})
	t.Run("rejected when enforced", func(t *testing.T) {
		again, err := Pay(sub, day(20), true)
		assert.ErrorIs(t, err, ErrAlreadyPaidThisMonth)
		assert.Len(t, again.Payments, 1)
	})
	t.Run("next month is accepted when enforced", func(t *testing.T) {
		again, err := Pay(sub, day(3).AddDate(0, 1, 0), true)
		require.NoError(t, err)
		assert.Len(t, again.Payments, 2)
	})
}

func TestRefreshAll(t *testing.T) {
	paid, err := Pay(fixture(10, StatusPending), day(1), false)
	require.NoError(t, err)
	paid.ID = "sub-2"

	subs := []Subscription{fixture(10, StatusActive), paid, fixture(20, StatusActive)}
	out, changed := RefreshAll(subs, day(15))

	assert.Equal(t, 1, changed)
	assert.Equal(t, StatusPending, out[0].Status)
	assert.Equal(t, StatusActive, out[1].Status)
	assert.Equal(t, StatusActive, out[2].Status)
	assert.Equal(t, StatusActive, subs[0].Status, "input slice untouched")
}

func TestNew(t *testing.T) {
	tariff := pricing.DefaultTariff()
	now := day(12)

	t.Run("priced from the monthly rate", func(t *testing.T) {
		sub, err := New(NewCommand{Plate: "hoq-79c", ClientName: " Luis ", VehicleType: types.VehicleMotorcycle, CutDay: 5}, tariff, now)
		require.NoError(t, err)
		assert.Equal(t, "HOQ79C", sub.Plate)
		assert.Equal(t, "Luis", sub.ClientName)
		assert.Equal(t, int64(150000), sub.Price)
		assert.Equal(t, StatusPending, sub.Status)
		assert.Empty(t, sub.Payments)
		assert.Equal(t, now, sub.StartDate)
	})
	t.Run("pay now records the first month", func(t *testing.T) {
		sub, err := New(NewCommand{Plate: "ABC123", ClientName: "Ana", VehicleType: types.VehicleCar, CutDay: 5, PayNow: true}, tariff, now)
		require.NoError(t, err)
		assert.Equal(t, StatusActive, sub.Status)
		require.Len(t, sub.Payments, 1)
		assert.Equal(t, int64(250000), sub.Payments[0].Amount)
	})

	errCases := []struct {
		name string
		cmd  NewCommand
		want error
	}{
		{"plate type mismatch", NewCommand{Plate: "ABC123", ClientName: "Ana", VehicleType: types.VehicleMotorcycle, CutDay: 5}, plate.ErrTypeMismatch},
		{"short plate", NewCommand{Plate: "AB12", ClientName: "Ana", VehicleType: types.VehicleCar, CutDay: 5}, plate.ErrInvalidFormat},
		{"cut day zero", NewCommand{Plate: "ABC123", ClientName: "Ana", VehicleType: types.VehicleCar, CutDay: 0}, ErrInvalidCutDay},
		{"cut day 32", NewCommand{Plate: "ABC123", ClientName: "Ana", VehicleType: types.VehicleCar, CutDay: 32}, ErrInvalidCutDay},
		{"blank client", NewCommand{Plate: "ABC123", ClientName: "  ", VehicleType: types.VehicleCar, CutDay: 5}, ErrMissingClient},
	}
	for _, tt := range errCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cmd, tariff, now)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCollectionHelpers(t *testing.T) {
	a := fixture(10, StatusActive)
	b := fixture(10, StatusActive)
	b.ID, b.Plate = "sub-2", "XYZ789"

	subs, err := Add(nil, a)
	require.NoError(t, err)
	subs, err = Add(subs, b)
	require.NoError(t, err)

	_, err = Add(subs, Subscription{ID: "sub-3", Plate: "ABC123"})
	assert.ErrorIs(t, err, ErrDuplicatePlate)

	got, ok := FindByPlate(subs, "xyz-789")
	require.True(t, ok)
	assert.Equal(t, types.ID("sub-2"), got.ID)

	b.ClientName = "Beto"
	subs, err = Replace(subs, b)
	require.NoError(t, err)
	got, ok = Find(subs, "sub-2")
	require.True(t, ok)
	assert.Equal(t, "Beto", got.ClientName)

	remaining, err := Delete(subs, "sub-1")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, types.ID("sub-2"), remaining[0].ID)
	assert.Len(t, subs, 2, "input slice untouched")

	_, err = Delete(remaining, "sub-1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = Replace(remaining, a)
	assert.ErrorIs(t, err, ErrNotFound)
}
