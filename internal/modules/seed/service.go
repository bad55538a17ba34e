// README: Demo history generated on first boot; every payment goes through the fee calculator.
package seed

import (
	"fmt"
	"math/rand/v2"
	"time"

	"parkdesk/internal/modules/ledger"
	"parkdesk/internal/modules/pricing"
	"parkdesk/internal/modules/spaces"
	"parkdesk/internal/modules/ticket"
	"parkdesk/internal/types"
)

const (
	HistoryDays  = 7
	minPerDay    = 3
	maxPerDay    = 7
	minStay      = 30
	maxStayExtra = 300
)

var demoPlates = map[types.VehicleType]string{
	types.VehicleCar:        "ABC123",
	types.VehicleMotorcycle: "XYZ78M",
	types.VehicleTruck:      "MOT456",
}

type Result struct {
	Vehicles []ledger.Vehicle
	Payments []ledger.Payment
	Spaces   spaces.Pool
}

// Generate parks one demo vehicle per configured type in pool and adds
// HistoryDays of exited stays with payments. Output is deterministic for a
// given rng apart from ids and ticket codes.
func Generate(t pricing.Tariff, pool spaces.Pool, now time.Time, rng *rand.Rand) (Result, error) {
	res := Result{Spaces: pool}

	for i, vt := range t.VehicleTypes {
		p, ok := demoPlates[vt]
		if !ok {
			p = randomPlate(rng, vt)
		}
		id := ticket.NewID()
		next, space, err := res.Spaces.Allocate(vt, id)
		if err != nil {
			continue
		}
		res.Spaces = next
		res.Vehicles = append(res.Vehicles, ledger.Vehicle{
			ID:         id,
			Plate:      p,
			Type:       vt,
			RateType:   types.RateHour,
			EntryTime:  now.Add(-time.Duration(60+i*45) * time.Minute),
			SpaceID:    space.ID,
			Status:     ledger.VehicleParked,
			TicketCode: ticket.NewTicketCode(),
		})
	}

	for d := 0; d < HistoryDays; d++ {
		count := minPerDay + rng.IntN(maxPerDay-minPerDay+1)
		for j := 0; j < count; j++ {
			vt := t.VehicleTypes[rng.IntN(len(t.VehicleTypes))]
			rt := types.BillableRates[rng.IntN(len(types.BillableRates))]
			minutes := minStay + rng.IntN(maxStayExtra)
			entry := now.Add(-time.Duration(d)*24*time.Hour - time.Duration(rng.Int64N(int64(24*time.Hour))))
			exit := entry.Add(time.Duration(minutes) * time.Minute)

			q, err := pricing.NewQuote(minutes, vt, rt, t, false)
			if err != nil {
				return Result{}, fmt.Errorf("seed quote %s/%s: %w", vt, rt, err)
			}
			slot := 1
			if n := t.TotalSpaces[vt]; n > 0 {
				slot += rng.IntN(n)
			}
			method := types.PaymentCash
			if rng.IntN(2) == 1 {
				method = types.PaymentCard
			}

			v := ledger.Vehicle{
				ID:         ticket.NewID(),
				Plate:      randomPlate(rng, vt),
				Type:       vt,
				RateType:   rt,
				EntryTime:  entry,
				SpaceID:    types.ID(fmt.Sprintf("%s-%d", vt, slot)),
				Status:     ledger.VehicleParked,
				TicketCode: ticket.NewTicketCode(),
			}
			v = ledger.Exit(v, exit, false)
			res.Vehicles = append(res.Vehicles, v)
			res.Payments = append(res.Payments, ledger.NewPayment(ticket.NewID(), v, q, method, exit))
		}
	}
	return res, nil
}

// randomPlate builds three letters and three characters whose last one
// satisfies the plate rule for vt.
func randomPlate(rng *rand.Rand, vt types.VehicleType) string {
	b := make([]byte, 6)
	for i := 0; i < 3; i++ {
		b[i] = byte('A' + rng.IntN(26))
	}
	b[3] = byte('0' + rng.IntN(10))
	b[4] = byte('0' + rng.IntN(10))
	if vt == types.VehicleMotorcycle {
		b[5] = byte('A' + rng.IntN(26))
	} else {
		b[5] = byte('0' + rng.IntN(10))
	}
	return string(b)
}
