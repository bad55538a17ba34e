// README: Income aggregation and the today summary, computed from snapshots.
package report

import (
	"fmt"
	"strconv"
	"time"

	"parkdesk/internal/modules/ledger"
	"parkdesk/internal/modules/spaces"
	"parkdesk/internal/types"
)

var weekdays = [...]string{"dom", "lun", "mar", "mié", "jue", "vie", "sáb"}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// IncomeFor buckets payment amounts: daily is 24 hourly buckets for today,
// weekly 7 and monthly 30 daily buckets ending today. Days are evaluated in
// now's location.
func IncomeFor(payments []ledger.Payment, period Period, now time.Time) (Income, error) {
	loc := now.Location()
	var buckets []Bucket
	switch period {
	case PeriodDaily:
		buckets = make([]Bucket, 24)
		for i := range buckets {
			buckets[i].Label = fmt.Sprintf("%d:00", i)
		}
		for _, p := range payments {
			d := p.Date.In(loc)
			if sameDay(d, now) {
				b := &buckets[d.Hour()]
				b.Total += p.Amount
				b.Count++
			}
		}
	case PeriodWeekly, PeriodMonthly:
		days := 7
		if period == PeriodMonthly {
			days = 30
		}
		buckets = make([]Bucket, days)
		first := startOfDay(now).AddDate(0, 0, -(days - 1))
		for i := range buckets {
			d := first.AddDate(0, 0, i)
			if period == PeriodWeekly {
				buckets[i].Label = weekdays[d.Weekday()] + " " + strconv.Itoa(d.Day())
			} else {
				buckets[i].Label = strconv.Itoa(d.Day())
			}
		}
		for _, p := range payments {
			d := startOfDay(p.Date.In(loc))
			if d.Before(first) || d.After(now) {
				continue
			}
			i := dayIndex(first, d)
			if i >= 0 && i < days {
				buckets[i].Total += p.Amount
				buckets[i].Count++
			}
		}
	default:
		return Income{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, period)
	}

	out := Income{Period: period, Buckets: buckets}
	for _, b := range buckets {
		out.Total += b.Total
	}
	return out, nil
}

// dayIndex counts calendar days from first to d; AddDate keeps it correct
// across DST changes where a day is not 24h.
func dayIndex(first, d time.Time) int {
	for i := 0; i < 31; i++ {
		if sameDay(first.AddDate(0, 0, i), d) {
			return i
		}
	}
	return -1
}

// Today summarizes the desk for the calendar day of now.
func Today(vehicles []ledger.Vehicle, payments []ledger.Payment, pool spaces.Pool, now time.Time) Summary {
	s := Summary{
		ParkedByType:   map[types.VehicleType]int{},
		ParkedByRate:   map[types.RateType]int{},
		Occupancy:      pool.Stats(),
		SpacesByStatus: pool.CountByStatus(),
	}
	for _, rt := range types.BillableRates {
		s.ParkedByRate[rt] = 0
	}

	minutes := 0
	for _, p := range payments {
		if sameDay(p.Date.In(now.Location()), now) {
			s.IncomeToday += p.Amount
			s.PaymentsToday++
			minutes += p.Duration
		}
	}
	if s.PaymentsToday > 0 {
		s.AverageMinutes = (minutes + s.PaymentsToday/2) / s.PaymentsToday
	}

	for _, v := range vehicles {
		if v.Status != ledger.VehicleParked {
			continue
		}
		s.ParkedVehicles++
		s.ParkedByType[v.Type]++
		s.ParkedByRate[v.RateType]++
	}
	if len(pool) > 0 {
		s.OccupiedPercent = s.SpacesByStatus[spaces.StatusOccupied] * 100 / len(pool)
	}

	week, _ := IncomeFor(payments, PeriodWeekly, now)
	s.LastSevenDays = week.Buckets
	return s
}
