// README: Subscription status resolution, payment recording and collection helpers.
package subscription

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"parkdesk/internal/modules/plate"
	"parkdesk/internal/modules/pricing"
	"parkdesk/internal/modules/ticket"
	"parkdesk/internal/types"
)

var (
	ErrNotFound             = errors.New("subscription not found")
	ErrAlreadyPaidThisMonth = errors.New("subscription already paid this month")
	ErrInvalidCutDay        = errors.New("cut day must be between 1 and 31")
	ErrDuplicatePlate       = errors.New("plate already has a subscription")
	ErrMissingClient        = errors.New("client name is required")
)

// HasPaidFor reports whether a payment exists for the given month and year.
func HasPaidFor(sub Subscription, month time.Month, year int) bool {
	for _, p := range sub.Payments {
		if p.Month == int(month) && p.Year == year {
			return true
		}
	}
	return false
}

// Resolve derives the status at now. Before the cut day an unpaid
// subscription keeps its previous status.
func Resolve(sub Subscription, now time.Time) Status {
	if HasPaidFor(sub, now.Month(), now.Year()) {
		return StatusActive
	}
	if now.Day() >= sub.CutDay {
		return StatusPending
	}
	if sub.Status == "" {
		return StatusPending
	}
	return sub.Status
}

// RefreshAll resolves every subscription and reports how many changed.
func RefreshAll(subs []Subscription, now time.Time) ([]Subscription, int) {
	out := make([]Subscription, len(subs))
	changed := 0
	for i, s := range subs {
		next := Resolve(s, now)
		if next != s.Status {
			changed++
		}
		s = s.clone()
		s.Status = next
		out[i] = s
	}
	return out, changed
}

// Pay appends a payment for the month of now. With enforceOnce a second
// payment in the same month is rejected.
func Pay(sub Subscription, now time.Time, enforceOnce bool) (Subscription, error) {
	if enforceOnce && HasPaidFor(sub, now.Month(), now.Year()) {
		return sub, fmt.Errorf("%w: %s %02d/%d", ErrAlreadyPaidThisMonth, sub.Plate, int(now.Month()), now.Year())
	}
	next := sub.clone()
	next.Payments = append(next.Payments, Payment{
		ID:     ticket.NewID(),
		Date:   now,
		Amount: sub.Price,
		Month:  int(now.Month()),
		Year:   now.Year(),
	})
	next.Status = StatusActive
	return next, nil
}

// New validates the command and builds a subscription priced from the
// tariff's monthly rate for the vehicle type.
func New(cmd NewCommand, t pricing.Tariff, now time.Time) (Subscription, error) {
	p := plate.Normalize(cmd.Plate)
	if err := plate.Validate(p, cmd.VehicleType); err != nil {
		return Subscription{}, err
	}
	name := strings.TrimSpace(cmd.ClientName)
	if name == "" {
		return Subscription{}, ErrMissingClient
	}
	if cmd.CutDay < 1 || cmd.CutDay > 31 {
		return Subscription{}, fmt.Errorf("%w: %d", ErrInvalidCutDay, cmd.CutDay)
	}
	price, err := t.Rate(cmd.VehicleType, types.RateMonthly)
	if err != nil {
		return Subscription{}, err
	}
	sub := Subscription{
		ID:          ticket.NewID(),
		Plate:       p,
		ClientName:  name,
		Phone:       strings.TrimSpace(cmd.Phone),
		VehicleType: cmd.VehicleType,
		StartDate:   now,
		CutDay:      cmd.CutDay,
		Price:       price,
		Status:      StatusPending,
	}
	if cmd.PayNow {
		return Pay(sub, now, false)
	}
	return sub, nil
}

// Add appends sub, refusing a second subscription for the same plate.
func Add(subs []Subscription, sub Subscription) ([]Subscription, error) {
	if _, ok := FindByPlate(subs, sub.Plate); ok {
		return subs, fmt.Errorf("%w: %s", ErrDuplicatePlate, sub.Plate)
	}
	out := append(make([]Subscription, 0, len(subs)+1), subs...)
	return append(out, sub), nil
}

// Replace swaps the subscription with the same id.
func Replace(subs []Subscription, sub Subscription) ([]Subscription, error) {
	i := indexOf(subs, sub.ID)
	if i < 0 {
		return subs, fmt.Errorf("%w: %s", ErrNotFound, sub.ID)
	}
	out := append([]Subscription(nil), subs...)
	out[i] = sub
	return out, nil
}

// Delete removes the subscription. Past vehicles and payments are untouched.
func Delete(subs []Subscription, id types.ID) ([]Subscription, error) {
	i := indexOf(subs, id)
	if i < 0 {
		return subs, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	out := make([]Subscription, 0, len(subs)-1)
	out = append(out, subs[:i]...)
	return append(out, subs[i+1:]...), nil
}

func Find(subs []Subscription, id types.ID) (Subscription, bool) {
	if i := indexOf(subs, id); i >= 0 {
		return subs[i], true
	}
	return Subscription{}, false
}

func FindByPlate(subs []Subscription, p string) (Subscription, bool) {
	p = plate.Normalize(p)
	for _, s := range subs {
		if s.Plate == p {
			return s, true
		}
	}
	return Subscription{}, false
}

func indexOf(subs []Subscription, id types.ID) int {
	for i := range subs {
		if subs[i].ID == id {
			return i
		}
	}
	return -1
}
