// README: Monthly subscription aggregate and its payment history.
package subscription

import (
	"time"

	"parkdesk/internal/types"
)

type Status string

const (
	StatusActive  Status = "active"
	StatusPending Status = "pending"
)

type Payment struct {
	ID     types.ID  `json:"id"`
	Date   time.Time `json:"date"`
	Amount int64     `json:"amount"`
	Month  int       `json:"month"` // 1-12
	Year   int       `json:"year"`
}

// Subscription is a plate billed by the month instead of per stay. Status is
// derived from Payments and CutDay by Resolve; it is stored only as the last
// resolved value.
type Subscription struct {
	ID          types.ID          `json:"id"`
	Plate       string            `json:"plate"`
	ClientName  string            `json:"client_name"`
	Phone       string            `json:"phone,omitempty"`
	VehicleType types.VehicleType `json:"vehicle_type"`
	StartDate   time.Time         `json:"start_date"`
	CutDay      int               `json:"cut_day"`
	Price       int64             `json:"price"`
	Status      Status            `json:"status"`
	Payments    []Payment         `json:"payments"`
}

// LastPayment returns the most recent payment, if any.
func (s Subscription) LastPayment() (Payment, bool) {
	if len(s.Payments) == 0 {
		return Payment{}, false
	}
	return s.Payments[len(s.Payments)-1], true
}

func (s Subscription) clone() Subscription {
	s.Payments = append([]Payment(nil), s.Payments...)
	return s
}

type NewCommand struct {
	Plate       string
	ClientName  string
	Phone       string
	VehicleType types.VehicleType
	CutDay      int
	// PayNow records the first month's payment at creation.
	PayNow bool
}
