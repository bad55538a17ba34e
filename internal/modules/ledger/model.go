// README: Vehicle stays and the payments charged for them.
package ledger

import (
	"time"

	"parkdesk/internal/modules/pricing"
	"parkdesk/internal/types"
)

type VehicleStatus string

const (
	VehicleParked VehicleStatus = "parked"
	VehicleExited VehicleStatus = "exited"
)

// Vehicle is one stay. It is created parked and mutated exactly once, on exit.
type Vehicle struct {
	ID           types.ID          `json:"id"`
	Plate        string            `json:"plate"`
	Type         types.VehicleType `json:"type"`
	RateType     types.RateType    `json:"rate_type"`
	EntryTime    time.Time         `json:"entry_time"`
	ExitTime     *time.Time        `json:"exit_time,omitempty"`
	SpaceID      types.ID          `json:"space_id"`
	Status       VehicleStatus     `json:"status"`
	TicketCode   string            `json:"ticket_code"`
	Convenio     bool              `json:"convenio,omitempty"`
	HelmetNumber string            `json:"helmet_number,omitempty"`
}

type PaymentStatus string

const PaymentPaid PaymentStatus = "paid"

// Payment is immutable once recorded. Plate is a snapshot taken at exit.
type Payment struct {
	ID          types.ID            `json:"id"`
	VehicleID   types.ID            `json:"vehicle_id"`
	Plate       string              `json:"plate"`
	Amount      int64               `json:"amount"`
	Subtotal    int64               `json:"subtotal"`
	Discount    int64               `json:"discount"`
	Method      types.PaymentMethod `json:"method"`
	Status      PaymentStatus       `json:"status"`
	Date        time.Time           `json:"date"`
	VehicleType types.VehicleType   `json:"vehicle_type"`
	RateType    types.RateType      `json:"rate_type"`
	Duration    int                 `json:"duration"` // minutes
	Convenio    bool                `json:"convenio"`
}

// Filter selects vehicles for listing. Zero values match everything.
type Filter struct {
	Status VehicleStatus
	Type   types.VehicleType
	Plate  string
}

func (f Filter) Match(v Vehicle) bool {
	if f.Status != "" && v.Status != f.Status {
		return false
	}
	if f.Type != "" && v.Type != f.Type {
		return false
	}
	if f.Plate != "" && v.Plate != f.Plate {
		return false
	}
	return true
}

// NewPayment records the charge for an exited vehicle.
func NewPayment(id types.ID, v Vehicle, q pricing.Quote, method types.PaymentMethod, at time.Time) Payment {
	return Payment{
		ID:          id,
		VehicleID:   v.ID,
		Plate:       v.Plate,
		Amount:      q.Amount,
		Subtotal:    q.Subtotal,
		Discount:    q.Discount,
		Method:      method,
		Status:      PaymentPaid,
		Date:        at,
		VehicleType: v.Type,
		RateType:    q.RateType,
		Duration:    q.Minutes,
		Convenio:    q.Convenio,
	}
}
