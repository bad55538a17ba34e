// README: Vehicle, rate and payment enumerations shared across modules.
package types

type VehicleType string

const (
	VehicleCar        VehicleType = "car"
	VehicleMotorcycle VehicleType = "motorcycle"
	VehicleTruck      VehicleType = "truck"
)

type RateType string

const (
	RateHour    RateType = "hour"
	RateDay     RateType = "day"
	RateNight   RateType = "night"
	Rate24h     RateType = "24h"
	RateMonthly RateType = "monthly"
)

// FlatRates are billed once per stay regardless of duration.
var FlatRates = []RateType{RateDay, RateNight, Rate24h}

// BillableRates are the rate types a vehicle may be registered with at the gate.
var BillableRates = []RateType{RateHour, RateDay, RateNight, Rate24h}

func (r RateType) IsFlat() bool {
	for _, f := range FlatRates {
		if r == f {
			return true
		}
	}
	return false
}

func (r RateType) Valid() bool {
	return r == RateMonthly || r == RateHour || r.IsFlat()
}

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentCard
}

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCashier Role = "cashier"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCashier
}
