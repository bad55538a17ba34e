// README: Parking space aggregate and status definitions.
package spaces

import "parkdesk/internal/types"

type Status string

const (
	StatusFree     Status = "free"
	StatusOccupied Status = "occupied"
	StatusBlocked  Status = "blocked"
	StatusReserved Status = "reserved"
)

// Space is one slot of the pool. Type never changes after initialization and
// VehicleID is set iff Status is occupied.
type Space struct {
	ID        types.ID          `json:"id"`
	Label     string            `json:"label"`
	Type      types.VehicleType `json:"type"`
	Status    Status            `json:"status"`
	VehicleID types.ID          `json:"vehicle_id,omitempty"`
}

// AllowedTransitions represents the space state flow as code. Occupied is
// reachable only through a vehicle allocation.
var AllowedTransitions = map[Status][]Status{
	StatusFree:     {StatusOccupied, StatusBlocked, StatusReserved},
	StatusOccupied: {StatusFree},
	StatusBlocked:  {StatusFree},
	StatusReserved: {StatusFree},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// Occupancy summarizes the pool for one vehicle type.
type Occupancy struct {
	Type     types.VehicleType `json:"type"`
	Total    int               `json:"total"`
	Free     int               `json:"free"`
	Occupied int               `json:"occupied"`
	Blocked  int               `json:"blocked"`
	Reserved int               `json:"reserved"`
}
