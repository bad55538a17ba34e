// README: Pure helpers over vehicle and payment collections.
package ledger

import (
	"time"

	"parkdesk/internal/types"
)

// Exit returns the exited copy of v.
func Exit(v Vehicle, at time.Time, convenio bool) Vehicle {
	v.Status = VehicleExited
	v.ExitTime = &at
	v.Convenio = convenio
	return v
}

func Find(vehicles []Vehicle, id types.ID) (Vehicle, int, bool) {
	for i, v := range vehicles {
		if v.ID == id {
			return v, i, true
		}
	}
	return Vehicle{}, -1, false
}

// FindParked returns the parked stay for a normalized plate.
func FindParked(vehicles []Vehicle, plate string) (Vehicle, bool) {
	for _, v := range vehicles {
		if v.Status == VehicleParked && v.Plate == plate {
			return v, true
		}
	}
	return Vehicle{}, false
}

func Select(vehicles []Vehicle, f Filter) []Vehicle {
	out := make([]Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if f.Match(v) {
			out = append(out, v)
		}
	}
	return out
}

// Duration returns the length of the stay, measured to now for parked vehicles.
func (v Vehicle) Duration(now time.Time) time.Duration {
	end := now
	if v.ExitTime != nil {
		end = *v.ExitTime
	}
	return end.Sub(v.EntryTime)
}
