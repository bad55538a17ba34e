// README: Space pool operations; every method returns a new pool and leaves the receiver untouched.
package spaces

import (
	"errors"
	"fmt"

	"parkdesk/internal/modules/pricing"
	"parkdesk/internal/types"
)

var (
	ErrNoFreeSpace       = errors.New("no free space for vehicle type")
	ErrNotFound          = errors.New("space not found")
	ErrInvalidTransition = errors.New("invalid space status transition")
	ErrVehicleMismatch   = errors.New("space is not held by this vehicle")
)

// Pool is the fixed, ordered set of spaces. Order is initialization order,
// which is also allocation priority.
type Pool []Space

// InitSpaces materializes the pool from the tariff: ids "<type>-<n>", labels
// "<prefix><nn>", grouped by vehicle type in configured order.
func InitSpaces(t pricing.Tariff) Pool {
	var pool Pool
	for _, vt := range t.VehicleTypes {
		prefix := t.Prefix(vt)
		for i := 1; i <= t.TotalSpaces[vt]; i++ {
			pool = append(pool, Space{
				ID:     types.ID(fmt.Sprintf("%s-%d", vt, i)),
				Label:  fmt.Sprintf("%s%02d", prefix, i),
				Type:   vt,
				Status: StatusFree,
			})
		}
	}
	return pool
}

func (p Pool) clone() Pool {
	return append(Pool(nil), p...)
}

func (p Pool) index(id types.ID) int {
	for i := range p {
		if p[i].ID == id {
			return i
		}
	}
	return -1
}

// Get returns the space with the given id.
func (p Pool) Get(id types.ID) (Space, error) {
	i := p.index(id)
	if i < 0 {
		return Space{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p[i], nil
}

// FirstFree selects the first free space of type vt in pool order.
func (p Pool) FirstFree(vt types.VehicleType) (Space, error) {
	for _, s := range p {
		if s.Type == vt && s.Status == StatusFree {
			return s, nil
		}
	}
	return Space{}, fmt.Errorf("%w: %s", ErrNoFreeSpace, vt)
}

// FindByVehicle returns the space currently held by vehicleID.
func (p Pool) FindByVehicle(vehicleID types.ID) (Space, bool) {
	for _, s := range p {
		if s.Status == StatusOccupied && s.VehicleID == vehicleID {
			return s, true
		}
	}
	return Space{}, false
}

// Allocate picks the first free space of type vt and occupies it for vehicleID.
func (p Pool) Allocate(vt types.VehicleType, vehicleID types.ID) (Pool, Space, error) {
	s, err := p.FirstFree(vt)
	if err != nil {
		return p, Space{}, err
	}
	next, err := p.Occupy(s.ID, vehicleID)
	if err != nil {
		return p, Space{}, err
	}
	s.Status = StatusOccupied
	s.VehicleID = vehicleID
	return next, s, nil
}

// Occupy marks a free space as held by vehicleID.
func (p Pool) Occupy(spaceID, vehicleID types.ID) (Pool, error) {
	if vehicleID == "" {
		return p, fmt.Errorf("%w: empty vehicle id", ErrVehicleMismatch)
	}
	if _, held := p.FindByVehicle(vehicleID); held {
		return p, fmt.Errorf("%w: vehicle %s already holds a space", ErrInvalidTransition, vehicleID)
	}
	return p.transition(spaceID, StatusOccupied, vehicleID)
}

// Release frees the space held by vehicleID. Releasing a space that is
// already free is a no-op.
func (p Pool) Release(spaceID, vehicleID types.ID) (Pool, error) {
	i := p.index(spaceID)
	if i < 0 {
		return p, fmt.Errorf("%w: %s", ErrNotFound, spaceID)
	}
	s := p[i]
	if s.Status == StatusFree {
		return p, nil
	}
	if s.Status != StatusOccupied || s.VehicleID != vehicleID {
		return p, fmt.Errorf("%w: %s", ErrVehicleMismatch, spaceID)
	}
	return p.transition(spaceID, StatusFree, "")
}

// ToggleBlock flips free <-> blocked. Occupied and reserved spaces are refused.
func (p Pool) ToggleBlock(spaceID types.ID) (Pool, error) {
	s, err := p.Get(spaceID)
	if err != nil {
		return p, err
	}
	if s.Status == StatusBlocked {
		return p.transition(spaceID, StatusFree, "")
	}
	if s.Status != StatusFree {
		return p, fmt.Errorf("%w: cannot block %s space", ErrInvalidTransition, s.Status)
	}
	return p.transition(spaceID, StatusBlocked, "")
}

// Reserve moves a free space to reserved.
func (p Pool) Reserve(spaceID types.ID) (Pool, error) {
	s, err := p.Get(spaceID)
	if err != nil {
		return p, err
	}
	if s.Status != StatusFree {
		return p, fmt.Errorf("%w: cannot reserve %s space", ErrInvalidTransition, s.Status)
	}
	return p.transition(spaceID, StatusReserved, "")
}

// Unreserve moves a reserved space back to free.
func (p Pool) Unreserve(spaceID types.ID) (Pool, error) {
	s, err := p.Get(spaceID)
	if err != nil {
		return p, err
	}
	if s.Status != StatusReserved {
		return p, fmt.Errorf("%w: space is %s, not reserved", ErrInvalidTransition, s.Status)
	}
	return p.transition(spaceID, StatusFree, "")
}

func (p Pool) transition(spaceID types.ID, to Status, vehicleID types.ID) (Pool, error) {
	i := p.index(spaceID)
	if i < 0 {
		return p, fmt.Errorf("%w: %s", ErrNotFound, spaceID)
	}
	if !CanTransition(p[i].Status, to) {
		return p, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p[i].Status, to)
	}
	next := p.clone()
	next[i].Status = to
	next[i].VehicleID = vehicleID
	return next, nil
}

// Stats counts spaces per vehicle type and status, in pool order of types.
func (p Pool) Stats() []Occupancy {
	var out []Occupancy
	pos := map[types.VehicleType]int{}
	for _, s := range p {
		i, ok := pos[s.Type]
		if !ok {
			i = len(out)
			pos[s.Type] = i
			out = append(out, Occupancy{Type: s.Type})
		}
		o := &out[i]
		o.Total++
		switch s.Status {
		case StatusFree:
			o.Free++
		case StatusOccupied:
			o.Occupied++
		case StatusBlocked:
			o.Blocked++
		case StatusReserved:
			o.Reserved++
		}
	}
	return out
}

// CountByStatus counts every space in the pool per status.
func (p Pool) CountByStatus() map[Status]int {
	out := map[Status]int{}
	for _, s := range p {
		out[s.Status]++
	}
	return out
}
