// README: Read models over the live desk state; every result is a copy.
package parking

import (
	"slices"

	"parkdesk/internal/modules/ledger"
	"parkdesk/internal/modules/plate"
	"parkdesk/internal/modules/pricing"
	"parkdesk/internal/modules/spaces"
	"parkdesk/internal/modules/subscription"
	"parkdesk/internal/snapshot"
	"parkdesk/internal/types"
)

func (s *Service) Vehicles(f ledger.Filter) []ledger.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.Plate != "" {
		f.Plate = plate.Normalize(f.Plate)
	}
	return ledger.Select(s.state.Vehicles, f)
}

func (s *Service) Vehicle(id types.ID) (ledger.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, _, ok := ledger.Find(s.state.Vehicles, id)
	if !ok {
		return ledger.Vehicle{}, ErrNotFound
	}
	return v, nil
}

func (s *Service) Payments() []ledger.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.Payments)
}

func (s *Service) Spaces() spaces.Pool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.Spaces)
}

func (s *Service) Occupancy() []spaces.Occupancy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Spaces.Stats()
}

func (s *Service) Subscriptions() []subscription.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked().Subscriptions
}

func (s *Service) Subscription(id types.ID) (subscription.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := subscription.Find(s.state.Subscriptions, id)
	if !ok {
		return subscription.Subscription{}, subscription.ErrNotFound
	}
	sub.Payments = slices.Clone(sub.Payments)
	return sub, nil
}

// Tariff returns the tariff in effect. It satisfies pricing.TariffSource.
func (s *Service) Tariff() pricing.Tariff {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return s.defaults.Clone()
	}
	return s.tariff.Clone()
}

// Snapshot returns a consistent copy of every collection, for reports and export.
func (s *Service) Snapshot() snapshot.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}
