// README: Namespaced JSON collections (vehicles, payments, spaces, config, subscriptions) over a KV.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"parkdesk/internal/modules/ledger"
	"parkdesk/internal/modules/pricing"
	"parkdesk/internal/modules/spaces"
	"parkdesk/internal/modules/subscription"
)

const DefaultNamespace = "parking_system"

const (
	keyVehicles      = "vehicles"
	keyPayments      = "payments"
	keySpaces        = "spaces"
	keyConfig        = "config"
	keySubscriptions = "monthly_subs"
	keySeeded        = "seeded"
)

// State is everything the desk persists. A nil Spaces or Tariff means the
// collection was never written.
type State struct {
	Vehicles      []ledger.Vehicle
	Payments      []ledger.Payment
	Spaces        spaces.Pool
	Tariff        *pricing.Tariff
	Subscriptions []subscription.Subscription
	Seeded        bool
}

type Store struct {
	kv        KV
	namespace string
}

func NewStore(kv KV, namespace string) *Store {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Store{kv: kv, namespace: namespace}
}

// Key returns the storage key of a collection, e.g. "parking_system_vehicles".
func (s *Store) Key(collection string) string {
	return s.namespace + "_" + collection
}

func (s *Store) Load(ctx context.Context) (State, error) {
	var st State
	var tariff pricing.Tariff
	fields := []struct {
		key string
		dst any
		ok  func()
	}{
		{keyVehicles, &st.Vehicles, nil},
		{keyPayments, &st.Payments, nil},
		{keySpaces, &st.Spaces, nil},
		{keyConfig, &tariff, func() { st.Tariff = &tariff }},
		{keySubscriptions, &st.Subscriptions, nil},
		{keySeeded, &st.Seeded, nil},
	}
	for _, f := range fields {
		found, err := s.read(ctx, f.key, f.dst)
		if err != nil {
			return State{}, err
		}
		if found && f.ok != nil {
			f.ok()
		}
	}
	return st, nil
}

func (s *Store) read(ctx context.Context, collection string, dst any) (bool, error) {
	raw, err := s.kv.Get(ctx, s.Key(collection))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", s.Key(collection), err)
	}
	return true, nil
}

// Save writes every collection. Collections are written independently, so a
// failure can leave the store with a mix of old and new collections.
func (s *Store) Save(ctx context.Context, st State) error {
	if err := s.write(ctx, keyVehicles, nonNil(st.Vehicles)); err != nil {
		return err
	}
	if err := s.write(ctx, keyPayments, nonNil(st.Payments)); err != nil {
		return err
	}
	if st.Spaces != nil {
		if err := s.write(ctx, keySpaces, st.Spaces); err != nil {
			return err
		}
	}
	if st.Tariff != nil {
		if err := s.write(ctx, keyConfig, st.Tariff); err != nil {
			return err
		}
	}
	if err := s.write(ctx, keySubscriptions, nonNil(st.Subscriptions)); err != nil {
		return err
	}
	return s.write(ctx, keySeeded, st.Seeded)
}

func (s *Store) write(ctx context.Context, collection string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.Key(collection), err)
	}
	return s.kv.Put(ctx, s.Key(collection), raw)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
