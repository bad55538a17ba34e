// README: Desk workflow: entry, exit, space and subscription operations over the engine.
package parking

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"parkdesk/internal/modules/ledger"
	"parkdesk/internal/modules/mirror"
	"parkdesk/internal/modules/plate"
	"parkdesk/internal/modules/pricing"
	"parkdesk/internal/modules/seed"
	"parkdesk/internal/modules/spaces"
	"parkdesk/internal/modules/subscription"
	"parkdesk/internal/modules/ticket"
	"parkdesk/internal/snapshot"
	"parkdesk/internal/types"
)

// Deps are the optional collaborators of the service. Nil fields get no-op
// implementations; Now defaults to time.Now.
type Deps struct {
	Persister Persister
	Mirror    EventSink
	Recorder  Recorder
	Now       func() time.Time
	// Seed enables the one-time demo history; Rand drives it.
	Seed bool
	Rand *rand.Rand
}

// Service owns the live desk state. Every operation validates before it
// touches state, so a rejected call leaves all collections unchanged.
type Service struct {
	loader   Loader
	defaults pricing.Tariff
	logger   *slog.Logger
	deps     Deps

	mu     sync.Mutex
	state  snapshot.State
	tariff pricing.Tariff
	loaded bool
}

func NewService(loader Loader, defaults pricing.Tariff, logger *slog.Logger, deps Deps) *Service {
	if deps.Persister == nil {
		deps.Persister = nopPersister{}
	}
	if deps.Mirror == nil {
		deps.Mirror = nopSink{}
	}
	if deps.Recorder == nil {
		deps.Recorder = nopRecorder{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Service{loader: loader, defaults: defaults, logger: logger, deps: deps}
}

// Load reads the persisted state. A missing pool is materialized from the
// tariff and, when enabled, demo history is generated once.
func (s *Service) Load(ctx context.Context) error {
	st, err := s.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tariff := s.defaults.Clone()
	if st.Tariff != nil {
		tariff = st.Tariff.Clone()
	}
	if err := tariff.Validate(); err != nil {
		return err
	}
	if st.Spaces == nil {
		st.Spaces = spaces.InitSpaces(tariff)
		s.logger.Info("space pool initialized", "spaces", len(st.Spaces))
	}
	now := s.deps.Now()
	if !st.Seeded && s.deps.Seed {
		res, err := seed.Generate(tariff, st.Spaces, now, s.deps.Rand)
		if err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
		st.Spaces = res.Spaces
		st.Vehicles = append(st.Vehicles, res.Vehicles...)
		st.Payments = append(st.Payments, res.Payments...)
		st.Seeded = true
		s.logger.Info("demo data seeded", "vehicles", len(res.Vehicles), "payments", len(res.Payments))
	}
	st.Subscriptions, _ = subscription.RefreshAll(st.Subscriptions, now)

	s.tariff = tariff
	s.state = st
	s.loaded = true
	s.commitLocked()
	return nil
}

// commitLocked publishes the current state to persistence and metrics.
func (s *Service) commitLocked() {
	st := s.snapshotLocked()
	s.deps.Persister.Enqueue(st)
	s.deps.Recorder.Occupancy(s.state.Spaces.Stats())
}

// snapshotLocked returns a copy safe to hand to other goroutines.
func (s *Service) snapshotLocked() snapshot.State {
	t := s.tariff.Clone()
	subs := make([]subscription.Subscription, len(s.state.Subscriptions))
	for i, sub := range s.state.Subscriptions {
		sub.Payments = slices.Clone(sub.Payments)
		subs[i] = sub
	}
	return snapshot.State{
		Vehicles:      slices.Clone(s.state.Vehicles),
		Payments:      slices.Clone(s.state.Payments),
		Spaces:        slices.Clone(s.state.Spaces),
		Tariff:        &t,
		Subscriptions: subs,
		Seeded:        s.state.Seeded,
	}
}

func (s *Service) reject(op string, err error) error {
	s.deps.Recorder.Rejected(op, err)
	s.logger.Debug("operation rejected", "op", op, "error", err)
	return err
}

// RegisterEntry parks a vehicle on the first free space of its type.
func (s *Service) RegisterEntry(ctx context.Context, cmd EntryCommand) (ledger.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ledger.Vehicle{}, ErrNotLoaded
	}

	v, pool, err := s.prepareEntry(cmd)
	if err != nil {
		return ledger.Vehicle{}, s.reject("entry", err)
	}

	s.state.Spaces = pool
	s.state.Vehicles = append(s.state.Vehicles, v)
	s.commitLocked()
	s.deps.Recorder.Entry(v.Type)
	s.deps.Mirror.Offer(mirror.EntryRecorded{Vehicle: v})
	s.logger.Info("vehicle entered", "plate", v.Plate, "type", v.Type, "rate", v.RateType, "space", v.SpaceID)
	return v, nil
}

func (s *Service) prepareEntry(cmd EntryCommand) (ledger.Vehicle, spaces.Pool, error) {
	rt := cmd.RateType
	if rt == "" {
		rt = types.RateHour
	}
	if !rt.Valid() {
		return ledger.Vehicle{}, nil, fmt.Errorf("%w: %q", ErrInvalidRate, rt)
	}
	if !s.tariff.Supports(cmd.VehicleType) {
		return ledger.Vehicle{}, nil, fmt.Errorf("%w: %q", ErrUnsupportedVehicle, cmd.VehicleType)
	}
	p := plate.Normalize(cmd.Plate)
	if err := plate.Validate(p, cmd.VehicleType); err != nil {
		return ledger.Vehicle{}, nil, err
	}
	helmet := strings.TrimSpace(cmd.HelmetNumber)
	if cmd.VehicleType == types.VehicleMotorcycle && helmet == "" {
		return ledger.Vehicle{}, nil, fmt.Errorf("%w: helmet number", ErrMissingRequiredField)
	}

	now := s.deps.Now()
	sub, subscribed := subscription.FindByPlate(s.state.Subscriptions, p)
	active := subscribed && subscription.Resolve(sub, now) == subscription.StatusActive
	switch {
	case rt == types.RateMonthly && !subscribed:
		return ledger.Vehicle{}, nil, fmt.Errorf("%w: %s", subscription.ErrNotFound, p)
	case rt == types.RateMonthly && sub.VehicleType != cmd.VehicleType:
		return ledger.Vehicle{}, nil, fmt.Errorf("%w: subscription is for %s", plate.ErrTypeMismatch, sub.VehicleType)
	case rt != types.RateMonthly && active:
		return ledger.Vehicle{}, nil, fmt.Errorf("%w: %s", ErrSubscribedVehicle, p)
	}

	if _, parked := ledger.FindParked(s.state.Vehicles, p); parked {
		return ledger.Vehicle{}, nil, fmt.Errorf("%w: %s", ErrDuplicateActiveEntry, p)
	}

	id := ticket.NewID()
	pool, space, err := s.state.Spaces.Allocate(cmd.VehicleType, id)
	if err != nil {
		return ledger.Vehicle{}, nil, err
	}
	return ledger.Vehicle{
		ID:           id,
		Plate:        p,
		Type:         cmd.VehicleType,
		RateType:     rt,
		EntryTime:    now,
		SpaceID:      space.ID,
		Status:       ledger.VehicleParked,
		TicketCode:   ticket.NewTicketCode(),
		HelmetNumber: helmet,
	}, pool, nil
}

// RegisterExit charges a parked vehicle, releases its space and records the payment.
func (s *Service) RegisterExit(ctx context.Context, cmd ExitCommand) (ledger.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ledger.Payment{}, ErrNotLoaded
	}

	method := cmd.Method
	if method == "" {
		method = types.PaymentCash
	}
	if !method.Valid() {
		return ledger.Payment{}, s.reject("exit", fmt.Errorf("%w: %q", ErrInvalidPayment, method))
	}

	v, idx, err := s.parkedLocked(cmd)
	if err != nil {
		return ledger.Payment{}, s.reject("exit", err)
	}

	now := s.deps.Now()
	minutes := pricing.CalcDuration(v.EntryTime, now)
	q, err := s.quoteLocked(v, minutes, cmd.Convenio, now)
	if err != nil {
		return ledger.Payment{}, s.reject("exit", err)
	}
	pool, err := s.state.Spaces.Release(v.SpaceID, v.ID)
	if err != nil {
		return ledger.Payment{}, s.reject("exit", err)
	}

	exited := ledger.Exit(v, now, q.Convenio)
	pay := ledger.NewPayment(ticket.NewID(), exited, q, method, now)

	s.state.Spaces = pool
	s.state.Vehicles[idx] = exited
	s.state.Payments = append(s.state.Payments, pay)
	s.commitLocked()
	s.deps.Recorder.Exit(exited.Type, pay.RateType, pay.Amount)
	s.deps.Mirror.Offer(mirror.ExitRecorded{Vehicle: exited, Payment: pay})
	s.logger.Info("vehicle exited", "plate", exited.Plate, "minutes", minutes, "amount", pay.Amount, "method", method)
	return pay, nil
}

func (s *Service) parkedLocked(cmd ExitCommand) (ledger.Vehicle, int, error) {
	if cmd.VehicleID == "" {
		p := plate.Normalize(cmd.Plate)
		v, ok := ledger.FindParked(s.state.Vehicles, p)
		if !ok {
			return ledger.Vehicle{}, -1, fmt.Errorf("%w: plate %q", ErrNotFound, p)
		}
		cmd.VehicleID = v.ID
	}
	v, idx, ok := ledger.Find(s.state.Vehicles, cmd.VehicleID)
	if !ok || v.Status != ledger.VehicleParked {
		return ledger.Vehicle{}, -1, fmt.Errorf("%w: %s", ErrNotFound, cmd.VehicleID)
	}
	return v, idx, nil
}

// quoteLocked prices a stay. Monthly stays are waived while the subscription
// is active and billed by the hour otherwise.
func (s *Service) quoteLocked(v ledger.Vehicle, minutes int, convenio bool, now time.Time) (pricing.Quote, error) {
	if v.RateType != types.RateMonthly {
		return pricing.NewQuote(minutes, v.Type, v.RateType, s.tariff, convenio)
	}
	if sub, ok := subscription.FindByPlate(s.state.Subscriptions, v.Plate); ok && subscription.Resolve(sub, now) == subscription.StatusActive {
		return pricing.Waived(minutes, v.Type), nil
	}
	return pricing.NewQuote(minutes, v.Type, types.RateHour, s.tariff, convenio)
}

// Quote previews the charge for a parked vehicle as if it left now.
func (s *Service) Quote(ctx context.Context, vehicleID types.ID, convenio bool) (pricing.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, _, err := s.parkedLocked(ExitCommand{VehicleID: vehicleID})
	if err != nil {
		return pricing.Quote{}, err
	}
	now := s.deps.Now()
	return s.quoteLocked(v, pricing.CalcDuration(v.EntryTime, now), convenio, now)
}

func (s *Service) ToggleBlock(ctx context.Context, spaceID types.ID) (spaces.Space, error) {
	return s.updateSpace("toggle_block", spaceID, spaces.Pool.ToggleBlock)
}

func (s *Service) Reserve(ctx context.Context, spaceID types.ID) (spaces.Space, error) {
	return s.updateSpace("reserve", spaceID, spaces.Pool.Reserve)
}

func (s *Service) Unreserve(ctx context.Context, spaceID types.ID) (spaces.Space, error) {
	return s.updateSpace("unreserve", spaceID, spaces.Pool.Unreserve)
}

func (s *Service) updateSpace(op string, spaceID types.ID, fn func(spaces.Pool, types.ID) (spaces.Pool, error)) (spaces.Space, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return spaces.Space{}, ErrNotLoaded
	}
	pool, err := fn(s.state.Spaces, spaceID)
	if err != nil {
		return spaces.Space{}, s.reject(op, err)
	}
	s.state.Spaces = pool
	s.commitLocked()
	sp, _ := pool.Get(spaceID)
	s.logger.Info("space updated", "op", op, "space", sp.Label, "status", sp.Status)
	return sp, nil
}

func (s *Service) AddSubscription(ctx context.Context, cmd subscription.NewCommand) (subscription.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return subscription.Subscription{}, ErrNotLoaded
	}
	if !s.tariff.Supports(cmd.VehicleType) {
		return subscription.Subscription{}, s.reject("subscription_add", fmt.Errorf("%w: %q", ErrUnsupportedVehicle, cmd.VehicleType))
	}
	sub, err := subscription.New(cmd, s.tariff, s.deps.Now())
	if err != nil {
		return subscription.Subscription{}, s.reject("subscription_add", err)
	}
	subs, err := subscription.Add(s.state.Subscriptions, sub)
	if err != nil {
		return subscription.Subscription{}, s.reject("subscription_add", err)
	}
	s.state.Subscriptions = subs
	s.commitLocked()
	s.deps.Mirror.Offer(mirror.SubscriptionSaved{Subscription: sub})
	if last, ok := sub.LastPayment(); ok {
		s.deps.Mirror.Offer(mirror.SubscriptionPaid{Subscription: sub, Payment: last, Method: types.PaymentCash})
	}
	s.logger.Info("subscription added", "plate", sub.Plate, "price", sub.Price, "cut_day", sub.CutDay)
	return sub, nil
}

// PaySubscription records this month's payment. A second payment in the same
// month is rejected only when the tariff sets MonthlySinglePayment.
func (s *Service) PaySubscription(ctx context.Context, cmd PaySubscriptionCommand) (subscription.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return subscription.Subscription{}, ErrNotLoaded
	}
	method := cmd.Method
	if method == "" {
		method = types.PaymentCash
	}
	if !method.Valid() {
		return subscription.Subscription{}, s.reject("subscription_pay", fmt.Errorf("%w: %q", ErrInvalidPayment, method))
	}
	sub, ok := subscription.Find(s.state.Subscriptions, cmd.SubscriptionID)
	if !ok {
		return subscription.Subscription{}, s.reject("subscription_pay", fmt.Errorf("%w: %s", subscription.ErrNotFound, cmd.SubscriptionID))
	}
	paid, err := subscription.Pay(sub, s.deps.Now(), s.tariff.MonthlySinglePayment)
	if err != nil {
		return subscription.Subscription{}, s.reject("subscription_pay", err)
	}
	subs, err := subscription.Replace(s.state.Subscriptions, paid)
	if err != nil {
		return subscription.Subscription{}, s.reject("subscription_pay", err)
	}
	s.state.Subscriptions = subs
	s.commitLocked()
	last, _ := paid.LastPayment()
	s.deps.Mirror.Offer(mirror.SubscriptionPaid{Subscription: paid, Payment: last, Method: method})
	s.logger.Info("subscription paid", "plate", paid.Plate, "amount", last.Amount, "month", last.Month, "year", last.Year)
	return paid, nil
}

func (s *Service) DeleteSubscription(ctx context.Context, id types.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}
	subs, err := subscription.Delete(s.state.Subscriptions, id)
	if err != nil {
		return s.reject("subscription_delete", err)
	}
	s.state.Subscriptions = subs
	s.commitLocked()
	s.deps.Mirror.Offer(mirror.SubscriptionDeleted{ID: id})
	s.logger.Info("subscription deleted", "id", id)
	return nil
}

// RefreshSubscriptions recomputes every subscription status and returns how
// many changed.
func (s *Service) RefreshSubscriptions(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return 0
	}
	prev := s.state.Subscriptions
	subs, changed := subscription.RefreshAll(prev, s.deps.Now())
	if changed == 0 {
		return 0
	}
	s.state.Subscriptions = subs
	s.commitLocked()
	for i, sub := range subs {
		if sub.Status != prev[i].Status {
			s.deps.Mirror.Offer(mirror.SubscriptionSaved{Subscription: sub})
		}
	}
	s.logger.Info("subscription statuses refreshed", "changed", changed)
	return changed
}

// UpdateConfig applies an admin change to the tariff. Existing payments and
// subscription prices are not repriced.
func (s *Service) UpdateConfig(ctx context.Context, upd TariffUpdate) (pricing.Tariff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return pricing.Tariff{}, ErrNotLoaded
	}
	next := applyUpdate(s.tariff.Clone(), upd)
	if err := next.Validate(); err != nil {
		return pricing.Tariff{}, s.reject("config", err)
	}
	s.tariff = next
	s.commitLocked()
	s.deps.Mirror.Offer(mirror.TariffUpdated{Tariff: next.Clone()})
	s.logger.Info("tariff updated", "name", next.Name, "grace", next.Grace())
	return next.Clone(), nil
}

func applyUpdate(t pricing.Tariff, upd TariffUpdate) pricing.Tariff {
	if upd.Name != nil {
		t.Name = *upd.Name
	}
	for vt, rates := range upd.Rates {
		if t.Rates[vt] == nil {
			t.Rates[vt] = pricing.Rates{}
		}
		for rt, v := range rates {
			t.Rates[vt][rt] = v
		}
	}
	if upd.GracePeriod != nil {
		g := *upd.GracePeriod
		t.GracePeriod = &g
	}
	if upd.GraceDisabled != nil {
		t.GraceDisabled = *upd.GraceDisabled
	}
	if upd.ConvenioMinimumHours != nil {
		t.ConvenioMinimumHours = *upd.ConvenioMinimumHours
	}
	if upd.MonthlySinglePayment != nil {
		t.MonthlySinglePayment = *upd.MonthlySinglePayment
	}
	if upd.ReceiptEntry != nil {
		t.ReceiptEntry = *upd.ReceiptEntry
	}
	if upd.ReceiptExit != nil {
		t.ReceiptExit = *upd.ReceiptExit
	}
	if upd.ReceiptMonthly != nil {
		t.ReceiptMonthly = *upd.ReceiptMonthly
	}
	return t
}
