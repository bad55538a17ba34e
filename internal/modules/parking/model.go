// README: Desk commands, collaborator interfaces and workflow errors.
package parking

import (
	"context"
	"errors"

	"parkdesk/internal/modules/mirror"
	"parkdesk/internal/modules/pricing"
	"parkdesk/internal/modules/spaces"
	"parkdesk/internal/snapshot"
	"parkdesk/internal/types"
)

var (
	ErrDuplicateActiveEntry = errors.New("plate already has an active entry")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrSubscribedVehicle    = errors.New("plate has an active monthly subscription")
	ErrNotFound             = errors.New("vehicle not found or not parked")
	ErrUnsupportedVehicle   = errors.New("vehicle type not enabled")
	ErrInvalidRate          = errors.New("invalid rate type")
	ErrInvalidPayment       = errors.New("invalid payment method")
	ErrNotLoaded            = errors.New("parking state not loaded")
)

type EntryCommand struct {
	Plate        string
	VehicleType  types.VehicleType
	RateType     types.RateType
	HelmetNumber string
}

// ExitCommand identifies the stay by VehicleID, or by Plate when VehicleID is empty.
type ExitCommand struct {
	VehicleID types.ID
	Plate     string
	Method    types.PaymentMethod
	Convenio  bool
}

type PaySubscriptionCommand struct {
	SubscriptionID types.ID
	Method         types.PaymentMethod
}

// TariffUpdate carries the settings an admin may change after init. Nil
// fields are left as they are. Space counts are not updatable: the pool is
// fixed once materialized.
type TariffUpdate struct {
	Name                 *string
	Rates                map[types.VehicleType]pricing.Rates
	GracePeriod          *int
	GraceDisabled        *bool
	ConvenioMinimumHours *int
	MonthlySinglePayment *bool
	ReceiptEntry         *pricing.Receipt
	ReceiptExit          *pricing.Receipt
	ReceiptMonthly       *pricing.Receipt
}

// Loader reads the persisted state. *snapshot.Store implements it.
type Loader interface {
	Load(ctx context.Context) (snapshot.State, error)
}

// Persister receives a full snapshot after every committed change and must
// not block. *snapshot.Writer implements it.
type Persister interface {
	Enqueue(st snapshot.State)
}

// EventSink receives committed changes for the remote mirror and must not
// block. *mirror.Service implements it.
type EventSink interface {
	Offer(ev mirror.Event)
}

// Recorder observes desk activity. The prometheus implementation lives in
// internal/metrics.
type Recorder interface {
	Entry(vt types.VehicleType)
	Exit(vt types.VehicleType, rt types.RateType, amount int64)
	Rejected(op string, err error)
	Occupancy(stats []spaces.Occupancy)
}

type nopRecorder struct{}

func (nopRecorder) Entry(types.VehicleType)                       {}
func (nopRecorder) Exit(types.VehicleType, types.RateType, int64) {}
func (nopRecorder) Rejected(string, error)                        {}
func (nopRecorder) Occupancy([]spaces.Occupancy)                  {}

type nopPersister struct{}

func (nopPersister) Enqueue(snapshot.State) {}

type nopSink struct{}

func (nopSink) Offer(mirror.Event) {}
