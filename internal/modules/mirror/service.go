// README: Asynchronous mirror of desk events into the remote Postgres schema.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
)

var (
	ErrBuildQuery = errors.New("mirror: failed to build query")
	ErrExecQuery  = errors.New("mirror: failed to execute query")
)

// DefaultBuffer is the number of events held while the database is slow.
const DefaultBuffer = 256

// DB is satisfied by *pgxpool.Pool.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Service struct {
	db      DB
	logger  *slog.Logger
	events  chan Event
	timeout time.Duration
	dropped atomic.Uint64
	applied atomic.Uint64
}

func NewService(db DB, logger *slog.Logger, buffer int) *Service {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Service{
		db:      db,
		logger:  logger,
		events:  make(chan Event, buffer),
		timeout: 10 * time.Second,
	}
}

// Offer queues ev without blocking. A full buffer drops the event.
func (s *Service) Offer(ev Event) {
	select {
	case s.events <- ev:
	default:
		s.dropped.Add(1)
		s.logger.Warn("mirror buffer full, event dropped", "kind", ev.Kind())
	}
}

// Apply writes ev in a single transaction.
func (s *Service) Apply(ctx context.Context, ev Event) error {
	stmts, err := ev.Statements()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBuildQuery, ev.Kind(), err)
	}
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		for _, st := range stmts {
			if _, err := tx.Exec(ctx, st.SQL, st.Args...); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrExecQuery, ev.Kind(), err)
			}
		}
		return nil
	})
}

// Run applies queued events until ctx is done, then applies whatever is still
// buffered. Failures are logged; the desk state stays authoritative.
func (s *Service) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.drain(ctx)
			return
		case ev := <-s.events:
			s.applyLogged(ctx, ev)
		}
	}
}

func (s *Service) drain(ctx context.Context) {
	for {
		select {
		case ev := <-s.events:
			s.applyLogged(ctx, ev)
		default:
			return
		}
	}
}

// applyLogged bounds each event by the service timeout only, so an event
// taken off the queue during shutdown is still written.
func (s *Service) applyLogged(ctx context.Context, ev Event) {
	applyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	if err := s.Apply(applyCtx, ev); err != nil {
		s.logger.Error("mirror apply failed", "kind", ev.Kind(), "error", err)
		return
	}
	s.applied.Add(1)
}

func (s *Service) Dropped() uint64 { return s.dropped.Load() }
func (s *Service) Applied() uint64 { return s.applied.Load() }
