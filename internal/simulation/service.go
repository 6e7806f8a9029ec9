package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pulsehq/clientpulse/internal/idgen"
	"github.com/pulsehq/clientpulse/internal/metrics"
	"github.com/pulsehq/clientpulse/internal/traces"
)

// Service owns simulation sessions and the reactive recomputation pipeline.
//
// Every parameter mutation triggers exactly one engine run. The stored result
// is updated first; display emitters and external observers are notified
// strictly afterwards, and their failures never block or corrupt the update.
type Service struct {
	store   Store
	logger  *slog.Logger
	emitter EventEmitter

	mu        sync.RWMutex
	observers []Observer
}

// NewService creates a new simulation service.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// WithEvents attaches a display emitter that receives session snapshots.
func (s *Service) WithEvents(emitter EventEmitter) *Service {
	s.emitter = emitter
	return s
}

// Subscribe registers an observer for parameter changes. Observers are
// invoked once per recomputation with the full updated parameter vector.
func (s *Service) Subscribe(obs Observer) {
	s.mu.Lock()
	s.observers = append(s.observers, obs)
	s.mu.Unlock()
}

// CreateSession starts a new session with default parameters. The result is
// precomputed so a fresh session never exposes an empty snapshot.
func (s *Service) CreateSession(ctx context.Context) (*Session, error) {
	now := time.Now()
	params := DefaultParams()
	session := &Session{
		ID:        idgen.WithPrefix("sim_"),
		Params:    params,
		Result:    Compute(params),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	metrics.RecomputationsTotal.WithLabelValues("create").Inc()
	s.trackActive(ctx)
	return session, nil
}

// Get returns the current session snapshot.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	return s.store.Get(ctx, id)
}

// UpdateParams applies a partial parameter update as a single gesture and
// recomputes the result exactly once, from the complete updated vector.
func (s *Service) UpdateParams(ctx context.Context, id string, patch ParamPatch) (*Session, error) {
	if patch.IsEmpty() {
		return nil, ErrEmptyPatch
	}

	ctx, span := traces.StartSpan(ctx, "simulation.update", traces.SessionID(id))
	defer span.End()

	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.apply(&session.Params)
	session, err = s.recompute(ctx, session, "update")
	if err != nil {
		return nil, err
	}
	span.SetAttributes(traces.RiskLevel(string(session.Result.RiskLevel)))
	return session, nil
}

// Reset returns a session to the default parameter vector.
func (s *Service) Reset(ctx context.Context, id string) (*Session, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	session.Params = DefaultParams()
	return s.recompute(ctx, session, "reset")
}

// Delete removes a session.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.trackActive(ctx)
	return nil
}

// recompute runs the engine over the session's current parameters, persists
// the new snapshot, then notifies the display emitter and observers.
func (s *Service) recompute(ctx context.Context, session *Session, trigger string) (*Session, error) {
	start := time.Now()

	session.Result = Compute(session.Params)
	session.UpdatedAt = time.Now()

	if err := s.store.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	metrics.RecomputationsTotal.WithLabelValues(trigger).Inc()
	metrics.RecomputationDuration.Observe(time.Since(start).Seconds())

	s.logger.Debug("simulation recomputed",
		"session_id", session.ID,
		"trigger", trigger,
		"churn_risk", session.Result.ChurnRisk,
		"risk_level", session.Result.RiskLevel,
	)

	s.publish(session)
	return session, nil
}

// publish fans the refreshed state out: snapshot to the display emitter,
// parameter vector to observers. Runs strictly after the store update.
func (s *Service) publish(session *Session) {
	if s.emitter != nil {
		s.safely(session.ID, func() {
			s.emitter.SimulationUpdated(session)
		})
	}

	s.mu.RLock()
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	s.mu.RUnlock()

	for _, obs := range observers {
		obs := obs
		s.safely(session.ID, func() {
			obs(session.ID, session.Params)
		})
	}
}

// safely isolates a notification callback: a panic is recovered and logged so
// one bad observer never blocks the update or the remaining observers.
func (s *Service) safely(sessionID string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			metrics.ObserverFailuresTotal.Inc()
			s.logger.Warn("simulation observer failed",
				"session_id", sessionID,
				"panic", r,
			)
		}
	}()
	fn()
}

func (s *Service) trackActive(ctx context.Context) {
	if n, err := s.store.Count(ctx); err == nil {
		metrics.ActiveSessions.Set(float64(n))
	}
}
