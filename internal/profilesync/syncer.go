// Package profilesync mirrors newly created auth users into the profile table.
package profilesync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/PratikDhanave/profile-sync-service/internal/logging"
	"github.com/PratikDhanave/profile-sync-service/internal/models"
)

// EventInsert is the only event type that produces a profile.
const EventInsert = "INSERT"

// Response bodies. Callers of the webhook match on these strings.
const (
	MsgOnlyInsert       = "Only INSERT events are handled"
	MsgMissingUser      = "Missing user in session"
	MsgInvalidJSON      = "Invalid JSON payload"
	MsgCreated          = "User profile created"
	MsgMethodNotAllowed = "Method not allowed"
	storeErrorPrefix    = "Error: "
)

var (
	// ErrShapeMismatch means the event was not an INSERT.
	ErrShapeMismatch = errors.New("event is not INSERT")
	// ErrMalformedInput means the payload could not yield a profile.
	ErrMalformedInput = errors.New("malformed input")
)

// ProfileWriter persists a single profile row. Implementations must report
// failures through an error whose message is safe to relay to the caller.
type ProfileWriter interface {
	InsertProfile(ctx context.Context, rec models.ProfileRecord) error
}

// Result is the transport-neutral outcome of one webhook invocation.
type Result struct {
	Status int
	Body   string
	Err    error
}

// Syncer turns auth events into profile rows. It holds no per-request state
// and is safe for concurrent use.
type Syncer struct {
	store   ProfileWriter
	logger  *zap.Logger
	timeout time.Duration
	metrics *Metrics
}

// Option customises a Syncer.
type Option func(*Syncer)

// WithTimeout bounds each store write.
func WithTimeout(d time.Duration) Option {
	return func(s *Syncer) { s.timeout = d }
}

// WithMetrics records outcomes on m.
func WithMetrics(m *Metrics) Option {
	return func(s *Syncer) { s.metrics = m }
}

// New wires a Syncer around an already constructed store client.
func New(store ProfileWriter, logger *zap.Logger, opts ...Option) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Syncer{store: store, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// envelope is decoded first so the event type is checked before the session
// body is looked at.
type envelope struct {
	Event   string          `json:"event"`
	Session json.RawMessage `json:"session"`
}

// SyncJSON decodes a raw webhook body and syncs it. The session is only
// decoded for INSERT events; anything else is rejected on the event alone.
func (s *Syncer) SyncJSON(ctx context.Context, body []byte) Result {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return s.undecodable(ctx, err)
	}
	if env.Event != EventInsert {
		return s.ignore(ctx, env.Event)
	}

	ev := models.AuthEvent{Event: env.Event}
	if len(env.Session) > 0 {
		if err := json.Unmarshal(env.Session, &ev.Session); err != nil {
			return s.undecodable(ctx, err)
		}
	}
	return s.Sync(ctx, ev)
}

func (s *Syncer) undecodable(ctx context.Context, err error) Result {
	logging.FromContext(ctx, s.logger).Warn("rejecting undecodable payload", zap.Error(err))
	return s.finish(outcomeMalformed, Result{
		Status: http.StatusBadRequest,
		Body:   MsgInvalidJSON,
		Err:    fmt.Errorf("%w: %v", ErrMalformedInput, err),
	})
}

func (s *Syncer) ignore(ctx context.Context, event string) Result {
	logging.FromContext(ctx, s.logger).Debug("ignoring non-insert event", zap.String("event", event))
	return s.finish(outcomeIgnored, Result{
		Status: http.StatusBadRequest,
		Body:   MsgOnlyInsert,
		Err:    ErrShapeMismatch,
	})
}

// Sync creates a profile for an INSERT event. It performs at most one write and
// never retries; a store failure is reported as a 500 carrying the store message.
func (s *Syncer) Sync(ctx context.Context, ev models.AuthEvent) Result {
	log := logging.FromContext(ctx, s.logger)

	if ev.Event != EventInsert {
		return s.ignore(ctx, ev.Event)
	}

	user := ev.Session.User
	if user == nil || user.ID == "" {
		log.Warn("insert event without session user")
		return s.finish(outcomeMalformed, Result{
			Status: http.StatusBadRequest,
			Body:   MsgMissingUser,
			Err:    fmt.Errorf("%w: session.user.id missing", ErrMalformedInput),
		})
	}

	rec := models.ProfileFromUser(*user)
	log = log.With(zap.String("user_id", rec.ID))

	if err := s.insert(ctx, rec); err != nil {
		log.Error("profile insert failed", zap.Error(err))
		return s.finish(outcomeStoreError, Result{
			Status: http.StatusInternalServerError,
			Body:   storeErrorPrefix + err.Error(),
			Err:    err,
		})
	}

	log.Info("profile created")
	return s.finish(outcomeCreated, Result{Status: http.StatusOK, Body: MsgCreated})
}

func (s *Syncer) insert(ctx context.Context, rec models.ProfileRecord) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	err := s.store.InsertProfile(ctx, rec)
	if s.metrics != nil {
		s.metrics.insertDuration.Observe(time.Since(start).Seconds())
	}
	return err
}

func (s *Syncer) finish(outcome string, r Result) Result {
	if s.metrics != nil {
		s.metrics.events.WithLabelValues(outcome).Inc()
	}
	return r
}
