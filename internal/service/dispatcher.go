package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"sauna/internal/i18n"
	"sauna/internal/keys"
	"sauna/internal/logging"
	"sauna/internal/models"
	"sauna/internal/session"
)

// Publisher is implemented by *kafkaclient.Producer.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

// SessionFactory creates the session for a new session id.
type SessionFactory func(id, locale string) *session.Session

// DecodeTrigger parses a search trigger message. Triggers without an id get
// a fresh one.
func DecodeTrigger(_ context.Context, msg kafka.Message) (models.SearchTrigger, error) {
	var trig models.SearchTrigger
	if err := json.Unmarshal(msg.Value, &trig); err != nil {
		return trig, fmt.Errorf("failed to decode search trigger: %w", err)
	}
	if trig.Session == "" {
		return trig, errors.New("search trigger without session")
	}
	switch session.Kind(trig.Kind) {
	case session.KindInitial, session.KindArea, session.KindLocation:
	default:
		return trig, fmt.Errorf("unknown search trigger kind %q", trig.Kind)
	}
	if trig.ID == "" {
		trig.ID = uuid.NewString()
	}
	return trig, nil
}

// Dispatcher runs every trigger in its own goroutine against the session it
// names, so a newer trigger can supersede one still waiting on the live
// search. Superseded and overlapping triggers publish nothing.
//
// Sessions with no trigger in flight for longer than idleTTL are dropped the
// next time a trigger arrives. A zero idleTTL keeps sessions forever.
type Dispatcher struct {
	newSession SessionFactory
	publisher  Publisher
	logger     *zap.Logger
	idleTTL    time.Duration
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionEntry
	wg       sync.WaitGroup
}

type sessionEntry struct {
	session  *session.Session
	inFlight int
	lastSeen time.Time
}

func NewDispatcher(factory SessionFactory, publisher Publisher, idleTTL time.Duration, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		newSession: factory,
		publisher:  publisher,
		logger:     logging.OrNop(logger),
		idleTTL:    idleTTL,
		now:        time.Now,
		sessions:   make(map[string]*sessionEntry),
	}
}

// Run dispatches deliveries until the channel closes, then waits for the
// triggers still in flight.
func (d *Dispatcher) Run(ctx context.Context, deliveries <-chan Delivery[models.SearchTrigger]) {
	for del := range deliveries {
		d.Dispatch(ctx, del.Data)
	}
	d.wg.Wait()
}

func (d *Dispatcher) Dispatch(ctx context.Context, trig models.SearchTrigger) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.Handle(ctx, trig); err != nil {
			d.logger.Error("search trigger failed",
				zap.String("trigger", trig.ID),
				zap.String("session", trig.Session),
				zap.Error(err),
			)
		}
	}()
}

// acquire returns the session a trigger names and marks it busy until the
// matching release.
func (d *Dispatcher) acquire(trig models.SearchTrigger) *session.Session {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	d.evictIdle(now)
	e, ok := d.sessions[trig.Session]
	if !ok {
		e = &sessionEntry{session: d.newSession(trig.Session, i18n.DetectLocale(trig.Locale))}
		d.sessions[trig.Session] = e
	}
	e.inFlight++
	e.lastSeen = now
	return e.session
}

func (d *Dispatcher) release(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := d.sessions[id]; ok {
		e.inFlight--
		e.lastSeen = d.now()
	}
}

// evictIdle must be called with d.mu held.
func (d *Dispatcher) evictIdle(now time.Time) {
	if d.idleTTL <= 0 {
		return
	}
	for id, e := range d.sessions {
		if e.inFlight == 0 && now.Sub(e.lastSeen) > d.idleTTL {
			delete(d.sessions, id)
			d.logger.Debug("session evicted", zap.String("session", id))
		}
	}
}

// Handle runs one trigger and publishes its result.
func (d *Dispatcher) Handle(ctx context.Context, trig models.SearchTrigger) error {
	s := d.acquire(trig)
	defer d.release(trig.Session)
	if trig.UserLocation != nil && trig.UserLocation.Valid() {
		s.RecordFix(*trig.UserLocation)
	}

	var (
		out session.Outcome
		err error
	)
	switch session.Kind(trig.Kind) {
	case session.KindInitial:
		out, err = s.Bootstrap(ctx)
	case session.KindArea:
		out, err = s.SearchArea(ctx, session.Viewport{Center: trig.Center, Bounds: trig.Bounds, Zoom: trig.Zoom})
	case session.KindLocation:
		out, err = s.GoToMyLocation(ctx)
	default:
		return fmt.Errorf("unknown search trigger kind %q", trig.Kind)
	}
	if errors.Is(err, session.ErrBusy) || errors.Is(err, session.ErrStale) {
		d.logger.Info("search trigger superseded",
			zap.String("trigger", trig.ID),
			zap.String("session", trig.Session),
			zap.String("kind", trig.Kind),
			zap.Error(err),
		)
		return nil
	}
	if err != nil {
		return err
	}

	saunas := out.Saunas
	if saunas == nil {
		saunas = []models.Sauna{}
	}
	payload, err := json.Marshal(models.SearchResult{
		TriggerID:    trig.ID,
		Session:      trig.Session,
		Generation:   out.Generation,
		Center:       out.Center,
		RadiusMeters: out.RadiusMeters,
		Saunas:       saunas,
	})
	if err != nil {
		return fmt.Errorf("failed to encode search result: %w", err)
	}

	d.logger.Info("search result ready",
		zap.String("trigger", trig.ID),
		zap.String("session", trig.Session),
		zap.Uint64("generation", out.Generation),
		zap.Int("saunas", len(saunas)),
	)
	return d.publisher.Publish(ctx, keys.SessionMessage(trig.Session), payload)
}
