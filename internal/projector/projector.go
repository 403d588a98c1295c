package projector

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/blackwell-systems/journalwatch/internal/journal"
	"github.com/blackwell-systems/journalwatch/internal/store"
)

// Store is the subset of store.Store the projector writes through.
type Store interface {
	GetSession() (*store.SessionState, error)
	UpdateSession(u store.SessionUpdate) error
	UpdateShip(u store.ShipUpdate) error
	AdjustCredits(delta int64) (int64, error)
	InsertDetections(detections []store.Detection) error
	InsertRefined(r *store.RefinedMaterial) error
	UpsertFleetCarrier(fc *store.FleetCarrier) error
	InsertStation(st *store.StationSignal) error
	InsertChat(m *store.ChatMessage) error
	GetMaterialConfig(material string) (*store.MaterialConfig, error)
}

// Notifier receives detections that match the user's tracking config.
type Notifier interface {
	Notify(d store.Detection, cfg store.MaterialConfig)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(d store.Detection, cfg store.MaterialConfig)

// Notify calls f.
func (f NotifierFunc) Notify(d store.Detection, cfg store.MaterialConfig) { f(d, cfg) }

// Option configures a Projector.
type Option func(*Projector)

// WithNotifier registers n to receive tracked detections.
func WithNotifier(n Notifier) Option {
	return func(p *Projector) { p.notifier = n }
}

type handler func(ev journal.Event) error

// Projector applies decoded journal events to the store, one at a time and
// in the order they are given.
type Projector struct {
	store    Store
	log      *logrus.Entry
	notifier Notifier
	handlers map[journal.Kind]handler
}

// New returns a Projector writing to st.
func New(st Store, logger *logrus.Logger, opts ...Option) *Projector {
	p := &Projector{
		store: st,
		log:   logger.WithField("component", "projector"),
	}
	p.handlers = map[journal.Kind]handler{
		journal.KindIdentity:    p.projectIdentity,
		journal.KindLocation:    p.projectLocation,
		journal.KindLoadout:     p.projectLoadout,
		journal.KindCargo:       p.projectCargo,
		journal.KindProspecting: p.projectProspecting,
		journal.KindRefining:    p.projectRefining,
		journal.KindSignal:      p.projectSignal,
		journal.KindChat:        p.projectChat,
		journal.KindCredits:     p.projectCredits,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Project applies ev. Unhandled kinds are a no-op. Errors identify the
// event; the caller decides whether to continue.
func (p *Projector) Project(ev journal.Event) error {
	h, ok := p.handlers[ev.Kind]
	if !ok {
		p.log.WithField("event", ev.Name).Debug("unhandled event")
		return nil
	}
	if err := h(ev); err != nil {
		return fmt.Errorf("failed to project %s at %s: %w", ev.Name, ev.Timestamp, err)
	}
	return nil
}
