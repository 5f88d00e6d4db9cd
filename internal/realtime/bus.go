package realtime

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/groomer-scheduler/internal/logger"
)

const defaultSubscriberBuffer = 64

// Bus fans changes out to in-process subscribers of the same salon.
type Bus struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]map[*Subscription]struct{}
	buffer int
}

func NewBus() *Bus {
	return &Bus{
		subs:   make(map[uuid.UUID]map[*Subscription]struct{}),
		buffer: defaultSubscriberBuffer,
	}
}

type Subscription struct {
	C <-chan Change

	ch      chan Change
	salonID uuid.UUID
	tables  map[Table]bool
	bus     *Bus
	once    sync.Once
}

// Subscribe registers for changes of salonID. No tables means all tables.
func (b *Bus) Subscribe(salonID uuid.UUID, tables ...Table) *Subscription {
	ch := make(chan Change, b.buffer)

	s := &Subscription{
		C:       ch,
		ch:      ch,
		salonID: salonID,
		bus:     b,
	}
	if len(tables) > 0 {
		s.tables = make(map[Table]bool, len(tables))
		for _, t := range tables {
			s.tables[t] = true
		}
	}

	b.mu.Lock()
	if b.subs[salonID] == nil {
		b.subs[salonID] = make(map[*Subscription]struct{})
	}
	b.subs[salonID][s] = struct{}{}
	b.mu.Unlock()

	return s
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		b := s.bus
		b.mu.Lock()
		delete(b.subs[s.salonID], s)
		if len(b.subs[s.salonID]) == 0 {
			delete(b.subs, s.salonID)
		}
		b.mu.Unlock()
		close(s.ch)
	})
}

func (s *Subscription) wants(t Table) bool {
	return s.tables == nil || s.tables[t]
}

func (b *Bus) Publish(ctx context.Context, changes ...Change) {
	for _, c := range changes {
		b.deliver(c)
	}
}

func (b *Bus) deliver(c Change) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for s := range b.subs[c.SalonID] {
		if !s.wants(c.Table) {
			continue
		}
		select {
		case s.ch <- c:
		default:
			// slow subscriber, it refetches on its next event
			logger.Get().Warn("realtime subscriber full, dropping change",
				zap.String("salon_id", c.SalonID.String()),
				zap.String("table", string(c.Table)),
			)
		}
	}
}

var _ Publisher = (*Bus)(nil)
