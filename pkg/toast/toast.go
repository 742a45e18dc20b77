package toast

import (
	"sync"
	"time"

	"github.com/daypanel/daypanel/internal/utils"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Kind selects the toast styling.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

const (
	DefaultCapacity = 3
	DefaultTTL      = 3000 * time.Millisecond
)

// Toast is one transient status message.
type Toast struct {
	Id        string
	Kind      Kind
	Message   string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Queue is a bounded FIFO of live toasts. Enqueueing beyond capacity evicts
// the oldest; every toast self-expires after the TTL unless evicted first.
type Queue struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	clock    utils.Clock
	toasts   []Toast
}

func NewQueue(capacity int, ttl time.Duration, clock utils.Clock) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Queue{capacity: capacity, ttl: ttl, clock: clock}
}

// Push enqueues a toast, evicting the oldest live one when at capacity.
// An evicted toast simply drops out of the next Active listing; the
// presenter picks that up on its poll.
func (q *Queue) Push(kind Kind, message string) Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.prune()

	now := q.clock.Now()
	t := Toast{
		Id:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(q.ttl),
	}

	if len(q.toasts) >= q.capacity {
		log.Debugf("toast queue full, evicting %s", q.toasts[0].Id)
		q.toasts = q.toasts[1:]
	}

	q.toasts = append(q.toasts, t)
	return t
}

// Active returns the live toasts in arrival order, dropping expired ones.
func (q *Queue) Active() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.prune()
	active := make([]Toast, len(q.toasts))
	copy(active, q.toasts)
	return active
}

// Dismiss removes a toast by id before it expires.
func (q *Queue) Dismiss(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.prune()
	for i := range q.toasts {
		if q.toasts[i].Id == id {
			q.toasts = append(q.toasts[:i], q.toasts[i+1:]...)
			return true
		}
	}
	return false
}

func (q *Queue) prune() {
	now := q.clock.Now()
	live := q.toasts[:0]
	for _, t := range q.toasts {
		if t.ExpiresAt.After(now) {
			live = append(live, t)
		}
	}
	q.toasts = live
}
