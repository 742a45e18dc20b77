package render

import (
	"sync"
	"time"
)

// ViewState is the coarse panel state the frontend switches on.
type ViewState string

const (
	ViewLoading ViewState = "loading"
	ViewReady   ViewState = "ready"
	ViewEmpty   ViewState = "empty"
	ViewError   ViewState = "error"
)

// Snapshot is what the frontend pulls to draw the panel.
type Snapshot struct {
	State        ViewState
	ErrorMessage string
	Date         time.Time
	Cards        []Card
	NowOffset    *float64
	// Version increases on every visual mutation so the frontend can skip
	// unchanged pulls.
	Version uint64
}

// Surface is the in-memory Presenter implementation behind the HTTP frame
// endpoint: the renderer draws into it and the panel frontend polls it.
type Surface struct {
	mu           sync.RWMutex
	state        ViewState
	errorMessage string
	date         time.Time
	cards        []Card
	index        map[string]int
	nowOffset    *float64
	version      uint64

	fullRenders int
	patches     int
	removals    int
}

func NewSurface() *Surface {
	return &Surface{state: ViewLoading, index: map[string]int{}}
}

func (s *Surface) ShowFrame(date time.Time, cards []Card, nowOffset *float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.date = date
	s.cards = cards
	s.index = make(map[string]int, len(cards))
	for i, card := range cards {
		s.index[card.EventId] = i
	}
	s.nowOffset = nowOffset
	s.state = ViewReady
	if len(cards) == 0 {
		s.state = ViewEmpty
	}
	s.errorMessage = ""
	s.fullRenders++
	s.version++
}

// PatchCard mutates only the card's geometry and text in place, leaving the
// rest of its DOM-equivalent state untouched.
func (s *Surface) PatchCard(card Card) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[card.EventId]
	if !ok {
		return false
	}
	existing := &s.cards[i]
	existing.Top = card.Top
	existing.Height = card.Height
	existing.TimeLabel = card.TimeLabel
	existing.Title = card.Title
	existing.Location = card.Location
	s.patches++
	s.version++
	return true
}

func (s *Surface) RemoveCard(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.cards = append(s.cards[:i], s.cards[i+1:]...)
	s.index = make(map[string]int, len(s.cards))
	for j, card := range s.cards {
		s.index[card.EventId] = j
	}
	if len(s.cards) == 0 && s.state == ViewReady {
		s.state = ViewEmpty
	}
	s.removals++
	s.version++
	return true
}

// PreviewCard applies transient gesture geometry to a card without counting
// as a reconciliation mutation. The next frame or patch overwrites it.
func (s *Surface) PreviewCard(id string, top, height float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.cards[i].Top = top
	s.cards[i].Height = height
	s.version++
	return true
}

// SetLoading marks a visible (user-initiated) fetch in progress. Silent
// background refreshes never call this.
func (s *Surface) SetLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = ViewLoading
	s.errorMessage = ""
	s.version++
}

func (s *Surface) SetError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = ViewError
	s.errorMessage = message
	s.version++
}

func (s *Surface) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cards := make([]Card, len(s.cards))
	copy(cards, s.cards)
	return Snapshot{
		State:        s.state,
		ErrorMessage: s.errorMessage,
		Date:         s.date,
		Cards:        cards,
		NowOffset:    s.nowOffset,
		Version:      s.version,
	}
}

// MutationCount is the number of reconciliation mutations applied (full
// renders, patches, removals). Used to verify render idempotence.
func (s *Surface) MutationCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fullRenders + s.patches + s.removals
}

// Card returns the rendered card for an event id.
func (s *Surface) Card(id string) (Card, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return Card{}, false
	}
	return s.cards[i], true
}
