package brain

import (
	"concentration/internal/domain"
)

// Memory is the bot's private record of cards it has seen face up. It never holds
// anything the bot did not observe.
type Memory struct {
	// capacity bounds how many cards are remembered; zero means no limit.
	capacity int
	seen     map[int]domain.Symbol
	order    []int // oldest observation first
}

// NewMemory returns an empty memory. A positive capacity makes the bot forget its
// oldest observation when it sees one card too many.
func NewMemory(capacity int) *Memory {
	if capacity < 0 {
		capacity = 0
	}
	return &Memory{
		capacity: capacity,
		seen:     make(map[int]domain.Symbol),
	}
}

// Observe records that cardID showed symbol.
func (m *Memory) Observe(cardID int, symbol domain.Symbol) {
	if _, ok := m.seen[cardID]; ok {
		m.dropOrder(cardID)
	}
	m.seen[cardID] = symbol
	m.order = append(m.order, cardID)

	if m.capacity > 0 && len(m.order) > m.capacity {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.seen, oldest)
	}
}

// Forget drops cards that left play.
func (m *Memory) Forget(cardIDs ...int) {
	for _, id := range cardIDs {
		if _, ok := m.seen[id]; ok {
			delete(m.seen, id)
			m.dropOrder(id)
		}
	}
}

// Recall returns the remembered symbol of cardID.
func (m *Memory) Recall(cardID int) (domain.Symbol, bool) {
	s, ok := m.seen[cardID]
	return s, ok
}

// Len returns the number of remembered cards.
func (m *Memory) Len() int {
	return len(m.seen)
}

// Reset clears the memory for a new game.
func (m *Memory) Reset() {
	m.seen = make(map[int]domain.Symbol)
	m.order = nil
}

// KnownPairs returns pairs of remembered cards sharing a symbol, restricted to the
// given card ids. Pairs come out in the order of their first card in available.
func (m *Memory) KnownPairs(available []int) [][2]int {
	firstSeen := make(map[domain.Symbol]int)
	var pairs [][2]int
	for _, id := range available {
		s, ok := m.seen[id]
		if !ok {
			continue
		}
		if other, ok := firstSeen[s]; ok {
			pairs = append(pairs, [2]int{other, id})
			delete(firstSeen, s)
			continue
		}
		firstSeen[s] = id
	}
	return pairs
}

// MateOf returns a remembered card among candidates that shows the same symbol as
// cardID.
func (m *Memory) MateOf(cardID int, candidates []int) (int, bool) {
	s, ok := m.seen[cardID]
	if !ok {
		return 0, false
	}
	for _, id := range candidates {
		if id == cardID {
			continue
		}
		if other, ok := m.seen[id]; ok && other == s {
			return id, true
		}
	}
	return 0, false
}

func (m *Memory) dropOrder(cardID int) {
	for i, id := range m.order {
		if id == cardID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			return
		}
	}
}
