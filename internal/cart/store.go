package cart

import (
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jafarshop/feedshop/internal/domain"
)

// Snapshot is an immutable view of the store after a mutation. Version moves
// on every mutation; ItemsVersion and BuyNowVersion move only when the cart
// lines or the buy-now slot change.
type Snapshot struct {
	Version       uint64            `json:"version"`
	ItemsVersion  uint64            `json:"items_version"`
	BuyNowVersion uint64            `json:"buy_now_version"`
	Items         []domain.CartItem `json:"items"`
	BuyNow        *domain.CartItem  `json:"buy_now"`
	Total         decimal.Decimal   `json:"total"`
	Count         int               `json:"count"`
}

// Store holds the cart of one session and the separate buy-now slot.
// It is safe for concurrent use.
type Store struct {
	mu            sync.RWMutex
	items         []domain.CartItem
	buyNow        *domain.CartItem
	version       uint64
	itemsVersion  uint64
	buyNowVersion uint64

	subsMu sync.Mutex
	subs   map[int]chan Snapshot
	nextID int

	logger *zap.Logger
}

// NewStore creates an empty cart store
func NewStore(logger *zap.Logger) *Store {
	return &Store{
		subs:   make(map[int]chan Snapshot),
		logger: logger,
	}
}

// Add merges item into the line with the same product and variant, or appends
// a new line. Quantities below 1 count as 1.
func (s *Store) Add(item domain.CartItem, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	s.mutate(func() {
		s.itemsVersion++
		for i := range s.items {
			if s.items[i].SameLine(item.ProductID, item.VariantID) {
				s.items[i].Quantity += quantity
				return
			}
		}
		item.Quantity = quantity
		s.items = append(s.items, item)
	})
}

// Remove deletes the matching line. Unknown lines are ignored.
func (s *Store) Remove(productID, variantID string) {
	s.mutate(func() {
		for i := range s.items {
			if s.items[i].SameLine(productID, variantID) {
				s.items = append(s.items[:i], s.items[i+1:]...)
				s.itemsVersion++
				return
			}
		}
	})
}

// SetQuantity overwrites the quantity of an existing line; below 1 removes it
func (s *Store) SetQuantity(productID, variantID string, quantity int) {
	if quantity < 1 {
		s.Remove(productID, variantID)
		return
	}

	s.mutate(func() {
		for i := range s.items {
			if s.items[i].SameLine(productID, variantID) {
				s.items[i].Quantity = quantity
				s.itemsVersion++
				return
			}
		}
	})
}

// Clear empties the cart. The buy-now slot is left alone.
func (s *Store) Clear() {
	s.mutate(func() {
		s.items = nil
		s.itemsVersion++
	})
}

// ClearIfVersion empties the cart only if its lines are still at
// itemsVersion
func (s *Store) ClearIfVersion(itemsVersion uint64) bool {
	return s.mutateIf(func() bool {
		if s.itemsVersion != itemsVersion {
			return false
		}
		s.items = nil
		s.itemsVersion++
		return true
	})
}

// SetBuyNow replaces the buy-now slot
func (s *Store) SetBuyNow(item domain.CartItem) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	s.mutate(func() {
		s.buyNow = &item
		s.buyNowVersion++
	})
}

// SetBuyNowIfEmpty fills the buy-now slot unless it is already taken
func (s *Store) SetBuyNowIfEmpty(item domain.CartItem) bool {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	return s.mutateIf(func() bool {
		if s.buyNow != nil {
			return false
		}
		s.buyNow = &item
		s.buyNowVersion++
		return true
	})
}

// ClearBuyNow empties the buy-now slot
func (s *Store) ClearBuyNow() {
	s.mutate(func() {
		s.buyNow = nil
		s.buyNowVersion++
	})
}

// ClearBuyNowIfVersion empties the buy-now slot only if it is still at
// buyNowVersion
func (s *Store) ClearBuyNowIfVersion(buyNowVersion uint64) bool {
	return s.mutateIf(func() bool {
		if s.buyNowVersion != buyNowVersion {
			return false
		}
		s.buyNow = nil
		s.buyNowVersion++
		return true
	})
}

// Items returns a copy of the cart lines
func (s *Store) Items() []domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyItems(s.items)
}

// BuyNow returns a copy of the buy-now slot, or nil
func (s *Store) BuyNow() *domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.buyNow == nil {
		return nil
	}
	item := *s.buyNow
	return &item
}

// Total is the sum of (sale price or price) * quantity over the cart lines
func (s *Store) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return total(s.items)
}

// Count is the number of units in the cart
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return count(s.items)
}

// Snapshot returns the current state
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel that receives a snapshot after every mutation,
// and a func that stops the subscription. The channel holds only the latest
// snapshot; a slow reader skips intermediate versions.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subsMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (s *Store) mutate(fn func()) {
	s.mutateIf(func() bool {
		fn()
		return true
	})
}

// mutateIf applies fn under the write lock and publishes only if fn reports
// a change
func (s *Store) mutateIf(fn func() bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !fn() {
		return false
	}
	s.version++
	// broadcast under the write lock so subscribers see versions in order
	s.broadcast(s.snapshotLocked())
	return true
}

func (s *Store) broadcast(snap Snapshot) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	for id, ch := range s.subs {
		// drop the stale snapshot if the reader has not taken it yet
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
			s.logger.Debug("Cart subscriber busy, snapshot skipped",
				zap.Int("subscriber", id),
				zap.Uint64("version", snap.Version),
			)
		}
	}
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Version:       s.version,
		ItemsVersion:  s.itemsVersion,
		BuyNowVersion: s.buyNowVersion,
		Items:         copyItems(s.items),
		Total:         total(s.items),
		Count:         count(s.items),
	}
	if s.buyNow != nil {
		item := *s.buyNow
		snap.BuyNow = &item
	}
	return snap
}

func copyItems(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, len(items))
	copy(out, items)
	return out
}

func total(items []domain.CartItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}

func count(items []domain.CartItem) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}
