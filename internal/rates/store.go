package rates

import (
	"maps"
	"slices"
	"sync/atomic"
	"time"
)

// Lookup resolves a currency code to its rate against the upstream base currency.
type Lookup interface {
	Get(code string) (float64, bool)
}

// Snapshot is an immutable exchange rate table. A Snapshot is never modified
// after construction, so it can be shared freely between goroutines.
type Snapshot struct {
	rates     map[string]float64
	updatedAt time.Time
}

// NewSnapshot copies rates into a new immutable table.
func NewSnapshot(rates map[string]float64, updatedAt time.Time) *Snapshot {
	return &Snapshot{
		rates:     maps.Clone(rates),
		updatedAt: updatedAt,
	}
}

// Get returns the rate for code.
func (snapshot *Snapshot) Get(code string) (float64, bool) {
	rate, ok := snapshot.rates[code]
	return rate, ok
}

// Len returns the number of rates in the table.
func (snapshot *Snapshot) Len() int {
	return len(snapshot.rates)
}

// UpdatedAt returns when the table was installed. Zero for the initial empty table.
func (snapshot *Snapshot) UpdatedAt() time.Time {
	return snapshot.updatedAt
}

// Rates returns a copy of the table.
func (snapshot *Snapshot) Rates() map[string]float64 {
	if snapshot.rates == nil {
		return map[string]float64{}
	}
	return maps.Clone(snapshot.rates)
}

// Codes returns the codes present in the table, sorted.
func (snapshot *Snapshot) Codes() []string {
	return slices.Sorted(maps.Keys(snapshot.rates))
}

// Store holds the current exchange rate table. Readers load the current
// snapshot without locking; ReplaceAll swaps in a new snapshot wholesale.
type Store struct {
	current atomic.Pointer[Snapshot]
	now     func() time.Time
}

// NewStore creates a store holding an empty table.
func NewStore() *Store {
	store := &Store{now: time.Now}
	store.current.Store(&Snapshot{rates: map[string]float64{}})
	return store
}

// Get returns the current rate for code.
func (store *Store) Get(code string) (float64, bool) {
	return store.Snapshot().Get(code)
}

// Snapshot returns the table currently in effect.
func (store *Store) Snapshot() *Snapshot {
	return store.current.Load()
}

// ReplaceAll discards the current table and installs a copy of newRates.
// Codes absent from newRates are dropped.
func (store *Store) ReplaceAll(newRates map[string]float64) {
	store.current.Store(NewSnapshot(newRates, store.now()))
}

// Convert converts amount using the table currently in effect.
func (store *Store) Convert(amount float64, from, to string) float64 {
	return Convert(amount, from, to, store.Snapshot())
}

var _ Converter = (*Store)(nil)
