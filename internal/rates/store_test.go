package rates

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore_Empty(t *testing.T) {
	store := NewStore()

	_, ok := store.Get("USD")
	assert.False(t, ok)
	assert.Equal(t, 0, store.Snapshot().Len())
	assert.True(t, store.Snapshot().UpdatedAt().IsZero())
	assert.Empty(t, store.Snapshot().Rates())
}

func TestStore_ReplaceAllDropsMissingCodes(t *testing.T) {
	store := NewStore()
	store.ReplaceAll(map[string]float64{"USD": 1, "EUR": 0.9, "JPY": 110})

	store.ReplaceAll(map[string]float64{"USD": 1, "EUR": 0.92})

	assert.Equal(t, map[string]float64{"USD": 1, "EUR": 0.92}, store.Snapshot().Rates())
	_, ok := store.Get("JPY")
	assert.False(t, ok)
}

func TestStore_ReplaceAllCopiesInput(t *testing.T) {
	store := NewStore()
	input := map[string]float64{"USD": 1}
	store.ReplaceAll(input)

	input["USD"] = 2
	input["EUR"] = 0.9

	rate, ok := store.Get("USD")
	require.True(t, ok)
	assert.Equal(t, 1.0, rate)
	assert.Equal(t, 1, store.Snapshot().Len())
}

func TestSnapshot_RatesReturnsCopy(t *testing.T) {
	snapshot := NewSnapshot(map[string]float64{"USD": 1}, time.Unix(100, 0))

	copied := snapshot.Rates()
	copied["USD"] = 5

	rate, _ := snapshot.Get("USD")
	assert.Equal(t, 1.0, rate)
	assert.Equal(t, time.Unix(100, 0), snapshot.UpdatedAt())
}

func TestSnapshot_CodesSorted(t *testing.T) {
	snapshot := NewSnapshot(map[string]float64{"USD": 1, "AUD": 1.5, "EUR": 0.9}, time.Now())

	assert.Equal(t, []string{"AUD", "EUR", "USD"}, snapshot.Codes())
}

func TestStore_ReplaceAllStampsTime(t *testing.T) {
	store := NewStore()
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	store.ReplaceAll(map[string]float64{"USD": 1})

	assert.Equal(t, fixed, store.Snapshot().UpdatedAt())
}

// Readers must see either the old or the new table in full.
func TestStore_ConcurrentReadersSeeWholeTables(t *testing.T) {
	store := NewStore()
	tableA := makeTable("A", 1)
	tableB := makeTable("B", 2)
	store.ReplaceAll(tableA)

	const readers = 8
	const iterations = 2000

	var wg sync.WaitGroup
	errs := make(chan error, readers)

	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				snapshot := store.Snapshot()
				if err := checkUniform(snapshot); err != nil {
					errs <- err
					return
				}
			}
		}()
	}

	for j := 0; j < iterations; j++ {
		if j%2 == 0 {
			store.ReplaceAll(tableB)
		} else {
			store.ReplaceAll(tableA)
		}
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}

func makeTable(prefix string, value float64) map[string]float64 {
	table := make(map[string]float64, 50)
	for i := 0; i < 50; i++ {
		table[fmt.Sprintf("%s%02d", prefix, i)] = value
	}
	return table
}

func checkUniform(snapshot *Snapshot) error {
	codes := snapshot.Codes()
	if len(codes) != 50 {
		return fmt.Errorf("snapshot has %d codes, want 50", len(codes))
	}
	prefix := codes[0][:1]
	first, _ := snapshot.Get(codes[0])
	for _, code := range codes {
		rate, _ := snapshot.Get(code)
		if code[:1] != prefix || rate != first {
			return fmt.Errorf("mixed snapshot: %s=%v alongside %s=%v", code, rate, codes[0], first)
		}
	}
	return nil
}
