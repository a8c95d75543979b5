package sequence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCounter struct {
	mu     sync.Mutex
	values map[string]int64
	fail   bool
}

func newMemCounter() *memCounter {
	return &memCounter{values: make(map[string]int64)}
}

func (c *memCounter) Increment(_ context.Context, tenantID uuid.UUID, docType string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return 0, errors.New("storage unavailable")
	}
	key := tenantID.String() + "/" + docType
	c.values[key]++
	return c.values[key], nil
}

func TestNextIDSequential(t *testing.T) {
	counter := newMemCounter()
	gen := NewGenerator(counter)
	tenant := uuid.New()

	first, err := gen.NextID(context.Background(), tenant, "invoice", "INV-", 4)
	require.NoError(t, err)
	second, err := gen.NextID(context.Background(), tenant, "invoice", "INV-", 4)
	require.NoError(t, err)

	assert.Equal(t, "INV-0001", first)
	assert.Equal(t, "INV-0002", second)
}

func TestNextIDIndependentPerTypeAndTenant(t *testing.T) {
	counter := newMemCounter()
	gen := NewGenerator(counter)
	tenantA := uuid.New()
	tenantB := uuid.New()

	invoiceA, err := gen.NextID(context.Background(), tenantA, "invoice", "INV-", 4)
	require.NoError(t, err)
	quoteA, err := gen.NextID(context.Background(), tenantA, "quote", "QUO-", 4)
	require.NoError(t, err)
	invoiceB, err := gen.NextID(context.Background(), tenantB, "invoice", "INV-", 4)
	require.NoError(t, err)

	assert.Equal(t, "INV-0001", invoiceA)
	assert.Equal(t, "QUO-0001", quoteA)
	assert.Equal(t, "INV-0001", invoiceB)
}

func TestNextIDConcurrentCallersGetDistinctIDs(t *testing.T) {
	counter := newMemCounter()
	gen := NewGenerator(counter)
	tenant := uuid.New()

	const n = 50
	results := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := gen.NextID(context.Background(), tenant, "invoice", "INV-", 5)
			assert.NoError(t, err)
			results <- id
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool)
	for id := range results {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
	// No gaps beyond N: the highest value issued is exactly N.
	assert.True(t, seen[fmt.Sprintf("INV-%05d", n)])
}

func TestNextIDFailsWhenCounterFails(t *testing.T) {
	counter := newMemCounter()
	counter.fail = true
	gen := NewGenerator(counter)

	_, err := gen.NextID(context.Background(), uuid.New(), "invoice", "INV-", 4)
	require.Error(t, err)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "QUO-0007", Format("QUO-", 7, 4))
	assert.Equal(t, "INV-12345", Format("INV-", 12345, 4))
}
