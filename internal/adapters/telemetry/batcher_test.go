//nolint:testpackage // Exercising flush internals directly
package telemetry

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flushRecorder struct {
	mu     sync.Mutex
	chunks [][]byte
}

func (f *flushRecorder) record(data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chunks = append(f.chunks, data)
}

func (f *flushRecorder) joined() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []byte
	for _, c := range f.chunks {
		all = append(all, c...)
	}
	return string(all)
}

func (f *flushRecorder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.chunks)
}

func TestBatchProcessor_SizeLimitFlush(t *testing.T) {
	rec := &flushRecorder{}
	bp := NewBatchProcessor(8, time.Hour, rec.record)
	defer func() {
		_ = bp.Close()
	}()

	_, err := bp.Write([]byte("12345678"))
	require.NoError(t, err)

	assert.Equal(t, 1, rec.count())
	assert.Equal(t, "12345678", rec.joined())
}

func TestBatchProcessor_TimeLimitFlush(t *testing.T) {
	rec := &flushRecorder{}
	bp := NewBatchProcessor(1<<20, 20*time.Millisecond, rec.record)
	defer func() {
		_ = bp.Close()
	}()

	_, err := bp.Write([]byte("slow drip"))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return rec.joined() == "slow drip"
	}, time.Second, 5*time.Millisecond)
}

func TestBatchProcessor_CloseFlushesRemainder(t *testing.T) {
	rec := &flushRecorder{}
	bp := NewBatchProcessor(1<<20, time.Hour, rec.record)

	_, err := bp.Write([]byte("pending"))
	require.NoError(t, err)
	require.NoError(t, bp.Close())

	assert.Equal(t, "pending", rec.joined())

	// Writes after Close fail, a second Close is a no-op.
	_, err = bp.Write([]byte("late"))
	assert.Error(t, err)
	assert.NoError(t, bp.Close())
}
