package batchwriter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tsu-raid/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type recordedBatch struct {
	partition string
	ops       []WriteOp
}

type fakeStore struct {
	mu      sync.Mutex
	batches []recordedBatch
	failOn  map[string]error
}

func (s *fakeStore) CommitBatch(ctx context.Context, partition string, ops []WriteOp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failOn[partition]; ok {
		return err
	}
	copied := make([]WriteOp, len(ops))
	copy(copied, ops)
	s.batches = append(s.batches, recordedBatch{partition: partition, ops: copied})
	return nil
}

func (s *fakeStore) all() []recordedBatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]recordedBatch, len(s.batches))
	copy(out, s.batches)
	return out
}

func newTestCoalescer(store BatchStore, maxBatchSize, maxOpsPerBatch int) *Coalescer {
	reg := prometheus.NewRegistry()
	m := metrics.NewRaidMetricsWithRegistry("test", reg)
	return New(store, time.Hour, maxBatchSize, maxOpsPerBatch, m, nil)
}

func TestQueueWriteMergesFields(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	c := newTestCoalescer(store, 64, 25)

	c.QueueWrite(ctx, "encounter", "inst-1", map[string]any{"state": "in_progress", "wave": 1}, false)
	c.QueueWrite(ctx, "encounter", "inst-1", map[string]any{"wave": 2}, false)
	c.QueueWrite(ctx, "encounter", "inst-1", map[string]any{"wave": 3, "boss_hp": 900}, false)

	require.Equal(t, 1, c.PendingCount())

	c.ForceFlush(ctx)

	batches := store.all()
	require.Len(t, batches, 1)
	require.Equal(t, "encounter", batches[0].partition)
	require.Len(t, batches[0].ops, 1)
	require.Equal(t, "inst-1", batches[0].ops[0].EntityID)
	// 同一字段后写覆盖先写
	require.Equal(t, 3, batches[0].ops[0].Fields["wave"])
	require.Equal(t, "in_progress", batches[0].ops[0].Fields["state"])
	require.Equal(t, 900, batches[0].ops[0].Fields["boss_hp"])
	require.Equal(t, 0, c.PendingCount())
}

func TestFlushGroupsByPartition(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	c := newTestCoalescer(store, 64, 25)

	c.QueueWrite(ctx, "encounter", "inst-1", map[string]any{"state": "completed"}, false)
	c.QueueWrite(ctx, "participant", "p-1", map[string]any{"gold": 120}, false)
	c.QueueWrite(ctx, "participant", "p-2", map[string]any{"gold": 80}, false)

	c.ForceFlush(ctx)

	batches := store.all()
	require.Len(t, batches, 2)
	require.Equal(t, "encounter", batches[0].partition)
	require.Len(t, batches[0].ops, 1)
	require.Equal(t, "participant", batches[1].partition)
	require.Len(t, batches[1].ops, 2)
}

func TestFlushChunksByMaxOps(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	c := newTestCoalescer(store, 64, 3)

	for i := 0; i < 7; i++ {
		c.QueueWrite(ctx, "participant", string(rune('a'+i)), map[string]any{"xp": i}, false)
	}

	c.ForceFlush(ctx)

	batches := store.all()
	require.Len(t, batches, 3)
	require.Len(t, batches[0].ops, 3)
	require.Len(t, batches[1].ops, 3)
	require.Len(t, batches[2].ops, 1)
}

func TestFailedChunkDropped(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{failOn: map[string]error{"encounter": errors.New("store down")}}
	c := newTestCoalescer(store, 64, 25)

	c.QueueWrite(ctx, "encounter", "inst-1", map[string]any{"state": "failed"}, false)
	c.QueueWrite(ctx, "participant", "p-1", map[string]any{"gold": 10}, false)

	c.ForceFlush(ctx)

	// 失败的分块被丢弃,其余分区照常提交,且不会重试
	batches := store.all()
	require.Len(t, batches, 1)
	require.Equal(t, "participant", batches[0].partition)
	require.Equal(t, 0, c.PendingCount())

	c.ForceFlush(ctx)
	require.Len(t, store.all(), 1)
}

func TestImmediateTriggersFlush(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	c := newTestCoalescer(store, 64, 25)
	c.Start()
	defer c.Stop(ctx)

	c.QueueWrite(ctx, "encounter", "inst-1", map[string]any{"state": "completed"}, true)

	require.Eventually(t, func() bool {
		return len(store.all()) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestMaxBatchSizeTriggersFlush(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	c := newTestCoalescer(store, 4, 25)
	c.Start()
	defer c.Stop(ctx)

	for i := 0; i < 4; i++ {
		c.QueueWrite(ctx, "participant", string(rune('a'+i)), map[string]any{"xp": i}, false)
	}

	require.Eventually(t, func() bool {
		batches := store.all()
		total := 0
		for _, b := range batches {
			total += len(b.ops)
		}
		return total == 4
	}, time.Second, 5*time.Millisecond)
}

func TestStopFlushesRemaining(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	c := newTestCoalescer(store, 64, 25)
	c.Start()

	c.QueueWrite(ctx, "encounter", "inst-1", map[string]any{"state": "expired"}, false)
	c.Stop(ctx)

	batches := store.all()
	require.Len(t, batches, 1)
	require.Equal(t, "inst-1", batches[0].ops[0].EntityID)
}

func TestFlushDurationUsesInjectedClock(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	reg := prometheus.NewRegistry()
	m := metrics.NewRaidMetricsWithRegistry("test", reg)
	c := New(store, time.Hour, 64, 25, m, nil)

	// 假时钟每次读取前进 10ms,内存提交在真实墙钟下远小于该量级
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	calls := 0
	c.clock = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return base.Add(time.Duration(calls) * 10 * time.Millisecond)
	}

	c.QueueWrite(ctx, "participant", "p1", map[string]any{"gold": int64(10)}, false)
	c.ForceFlush(ctx)

	families, err := reg.Gather()
	require.NoError(t, err)

	var sum float64
	var count uint64
	for _, mf := range families {
		if mf.GetName() != "test_writer_flush_duration_seconds" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			sum += metric.GetHistogram().GetSampleSum()
			count += metric.GetHistogram().GetSampleCount()
		}
	}
	require.EqualValues(t, 1, count)
	require.GreaterOrEqual(t, sum, 0.01)
}
