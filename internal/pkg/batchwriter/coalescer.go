package batchwriter

import (
	"context"
	"sync"
	"time"

	"tsu-raid/internal/pkg/log"
	"tsu-raid/internal/pkg/metrics"
)

// WriteOp 单个实体的合并写入操作。
type WriteOp struct {
	EntityID string
	Fields   map[string]any
}

// BatchStore 批量提交的目标存储。每次调用提交同一分区内的一批操作，
// 操作数不会超过构造时给定的 maxOpsPerBatch。
type BatchStore interface {
	CommitBatch(ctx context.Context, partition string, ops []WriteOp) error
}

type writeKey struct {
	partition string
	entityID  string
}

type pendingWrite struct {
	fields   map[string]any
	queuedAt time.Time
}

// Coalescer 将高频的小粒度状态写入合并为定期批量提交,
// 同一实体同一字段后写覆盖先写,落库只保留最终值。
type Coalescer struct {
	interval       time.Duration
	maxBatchSize   int
	maxOpsPerBatch int
	store          BatchStore
	metrics        *metrics.RaidMetrics
	logger         log.Logger
	service        string
	clock          func() time.Time

	mu      sync.Mutex
	pending map[writeKey]*pendingWrite
	order   []writeKey

	flushCh chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New 返回 Coalescer 实例。interval 为周期刷写间隔,
// maxBatchSize 为触发提前刷写的待写实体数, maxOpsPerBatch 为单次提交的操作上限。
func New(store BatchStore, interval time.Duration, maxBatchSize, maxOpsPerBatch int, m *metrics.RaidMetrics, logger log.Logger) *Coalescer {
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	if maxBatchSize <= 0 {
		maxBatchSize = 64
	}
	if maxOpsPerBatch <= 0 {
		maxOpsPerBatch = 25
	}
	if m == nil {
		m = metrics.DefaultRaidMetrics
	}
	if logger == nil {
		logger = log.GetLogger()
	}
	return &Coalescer{
		interval:       interval,
		maxBatchSize:   maxBatchSize,
		maxOpsPerBatch: maxOpsPerBatch,
		store:          store,
		metrics:        m,
		logger:         logger.With("component", "batch_writer"),
		service:        metrics.GetServiceName(),
		clock:          time.Now,
		pending:        make(map[writeKey]*pendingWrite),
		flushCh:        make(chan struct{}, 1),
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// Start 启动后台刷写循环。
func (c *Coalescer) Start() {
	go c.loop()
}

// Stop 停止后台循环并同步刷写剩余的待写数据。
func (c *Coalescer) Stop(ctx context.Context) {
	close(c.stopCh)
	<-c.doneCh
	c.ForceFlush(ctx)
}

// QueueWrite 排队一次实体状态写入。同一实体的多次排队按字段合并,
// 后到的字段值覆盖先到的。immediate 为 true 时立即触发一次刷写。
func (c *Coalescer) QueueWrite(ctx context.Context, partition, entityID string, fields map[string]any, immediate bool) {
	if partition == "" || entityID == "" || len(fields) == 0 {
		return
	}

	key := writeKey{partition: partition, entityID: entityID}

	c.mu.Lock()
	pw, ok := c.pending[key]
	if !ok {
		pw = &pendingWrite{
			fields:   make(map[string]any, len(fields)),
			queuedAt: c.clock(),
		}
		c.pending[key] = pw
		c.order = append(c.order, key)
	}
	for k, v := range fields {
		pw.fields[k] = v
	}
	count := len(c.pending)
	c.mu.Unlock()

	c.metrics.SetPendingWrites(count, c.service)

	if immediate || count >= c.maxBatchSize {
		c.requestFlush()
	}
}

// ForceFlush 同步刷写所有待写数据,用于优雅停机。
func (c *Coalescer) ForceFlush(ctx context.Context) {
	c.flush(ctx)
}

// PendingCount 返回当前待写实体数。
func (c *Coalescer) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Coalescer) requestFlush() {
	select {
	case c.flushCh <- struct{}{}:
	default:
	}
}

func (c *Coalescer) loop() {
	defer close(c.doneCh)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.flush(context.Background())
		case <-c.flushCh:
			c.flush(context.Background())
		case <-c.stopCh:
			return
		}
	}
}

// flush 取出全部待写数据,按分区分组并分块提交。
// 提交失败的分块只记录日志与指标后丢弃,周期性落库允许丢失单次快照。
func (c *Coalescer) flush(ctx context.Context) {
	c.mu.Lock()
	if len(c.pending) == 0 {
		c.mu.Unlock()
		return
	}
	drained := c.pending
	order := c.order
	c.pending = make(map[writeKey]*pendingWrite)
	c.order = nil
	c.mu.Unlock()

	c.metrics.SetPendingWrites(0, c.service)

	// 按分区分组,保持入队顺序
	partitions := make(map[string][]WriteOp)
	var partOrder []string
	for _, key := range order {
		pw := drained[key]
		if _, ok := partitions[key.partition]; !ok {
			partOrder = append(partOrder, key.partition)
		}
		partitions[key.partition] = append(partitions[key.partition], WriteOp{
			EntityID: key.entityID,
			Fields:   pw.fields,
		})
	}

	start := c.clock()
	for _, partition := range partOrder {
		ops := partitions[partition]
		for len(ops) > 0 {
			chunk := ops
			if len(chunk) > c.maxOpsPerBatch {
				chunk = chunk[:c.maxOpsPerBatch]
			}
			ops = ops[len(chunk):]

			if err := c.store.CommitBatch(ctx, partition, chunk); err != nil {
				c.metrics.RecordDroppedChunk(partition, c.service)
				c.logger.ErrorContext(ctx, "批量提交失败,丢弃分块",
					log.String("partition", partition),
					log.Int("ops", len(chunk)),
					log.Any("error", err))
				continue
			}

			log.LogStoreOperation(ctx, "commit_batch", partition, len(chunk), c.clock().Sub(start).Milliseconds(), nil)
		}
	}

	c.metrics.RecordFlush(c.clock().Sub(start), c.service)
}
