// File: internal/pkg/metrics/raid_metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RaidMetrics 副本奖励核心的业务指标收集器
type RaidMetrics struct {
	// 副本终态计数（按 completed/failed/expired 分组）
	EncountersTotal *prometheus.CounterVec

	// 副本时长直方图（从创建到终态）
	EncounterDuration *prometheus.HistogramVec

	// 掉落物品数（按稀有度分组）
	LootDropsTotal *prometheus.CounterVec

	// 锁定检查结果（locked/unlocked/fail_open）
	LockoutChecksTotal *prometheus.CounterVec

	// 写合并器当前待刷盘实体数
	PendingWrites *prometheus.GaugeVec

	// 刷盘耗时直方图
	FlushDuration *prometheus.HistogramVec

	// 刷盘失败后直接丢弃的块数
	DroppedChunksTotal *prometheus.CounterVec
}

// DefaultRaidMetrics 默认的业务指标实例
var DefaultRaidMetrics *RaidMetrics

// EncounterBuckets 针对副本时长优化的 buckets
// 副本预期时长: 数分钟到两小时
// 单位：秒
var EncounterBuckets = []float64{
	30,   // 30s
	60,   // 1分钟
	300,  // 5分钟
	900,  // 15分钟
	1800, // 30分钟
	3600, // 1小时
	7200, // 2小时
}

func init() {
	DefaultRaidMetrics = NewRaidMetrics("tsu")
}

// NewRaidMetrics 创建新的业务指标收集器
func NewRaidMetrics(namespace string) *RaidMetrics {
	return NewRaidMetricsWithRegistry(namespace, GetRegisterer())
}

// NewRaidMetricsWithRegistry 创建新的业务指标收集器（使用自定义注册表）
func NewRaidMetricsWithRegistry(namespace string, registerer prometheus.Registerer) *RaidMetrics {
	factory := promauto.With(registerer)

	return &RaidMetrics{
		EncountersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "raid",
				Name:      "encounters_total",
				Help:      "Total number of encounter instances by terminal state (completed/failed/expired)",
			},
			[]string{"state", "service"},
		),

		EncounterDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "raid",
				Name:      "encounter_duration_seconds",
				Help:      "Encounter duration from creation to terminal state",
				Buckets:   EncounterBuckets,
			},
			[]string{"service"},
		),

		LootDropsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "raid",
				Name:      "loot_drops_total",
				Help:      "Total number of generated items by rarity tier",
			},
			[]string{"rarity", "service"},
		),

		LockoutChecksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "raid",
				Name:      "lockout_checks_total",
				Help:      "Lockout status checks by result (locked/unlocked/fail_open)",
			},
			[]string{"result", "service"},
		),

		PendingWrites: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "writer",
				Name:      "pending_entities",
				Help:      "Current number of entities buffered in the write coalescer",
			},
			[]string{"service"},
		),

		FlushDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "writer",
				Name:      "flush_duration_seconds",
				Help:      "Write coalescer flush duration",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"service"},
		),

		DroppedChunksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "writer",
				Name:      "dropped_chunks_total",
				Help:      "Flush chunks dropped after a failed commit (no requeue by policy)",
			},
			[]string{"partition", "service"},
		),
	}
}

// RecordEncounterTerminal 记录副本终态
func (m *RaidMetrics) RecordEncounterTerminal(state string, duration time.Duration, service string) {
	service = normalizeServiceName(service)
	m.EncountersTotal.WithLabelValues(state, service).Inc()
	m.EncounterDuration.WithLabelValues(service).Observe(duration.Seconds())
}

// RecordLootDrop 记录一次掉落
func (m *RaidMetrics) RecordLootDrop(rarity string, service string) {
	m.LootDropsTotal.WithLabelValues(rarity, normalizeServiceName(service)).Inc()
}

// RecordLockoutCheck 记录一次锁定检查
func (m *RaidMetrics) RecordLockoutCheck(result string, service string) {
	m.LockoutChecksTotal.WithLabelValues(result, normalizeServiceName(service)).Inc()
}

// SetPendingWrites 更新写合并器待刷盘实体数
func (m *RaidMetrics) SetPendingWrites(count int, service string) {
	m.PendingWrites.WithLabelValues(normalizeServiceName(service)).Set(float64(count))
}

// RecordFlush 记录一次刷盘
func (m *RaidMetrics) RecordFlush(duration time.Duration, service string) {
	m.FlushDuration.WithLabelValues(normalizeServiceName(service)).Observe(duration.Seconds())
}

// RecordDroppedChunk 记录一个被丢弃的刷盘块
func (m *RaidMetrics) RecordDroppedChunk(partition string, service string) {
	m.DroppedChunksTotal.WithLabelValues(partition, normalizeServiceName(service)).Inc()
}
