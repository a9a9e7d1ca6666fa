// File: internal/pkg/metrics/resource_metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ResourceMetrics 基础设施资源指标收集器（Redis / 数据库连接池）
type ResourceMetrics struct {
	// Redis 操作计数（按命令与结果分组）
	RedisOperationsTotal *prometheus.CounterVec

	// Redis 操作耗时直方图
	RedisOperationDuration *prometheus.HistogramVec

	// 数据库连接池状态
	DBPoolOpenConnections *prometheus.GaugeVec
	DBPoolInUse           *prometheus.GaugeVec
	DBPoolIdle            *prometheus.GaugeVec
}

// DefaultResourceMetrics 默认的资源指标实例
var DefaultResourceMetrics *ResourceMetrics

func init() {
	DefaultResourceMetrics = NewResourceMetrics("tsu")
}

// NewResourceMetrics 创建新的资源指标收集器
func NewResourceMetrics(namespace string) *ResourceMetrics {
	return NewResourceMetricsWithRegistry(namespace, GetRegisterer())
}

// NewResourceMetricsWithRegistry 创建新的资源指标收集器（使用自定义注册表）
func NewResourceMetricsWithRegistry(namespace string, registerer prometheus.Registerer) *ResourceMetrics {
	factory := promauto.With(registerer)

	return &ResourceMetrics{
		RedisOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "redis",
				Name:      "operations_total",
				Help:      "Total Redis operations by command and result",
			},
			[]string{"command", "result", "service"},
		),

		RedisOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "redis",
				Name:      "operation_duration_seconds",
				Help:      "Redis operation duration",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"command", "service"},
		),

		DBPoolOpenConnections: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "db",
				Name:      "pool_open_connections",
				Help:      "Open connections in the database pool",
			},
			[]string{"service", "database"},
		),

		DBPoolInUse: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "db",
				Name:      "pool_in_use",
				Help:      "Connections currently in use",
			},
			[]string{"service", "database"},
		),

		DBPoolIdle: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "db",
				Name:      "pool_idle",
				Help:      "Idle connections in the database pool",
			},
			[]string{"service", "database"},
		),
	}
}

// RecordRedisOperation 记录一次 Redis 操作
func (m *ResourceMetrics) RecordRedisOperation(command string, success bool, duration time.Duration, service string) {
	service = normalizeServiceName(service)
	result := "ok"
	if !success {
		result = "error"
	}
	m.RedisOperationsTotal.WithLabelValues(command, result, service).Inc()
	m.RedisOperationDuration.WithLabelValues(command, service).Observe(duration.Seconds())
}

// RecordDBPoolStats 记录数据库连接池状态
func (m *ResourceMetrics) RecordDBPoolStats(service, database string, open, inUse, idle int) {
	service = normalizeServiceName(service)
	m.DBPoolOpenConnections.WithLabelValues(service, database).Set(float64(open))
	m.DBPoolInUse.WithLabelValues(service, database).Set(float64(inUse))
	m.DBPoolIdle.WithLabelValues(service, database).Set(float64(idle))
}
