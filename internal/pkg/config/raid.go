package config

import "time"

// RaidConfig 副本奖励核心的运行配置
// 全部来自环境变量，带开发环境默认值。
type RaidConfig struct {
	// 副本配置文件路径（为空时使用内置种子数据）
	CatalogPath string

	// 副本实例 TTL（从创建起算）
	InstanceTTL time.Duration
	// 终态实例在内存中的保留窗口
	RetentionWindow time.Duration
	// 锁定窗口（反复刷奖励的冷却期）
	LockoutWindow time.Duration

	// 写合并器参数
	BatchInterval time.Duration
	MaxBatchSize  int
	// 持久层单次批量提交的最大操作数
	StoreMaxOpsPerBatch int
}

// LoadRaidConfig 从环境变量加载配置
func LoadRaidConfig() RaidConfig {
	return RaidConfig{
		CatalogPath:         GetEnvOrDefault("RAID_CATALOG_PATH", ""),
		InstanceTTL:         GetEnvDuration("RAID_INSTANCE_TTL", 2*time.Hour),
		RetentionWindow:     GetEnvDuration("RAID_RETENTION_WINDOW", 10*time.Minute),
		LockoutWindow:       GetEnvDuration("RAID_LOCKOUT_WINDOW", 7*24*time.Hour),
		BatchInterval:       GetEnvDuration("RAID_BATCH_INTERVAL", 200*time.Millisecond),
		MaxBatchSize:        GetEnvInt("RAID_MAX_BATCH_SIZE", 64),
		StoreMaxOpsPerBatch: GetEnvInt("RAID_STORE_MAX_OPS", 25),
	}
}
