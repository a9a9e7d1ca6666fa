package service

import (
	"database/sql"

	"tsu-raid/internal/pkg/batchwriter"
	"tsu-raid/internal/pkg/config"
	"tsu-raid/internal/pkg/redis"
	"tsu-raid/internal/repository/impl"
	"tsu-raid/internal/repository/interfaces"
)

// ServiceContainer 副本服务容器 - 统一管理所有 Repository 和 Service
// 目的：避免重复创建 Repository，简化依赖注入
type ServiceContainer struct {
	lockoutRepo interfaces.LockoutRepository
	recordRepo  interfaces.EncounterRecordRepository
	lootRepo    interfaces.LootRecordRepository

	Writer    *batchwriter.Coalescer
	Catalog   *CatalogService
	Loot      *LootService
	Lockout   *LockoutService
	Reward    *RewardService
	Encounter *EncounterService
}

// NewServiceContainer 创建服务容器。
// db 为空时跳过归档仓储,inventory 为空时视为容量无限。
func NewServiceContainer(db *sql.DB, rdb *redis.Client, cfg *config.RaidConfig, inventory InventoryGate) (*ServiceContainer, error) {
	c := &ServiceContainer{}

	catalog, err := NewCatalogService(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	c.Catalog = catalog

	c.lockoutRepo = impl.NewLockoutRepository(rdb, cfg.LockoutWindow)
	if db != nil {
		c.recordRepo = impl.NewEncounterRecordRepository(db)
		c.lootRepo = impl.NewLootRecordRepository(db)
	}

	store := impl.NewRedisBatchStore(rdb)
	c.Writer = batchwriter.New(store, cfg.BatchInterval, cfg.MaxBatchSize, cfg.StoreMaxOpsPerBatch, nil, nil)

	c.Loot = NewLootService(catalog, nil)
	c.Lockout = NewLockoutService(c.lockoutRepo, cfg.LockoutWindow)
	c.Reward = NewRewardService(catalog, c.Loot, c.Lockout, c.Writer, inventory, c.lootRepo)
	c.Encounter = NewEncounterService(catalog, c.Reward, c.Writer, c.recordRepo, cfg.InstanceTTL, cfg.RetentionWindow)

	return c, nil
}
