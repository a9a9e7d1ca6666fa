package tasks

import (
	"context"

	"github.com/robfig/cron/v3"

	"tsu-raid/internal/modules/raid/service"
	"tsu-raid/internal/pkg/log"
)

// EncounterExpireTask 副本实例过期定时任务
// 每 30 秒扫描一次:过期未终结的实例转入 Expired,
// 终态实例超出保留窗口后从内存移除
type EncounterExpireTask struct {
	encounter *service.EncounterService
	logger    log.Logger
	cron      *cron.Cron
}

// NewEncounterExpireTask 创建实例过期任务实例
func NewEncounterExpireTask(encounter *service.EncounterService, logger log.Logger) *EncounterExpireTask {
	return &EncounterExpireTask{
		encounter: encounter,
		logger:    logger,
	}
}

// Start 启动定时任务
func (t *EncounterExpireTask) Start() {
	t.cron = cron.New(cron.WithSeconds())

	_, err := t.cron.AddFunc("*/30 * * * * *", func() {
		t.sweep()
	})
	if err != nil {
		t.logger.Error("【副本定时任务】添加实例过期任务失败", err)
		return
	}

	t.cron.Start()
	t.logger.Info("【副本定时任务】实例过期任务已启动 - 每 30 秒执行一次")
}

func (t *EncounterExpireTask) sweep() {
	expired, removed := t.encounter.SweepExpired(context.Background())
	if expired > 0 || removed > 0 {
		t.logger.Info("【副本定时任务】实例清理完成",
			"expired", expired,
			"removed", removed)
	}
}

// Stop 停止定时任务（优雅关闭）
func (t *EncounterExpireTask) Stop() {
	if t.cron != nil {
		ctx := t.cron.Stop()
		<-ctx.Done()
		t.logger.Info("【副本定时任务】实例过期任务已停止")
	}
}
