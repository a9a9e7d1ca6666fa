package tasks

import (
	"context"

	"github.com/robfig/cron/v3"

	"tsu-raid/internal/modules/raid/service"
	"tsu-raid/internal/pkg/log"
)

// LockoutSweepTask 锁定记录清理定时任务
// 每小时检查一次，移除重置时间已过的锁定记录
type LockoutSweepTask struct {
	lockout *service.LockoutService
	logger  log.Logger
	cron    *cron.Cron
}

// NewLockoutSweepTask 创建锁定清理任务实例
func NewLockoutSweepTask(lockout *service.LockoutService, logger log.Logger) *LockoutSweepTask {
	return &LockoutSweepTask{
		lockout: lockout,
		logger:  logger,
	}
}

// Start 启动定时任务
func (t *LockoutSweepTask) Start() {
	t.cron = cron.New(cron.WithSeconds())

	// 每小时的第 10 分 0 秒执行
	_, err := t.cron.AddFunc("0 10 * * * *", func() {
		t.sweep()
	})
	if err != nil {
		t.logger.Error("【副本定时任务】添加锁定清理任务失败", err)
		return
	}

	t.cron.Start()
	t.logger.Info("【副本定时任务】锁定清理任务已启动 - 每小时执行一次")
}

func (t *LockoutSweepTask) sweep() {
	ctx := context.Background()

	removed, err := t.lockout.SweepExpired(ctx)
	if err != nil {
		t.logger.Error("【副本定时任务】锁定清理失败", err)
		return
	}
	if removed > 0 {
		t.logger.Info("【副本定时任务】锁定清理完成", "removed", removed)
	}
}

// Stop 停止定时任务（优雅关闭）
func (t *LockoutSweepTask) Stop() {
	if t.cron != nil {
		ctx := t.cron.Stop()
		<-ctx.Done()
		t.logger.Info("【副本定时任务】锁定清理任务已停止")
	}
}
