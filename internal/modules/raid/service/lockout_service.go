package service

import (
	"context"
	"time"

	"tsu-raid/internal/model/raidmodel"
	"tsu-raid/internal/pkg/log"
	"tsu-raid/internal/pkg/metrics"
	"tsu-raid/internal/repository/interfaces"
)

// LockoutService 完成奖励锁定服务
type LockoutService struct {
	repo    interfaces.LockoutRepository
	window  time.Duration
	metrics *metrics.RaidMetrics
	logger  log.Logger
	service string
	clock   func() time.Time
}

// NewLockoutService 创建锁定服务。window 为锁定窗口,默认 7 天。
func NewLockoutService(repo interfaces.LockoutRepository, window time.Duration) *LockoutService {
	if window <= 0 {
		window = 7 * 24 * time.Hour
	}
	return &LockoutService{
		repo:    repo,
		window:  window,
		metrics: metrics.DefaultRaidMetrics,
		logger:  log.GetLogger().With("component", "lockout_service"),
		service: metrics.GetServiceName(),
		clock:   time.Now,
	}
}

// Window 返回锁定窗口
func (s *LockoutService) Window() time.Duration {
	return s.window
}

// Status 查询锁定状态。locked = now < resetAt,到达 resetAt 即解锁。
// 底层读取失败时放行(fail open):可用性优先于严格性,
// 宁可少数参战者重复领奖,也不因存储抖动阻塞整个玩法。
func (s *LockoutService) Status(ctx context.Context, participantID, encounterID string) *raidmodel.LockoutStatus {
	record, err := s.repo.Get(ctx, participantID, encounterID)
	if err == interfaces.ErrLockoutNotFound {
		s.metrics.RecordLockoutCheck("unlocked", s.service)
		return &raidmodel.LockoutStatus{Locked: false}
	}
	if err != nil {
		s.metrics.RecordLockoutCheck("fail_open", s.service)
		s.logger.WarnContext(ctx, "锁定记录读取失败,放行",
			log.String("participant_id", participantID),
			log.String("encounter_id", encounterID),
			log.Any("error", err))
		return &raidmodel.LockoutStatus{Locked: false}
	}

	now := s.clock()
	if now.Before(record.ResetAt) {
		s.metrics.RecordLockoutCheck("locked", s.service)
		resetAt := record.ResetAt
		return &raidmodel.LockoutStatus{Locked: true, ResetAt: &resetAt}
	}

	s.metrics.RecordLockoutCheck("unlocked", s.service)
	return &raidmodel.LockoutStatus{Locked: false}
}

// Set 记录一次完成。条件写入,已存在的锁定不会被覆盖,
// 返回 false 表示并发的另一次完成已先行写入。
func (s *LockoutService) Set(ctx context.Context, participantID, encounterID string) (bool, error) {
	return s.repo.SetIfAbsent(ctx, participantID, encounterID, s.clock(), s.window)
}

// Reset 管理操作:解除锁定
func (s *LockoutService) Reset(ctx context.Context, participantID, encounterID string) error {
	return s.repo.Delete(ctx, participantID, encounterID)
}

// ListActive 返回参战者当前仍在生效的全部锁定及剩余时间
func (s *LockoutService) ListActive(ctx context.Context, participantID string) ([]raidmodel.ActiveLockout, error) {
	records, err := s.repo.ListByParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	active := make([]raidmodel.ActiveLockout, 0, len(records))
	for _, record := range records {
		if !now.Before(record.ResetAt) {
			continue // 已过期,视为未锁定,无需先清理
		}
		active = append(active, raidmodel.ActiveLockout{
			EncounterID: record.EncounterID,
			ResetAt:     record.ResetAt,
			Remaining:   record.ResetAt.Sub(now),
		})
	}
	return active, nil
}

// SweepExpired 维护操作:清理重置时间已过的记录
func (s *LockoutService) SweepExpired(ctx context.Context) (int, error) {
	removed, err := s.repo.DeleteExpired(ctx)
	if err != nil {
		return removed, err
	}
	if removed > 0 {
		s.logger.InfoContext(ctx, "清理过期锁定记录", log.Int("removed", removed))
	}
	return removed, nil
}
