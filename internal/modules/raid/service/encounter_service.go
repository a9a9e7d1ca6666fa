package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"

	"tsu-raid/internal/model/raidmodel"
	"tsu-raid/internal/pkg/batchwriter"
	"tsu-raid/internal/pkg/log"
	"tsu-raid/internal/pkg/metrics"
	"tsu-raid/internal/pkg/notify"
	"tsu-raid/internal/pkg/xerrors"
	"tsu-raid/internal/repository/entity"
	"tsu-raid/internal/repository/interfaces"
)

// EncounterService 副本实例生命周期管理
type EncounterService struct {
	catalog    *CatalogService
	reward     *RewardService
	writer     *batchwriter.Coalescer
	recordRepo interfaces.EncounterRecordRepository
	ttl        time.Duration
	retention  time.Duration
	metrics    *metrics.RaidMetrics
	logger     log.Logger
	service    string
	clock      func() time.Time

	mu        sync.Mutex
	instances map[string]*raidmodel.EncounterInstance
	results   map[string]*DistributionResult
}

// NewEncounterService 创建生命周期管理器。
// ttl 为实例从创建起的固定存活时间,retention 为终态实例在内存中的保留窗口。
func NewEncounterService(catalog *CatalogService, reward *RewardService, writer *batchwriter.Coalescer, recordRepo interfaces.EncounterRecordRepository, ttl, retention time.Duration) *EncounterService {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	if retention <= 0 {
		retention = 10 * time.Minute
	}
	return &EncounterService{
		catalog:    catalog,
		reward:     reward,
		writer:     writer,
		recordRepo: recordRepo,
		ttl:        ttl,
		retention:  retention,
		metrics:    metrics.DefaultRaidMetrics,
		logger:     log.GetLogger().With("component", "encounter_service"),
		service:    metrics.GetServiceName(),
		clock:      time.Now,
		instances:  make(map[string]*raidmodel.EncounterInstance),
		results:    make(map[string]*DistributionResult),
	}
}

// Start 为一支队伍开启副本实例。
// 名单满足最低要求且无人处于锁定时,实例直接进入 InProgress(0)。
func (s *EncounterService) Start(ctx context.Context, encounterID string, roster []raidmodel.Participant) (*raidmodel.EncounterInstance, error) {
	def, err := s.catalog.Get(encounterID)
	if err != nil {
		return nil, err
	}

	if err := validateRoster(def, roster); err != nil {
		return nil, err
	}

	// 任何成员仍处于锁定即拒绝开启
	for _, p := range roster {
		status := s.reward.lockout.Status(ctx, p.ID, encounterID)
		if status.Locked {
			return nil, xerrors.NewLockoutActiveError(p.ID, encounterID, *status.ResetAt)
		}
	}

	now := s.clock()
	instance := &raidmodel.EncounterInstance{
		ID:          uuid.New().String(),
		EncounterID: encounterID,
		State:       raidmodel.StateInProgress,
		WaveIndex:   0,
		Roster:      roster,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}

	s.mu.Lock()
	s.instances[instance.ID] = instance
	snapshot := *instance
	s.mu.Unlock()

	s.mirrorInstance(ctx, &snapshot, false)
	s.logger.InfoContext(ctx, "副本实例开启",
		log.String("instance_id", instance.ID),
		log.String("encounter_id", encounterID),
		log.Int("roster_size", len(roster)))

	return &snapshot, nil
}

// validateRoster 校验最低人数/等级/战力要求
func validateRoster(def *raidmodel.EncounterDefinition, roster []raidmodel.Participant) error {
	if len(roster) < def.Requirements.MinPartySize {
		return xerrors.New(xerrors.CodeRosterRequirementUnmet,
			fmt.Sprintf("队伍人数 %d 低于最低要求 %d", len(roster), def.Requirements.MinPartySize))
	}
	totalPower := 0
	for _, p := range roster {
		if p.ID == "" {
			return xerrors.New(xerrors.CodeInvalidParams, "参战者 ID 不能为空")
		}
		if p.Level < def.Requirements.MinLevel {
			return xerrors.New(xerrors.CodeRosterRequirementUnmet,
				fmt.Sprintf("参战者 %s 等级 %d 低于最低要求 %d", p.ID, p.Level, def.Requirements.MinLevel))
		}
		totalPower += p.Power
	}
	if totalPower < def.Requirements.MinPower {
		return xerrors.New(xerrors.CodeRosterRequirementUnmet,
			fmt.Sprintf("队伍总战力 %d 低于最低要求 %d", totalPower, def.Requirements.MinPower))
	}
	return nil
}

// Get 查询实例当前状态
func (s *EncounterService) Get(ctx context.Context, instanceID string) (*raidmodel.EncounterInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	instance, ok := s.instances[instanceID]
	if !ok {
		return nil, xerrors.NewInstanceNotFoundError(instanceID)
	}
	snapshot := *instance
	return &snapshot, nil
}

// Result 查询已完成实例的结算结果
func (s *EncounterService) Result(ctx context.Context, instanceID string) (*DistributionResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result, ok := s.results[instanceID]
	return result, ok
}

// AdvanceWave 上报一个波次的结果并推进状态机。
// 终态实例上的调用被拒绝,不会触发任何新的奖励发放。
func (s *EncounterService) AdvanceWave(ctx context.Context, instanceID string, outcome raidmodel.WaveOutcome) (*raidmodel.EncounterInstance, error) {
	if outcome != raidmodel.OutcomeCleared && outcome != raidmodel.OutcomeWiped {
		return nil, xerrors.New(xerrors.CodeInvalidParams,
			fmt.Sprintf("未知波次结果: %s", outcome))
	}

	s.mu.Lock()
	instance, ok := s.instances[instanceID]
	if !ok {
		s.mu.Unlock()
		return nil, xerrors.NewInstanceNotFoundError(instanceID)
	}
	if instance.State.IsTerminal() {
		state := instance.State
		s.mu.Unlock()
		return nil, xerrors.NewEncounterTerminalError(instanceID, string(state))
	}

	now := s.clock()
	if now.After(instance.ExpiresAt) {
		s.markTerminalLocked(instance, raidmodel.StateExpired, now)
		snapshot := *instance
		s.mu.Unlock()
		s.afterTerminal(ctx, &snapshot, nil)
		return nil, xerrors.NewEncounterTerminalError(instanceID, string(raidmodel.StateExpired))
	}

	def, err := s.catalog.Get(instance.EncounterID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	if outcome == raidmodel.OutcomeWiped {
		s.markTerminalLocked(instance, raidmodel.StateFailed, now)
		snapshot := *instance
		s.mu.Unlock()
		s.afterTerminal(ctx, &snapshot, nil)
		return &snapshot, nil
	}

	completed := false
	switch instance.State {
	case raidmodel.StateInProgress:
		instance.WaveIndex++
		if instance.WaveIndex >= len(def.Waves) {
			instance.State = raidmodel.StateBossPhase
		}
	case raidmodel.StateBossPhase:
		// 首领击杀:转入 Completed 的同一转移中触发结算,且仅此一次
		s.markTerminalLocked(instance, raidmodel.StateCompleted, now)
		completed = true
	default:
		state := instance.State
		s.mu.Unlock()
		return nil, xerrors.New(xerrors.CodeInvalidRequest,
			fmt.Sprintf("实例 %s 处于 %s,不接受波次结果", instanceID, state))
	}
	snapshot := *instance
	s.mu.Unlock()

	if completed {
		result, err := s.reward.Distribute(ctx, def, &snapshot)
		if err != nil {
			s.logger.ErrorContext(ctx, "奖励结算失败",
				log.String("instance_id", instanceID),
				log.Any("error", err))
		} else {
			s.mu.Lock()
			s.results[instanceID] = result
			s.mu.Unlock()
		}
		s.afterTerminal(ctx, &snapshot, s.resultFor(instanceID))
	} else {
		s.mirrorInstance(ctx, &snapshot, false)
	}

	return &snapshot, nil
}

// ForceExpire 管理操作:强制过期。走普通的 Expired 转移,
// 已经在批量写入队列中的奖励不受影响。
func (s *EncounterService) ForceExpire(ctx context.Context, instanceID string) (*raidmodel.EncounterInstance, error) {
	s.mu.Lock()
	instance, ok := s.instances[instanceID]
	if !ok {
		s.mu.Unlock()
		return nil, xerrors.NewInstanceNotFoundError(instanceID)
	}
	if instance.State.IsTerminal() {
		state := instance.State
		s.mu.Unlock()
		return nil, xerrors.NewEncounterTerminalError(instanceID, string(state))
	}
	s.markTerminalLocked(instance, raidmodel.StateExpired, s.clock())
	snapshot := *instance
	s.mu.Unlock()

	s.afterTerminal(ctx, &snapshot, nil)
	return &snapshot, nil
}

// SweepExpired 定时维护:过期未终结的实例转入 Expired,
// 终态实例超过保留窗口后从内存移除(归档已完成)。
func (s *EncounterService) SweepExpired(ctx context.Context) (expired, removed int) {
	now := s.clock()

	var toFinish []raidmodel.EncounterInstance
	s.mu.Lock()
	for id, instance := range s.instances {
		if instance.State.IsTerminal() {
			if instance.EndedAt != nil && now.Sub(*instance.EndedAt) > s.retention {
				delete(s.instances, id)
				delete(s.results, id)
				removed++
			}
			continue
		}
		if now.After(instance.ExpiresAt) {
			s.markTerminalLocked(instance, raidmodel.StateExpired, now)
			toFinish = append(toFinish, *instance)
			expired++
		}
	}
	s.mu.Unlock()

	for i := range toFinish {
		s.afterTerminal(ctx, &toFinish[i], nil)
	}
	return expired, removed
}

// markTerminalLocked 设置终态,调用方必须持有 s.mu 且已确认当前非终态
func (s *EncounterService) markTerminalLocked(instance *raidmodel.EncounterInstance, state raidmodel.EncounterState, now time.Time) {
	instance.State = state
	ended := now
	instance.EndedAt = &ended
	s.metrics.RecordEncounterTerminal(string(state), now.Sub(instance.CreatedAt), s.service)
}

func (s *EncounterService) resultFor(instanceID string) *DistributionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results[instanceID]
}

// afterTerminal 终态后的镜像、归档与事件发布
func (s *EncounterService) afterTerminal(ctx context.Context, instance *raidmodel.EncounterInstance, result *DistributionResult) {
	s.mirrorInstance(ctx, instance, true)
	s.archive(ctx, instance, result)

	if err := notify.PublishRaidEvent(ctx, notify.SubjectEncounterCompleted, map[string]any{
		"instance_id":  instance.ID,
		"encounter_id": instance.EncounterID,
		"state":        instance.State,
		"wave_index":   instance.WaveIndex,
	}); err != nil {
		s.logger.WarnContext(ctx, "发布副本终结事件失败", log.Any("error", err))
	}
}

// mirrorInstance 将实例状态排队写入持久层,终态立即刷写
func (s *EncounterService) mirrorInstance(ctx context.Context, instance *raidmodel.EncounterInstance, immediate bool) {
	fields := map[string]any{
		"encounter_id": instance.EncounterID,
		"state":        string(instance.State),
		"wave_index":   instance.WaveIndex,
		"expires_at":   instance.ExpiresAt.UTC().Format(time.RFC3339),
	}
	if instance.EndedAt != nil {
		fields["ended_at"] = instance.EndedAt.UTC().Format(time.RFC3339)
	}
	s.writer.QueueWrite(ctx, "encounter", instance.ID, fields, immediate)
}

// archive 终态实例归档落库,尽力而为
func (s *EncounterService) archive(ctx context.Context, instance *raidmodel.EncounterInstance, result *DistributionResult) {
	if s.recordRepo == nil {
		return
	}

	def, err := s.catalog.Get(instance.EncounterID)
	if err != nil {
		return
	}

	roster, err := json.Marshal(instance.Roster)
	if err != nil {
		s.logger.WarnContext(ctx, "序列化名单失败", log.Any("error", err))
		return
	}

	record := &entity.EncounterRecord{
		InstanceID:  instance.ID,
		EncounterID: instance.EncounterID,
		Difficulty:  string(def.Difficulty),
		FinalState:  string(instance.State),
		WaveIndex:   instance.WaveIndex,
		Roster:      roster,
		StartedAt:   instance.CreatedAt,
	}
	if instance.EndedAt != nil {
		record.EndedAt = null.TimeFrom(*instance.EndedAt)
	}
	if result != nil {
		if rewards, err := json.Marshal(result); err == nil {
			record.Rewards = null.JSONFrom(rewards)
		}
	}

	if err := s.recordRepo.Upsert(ctx, record); err != nil {
		s.logger.WarnContext(ctx, "副本归档落库失败",
			log.String("instance_id", instance.ID),
			log.Any("error", err))
	}
}
