package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"

	"tsu-raid/internal/model/raidmodel"
	"tsu-raid/internal/pkg/batchwriter"
	"tsu-raid/internal/pkg/i18n"
	"tsu-raid/internal/pkg/log"
	"tsu-raid/internal/pkg/notify"
	"tsu-raid/internal/pkg/xerrors"
	"tsu-raid/internal/repository/entity"
	"tsu-raid/internal/repository/interfaces"
)

// InventoryGate 外部背包容量检查
type InventoryGate interface {
	CanAccept(ctx context.Context, participantID string, items []raidmodel.Item) (bool, error)
}

// ParticipantReward 单个参战者的结算结果
type ParticipantReward struct {
	ParticipantID string           `json:"participant_id"`
	Gold          int64            `json:"gold"`
	Experience    int64            `json:"experience"`
	Items         []raidmodel.Item `json:"items,omitempty"`
	SkippedLocked bool             `json:"skipped_locked,omitempty"`
	ItemsRejected bool             `json:"items_rejected,omitempty"`
}

// CapacityNotice 对调用方可见的背包拒收提示,消息按请求语言本地化
type CapacityNotice struct {
	ParticipantID string `json:"participant_id"`
	Message       string `json:"message"`
}

// DistributionResult 一次完成结算的汇总
type DistributionResult struct {
	InstanceID      string              `json:"instance_id"`
	EncounterID     string              `json:"encounter_id"`
	Rewards         []ParticipantReward `json:"rewards"`
	CapacityErrors  []*xerrors.AppError `json:"-"`
	CapacityNotices []CapacityNotice    `json:"capacity_errors,omitempty"`
}

// RewardService 完成奖励结算服务
type RewardService struct {
	catalog   *CatalogService
	loot      *LootService
	lockout   *LockoutService
	writer    *batchwriter.Coalescer
	inventory InventoryGate
	lootRepo  interfaces.LootRecordRepository
	logger    log.Logger
	clock     func() time.Time
}

// NewRewardService 创建奖励结算服务。inventory 与 lootRepo 都是可选依赖,
// 为空时分别视为容量无限与不落掉落历史。
func NewRewardService(catalog *CatalogService, loot *LootService, lockout *LockoutService, writer *batchwriter.Coalescer, inventory InventoryGate, lootRepo interfaces.LootRecordRepository) *RewardService {
	return &RewardService{
		catalog:   catalog,
		loot:      loot,
		lockout:   lockout,
		writer:    writer,
		inventory: inventory,
		lootRepo:  lootRepo,
		logger:    log.GetLogger().With("component", "reward_service"),
		clock:     time.Now,
	}
}

// Distribute 为已完成实例的名单结算奖励。
// 只由生命周期管理器在转入 Completed 的同一转移中调用一次。
func (s *RewardService) Distribute(ctx context.Context, def *raidmodel.EncounterDefinition, instance *raidmodel.EncounterInstance) (*DistributionResult, error) {
	result := &DistributionResult{
		InstanceID:  instance.ID,
		EncounterID: def.ID,
		Rewards:     make([]ParticipantReward, 0, len(instance.Roster)),
	}

	// 1. 先做锁定筛选,份额只在可领奖的参战者之间分配
	eligible := make([]raidmodel.Participant, 0, len(instance.Roster))
	for _, p := range instance.Roster {
		if s.lockout.Status(ctx, p.ID, def.ID).Locked {
			result.Rewards = append(result.Rewards, ParticipantReward{
				ParticipantID: p.ID,
				SkippedLocked: true,
			})
			continue
		}
		eligible = append(eligible, p)
	}
	if len(eligible) == 0 {
		return result, nil
	}

	// 2. 计算份额:默认均分,模板配置了职业权重时按权重加权
	shares := computeShares(def.Reward, eligible)

	for i, p := range eligible {
		reward := ParticipantReward{
			ParticipantID: p.ID,
			Gold:          shares[i].gold,
			Experience:    shares[i].experience,
		}

		// 3. 每个保底掉落槽各掷一件
		items := make([]raidmodel.Item, 0, len(def.Reward.LootSlots))
		for _, slot := range def.Reward.LootSlots {
			item, err := s.loot.Generate(ctx, def.ID, def.Difficulty, p.Role, slot, p.Level)
			if err != nil {
				return nil, err
			}
			items = append(items, *item)
		}

		// 4. 背包容量检查,拒收时跳过物品,金币经验照常发放
		if len(items) > 0 && s.inventory != nil {
			ok, err := s.inventory.CanAccept(ctx, p.ID, items)
			if err != nil {
				s.logger.WarnContext(ctx, "背包容量检查失败,按可接收处理",
					log.String("participant_id", p.ID),
					log.Any("error", err))
				ok = true
			}
			if !ok {
				reward.ItemsRejected = true
				result.CapacityErrors = append(result.CapacityErrors,
					xerrors.NewInventoryFullError(p.ID, len(items)))
				result.CapacityNotices = append(result.CapacityNotices, CapacityNotice{
					ParticipantID: p.ID,
					Message:       i18n.GetErrorMessage(xerrors.CodeInventoryFull, i18n.GetLanguage(ctx)),
				})
				items = nil
			}
		}
		reward.Items = items

		// 5. 条件写入锁定记录;并发的另一次完成已先写入时整体跳过
		set, err := s.lockout.Set(ctx, p.ID, def.ID)
		if err != nil {
			return nil, err
		}
		if !set {
			s.logger.WarnContext(ctx, "锁定记录已存在,跳过重复结算",
				log.String("participant_id", p.ID),
				log.String("encounter_id", def.ID))
			reward = ParticipantReward{ParticipantID: p.ID, SkippedLocked: true}
			result.Rewards = append(result.Rewards, reward)
			continue
		}

		// 6. 锁定与奖励合并为一次排队写入,外部无法单独观察到其中之一
		if err := s.queueReward(ctx, instance.ID, def.ID, reward); err != nil {
			return nil, err
		}

		s.archiveLoot(ctx, instance.ID, def.ID, p.ID, reward.Items)
		result.Rewards = append(result.Rewards, reward)

		log.LogRewardEvent(ctx, "reward_granted", instance.ID, p.ID, map[string]any{
			"gold":       reward.Gold,
			"experience": reward.Experience,
			"items":      len(reward.Items),
		})
	}

	if err := notify.PublishRaidEvent(ctx, notify.SubjectRewardGranted, result); err != nil {
		s.logger.WarnContext(ctx, "发布奖励事件失败", log.Any("error", err))
	}

	return result, nil
}

type share struct {
	gold       int64
	experience int64
}

// computeShares 计算每个可领奖参战者的金币/经验份额
func computeShares(envelope raidmodel.RewardEnvelope, eligible []raidmodel.Participant) []share {
	shares := make([]share, len(eligible))

	if len(envelope.RoleWeights) == 0 {
		n := int64(len(eligible))
		for i := range eligible {
			shares[i] = share{
				gold:       envelope.Gold / n,
				experience: envelope.Experience / n,
			}
		}
		return shares
	}

	total := 0.0
	weights := make([]float64, len(eligible))
	for i, p := range eligible {
		w, ok := envelope.RoleWeights[p.Role]
		if !ok {
			w = 1.0
		}
		weights[i] = w
		total += w
	}
	for i := range eligible {
		frac := weights[i] / total
		shares[i] = share{
			gold:       int64(float64(envelope.Gold) * frac),
			experience: int64(float64(envelope.Experience) * frac),
		}
	}
	return shares
}

// queueReward 将单个参战者的完整结算打包为一个字段排队。
// 字段名带实例 ID,同一参战者跨实例的结算互不覆盖。
func (s *RewardService) queueReward(ctx context.Context, instanceID, encounterID string, reward ParticipantReward) error {
	payload, err := json.Marshal(map[string]any{
		"encounter_id": encounterID,
		"gold":         reward.Gold,
		"experience":   reward.Experience,
		"items":        reward.Items,
		"locked_until": s.clock().Add(s.lockout.Window()).UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("序列化奖励失败: %w", err)
	}

	s.writer.QueueWrite(ctx, "participant", reward.ParticipantID, map[string]any{
		"reward:" + instanceID: string(payload),
		"last_reward_at":       s.clock().UTC().Format(time.RFC3339),
	}, false)
	return nil
}

// archiveLoot 掉落历史落库,尽力而为
func (s *RewardService) archiveLoot(ctx context.Context, instanceID, encounterID, participantID string, items []raidmodel.Item) {
	if s.lootRepo == nil {
		return
	}
	for _, item := range items {
		record := &entity.LootDropRecord{
			ID:            uuid.New().String(),
			InstanceID:    null.StringFrom(instanceID),
			EncounterID:   encounterID,
			ParticipantID: participantID,
			ItemID:        item.ID,
			ItemName:      item.Name,
			Kind:          string(item.Kind),
			Rarity:        string(item.Rarity),
			Slot:          null.StringFrom(string(item.Slot)),
			CreatedAt:     s.clock(),
		}
		if err := s.lootRepo.Create(ctx, record); err != nil {
			s.logger.WarnContext(ctx, "掉落历史落库失败",
				log.String("participant_id", participantID),
				log.String("item_id", item.ID),
				log.Any("error", err))
		}
	}
}
