package service

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"tsu-raid/internal/model/raidmodel"
	"tsu-raid/internal/pkg/log"
	"tsu-raid/internal/pkg/metrics"
	"tsu-raid/internal/pkg/xerrors"
)

// uniqueDropChance 副本专属物品的覆盖掉落概率,先于稀有度判定
const uniqueDropChance = 0.15

// LootService 掉落生成服务
type LootService struct {
	catalog *CatalogService
	metrics *metrics.RaidMetrics
	logger  log.Logger
	service string

	mu  sync.Mutex
	rng *rand.Rand
}

// NewLootService 创建掉落生成服务。rng 为空时使用随机种子,
// 测试中注入固定种子可获得确定性结果。
func NewLootService(catalog *CatalogService, rng *rand.Rand) *LootService {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &LootService{
		catalog: catalog,
		metrics: metrics.DefaultRaidMetrics,
		logger:  log.GetLogger().With("component", "loot_service"),
		service: metrics.GetServiceName(),
		rng:     rng,
	}
}

// Generate 生成一件物品。
// 判定顺序:专属覆盖 → 稀有度采样 → 属性模板缩放 → 特效附加。
// 专属判定与稀有度判定是两次独立的随机抽取。
func (s *LootService) Generate(ctx context.Context, encounterID string, difficulty raidmodel.Difficulty, role raidmodel.RoleArchetype, slot raidmodel.EquipmentSlot, level int) (*raidmodel.Item, error) {
	// 1. 校验入参,失败时不产生任何半成品
	if _, err := s.catalog.Get(encounterID); err != nil {
		return nil, err
	}
	profile, ok := s.catalog.Difficulty(difficulty)
	if !ok {
		return nil, xerrors.New(xerrors.CodeInvalidParams,
			fmt.Sprintf("未知难度: %s", difficulty))
	}
	template, ok := s.catalog.StatTemplate(role, slot)
	if !ok {
		if _, roleOK := s.catalog.ProcPool(role); !roleOK {
			return nil, xerrors.New(xerrors.CodeUnknownRole,
				fmt.Sprintf("未知职业定位: %s", role))
		}
		return nil, xerrors.New(xerrors.CodeUnknownSlot,
			fmt.Sprintf("职业 %s 没有槽位 %s 的属性模板", role, slot))
	}
	if level < 1 {
		return nil, xerrors.New(xerrors.CodeInvalidParams, "等级必须大于 0")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// 2. 专属物品覆盖判定
	if unique, registered := s.catalog.UniqueItem(encounterID); registered {
		if s.rng.Float64() < uniqueDropChance {
			item := unique
			item.EncounterID = encounterID
			s.metrics.RecordLootDrop(string(item.Rarity), s.service)
			return &item, nil
		}
	}

	// 3. 稀有度采样
	rarity := profile.SampleRarity(s.rng.Float64())
	rarityFactor, ok := s.catalog.RarityFactor(rarity)
	if !ok {
		return nil, xerrors.New(xerrors.CodeCatalogInvalid,
			fmt.Sprintf("稀有度 %s 缺少属性倍率", rarity))
	}

	// 4. 属性缩放
	scale := profile.Multiplier * rarityFactor * (1 + float64(level)*0.1)
	stats := raidmodel.StatBlock{
		Attack:  int(math.Floor(float64(template.Attack) * scale)),
		Defense: int(math.Floor(float64(template.Defense) * scale)),
		HP:      int(math.Floor(float64(template.HP) * scale)),
	}

	// 5. 特效附加: epic 两条, legendary 三条,从职业池不放回抽取
	var procs []raidmodel.ProcEffect
	procCount := 0
	switch rarity {
	case raidmodel.RarityEpic:
		procCount = 2
	case raidmodel.RarityLegendary:
		procCount = 3
	}
	if procCount > 0 {
		pool, _ := s.catalog.ProcPool(role)
		if procCount > len(pool) {
			procCount = len(pool)
		}
		perm := s.rng.Perm(len(pool))
		procs = make([]raidmodel.ProcEffect, 0, procCount)
		for _, idx := range perm[:procCount] {
			procs = append(procs, pool[idx])
		}
	}

	item := &raidmodel.Item{
		ID:     uuid.New().String(),
		Name:   fmt.Sprintf("%s·%s", rarityDisplayName(rarity), slotDisplayName(slot)),
		Kind:   raidmodel.KindGear,
		Rarity: rarity,
		Slot:   slot,
		Stats:  stats,
		Procs:  procs,
	}

	s.metrics.RecordLootDrop(string(rarity), s.service)
	return item, nil
}

func rarityDisplayName(r raidmodel.Rarity) string {
	switch r {
	case raidmodel.RarityRare:
		return "精良"
	case raidmodel.RarityEpic:
		return "史诗"
	case raidmodel.RarityLegendary:
		return "传说"
	default:
		return string(r)
	}
}

func slotDisplayName(slot raidmodel.EquipmentSlot) string {
	switch slot {
	case raidmodel.SlotWeapon:
		return "武器"
	case raidmodel.SlotHelmet:
		return "头盔"
	case raidmodel.SlotChest:
		return "胸甲"
	case raidmodel.SlotBoots:
		return "战靴"
	case raidmodel.SlotTrinket:
		return "饰品"
	default:
		return string(slot)
	}
}
