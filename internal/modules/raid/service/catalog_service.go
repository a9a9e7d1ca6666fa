package service

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"

	"tsu-raid/internal/model/raidmodel"
	"tsu-raid/internal/pkg/xerrors"
)

// RarityWeight 单个稀有度的掉落权重
type RarityWeight struct {
	Rarity raidmodel.Rarity `json:"rarity"`
	Weight float64          `json:"weight"`
}

// DifficultyProfile 难度档位配置:属性倍率与稀有度权重表
type DifficultyProfile struct {
	Multiplier    float64        `json:"multiplier"`
	RarityWeights []RarityWeight `json:"rarity_weights"`

	// 加载时预计算的累积分布,采样时只做一次比较循环
	cdf []float64
}

// CatalogData 目录文件的顶层结构
type CatalogData struct {
	Encounters    []raidmodel.EncounterDefinition               `json:"encounters"`
	Difficulties  map[raidmodel.Difficulty]*DifficultyProfile   `json:"difficulties"`
	RarityFactors map[raidmodel.Rarity]float64                  `json:"rarity_factors"`
	StatTemplates map[raidmodel.RoleArchetype]map[raidmodel.EquipmentSlot]raidmodel.StatBlock `json:"stat_templates"`
	ProcPools     map[raidmodel.RoleArchetype][]raidmodel.ProcEffect `json:"proc_pools"`
	UniqueItems   map[string]raidmodel.Item                     `json:"unique_items"`
}

// CatalogService 副本目录,加载后只读
type CatalogService struct {
	encounters    map[string]*raidmodel.EncounterDefinition
	difficulties  map[raidmodel.Difficulty]*DifficultyProfile
	rarityFactors map[raidmodel.Rarity]float64
	statTemplates map[raidmodel.RoleArchetype]map[raidmodel.EquipmentSlot]raidmodel.StatBlock
	procPools     map[raidmodel.RoleArchetype][]raidmodel.ProcEffect
	uniqueItems   map[string]raidmodel.Item
}

// NewCatalogService 从文件加载目录,path 为空时使用内置种子数据
func NewCatalogService(path string) (*CatalogService, error) {
	data := defaultCatalogData()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取目录文件失败: %w", err)
		}
		data = &CatalogData{}
		if err := json.Unmarshal(raw, data); err != nil {
			return nil, fmt.Errorf("解析目录文件失败: %w", err)
		}
	}
	return NewCatalogServiceFromData(data)
}

// NewCatalogServiceFromData 从内存数据构建目录并做加载期校验
func NewCatalogServiceFromData(data *CatalogData) (*CatalogService, error) {
	s := &CatalogService{
		encounters:    make(map[string]*raidmodel.EncounterDefinition, len(data.Encounters)),
		difficulties:  data.Difficulties,
		rarityFactors: data.RarityFactors,
		statTemplates: data.StatTemplates,
		procPools:     data.ProcPools,
		uniqueItems:   data.UniqueItems,
	}

	for i := range data.Encounters {
		def := &data.Encounters[i]
		if def.ID == "" {
			return nil, xerrors.New(xerrors.CodeCatalogInvalid, "副本模板缺少 ID")
		}
		if len(def.Waves) == 0 {
			return nil, xerrors.New(xerrors.CodeCatalogInvalid,
				fmt.Sprintf("副本 %s 的波次列表为空", def.ID))
		}
		if _, ok := s.difficulties[def.Difficulty]; !ok {
			return nil, xerrors.New(xerrors.CodeCatalogInvalid,
				fmt.Sprintf("副本 %s 引用了未配置的难度 %s", def.ID, def.Difficulty))
		}
		if _, dup := s.encounters[def.ID]; dup {
			return nil, xerrors.New(xerrors.CodeCatalogInvalid,
				fmt.Sprintf("副本 ID 重复: %s", def.ID))
		}
		s.encounters[def.ID] = def
	}

	for difficulty, profile := range s.difficulties {
		if err := profile.buildCDF(); err != nil {
			return nil, xerrors.New(xerrors.CodeCatalogInvalid,
				fmt.Sprintf("难度 %s 的稀有度权重非法: %v", difficulty, err))
		}
	}

	return s, nil
}

// buildCDF 校验权重和为 1.0 并预计算累积分布
func (p *DifficultyProfile) buildCDF() error {
	if len(p.RarityWeights) == 0 {
		return fmt.Errorf("权重表为空")
	}

	// 按稀有度排序保证采样顺序稳定
	sort.Slice(p.RarityWeights, func(i, j int) bool {
		return p.RarityWeights[i].Rarity.Order() < p.RarityWeights[j].Rarity.Order()
	})

	sum := 0.0
	p.cdf = make([]float64, len(p.RarityWeights))
	for i, w := range p.RarityWeights {
		if w.Rarity.Order() < 0 {
			return fmt.Errorf("未知稀有度 %s", w.Rarity)
		}
		if w.Weight < 0 {
			return fmt.Errorf("稀有度 %s 权重为负", w.Rarity)
		}
		sum += w.Weight
		p.cdf[i] = sum
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("权重之和为 %v, 应为 1.0", sum)
	}
	// 消除浮点累加误差,保证最后一档必然命中
	p.cdf[len(p.cdf)-1] = 1.0
	return nil
}

// SampleRarity 按累积分布采样稀有度,roll 取值 [0,1)
func (p *DifficultyProfile) SampleRarity(roll float64) raidmodel.Rarity {
	for i, bound := range p.cdf {
		if roll < bound {
			return p.RarityWeights[i].Rarity
		}
	}
	return p.RarityWeights[len(p.RarityWeights)-1].Rarity
}

// Get 按 ID 查询副本模板
func (s *CatalogService) Get(encounterID string) (*raidmodel.EncounterDefinition, error) {
	def, ok := s.encounters[encounterID]
	if !ok {
		return nil, xerrors.NewEncounterNotFoundError(encounterID)
	}
	return def, nil
}

// List 返回全部副本模板,顺序按 ID 稳定
func (s *CatalogService) List() []*raidmodel.EncounterDefinition {
	ids := make([]string, 0, len(s.encounters))
	for id := range s.encounters {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	defs := make([]*raidmodel.EncounterDefinition, 0, len(ids))
	for _, id := range ids {
		defs = append(defs, s.encounters[id])
	}
	return defs
}

// Difficulty 返回难度配置
func (s *CatalogService) Difficulty(d raidmodel.Difficulty) (*DifficultyProfile, bool) {
	profile, ok := s.difficulties[d]
	return profile, ok
}

// RarityFactor 返回稀有度属性倍率
func (s *CatalogService) RarityFactor(r raidmodel.Rarity) (float64, bool) {
	factor, ok := s.rarityFactors[r]
	return factor, ok
}

// StatTemplate 返回职业/槽位的属性模板
func (s *CatalogService) StatTemplate(role raidmodel.RoleArchetype, slot raidmodel.EquipmentSlot) (raidmodel.StatBlock, bool) {
	slots, ok := s.statTemplates[role]
	if !ok {
		return raidmodel.StatBlock{}, false
	}
	tpl, ok := slots[slot]
	return tpl, ok
}

// ProcPool 返回职业特效池
func (s *CatalogService) ProcPool(role raidmodel.RoleArchetype) ([]raidmodel.ProcEffect, bool) {
	pool, ok := s.procPools[role]
	return pool, ok
}

// UniqueItem 返回副本专属物品,每个副本至多注册一件
func (s *CatalogService) UniqueItem(encounterID string) (raidmodel.Item, bool) {
	item, ok := s.uniqueItems[encounterID]
	return item, ok
}
