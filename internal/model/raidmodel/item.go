package raidmodel

// Rarity 稀有度档位,有序: rare < epic < legendary
type Rarity string

const (
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Order 返回稀有度排序值,未知稀有度为 -1
func (r Rarity) Order() int {
	switch r {
	case RarityRare:
		return 0
	case RarityEpic:
		return 1
	case RarityLegendary:
		return 2
	default:
		return -1
	}
}

// ItemKind 物品形态,封闭集合,每种形态只携带对自己有效的字段
type ItemKind string

const (
	KindGear       ItemKind = "gear"
	KindConsumable ItemKind = "consumable"
	KindUnique     ItemKind = "unique"
)

// EquipmentSlot 装备槽位
type EquipmentSlot string

const (
	SlotWeapon  EquipmentSlot = "weapon"
	SlotHelmet  EquipmentSlot = "helmet"
	SlotChest   EquipmentSlot = "chest"
	SlotBoots   EquipmentSlot = "boots"
	SlotTrinket EquipmentSlot = "trinket"
)

// StatBlock 物品数值属性
type StatBlock struct {
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
	HP      int `json:"hp"`
}

// ProcEffect 触发型特效,触发判定由战斗层执行
type ProcEffect struct {
	Name      string  `json:"name"`
	Kind      string  `json:"kind"`
	Magnitude float64 `json:"magnitude"`
	Chance    float64 `json:"chance"`
}

// Item 生成的物品。Kind 决定哪些字段有效:
// gear 携带 Slot/Stats/Procs, consumable 只携带 Stats,
// unique 额外携带 EncounterID 来源标记。
type Item struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Kind        ItemKind      `json:"kind"`
	Rarity      Rarity        `json:"rarity"`
	Slot        EquipmentSlot `json:"slot,omitempty"`
	Stats       StatBlock     `json:"stats"`
	Procs       []ProcEffect  `json:"procs,omitempty"`
	EncounterID string        `json:"encounter_id,omitempty"`
}
