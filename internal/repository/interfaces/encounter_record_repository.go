package interfaces

import (
	"context"

	"tsu-raid/internal/repository/entity"
)

// EncounterRecordRepository 负责终态副本实例的归档持久化。
type EncounterRecordRepository interface {
	Upsert(ctx context.Context, record *entity.EncounterRecord) error
	GetByInstanceID(ctx context.Context, instanceID string) (*entity.EncounterRecord, error)
	ListRecent(ctx context.Context, encounterID string, limit int) ([]*entity.EncounterRecord, error)
}

// LootRecordRepository 负责掉落历史的持久化。
type LootRecordRepository interface {
	Create(ctx context.Context, record *entity.LootDropRecord) error
	ListByParticipant(ctx context.Context, participantID string, limit int) ([]*entity.LootDropRecord, error)
}
