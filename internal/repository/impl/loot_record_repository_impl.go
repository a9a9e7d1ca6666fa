package impl

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aarondl/sqlboiler/v4/queries"
	"github.com/friendsofgo/errors"

	"tsu-raid/internal/repository/entity"
	"tsu-raid/internal/repository/interfaces"
)

type lootRecordRepositoryImpl struct {
	db *sql.DB
}

// NewLootRecordRepository 创建掉落历史仓储实例。
func NewLootRecordRepository(db *sql.DB) interfaces.LootRecordRepository {
	return &lootRecordRepositoryImpl{db: db}
}

func (r *lootRecordRepositoryImpl) Create(ctx context.Context, record *entity.LootDropRecord) error {
	if record == nil {
		return fmt.Errorf("loot drop record is nil")
	}

	query := `
		INSERT INTO raid_runtime.loot_drop_records (
			id, instance_id, encounter_id, participant_id,
			item_id, item_name, kind, rarity, slot
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.InstanceID,
		record.EncounterID,
		record.ParticipantID,
		record.ItemID,
		record.ItemName,
		record.Kind,
		record.Rarity,
		record.Slot,
	)
	if err != nil {
		return errors.Wrap(err, "插入掉落记录失败")
	}
	return nil
}

func (r *lootRecordRepositoryImpl) ListByParticipant(ctx context.Context, participantID string, limit int) ([]*entity.LootDropRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var records []*entity.LootDropRecord
	err := queries.Raw(`
		SELECT id, instance_id, encounter_id, participant_id,
		       item_id, item_name, kind, rarity, slot, created_at
		FROM raid_runtime.loot_drop_records
		WHERE participant_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, participantID, limit).Bind(ctx, r.db, &records)
	if err != nil {
		return nil, errors.Wrap(err, "查询掉落记录失败")
	}
	return records, nil
}
