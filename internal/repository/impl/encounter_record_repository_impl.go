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

type encounterRecordRepositoryImpl struct {
	db *sql.DB
}

// NewEncounterRecordRepository 创建副本归档仓储实例。
func NewEncounterRecordRepository(db *sql.DB) interfaces.EncounterRecordRepository {
	return &encounterRecordRepositoryImpl{db: db}
}

func (r *encounterRecordRepositoryImpl) Upsert(ctx context.Context, record *entity.EncounterRecord) error {
	if record == nil {
		return fmt.Errorf("encounter record is nil")
	}

	query := `
		INSERT INTO raid_runtime.encounter_records (
			instance_id, encounter_id, difficulty, final_state, wave_index,
			roster, rewards, started_at, ended_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (instance_id) DO UPDATE SET
			final_state = EXCLUDED.final_state,
			wave_index  = EXCLUDED.wave_index,
			rewards     = EXCLUDED.rewards,
			ended_at    = EXCLUDED.ended_at,
			updated_at  = NOW()
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		record.InstanceID,
		record.EncounterID,
		record.Difficulty,
		record.FinalState,
		record.WaveIndex,
		nullJSON(record.Roster),
		record.Rewards,
		record.StartedAt,
		record.EndedAt,
	)
	if err != nil {
		return errors.Wrap(err, "插入副本归档记录失败")
	}
	return nil
}

func (r *encounterRecordRepositoryImpl) GetByInstanceID(ctx context.Context, instanceID string) (*entity.EncounterRecord, error) {
	var record entity.EncounterRecord
	err := queries.Raw(`
		SELECT instance_id, encounter_id, difficulty, final_state, wave_index,
		       roster, rewards, started_at, ended_at, created_at, updated_at
		FROM raid_runtime.encounter_records
		WHERE instance_id = $1
	`, instanceID).Bind(ctx, r.db, &record)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, errors.Wrap(err, "查询副本归档记录失败")
	}
	return &record, nil
}

func (r *encounterRecordRepositoryImpl) ListRecent(ctx context.Context, encounterID string, limit int) ([]*entity.EncounterRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var records []*entity.EncounterRecord
	err := queries.Raw(`
		SELECT instance_id, encounter_id, difficulty, final_state, wave_index,
		       roster, rewards, started_at, ended_at, created_at, updated_at
		FROM raid_runtime.encounter_records
		WHERE encounter_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, encounterID, limit).Bind(ctx, r.db, &records)
	if err != nil {
		return nil, errors.Wrap(err, "查询副本归档列表失败")
	}
	return records, nil
}

func nullJSON(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
