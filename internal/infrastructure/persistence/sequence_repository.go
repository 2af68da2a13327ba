package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/buildledger/backend/internal/domain/sequence"
	"github.com/buildledger/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSequenceRepository implements sequence.Repository using GORM. The
// increment is a single UPDATE so concurrent callers on the same key
// serialize on the row and never issue a duplicate number.
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewGormSequenceRepository creates a new GormSequenceRepository
func NewGormSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

// Next issues the current counter value for the key and persists counter+1.
// An absent key yields 1 and leaves the row at 2.
func (r *GormSequenceRepository) Next(ctx context.Context, entityKey string) (int64, error) {
	if entityKey == "" {
		return 0, shared.NewDomainError("INVALID_ENTITY_KEY", "Entity key cannot be empty")
	}

	var issued int64
	err := dbFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&sequence.NumberSequence{}).
			Where("entity_key = ?", entityKey).
			Updates(map[string]interface{}{
				"counter":    gorm.Expr("counter + 1"),
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			row, err := sequence.NewNumberSequence(entityKey, 2)
			if err != nil {
				return err
			}
			insert := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
			if insert.Error != nil {
				return insert.Error
			}
			if insert.RowsAffected > 0 {
				issued = 1
				return nil
			}
			// Lost the insert race; the row exists now, increment it
			result = tx.Model(&sequence.NumberSequence{}).
				Where("entity_key = ?", entityKey).
				Updates(map[string]interface{}{
					"counter":    gorm.Expr("counter + 1"),
					"updated_at": time.Now(),
				})
			if result.Error != nil {
				return result.Error
			}
		}

		var row sequence.NumberSequence
		if err := tx.First(&row, "entity_key = ?", entityKey).Error; err != nil {
			return err
		}
		issued = row.Counter - 1
		return nil
	})
	if err != nil {
		return 0, err
	}
	return issued, nil
}

// Peek returns the current counter without mutating it. An absent key yields
// 1 and inserts nothing.
func (r *GormSequenceRepository) Peek(ctx context.Context, entityKey string) (int64, error) {
	if entityKey == "" {
		return 0, shared.NewDomainError("INVALID_ENTITY_KEY", "Entity key cannot be empty")
	}

	var row sequence.NumberSequence
	if err := dbFromContext(ctx, r.db).First(&row, "entity_key = ?", entityKey).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 1, nil
		}
		return 0, err
	}
	return row.Counter, nil
}

// Set overwrites the counter for the key, creating the row if needed
func (r *GormSequenceRepository) Set(ctx context.Context, entityKey string, counter int64) error {
	row, err := sequence.NewNumberSequence(entityKey, counter)
	if err != nil {
		return err
	}
	return dbFromContext(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entity_key"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"counter":    counter,
				"updated_at": time.Now(),
			}),
		}).
		Create(row).Error
}

// List returns all known sequences ordered by entity key
func (r *GormSequenceRepository) List(ctx context.Context) ([]*sequence.NumberSequence, error) {
	var rows []*sequence.NumberSequence
	if err := dbFromContext(ctx, r.db).
		Order("entity_key ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
