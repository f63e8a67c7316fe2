package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartcram/smartcram-backend/internal/logger"
	"github.com/smartcram/smartcram-backend/internal/types"
)

type FlashcardRepo interface {
	Create(ctx context.Context, tx *gorm.DB, cards []*types.Flashcard) error
	// GetBySetID returns cards in creation order.
	GetBySetID(ctx context.Context, tx *gorm.DB, setID uuid.UUID) ([]*types.Flashcard, error)
	CountBySetIDs(ctx context.Context, tx *gorm.DB, setIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	DeleteBySetID(ctx context.Context, tx *gorm.DB, setID uuid.UUID) error
}

type flashcardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFlashcardRepo(db *gorm.DB, baseLog *logger.Logger) FlashcardRepo {
	return &flashcardRepo{db: db, log: baseLog.With("repo", "FlashcardRepo")}
}

func (r *flashcardRepo) Create(ctx context.Context, tx *gorm.DB, cards []*types.Flashcard) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(cards) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).Create(&cards).Error
}

func (r *flashcardRepo) GetBySetID(ctx context.Context, tx *gorm.DB, setID uuid.UUID) ([]*types.Flashcard, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Flashcard
	if err := transaction.WithContext(ctx).
		Where("flashcard_set_id = ?", setID).
		Order("created_at, id").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *flashcardRepo) CountBySetIDs(ctx context.Context, tx *gorm.DB, setIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	counts := make(map[uuid.UUID]int64, len(setIDs))
	if len(setIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		FlashcardSetID uuid.UUID
		N              int64
	}
	if err := transaction.WithContext(ctx).
		Model(&types.Flashcard{}).
		Select("flashcard_set_id, count(*) as n").
		Where("flashcard_set_id IN ?", setIDs).
		Group("flashcard_set_id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.FlashcardSetID] = row.N
	}
	return counts, nil
}

func (r *flashcardRepo) DeleteBySetID(ctx context.Context, tx *gorm.DB, setID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("flashcard_set_id = ?", setID).
		Delete(&types.Flashcard{}).Error
}
