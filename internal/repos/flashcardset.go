package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartcram/smartcram-backend/internal/logger"
	"github.com/smartcram/smartcram-backend/internal/types"
)

type FlashcardSetRepo interface {
	Create(ctx context.Context, tx *gorm.DB, set *types.FlashcardSet) error
	// GetOwned returns the set only when it belongs to userID; a set owned by
	// another user is indistinguishable from a missing one.
	GetOwned(ctx context.Context, tx *gorm.DB, setID, userID uuid.UUID) (*types.FlashcardSet, error)
	ListOwned(ctx context.Context, tx *gorm.DB, userID uuid.UUID, offset, limit int) ([]*types.FlashcardSet, error)
	Save(ctx context.Context, tx *gorm.DB, set *types.FlashcardSet) error
	DeleteByID(ctx context.Context, tx *gorm.DB, setID uuid.UUID) error
}

type flashcardSetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFlashcardSetRepo(db *gorm.DB, baseLog *logger.Logger) FlashcardSetRepo {
	return &flashcardSetRepo{db: db, log: baseLog.With("repo", "FlashcardSetRepo")}
}

func (r *flashcardSetRepo) Create(ctx context.Context, tx *gorm.DB, set *types.FlashcardSet) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(set).Error
}

func (r *flashcardSetRepo) GetOwned(ctx context.Context, tx *gorm.DB, setID, userID uuid.UUID) (*types.FlashcardSet, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.FlashcardSet
	if err := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", setID, userID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *flashcardSetRepo) ListOwned(ctx context.Context, tx *gorm.DB, userID uuid.UUID, offset, limit int) ([]*types.FlashcardSet, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.FlashcardSet
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at, id").
		Offset(offset).
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *flashcardSetRepo) Save(ctx context.Context, tx *gorm.DB, set *types.FlashcardSet) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(set).Error
}

func (r *flashcardSetRepo) DeleteByID(ctx context.Context, tx *gorm.DB, setID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", setID).
		Delete(&types.FlashcardSet{}).Error
}
