package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartcram/smartcram-backend/internal/logger"
	"github.com/smartcram/smartcram-backend/internal/types"
)

type QuizRepo interface {
	Create(ctx context.Context, tx *gorm.DB, quiz *types.Quiz) error
	// GetOwned returns the quiz only when it belongs to userID; a quiz owned
	// by another user is indistinguishable from a missing one.
	GetOwned(ctx context.Context, tx *gorm.DB, quizID, userID uuid.UUID) (*types.Quiz, error)
	ListOwned(ctx context.Context, tx *gorm.DB, userID uuid.UUID, offset, limit int) ([]*types.Quiz, error)
	Save(ctx context.Context, tx *gorm.DB, quiz *types.Quiz) error
	DeleteByID(ctx context.Context, tx *gorm.DB, quizID uuid.UUID) error
}

type quizRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizRepo(db *gorm.DB, baseLog *logger.Logger) QuizRepo {
	return &quizRepo{db: db, log: baseLog.With("repo", "QuizRepo")}
}

func (r *quizRepo) Create(ctx context.Context, tx *gorm.DB, quiz *types.Quiz) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(quiz).Error
}

func (r *quizRepo) GetOwned(ctx context.Context, tx *gorm.DB, quizID, userID uuid.UUID) (*types.Quiz, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.Quiz
	if err := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", quizID, userID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *quizRepo) ListOwned(ctx context.Context, tx *gorm.DB, userID uuid.UUID, offset, limit int) ([]*types.Quiz, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Quiz
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

func (r *quizRepo) Save(ctx context.Context, tx *gorm.DB, quiz *types.Quiz) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(quiz).Error
}

func (r *quizRepo) DeleteByID(ctx context.Context, tx *gorm.DB, quizID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", quizID).
		Delete(&types.Quiz{}).Error
}
