package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartcram/smartcram-backend/internal/logger"
	"github.com/smartcram/smartcram-backend/internal/types"
)

type QuizQuestionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, questions []*types.QuizQuestion) error
	// GetByQuizID returns questions in creation order.
	GetByQuizID(ctx context.Context, tx *gorm.DB, quizID uuid.UUID) ([]*types.QuizQuestion, error)
	CountByQuizIDs(ctx context.Context, tx *gorm.DB, quizIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	DeleteByQuizID(ctx context.Context, tx *gorm.DB, quizID uuid.UUID) error
}

type quizQuestionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuizQuestionRepo {
	return &quizQuestionRepo{db: db, log: baseLog.With("repo", "QuizQuestionRepo")}
}

func (r *quizQuestionRepo) Create(ctx context.Context, tx *gorm.DB, questions []*types.QuizQuestion) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(questions) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).Create(&questions).Error
}

func (r *quizQuestionRepo) GetByQuizID(ctx context.Context, tx *gorm.DB, quizID uuid.UUID) ([]*types.QuizQuestion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.QuizQuestion
	if err := transaction.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("created_at, id").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *quizQuestionRepo) CountByQuizIDs(ctx context.Context, tx *gorm.DB, quizIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	counts := make(map[uuid.UUID]int64, len(quizIDs))
	if len(quizIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		QuizID uuid.UUID
		N      int64
	}
	if err := transaction.WithContext(ctx).
		Model(&types.QuizQuestion{}).
		Select("quiz_id, count(*) as n").
		Where("quiz_id IN ?", quizIDs).
		Group("quiz_id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.QuizID] = row.N
	}
	return counts, nil
}

func (r *quizQuestionRepo) DeleteByQuizID(ctx context.Context, tx *gorm.DB, quizID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Delete(&types.QuizQuestion{}).Error
}
