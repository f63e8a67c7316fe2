package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/smartcram/smartcram-backend/internal/logger"
	"github.com/smartcram/smartcram-backend/internal/repos"
	"github.com/smartcram/smartcram-backend/internal/types"
)

var testDBCounter atomic.Int64

func newTestLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// newTestDB opens a fresh in-memory sqlite database per test so tests can run
// in parallel without sharing state.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&types.User{},
		&types.FlashcardSet{},
		&types.Flashcard{},
		&types.Quiz{},
		&types.QuizQuestion{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *types.User {
	t.Helper()
	user := &types.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "x",
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// stubAI is an AIClient double returning a canned reply or error.
type stubAI struct {
	reply        string
	err          error
	lastMessages []AIMessage
}

func (s *stubAI) Chat(_ context.Context, messages []AIMessage, _ *AIOptions) (string, error) {
	s.lastMessages = messages
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

// stubGenerator is a GeneratorService double returning prepared drafts.
type stubGenerator struct {
	cards []CardDraft
	quiz  QuizDraft
}

func (s *stubGenerator) GenerateFlashcards(context.Context, string, string, int) []CardDraft {
	return s.cards
}

func (s *stubGenerator) GenerateQuiz(context.Context, string, string, int) QuizDraft {
	return s.quiz
}

func newFlashcardServiceForTest(t *testing.T, db *gorm.DB, gen GeneratorService) FlashcardService {
	t.Helper()
	log := newTestLogger()
	return NewFlashcardService(db, log, repos.NewFlashcardSetRepo(db, log), repos.NewFlashcardRepo(db, log), gen)
}

func newQuizServiceForTest(t *testing.T, db *gorm.DB, gen GeneratorService) QuizService {
	t.Helper()
	log := newTestLogger()
	return NewQuizService(db, log, repos.NewQuizRepo(db, log), repos.NewQuizQuestionRepo(db, log), gen)
}
