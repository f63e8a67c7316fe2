package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartcram/smartcram-backend/internal/logger"
	"github.com/smartcram/smartcram-backend/internal/repos"
	"github.com/smartcram/smartcram-backend/internal/types"
)

type QuizWithQuestions struct {
	Quiz      *types.Quiz
	Questions []*types.QuizQuestion
}

type QuizSummary struct {
	Quiz         *types.Quiz
	NumQuestions int
}

// QuizResult is informational only; no attempt or grade is persisted.
type QuizResult struct {
	QuizID          uuid.UUID `json:"quiz_id"`
	TotalQuestions  int       `json:"total_questions"`
	CorrectAnswers  int       `json:"correct_answers"`
	ScorePercentage float64   `json:"score_percentage"`
	SubmittedAt     time.Time `json:"submitted_at"`
}

type QuizExport struct {
	ID        uuid.UUID        `json:"id"`
	Topic     string           `json:"topic"`
	Title     string           `json:"title"`
	CreatedAt time.Time        `json:"created_at"`
	Questions []QuestionExport `json:"questions"`
}

type QuestionExport struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
}

type QuizService interface {
	// Generate mirrors the flashcard pipeline: a draft with no questions
	// aborts with ErrGenerationFailed, otherwise quiz and questions are
	// committed in one transaction.
	Generate(ctx context.Context, userID uuid.UUID, topic, sourceText string, numQuestions int) (*QuizWithQuestions, error)
	List(ctx context.Context, userID uuid.UUID, skip, limit int) ([]QuizSummary, error)
	Get(ctx context.Context, userID, quizID uuid.UUID) (*QuizWithQuestions, error)
	Update(ctx context.Context, userID, quizID uuid.UUID, topic, title *string) (*QuizWithQuestions, error)
	Delete(ctx context.Context, userID, quizID uuid.UUID) error
	// Submit grades the answers against questions in creation order. The
	// answer count must equal the question count; no partial scoring.
	Submit(ctx context.Context, userID, quizID uuid.UUID, answers []int) (*QuizResult, error)
	Export(ctx context.Context, userID, quizID uuid.UUID) (*ExportEnvelope, error)
	Import(ctx context.Context, userID uuid.UUID, data map[string]any) (*QuizWithQuestions, error)
}

type quizService struct {
	db           *gorm.DB
	log          *logger.Logger
	quizRepo     repos.QuizRepo
	questionRepo repos.QuizQuestionRepo
	generator    GeneratorService
}

func NewQuizService(db *gorm.DB, log *logger.Logger, quizRepo repos.QuizRepo, questionRepo repos.QuizQuestionRepo, generator GeneratorService) QuizService {
	return &quizService{
		db:           db,
		log:          log.With("service", "QuizService"),
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		generator:    generator,
	}
}

func (qs *quizService) Generate(ctx context.Context, userID uuid.UUID, topic, sourceText string, numQuestions int) (*QuizWithQuestions, error) {
	draft := qs.generator.GenerateQuiz(ctx, topic, sourceText, numQuestions)
	if len(draft.Questions) == 0 {
		qs.log.Warn("Generator returned no quiz questions", "topic", topic)
		return nil, ErrGenerationFailed
	}
	return qs.createQuizWithQuestions(ctx, userID, topic, draft.Title, draft.Questions)
}

func (qs *quizService) createQuizWithQuestions(ctx context.Context, userID uuid.UUID, topic, title string, drafts []QuestionDraft) (*QuizWithQuestions, error) {
	quiz := &types.Quiz{
		ID:     uuid.New(),
		UserID: userID,
		Topic:  topic,
		Title:  title,
	}
	questions := make([]*types.QuizQuestion, 0, len(drafts))
	base := time.Now()
	for i, d := range drafts {
		questions = append(questions, &types.QuizQuestion{
			ID:       uuid.New(),
			QuizID:   quiz.ID,
			Question: d.Question,
			OptionA:  d.Options[0],
			OptionB:  d.Options[1],
			OptionC:  d.Options[2],
			OptionD:  d.Options[3],
			// Re-normalized at storage time regardless of what the
			// generator already guaranteed.
			CorrectIndex: mod4(d.CorrectIndex),
			CreatedAt:    base.Add(time.Duration(i) * time.Microsecond),
		})
	}
	err := qs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := qs.quizRepo.Create(ctx, tx, quiz); err != nil {
			return fmt.Errorf("failed to create quiz: %w", err)
		}
		if err := qs.questionRepo.Create(ctx, tx, questions); err != nil {
			return fmt.Errorf("failed to create quiz questions: %w", err)
		}
		return nil
	})
	if err != nil {
		qs.log.Error("Quiz creation rolled back", "error", err)
		return nil, err
	}
	return &QuizWithQuestions{Quiz: quiz, Questions: questions}, nil
}

func (qs *quizService) List(ctx context.Context, userID uuid.UUID, skip, limit int) ([]QuizSummary, error) {
	quizzes, err := qs.quizRepo.ListOwned(ctx, nil, userID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	quizIDs := make([]uuid.UUID, 0, len(quizzes))
	for _, q := range quizzes {
		quizIDs = append(quizIDs, q.ID)
	}
	counts, err := qs.questionRepo.CountByQuizIDs(ctx, nil, quizIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count quiz questions: %w", err)
	}
	summaries := make([]QuizSummary, 0, len(quizzes))
	for _, q := range quizzes {
		summaries = append(summaries, QuizSummary{Quiz: q, NumQuestions: int(counts[q.ID])})
	}
	return summaries, nil
}

func (qs *quizService) Get(ctx context.Context, userID, quizID uuid.UUID) (*QuizWithQuestions, error) {
	quiz, err := qs.quizRepo.GetOwned(ctx, nil, quizID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}
	questions, err := qs.questionRepo.GetByQuizID(ctx, nil, quiz.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz questions: %w", err)
	}
	return &QuizWithQuestions{Quiz: quiz, Questions: questions}, nil
}

func (qs *quizService) Update(ctx context.Context, userID, quizID uuid.UUID, topic, title *string) (*QuizWithQuestions, error) {
	quiz, err := qs.quizRepo.GetOwned(ctx, nil, quizID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}
	if topic != nil {
		quiz.Topic = strings.TrimSpace(*topic)
	}
	if title != nil {
		quiz.Title = strings.TrimSpace(*title)
	}
	if err := qs.quizRepo.Save(ctx, nil, quiz); err != nil {
		return nil, fmt.Errorf("failed to update quiz: %w", err)
	}
	questions, err := qs.questionRepo.GetByQuizID(ctx, nil, quiz.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz questions: %w", err)
	}
	return &QuizWithQuestions{Quiz: quiz, Questions: questions}, nil
}

func (qs *quizService) Delete(ctx context.Context, userID, quizID uuid.UUID) error {
	quiz, err := qs.quizRepo.GetOwned(ctx, nil, quizID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load quiz: %w", err)
	}
	return qs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := qs.questionRepo.DeleteByQuizID(ctx, tx, quiz.ID); err != nil {
			return fmt.Errorf("failed to delete quiz questions: %w", err)
		}
		if err := qs.quizRepo.DeleteByID(ctx, tx, quiz.ID); err != nil {
			return fmt.Errorf("failed to delete quiz: %w", err)
		}
		return nil
	})
}

func (qs *quizService) Submit(ctx context.Context, userID, quizID uuid.UUID, answers []int) (*QuizResult, error) {
	result, err := qs.Get(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}
	if len(answers) != len(result.Questions) {
		return nil, ErrAnswerCountMismatch
	}
	correct := 0
	for i, answer := range answers {
		if answer == result.Questions[i].CorrectIndex {
			correct++
		}
	}
	return &QuizResult{
		QuizID:          result.Quiz.ID,
		TotalQuestions:  len(result.Questions),
		CorrectAnswers:  correct,
		ScorePercentage: float64(correct) / float64(len(result.Questions)) * 100,
		SubmittedAt:     time.Now().UTC(),
	}, nil
}

func (qs *quizService) Export(ctx context.Context, userID, quizID uuid.UUID) (*ExportEnvelope, error) {
	result, err := qs.Get(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}
	questions := make([]QuestionExport, 0, len(result.Questions))
	for _, q := range result.Questions {
		questions = append(questions, QuestionExport{
			Question:     q.Question,
			Options:      []string{q.OptionA, q.OptionB, q.OptionC, q.OptionD},
			CorrectIndex: q.CorrectIndex,
		})
	}
	return &ExportEnvelope{
		Type:       "quiz",
		Version:    exportVersion,
		ExportedAt: time.Now().UTC(),
		Data: QuizExport{
			ID:        result.Quiz.ID,
			Topic:     result.Quiz.Topic,
			Title:     result.Quiz.Title,
			CreatedAt: result.Quiz.CreatedAt,
			Questions: questions,
		},
	}, nil
}

func (qs *quizService) Import(ctx context.Context, userID uuid.UUID, data map[string]any) (*QuizWithQuestions, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImport
	}
	topic := strings.TrimSpace(coerceString(data["topic"]))
	if topic == "" {
		topic = "Imported Quiz"
	}
	title := strings.TrimSpace(coerceString(data["title"]))
	if title == "" {
		title = "Quiz: " + topic
	}

	rawQuestions, _ := data["questions"].([]any)
	if len(rawQuestions) == 0 {
		return nil, ErrEmptyImport
	}
	drafts := make([]QuestionDraft, 0, len(rawQuestions))
	for _, item := range rawQuestions {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		q, hasQ := obj["question"]
		rawOptions, hasOpts := obj["options"]
		if !hasQ || !hasOpts {
			continue
		}
		drafts = append(drafts, QuestionDraft{
			Question:     coerceString(q),
			Options:      coerceOptions(rawOptions),
			CorrectIndex: mod4(coerceInt(obj["correct_index"])),
		})
	}
	if len(drafts) == 0 {
		return nil, ErrEmptyImport
	}
	return qs.createQuizWithQuestions(ctx, userID, topic, title, drafts)
}
