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

const exportVersion = "1.0"

type SetWithCards struct {
	Set   *types.FlashcardSet
	Cards []*types.Flashcard
}

type SetSummary struct {
	Set      *types.FlashcardSet
	NumCards int
}

// ExportEnvelope is the versioned wrapper shared by flashcard-set and quiz
// exports, and the shape Import accepts back.
type ExportEnvelope struct {
	Type       string    `json:"type"`
	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Data       any       `json:"data"`
}

type FlashcardSetExport struct {
	ID          uuid.UUID    `json:"id"`
	Topic       string       `json:"topic"`
	Description string       `json:"description"`
	CreatedAt   time.Time    `json:"created_at"`
	Cards       []CardExport `json:"cards"`
}

type CardExport struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type FlashcardService interface {
	// Generate runs the full pipeline: call the generator, then persist the
	// set and all its cards in one transaction. An empty generation result
	// aborts with ErrGenerationFailed before anything is written.
	Generate(ctx context.Context, userID uuid.UUID, topic, sourceText, description string, numCards int) (*SetWithCards, error)
	List(ctx context.Context, userID uuid.UUID, skip, limit int) ([]SetSummary, error)
	Get(ctx context.Context, userID, setID uuid.UUID) (*SetWithCards, error)
	Update(ctx context.Context, userID, setID uuid.UUID, topic, description *string) (*SetWithCards, error)
	Delete(ctx context.Context, userID, setID uuid.UUID) error
	Export(ctx context.Context, userID, setID uuid.UUID) (*ExportEnvelope, error)
	// Import persists cards straight from the payload, skipping the
	// generator. Items missing question or answer are dropped silently; an
	// import that would persist zero cards is rejected.
	Import(ctx context.Context, userID uuid.UUID, data map[string]any) (*SetWithCards, error)
}

type flashcardService struct {
	db        *gorm.DB
	log       *logger.Logger
	setRepo   repos.FlashcardSetRepo
	cardRepo  repos.FlashcardRepo
	generator GeneratorService
}

func NewFlashcardService(db *gorm.DB, log *logger.Logger, setRepo repos.FlashcardSetRepo, cardRepo repos.FlashcardRepo, generator GeneratorService) FlashcardService {
	return &flashcardService{
		db:        db,
		log:       log.With("service", "FlashcardService"),
		setRepo:   setRepo,
		cardRepo:  cardRepo,
		generator: generator,
	}
}

func (fs *flashcardService) Generate(ctx context.Context, userID uuid.UUID, topic, sourceText, description string, numCards int) (*SetWithCards, error) {
	drafts := fs.generator.GenerateFlashcards(ctx, topic, sourceText, numCards)
	if len(drafts) == 0 {
		fs.log.Warn("Generator returned no flashcards", "topic", topic)
		return nil, ErrGenerationFailed
	}
	return fs.createSetWithCards(ctx, userID, topic, description, drafts)
}

func (fs *flashcardService) createSetWithCards(ctx context.Context, userID uuid.UUID, topic, description string, drafts []CardDraft) (*SetWithCards, error) {
	set := &types.FlashcardSet{
		ID:          uuid.New(),
		UserID:      userID,
		Topic:       topic,
		Description: description,
	}
	cards := make([]*types.Flashcard, 0, len(drafts))
	// Spread creation timestamps so creation order survives the
	// order-by-created_at read path even within one batch insert.
	base := time.Now()
	for i, d := range drafts {
		cards = append(cards, &types.Flashcard{
			ID:             uuid.New(),
			FlashcardSetID: set.ID,
			Question:       d.Question,
			Answer:         d.Answer,
			CreatedAt:      base.Add(time.Duration(i) * time.Microsecond),
		})
	}
	err := fs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := fs.setRepo.Create(ctx, tx, set); err != nil {
			return fmt.Errorf("failed to create flashcard set: %w", err)
		}
		if err := fs.cardRepo.Create(ctx, tx, cards); err != nil {
			return fmt.Errorf("failed to create flashcards: %w", err)
		}
		return nil
	})
	if err != nil {
		fs.log.Error("Flashcard set creation rolled back", "error", err)
		return nil, err
	}
	return &SetWithCards{Set: set, Cards: cards}, nil
}

func (fs *flashcardService) List(ctx context.Context, userID uuid.UUID, skip, limit int) ([]SetSummary, error) {
	sets, err := fs.setRepo.ListOwned(ctx, nil, userID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list flashcard sets: %w", err)
	}
	setIDs := make([]uuid.UUID, 0, len(sets))
	for _, s := range sets {
		setIDs = append(setIDs, s.ID)
	}
	counts, err := fs.cardRepo.CountBySetIDs(ctx, nil, setIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count flashcards: %w", err)
	}
	summaries := make([]SetSummary, 0, len(sets))
	for _, s := range sets {
		summaries = append(summaries, SetSummary{Set: s, NumCards: int(counts[s.ID])})
	}
	return summaries, nil
}

func (fs *flashcardService) Get(ctx context.Context, userID, setID uuid.UUID) (*SetWithCards, error) {
	set, err := fs.setRepo.GetOwned(ctx, nil, setID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load flashcard set: %w", err)
	}
	cards, err := fs.cardRepo.GetBySetID(ctx, nil, set.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load flashcards: %w", err)
	}
	return &SetWithCards{Set: set, Cards: cards}, nil
}

func (fs *flashcardService) Update(ctx context.Context, userID, setID uuid.UUID, topic, description *string) (*SetWithCards, error) {
	set, err := fs.setRepo.GetOwned(ctx, nil, setID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load flashcard set: %w", err)
	}
	if topic != nil {
		set.Topic = strings.TrimSpace(*topic)
	}
	if description != nil {
		set.Description = *description
	}
	if err := fs.setRepo.Save(ctx, nil, set); err != nil {
		return nil, fmt.Errorf("failed to update flashcard set: %w", err)
	}
	cards, err := fs.cardRepo.GetBySetID(ctx, nil, set.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load flashcards: %w", err)
	}
	return &SetWithCards{Set: set, Cards: cards}, nil
}

func (fs *flashcardService) Delete(ctx context.Context, userID, setID uuid.UUID) error {
	set, err := fs.setRepo.GetOwned(ctx, nil, setID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load flashcard set: %w", err)
	}
	return fs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := fs.cardRepo.DeleteBySetID(ctx, tx, set.ID); err != nil {
			return fmt.Errorf("failed to delete flashcards: %w", err)
		}
		if err := fs.setRepo.DeleteByID(ctx, tx, set.ID); err != nil {
			return fmt.Errorf("failed to delete flashcard set: %w", err)
		}
		return nil
	})
}

func (fs *flashcardService) Export(ctx context.Context, userID, setID uuid.UUID) (*ExportEnvelope, error) {
	result, err := fs.Get(ctx, userID, setID)
	if err != nil {
		return nil, err
	}
	cards := make([]CardExport, 0, len(result.Cards))
	for _, c := range result.Cards {
		cards = append(cards, CardExport{Question: c.Question, Answer: c.Answer})
	}
	return &ExportEnvelope{
		Type:       "flashcard_set",
		Version:    exportVersion,
		ExportedAt: time.Now().UTC(),
		Data: FlashcardSetExport{
			ID:          result.Set.ID,
			Topic:       result.Set.Topic,
			Description: result.Set.Description,
			CreatedAt:   result.Set.CreatedAt,
			Cards:       cards,
		},
	}, nil
}

func (fs *flashcardService) Import(ctx context.Context, userID uuid.UUID, data map[string]any) (*SetWithCards, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImport
	}
	topic := strings.TrimSpace(coerceString(data["topic"]))
	if topic == "" {
		topic = "Imported Set"
	}
	description := coerceString(data["description"])

	rawCards, _ := data["cards"].([]any)
	if len(rawCards) == 0 {
		return nil, ErrEmptyImport
	}
	drafts := make([]CardDraft, 0, len(rawCards))
	for _, item := range rawCards {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		q, hasQ := obj["question"]
		a, hasA := obj["answer"]
		if !hasQ || !hasA {
			continue
		}
		drafts = append(drafts, CardDraft{
			Question: coerceString(q),
			Answer:   coerceString(a),
		})
	}
	if len(drafts) == 0 {
		return nil, ErrEmptyImport
	}
	return fs.createSetWithCards(ctx, userID, topic, description, drafts)
}
