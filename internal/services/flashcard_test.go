package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/smartcram/smartcram-backend/internal/repos"
	"github.com/smartcram/smartcram-backend/internal/types"
)

// failingCardRepo rejects every insert, simulating a write failure after the
// parent set row has already been staged inside the transaction.
type failingCardRepo struct {
	repos.FlashcardRepo
}

func (failingCardRepo) Create(context.Context, *gorm.DB, []*types.Flashcard) error {
	return errors.New("card insert failed")
}

func TestFlashcardGeneratePersistsSetAndCards(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "gen@test.com")
	gen := &stubGenerator{cards: []CardDraft{
		{Question: "Q1", Answer: "A1"},
		{Question: "Q2", Answer: "A2"},
		{Question: "Q3", Answer: "A3"},
	}}
	svc := newFlashcardServiceForTest(t, db, gen)

	result, err := svc.Generate(context.Background(), user.ID, "Chemistry", "the source text", "notes", 3)
	require.NoError(t, err)
	assert.Equal(t, "Chemistry", result.Set.Topic)
	assert.Equal(t, "notes", result.Set.Description)
	assert.Equal(t, user.ID, result.Set.UserID)
	require.Len(t, result.Cards, 3)

	// Read it back and confirm creation order survived the batch insert.
	loaded, err := svc.Get(context.Background(), user.ID, result.Set.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Cards, 3)
	for i, q := range []string{"Q1", "Q2", "Q3"} {
		assert.Equal(t, q, loaded.Cards[i].Question)
	}
}

func TestFlashcardGenerateEmptyResultAborts(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "empty@test.com")
	svc := newFlashcardServiceForTest(t, db, &stubGenerator{})

	_, err := svc.Generate(context.Background(), user.ID, "t", "the source text", "", 5)
	require.ErrorIs(t, err, ErrGenerationFailed)

	var count int64
	require.NoError(t, db.Model(&types.FlashcardSet{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestFlashcardGenerateRollsBackOnCardInsertFailure(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "rollback@test.com")
	log := newTestLogger()
	gen := &stubGenerator{cards: []CardDraft{{Question: "Q", Answer: "A"}}}
	svc := NewFlashcardService(db, log, repos.NewFlashcardSetRepo(db, log), failingCardRepo{}, gen)

	_, err := svc.Generate(context.Background(), user.ID, "t", "the source text", "", 1)
	require.Error(t, err)

	// The set insert must not survive the failed card insert.
	var sets int64
	require.NoError(t, db.Model(&types.FlashcardSet{}).Count(&sets).Error)
	assert.Zero(t, sets)
}

func TestFlashcardListCountsPerSet(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "list@test.com")
	svc := newFlashcardServiceForTest(t, db, &stubGenerator{cards: []CardDraft{
		{Question: "Q", Answer: "A"},
		{Question: "Q", Answer: "A"},
	}})

	first, err := svc.Generate(context.Background(), user.ID, "first", "the source text", "", 2)
	require.NoError(t, err)
	second, err := svc.Generate(context.Background(), user.ID, "second", "the source text", "", 2)
	require.NoError(t, err)

	summaries, err := svc.List(context.Background(), user.ID, 0, 50)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, first.Set.ID, summaries[0].Set.ID)
	assert.Equal(t, second.Set.ID, summaries[1].Set.ID)
	assert.Equal(t, 2, summaries[0].NumCards)
	assert.Equal(t, 2, summaries[1].NumCards)
}

func TestFlashcardListPagination(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "page@test.com")
	svc := newFlashcardServiceForTest(t, db, &stubGenerator{cards: []CardDraft{{Question: "Q", Answer: "A"}}})

	for i := 0; i < 5; i++ {
		_, err := svc.Generate(context.Background(), user.ID, fmt.Sprintf("topic-%d", i), "the source text", "", 1)
		require.NoError(t, err)
	}

	page, err := svc.List(context.Background(), user.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "topic-2", page[0].Set.Topic)
	assert.Equal(t, "topic-3", page[1].Set.Topic)
}

func TestFlashcardGetScopedToOwner(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@test.com")
	intruder := createTestUser(t, db, "intruder@test.com")
	svc := newFlashcardServiceForTest(t, db, &stubGenerator{cards: []CardDraft{{Question: "Q", Answer: "A"}}})

	result, err := svc.Generate(context.Background(), owner.ID, "t", "the source text", "", 1)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), intruder.ID, result.Set.ID)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Update(context.Background(), intruder.ID, result.Set.ID, nil, nil)
	require.ErrorIs(t, err, ErrNotFound)
	err = svc.Delete(context.Background(), intruder.ID, result.Set.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFlashcardUpdateMetadata(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "update@test.com")
	svc := newFlashcardServiceForTest(t, db, &stubGenerator{cards: []CardDraft{{Question: "Q", Answer: "A"}}})

	result, err := svc.Generate(context.Background(), user.ID, "old", "the source text", "old desc", 1)
	require.NoError(t, err)

	topic := "  new topic  "
	updated, err := svc.Update(context.Background(), user.ID, result.Set.ID, &topic, nil)
	require.NoError(t, err)
	assert.Equal(t, "new topic", updated.Set.Topic)
	assert.Equal(t, "old desc", updated.Set.Description)
	require.Len(t, updated.Cards, 1)
}

func TestFlashcardDeleteRemovesCards(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "delete@test.com")
	svc := newFlashcardServiceForTest(t, db, &stubGenerator{cards: []CardDraft{
		{Question: "Q", Answer: "A"},
		{Question: "Q", Answer: "A"},
	}})

	result, err := svc.Generate(context.Background(), user.ID, "t", "the source text", "", 2)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), user.ID, result.Set.ID))

	_, err = svc.Get(context.Background(), user.ID, result.Set.ID)
	require.ErrorIs(t, err, ErrNotFound)
	var orphans int64
	require.NoError(t, db.Model(&types.Flashcard{}).Where("flashcard_set_id = ?", result.Set.ID).Count(&orphans).Error)
	assert.Zero(t, orphans)
}

func TestFlashcardExportImportRoundTrip(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "roundtrip@test.com")
	svc := newFlashcardServiceForTest(t, db, &stubGenerator{cards: []CardDraft{
		{Question: "Q1", Answer: "A1"},
		{Question: "Q2", Answer: "A2"},
	}})

	original, err := svc.Generate(context.Background(), user.ID, "Physics", "the source text", "desc", 2)
	require.NoError(t, err)

	envelope, err := svc.Export(context.Background(), user.ID, original.Set.ID)
	require.NoError(t, err)
	assert.Equal(t, "flashcard_set", envelope.Type)
	assert.Equal(t, "1.0", envelope.Version)
	export, ok := envelope.Data.(FlashcardSetExport)
	require.True(t, ok)
	require.Len(t, export.Cards, 2)

	// Re-import the exported payload as it would arrive over the wire.
	cards := make([]any, 0, len(export.Cards))
	for _, c := range export.Cards {
		cards = append(cards, map[string]any{"question": c.Question, "answer": c.Answer})
	}
	imported, err := svc.Import(context.Background(), user.ID, map[string]any{
		"topic":       export.Topic,
		"description": export.Description,
		"cards":       cards,
	})
	require.NoError(t, err)
	assert.NotEqual(t, original.Set.ID, imported.Set.ID)
	assert.Equal(t, "Physics", imported.Set.Topic)
	require.Len(t, imported.Cards, 2)
	assert.Equal(t, "Q1", imported.Cards[0].Question)
	assert.Equal(t, "A2", imported.Cards[1].Answer)
}

func TestFlashcardImportDefaultsTopic(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "defaults@test.com")
	svc := newFlashcardServiceForTest(t, db, &stubGenerator{})

	imported, err := svc.Import(context.Background(), user.ID, map[string]any{
		"cards": []any{map[string]any{"question": "Q", "answer": "A"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Imported Set", imported.Set.Topic)
}

func TestFlashcardImportDropsMalformedItems(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "tolerant@test.com")
	svc := newFlashcardServiceForTest(t, db, &stubGenerator{})

	imported, err := svc.Import(context.Background(), user.ID, map[string]any{
		"topic": "mixed",
		"cards": []any{
			map[string]any{"question": "good", "answer": "kept"},
			map[string]any{"question": "no answer"},
			"garbage",
		},
	})
	require.NoError(t, err)
	require.Len(t, imported.Cards, 1)
	assert.Equal(t, "good", imported.Cards[0].Question)
}

func TestFlashcardImportRejectsEmpty(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "reject@test.com")
	svc := newFlashcardServiceForTest(t, db, &stubGenerator{})

	_, err := svc.Import(context.Background(), user.ID, nil)
	require.ErrorIs(t, err, ErrEmptyImport)
	_, err = svc.Import(context.Background(), user.ID, map[string]any{"topic": "t", "cards": []any{}})
	require.ErrorIs(t, err, ErrEmptyImport)
	_, err = svc.Import(context.Background(), user.ID, map[string]any{
		"topic": "t",
		"cards": []any{map[string]any{"question": "only"}},
	})
	require.ErrorIs(t, err, ErrEmptyImport)
}
