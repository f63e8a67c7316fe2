package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateFlashcardsParsesArray(t *testing.T) {
	ai := &stubAI{reply: `Here are your flashcards:
[
    {"question": "  What is Go?  ", "answer": "A programming language."},
    {"question": "Who made it?", "answer": "Google."}
]
Hope that helps!`}
	gen := NewGeneratorService(newTestLogger(), ai)

	cards := gen.GenerateFlashcards(context.Background(), "Go", "Go is a language made at Google.", 2)
	require.Len(t, cards, 2)
	assert.Equal(t, "What is Go?", cards[0].Question)
	assert.Equal(t, "A programming language.", cards[0].Answer)
	assert.Equal(t, "Who made it?", cards[1].Question)

	require.Len(t, ai.lastMessages, 2)
	assert.Equal(t, "system", ai.lastMessages[0].Role)
	assert.Contains(t, ai.lastMessages[1].Content, "Create 2 flashcards")
}

func TestGenerateFlashcardsDropsMalformedItems(t *testing.T) {
	ai := &stubAI{reply: `[
		{"question": "Q1", "answer": "A1"},
		{"question": "missing answer"},
		"not an object",
		{"answer": "missing question"},
		{"question": "Q2", "answer": "A2"}
	]`}
	gen := NewGeneratorService(newTestLogger(), ai)

	cards := gen.GenerateFlashcards(context.Background(), "t", "source text here", 5)
	require.Len(t, cards, 2)
	assert.Equal(t, "Q1", cards[0].Question)
	assert.Equal(t, "Q2", cards[1].Question)
}

func TestGenerateFlashcardsCapsAtThirty(t *testing.T) {
	items := make([]string, 0, 40)
	for i := 0; i < 40; i++ {
		items = append(items, fmt.Sprintf(`{"question": "Q%d", "answer": "A%d"}`, i, i))
	}
	ai := &stubAI{reply: "[" + strings.Join(items, ",") + "]"}
	gen := NewGeneratorService(newTestLogger(), ai)

	cards := gen.GenerateFlashcards(context.Background(), "t", "source text here", 40)
	assert.Len(t, cards, MaxFlashcards)
}

func TestGenerateFlashcardsNoJSONReturnsEmpty(t *testing.T) {
	ai := &stubAI{reply: "Sorry, I cannot help with that."}
	gen := NewGeneratorService(newTestLogger(), ai)

	cards := gen.GenerateFlashcards(context.Background(), "t", "source text here", 5)
	assert.Empty(t, cards)
}

func TestGenerateFlashcardsServiceErrorUsesFallback(t *testing.T) {
	ai := &stubAI{err: errors.New("connection refused")}
	gen := NewGeneratorService(newTestLogger(), ai)

	cards := gen.GenerateFlashcards(context.Background(), "Photosynthesis", "source text here", 5)
	require.Len(t, cards, 2)
	assert.Equal(t, "What is the main topic of Photosynthesis?", cards[0].Question)
	assert.Equal(t, "The main topic is Photosynthesis.", cards[0].Answer)
	assert.Equal(t, "Can you explain Photosynthesis?", cards[1].Question)
}

func TestGenerateQuizParsesObject(t *testing.T) {
	ai := &stubAI{reply: `Sure:
{
    "title": "Go Basics",
    "questions": [
        {"question": "What is a goroutine?", "options": ["A thread", "A lightweight thread", "A process", "A channel"], "correct_index": 1}
    ]
}`}
	gen := NewGeneratorService(newTestLogger(), ai)

	draft := gen.GenerateQuiz(context.Background(), "Go", "source text here", 1)
	assert.Equal(t, "Go Basics", draft.Title)
	require.Len(t, draft.Questions, 1)
	q := draft.Questions[0]
	assert.Equal(t, "What is a goroutine?", q.Question)
	assert.Equal(t, "A lightweight thread", q.Options[1])
	assert.Equal(t, 1, q.CorrectIndex)
}

func TestGenerateQuizDefaultsTitle(t *testing.T) {
	ai := &stubAI{reply: `{"questions": [{"question": "Q", "options": ["a","b","c","d"], "correct_index": 0}]}`}
	gen := NewGeneratorService(newTestLogger(), ai)

	draft := gen.GenerateQuiz(context.Background(), "History", "source text here", 1)
	assert.Equal(t, "Quiz: History", draft.Title)
}

func TestGenerateQuizPadsAndTruncatesOptions(t *testing.T) {
	ai := &stubAI{reply: `{"title": "T", "questions": [
		{"question": "short", "options": ["only", "two"], "correct_index": 0},
		{"question": "long", "options": ["1","2","3","4","5","6"], "correct_index": 3}
	]}`}
	gen := NewGeneratorService(newTestLogger(), ai)

	draft := gen.GenerateQuiz(context.Background(), "t", "source text here", 2)
	require.Len(t, draft.Questions, 2)
	assert.Equal(t, [4]string{"only", "two", "", ""}, draft.Questions[0].Options)
	assert.Equal(t, [4]string{"1", "2", "3", "4"}, draft.Questions[1].Options)
}

func TestGenerateQuizNormalizesCorrectIndex(t *testing.T) {
	ai := &stubAI{reply: `{"title": "T", "questions": [
		{"question": "a", "options": ["a","b","c","d"], "correct_index": 7},
		{"question": "b", "options": ["a","b","c","d"], "correct_index": -1},
		{"question": "c", "options": ["a","b","c","d"]}
	]}`}
	gen := NewGeneratorService(newTestLogger(), ai)

	draft := gen.GenerateQuiz(context.Background(), "t", "source text here", 3)
	require.Len(t, draft.Questions, 3)
	assert.Equal(t, 3, draft.Questions[0].CorrectIndex)
	assert.Equal(t, 3, draft.Questions[1].CorrectIndex)
	assert.Equal(t, 0, draft.Questions[2].CorrectIndex)
}

func TestGenerateQuizUnparsableUsesFallback(t *testing.T) {
	ai := &stubAI{reply: "I could not produce a quiz."}
	gen := NewGeneratorService(newTestLogger(), ai)

	draft := gen.GenerateQuiz(context.Background(), "Biology", "source text here", 5)
	assert.Equal(t, "Quiz: Biology", draft.Title)
	require.Len(t, draft.Questions, 1)
	q := draft.Questions[0]
	assert.Equal(t, "What is Biology?", q.Question)
	assert.Equal(t, "A subject about Biology", q.Options[0])
	assert.Equal(t, 0, q.CorrectIndex)
}

func TestGenerateQuizServiceErrorUsesFallback(t *testing.T) {
	ai := &stubAI{err: errors.New("timeout")}
	gen := NewGeneratorService(newTestLogger(), ai)

	draft := gen.GenerateQuiz(context.Background(), "Math", "source text here", 5)
	assert.Equal(t, "Quiz: Math", draft.Title)
	require.Len(t, draft.Questions, 1)
}

func TestExtractBalancedHonorsStringLiterals(t *testing.T) {
	raw, ok := extractBalanced(`noise [{"question": "what does \"}\" mean?", "answer": "a close brace ] in a string"}] trailing`, '[', ']')
	require.True(t, ok)

	// The extracted span must be decodable despite brackets inside strings.
	assert.Equal(t, byte('['), raw[0])
	assert.Equal(t, byte(']'), raw[len(raw)-1])
	cards := parseFlashcards(raw)
	require.Len(t, cards, 1)
	assert.Equal(t, `what does "}" mean?`, cards[0].Question)
}

func TestExtractBalancedNested(t *testing.T) {
	raw, ok := extractBalanced(`{"outer": {"inner": {"deep": 1}}} tail`, '{', '}')
	require.True(t, ok)
	assert.Equal(t, `{"outer": {"inner": {"deep": 1}}}`, raw)
}

func TestExtractBalancedUnclosed(t *testing.T) {
	_, ok := extractBalanced(`[ {"question": "never closed"`, '[', ']')
	assert.False(t, ok)
}
