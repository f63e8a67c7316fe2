package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/smartcram/smartcram-backend/internal/logger"
)

const (
	// MaxFlashcards bounds a generated or parsed card list.
	MaxFlashcards = 30
	// MaxQuizQuestions bounds a generated quiz.
	MaxQuizQuestions = 20

	DefaultNumCards     = 8
	DefaultNumQuestions = 5

	quizOptionCount = 4
)

type CardDraft struct {
	Question string
	Answer   string
}

type QuestionDraft struct {
	Question     string
	Options      [quizOptionCount]string
	CorrectIndex int
}

type QuizDraft struct {
	Title     string
	Questions []QuestionDraft
}

// GeneratorService turns (topic, source text, count) into structured drafts.
// It never returns an error: a failed service call substitutes deterministic
// fallback content, and an unparsable flashcard reply yields an empty list,
// which the caller must treat as a generation failure.
type GeneratorService interface {
	GenerateFlashcards(ctx context.Context, topic, sourceText string, numCards int) []CardDraft
	GenerateQuiz(ctx context.Context, topic, sourceText string, numQuestions int) QuizDraft
}

type generatorService struct {
	log *logger.Logger
	ai  AIClient
}

func NewGeneratorService(log *logger.Logger, ai AIClient) GeneratorService {
	return &generatorService{log: log.With("service", "GeneratorService"), ai: ai}
}

const systemPrompt = "You are a helpful educational assistant."

const flashcardPromptTemplate = `You are an expert educational content creator. Create %d flashcards from the given text.

Topic: %s
Source Text: %s

Instructions:
- Create clear, concise questions and answers
- Questions should be specific and test understanding
- Answers should be 1-3 sentences maximum
- Cover key concepts from the source text
- Ensure questions are varied (definition, application, analysis)

Return ONLY a JSON array with this exact format:
[
    {"question": "Question text here", "answer": "Answer text here"},
    {"question": "Question text here", "answer": "Answer text here"}
]

Do not include any other text, only the JSON array.`

const quizPromptTemplate = `You are an expert quiz creator. Create a %d-question multiple-choice quiz from the given text.

Topic: %s
Source Text: %s

Instructions:
- Create challenging but fair questions
- Each question must have exactly 4 options (A, B, C, D)
- Only one option should be correct
- Include a mix of difficulty levels
- Questions should test understanding, not just memorization

Return ONLY a JSON object with this exact format:
{
    "title": "Quiz Title Here",
    "questions": [
        {
            "question": "Question text here?",
            "options": ["Option A", "Option B", "Option C", "Option D"],
            "correct_index": 0
        }
    ]
}

Note: correct_index should be 0 for A, 1 for B, 2 for C, 3 for D
Do not include any other text, only the JSON object.`

func (g *generatorService) GenerateFlashcards(ctx context.Context, topic, sourceText string, numCards int) []CardDraft {
	prompt := fmt.Sprintf(flashcardPromptTemplate, numCards, topic, sourceText)
	content, err := g.ai.Chat(ctx, []AIMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	}, &AIOptions{Temperature: 0.7, MaxTokens: 2000})
	if err != nil {
		g.log.Warn("Flashcard generation call failed, using fallback cards", "error", err)
		return fallbackFlashcards(topic)
	}
	return parseFlashcards(content)
}

func (g *generatorService) GenerateQuiz(ctx context.Context, topic, sourceText string, numQuestions int) QuizDraft {
	prompt := fmt.Sprintf(quizPromptTemplate, numQuestions, topic, sourceText)
	content, err := g.ai.Chat(ctx, []AIMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	}, &AIOptions{Temperature: 0.7, MaxTokens: 2000})
	if err != nil {
		g.log.Warn("Quiz generation call failed, using fallback quiz", "error", err)
		return fallbackQuiz(topic)
	}
	return parseQuiz(content, topic)
}

// parseFlashcards extracts the first balanced top-level JSON array from the
// model reply and keeps only items carrying both "question" and "answer".
// Any parse failure yields an empty list.
func parseFlashcards(content string) []CardDraft {
	raw, ok := extractBalanced(content, '[', ']')
	if !ok {
		return nil
	}
	var items []any
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	cards := make([]CardDraft, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		q, hasQ := obj["question"]
		a, hasA := obj["answer"]
		if !hasQ || !hasA {
			continue
		}
		cards = append(cards, CardDraft{
			Question: strings.TrimSpace(coerceString(q)),
			Answer:   strings.TrimSpace(coerceString(a)),
		})
		if len(cards) == MaxFlashcards {
			break
		}
	}
	return cards
}

// parseQuiz extracts the first balanced top-level JSON object. A missing title
// defaults to "Quiz: {topic}"; options are padded/truncated to exactly four;
// correct_index is reduced modulo 4. Any parse failure yields the fallback quiz.
func parseQuiz(content, topic string) QuizDraft {
	raw, ok := extractBalanced(content, '{', '}')
	if !ok {
		return fallbackQuiz(topic)
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return fallbackQuiz(topic)
	}

	draft := QuizDraft{Title: strings.TrimSpace(coerceString(data["title"]))}
	if draft.Title == "" {
		draft.Title = "Quiz: " + topic
	}

	rawQuestions, _ := data["questions"].([]any)
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
		qd := QuestionDraft{
			Question:     strings.TrimSpace(coerceString(q)),
			Options:      coerceOptions(rawOptions),
			CorrectIndex: mod4(coerceInt(obj["correct_index"])),
		}
		draft.Questions = append(draft.Questions, qd)
	}
	return draft
}

// fallbackFlashcards is the deterministic substitute used when the generation
// service itself cannot be reached.
func fallbackFlashcards(topic string) []CardDraft {
	return []CardDraft{
		{
			Question: fmt.Sprintf("What is the main topic of %s?", topic),
			Answer:   fmt.Sprintf("The main topic is %s.", topic),
		},
		{
			Question: fmt.Sprintf("Can you explain %s?", topic),
			Answer:   fmt.Sprintf("%s is a subject that covers various concepts and principles.", topic),
		},
	}
}

func fallbackQuiz(topic string) QuizDraft {
	return QuizDraft{
		Title: "Quiz: " + topic,
		Questions: []QuestionDraft{
			{
				Question: fmt.Sprintf("What is %s?", topic),
				Options: [quizOptionCount]string{
					fmt.Sprintf("A subject about %s", topic),
					"An unrelated topic",
					"A mathematical concept",
					"A historical event",
				},
				CorrectIndex: 0,
			},
		},
	}
}

// extractBalanced returns the substring from the first occurrence of open to
// its matching close, honoring JSON string literals and escapes. Model replies
// routinely wrap the JSON in prose, so a plain decode of the whole reply is
// not an option.
func extractBalanced(s string, open, close byte) (string, bool) {
	start := strings.IndexByte(s, open)
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

func coerceOptions(v any) [quizOptionCount]string {
	var out [quizOptionCount]string
	list, _ := v.([]any)
	for i := 0; i < quizOptionCount && i < len(list); i++ {
		out[i] = coerceString(list[i])
	}
	return out
}

func coerceString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return fmt.Sprintf("%g", t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(t)
	}
}

func coerceInt(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	case string:
		var f float64
		if _, err := fmt.Sscanf(strings.TrimSpace(t), "%g", &f); err == nil {
			return int(f)
		}
		return 0
	default:
		return 0
	}
}

// mod4 maps any int into {0,1,2,3}, matching how out-of-range correct indices
// from the upstream service are silently normalized rather than rejected.
func mod4(i int) int {
	return ((i % quizOptionCount) + quizOptionCount) % quizOptionCount
}
