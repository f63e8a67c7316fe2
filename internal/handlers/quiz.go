package handlers

import (
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/smartcram/smartcram-backend/internal/logger"
	"github.com/smartcram/smartcram-backend/internal/services"
)

type QuizHandler struct {
	log     *logger.Logger
	quizSvc services.QuizService
}

func NewQuizHandler(log *logger.Logger, quizSvc services.QuizService) *QuizHandler {
	return &QuizHandler{
		log:     log.With("handler", "QuizHandler"),
		quizSvc: quizSvc,
	}
}

type quizQuestionResponse struct {
	ID           uuid.UUID `json:"id"`
	Question     string    `json:"question"`
	OptionA      string    `json:"option_a"`
	OptionB      string    `json:"option_b"`
	OptionC      string    `json:"option_c"`
	OptionD      string    `json:"option_d"`
	CorrectIndex int       `json:"correct_index"`
	CreatedAt    time.Time `json:"created_at"`
}

type quizResponse struct {
	ID           uuid.UUID              `json:"id"`
	Topic        string                 `json:"topic"`
	Title        string                 `json:"title"`
	NumQuestions int                    `json:"num_questions"`
	CreatedAt    time.Time              `json:"created_at"`
	Questions    []quizQuestionResponse `json:"questions"`
}

type quizListItem struct {
	ID           uuid.UUID `json:"id"`
	Topic        string    `json:"topic"`
	Title        string    `json:"title"`
	NumQuestions int       `json:"num_questions"`
	CreatedAt    time.Time `json:"created_at"`
}

func toQuizResponse(result *services.QuizWithQuestions) quizResponse {
	questions := make([]quizQuestionResponse, 0, len(result.Questions))
	for _, q := range result.Questions {
		questions = append(questions, quizQuestionResponse{
			ID:           q.ID,
			Question:     q.Question,
			OptionA:      q.OptionA,
			OptionB:      q.OptionB,
			OptionC:      q.OptionC,
			OptionD:      q.OptionD,
			CorrectIndex: q.CorrectIndex,
			CreatedAt:    q.CreatedAt,
		})
	}
	return quizResponse{
		ID:           result.Quiz.ID,
		Topic:        result.Quiz.Topic,
		Title:        result.Quiz.Title,
		NumQuestions: len(questions),
		CreatedAt:    result.Quiz.CreatedAt,
		Questions:    questions,
	}
}

// POST /api/v1/quiz/generate
func (h *QuizHandler) Generate(c *gin.Context) {
	var req struct {
		Topic        string `json:"topic"`
		SourceText   string `json:"source_text"`
		NumQuestions *int   `json:"num_questions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondValidationError(c, "invalid request body")
		return
	}
	topic := strings.TrimSpace(req.Topic)
	if topic == "" || utf8.RuneCountInString(topic) > 255 {
		RespondValidationError(c, "topic must be 1-255 characters")
		return
	}
	sourceText := strings.TrimSpace(req.SourceText)
	if utf8.RuneCountInString(sourceText) < 10 {
		RespondValidationError(c, "source_text must be at least 10 characters")
		return
	}
	numQuestions := services.DefaultNumQuestions
	if req.NumQuestions != nil {
		numQuestions = *req.NumQuestions
	}
	if numQuestions < 1 || numQuestions > services.MaxQuizQuestions {
		RespondValidationError(c, "num_questions must be between 1 and 20")
		return
	}

	result, err := h.quizSvc.Generate(c.Request.Context(), currentUserID(c), topic, sourceText, numQuestions)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toQuizResponse(result))
}

// GET /api/v1/quiz
func (h *QuizHandler) List(c *gin.Context) {
	skip, limit := parsePagination(c)
	summaries, err := h.quizSvc.List(c.Request.Context(), currentUserID(c), skip, limit)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	items := make([]quizListItem, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, quizListItem{
			ID:           s.Quiz.ID,
			Topic:        s.Quiz.Topic,
			Title:        s.Quiz.Title,
			NumQuestions: s.NumQuestions,
			CreatedAt:    s.Quiz.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, items)
}

// GET /api/v1/quiz/:id
func (h *QuizHandler) Get(c *gin.Context) {
	quizID, ok := parseIDParam(c)
	if !ok {
		return
	}
	result, err := h.quizSvc.Get(c.Request.Context(), currentUserID(c), quizID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toQuizResponse(result))
}

// PUT /api/v1/quiz/:id — metadata only.
func (h *QuizHandler) Update(c *gin.Context) {
	quizID, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req struct {
		Topic *string `json:"topic"`
		Title *string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondValidationError(c, "invalid request body")
		return
	}
	if req.Topic != nil && strings.TrimSpace(*req.Topic) == "" {
		RespondValidationError(c, "topic cannot be empty")
		return
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		RespondValidationError(c, "title cannot be empty")
		return
	}
	result, err := h.quizSvc.Update(c.Request.Context(), currentUserID(c), quizID, req.Topic, req.Title)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toQuizResponse(result))
}

// DELETE /api/v1/quiz/:id
func (h *QuizHandler) Delete(c *gin.Context) {
	quizID, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.quizSvc.Delete(c.Request.Context(), currentUserID(c), quizID); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/v1/quiz/:id/submit
func (h *QuizHandler) Submit(c *gin.Context) {
	quizID, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req struct {
		Answers []int `json:"answers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondValidationError(c, "invalid request body")
		return
	}
	if len(req.Answers) == 0 {
		RespondValidationError(c, "answers must not be empty")
		return
	}
	for _, a := range req.Answers {
		if a < 0 || a > 3 {
			RespondValidationError(c, "each answer must be between 0 and 3")
			return
		}
	}
	result, err := h.quizSvc.Submit(c.Request.Context(), currentUserID(c), quizID, req.Answers)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/v1/quiz/:id/export
func (h *QuizHandler) Export(c *gin.Context) {
	quizID, ok := parseIDParam(c)
	if !ok {
		return
	}
	envelope, err := h.quizSvc.Export(c.Request.Context(), currentUserID(c), quizID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope)
}

// POST /api/v1/quiz/import
func (h *QuizHandler) Import(c *gin.Context) {
	var req struct {
		Data map[string]any `json:"data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondValidationError(c, "invalid request body")
		return
	}
	result, err := h.quizSvc.Import(c.Request.Context(), currentUserID(c), req.Data)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toQuizResponse(result))
}
