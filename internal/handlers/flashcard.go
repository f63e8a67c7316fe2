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

type FlashcardHandler struct {
	log          *logger.Logger
	flashcardSvc services.FlashcardService
}

func NewFlashcardHandler(log *logger.Logger, flashcardSvc services.FlashcardService) *FlashcardHandler {
	return &FlashcardHandler{
		log:          log.With("handler", "FlashcardHandler"),
		flashcardSvc: flashcardSvc,
	}
}

type flashcardResponse struct {
	ID        uuid.UUID `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

type flashcardSetResponse struct {
	ID          uuid.UUID           `json:"id"`
	Topic       string              `json:"topic"`
	Description string              `json:"description"`
	NumCards    int                 `json:"num_cards"`
	CreatedAt   time.Time           `json:"created_at"`
	Flashcards  []flashcardResponse `json:"flashcards"`
}

type flashcardSetListItem struct {
	ID          uuid.UUID `json:"id"`
	Topic       string    `json:"topic"`
	Description string    `json:"description"`
	NumCards    int       `json:"num_cards"`
	CreatedAt   time.Time `json:"created_at"`
}

func toFlashcardSetResponse(result *services.SetWithCards) flashcardSetResponse {
	cards := make([]flashcardResponse, 0, len(result.Cards))
	for _, card := range result.Cards {
		cards = append(cards, flashcardResponse{
			ID:        card.ID,
			Question:  card.Question,
			Answer:    card.Answer,
			CreatedAt: card.CreatedAt,
		})
	}
	return flashcardSetResponse{
		ID:          result.Set.ID,
		Topic:       result.Set.Topic,
		Description: result.Set.Description,
		NumCards:    len(cards),
		CreatedAt:   result.Set.CreatedAt,
		Flashcards:  cards,
	}
}

// POST /api/v1/flashcards/generate
func (h *FlashcardHandler) Generate(c *gin.Context) {
	var req struct {
		Topic       string `json:"topic"`
		SourceText  string `json:"source_text"`
		NumCards    *int   `json:"num_cards"`
		Description string `json:"description"`
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
	if utf8.RuneCountInString(req.Description) > 500 {
		RespondValidationError(c, "description must be at most 500 characters")
		return
	}
	numCards := services.DefaultNumCards
	if req.NumCards != nil {
		numCards = *req.NumCards
	}
	if numCards < 1 || numCards > services.MaxFlashcards {
		RespondValidationError(c, "num_cards must be between 1 and 30")
		return
	}

	result, err := h.flashcardSvc.Generate(c.Request.Context(), currentUserID(c), topic, sourceText, req.Description, numCards)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFlashcardSetResponse(result))
}

// GET /api/v1/flashcards
func (h *FlashcardHandler) List(c *gin.Context) {
	skip, limit := parsePagination(c)
	summaries, err := h.flashcardSvc.List(c.Request.Context(), currentUserID(c), skip, limit)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	items := make([]flashcardSetListItem, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, flashcardSetListItem{
			ID:          s.Set.ID,
			Topic:       s.Set.Topic,
			Description: s.Set.Description,
			NumCards:    s.NumCards,
			CreatedAt:   s.Set.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, items)
}

// GET /api/v1/flashcards/:id
func (h *FlashcardHandler) Get(c *gin.Context) {
	setID, ok := parseIDParam(c)
	if !ok {
		return
	}
	result, err := h.flashcardSvc.Get(c.Request.Context(), currentUserID(c), setID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlashcardSetResponse(result))
}

// PUT /api/v1/flashcards/:id — metadata only; cards are immutable here.
func (h *FlashcardHandler) Update(c *gin.Context) {
	setID, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req struct {
		Topic       *string `json:"topic"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondValidationError(c, "invalid request body")
		return
	}
	if req.Topic != nil && strings.TrimSpace(*req.Topic) == "" {
		RespondValidationError(c, "topic cannot be empty")
		return
	}
	result, err := h.flashcardSvc.Update(c.Request.Context(), currentUserID(c), setID, req.Topic, req.Description)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlashcardSetResponse(result))
}

// DELETE /api/v1/flashcards/:id
func (h *FlashcardHandler) Delete(c *gin.Context) {
	setID, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.flashcardSvc.Delete(c.Request.Context(), currentUserID(c), setID); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/v1/flashcards/:id/export
func (h *FlashcardHandler) Export(c *gin.Context) {
	setID, ok := parseIDParam(c)
	if !ok {
		return
	}
	envelope, err := h.flashcardSvc.Export(c.Request.Context(), currentUserID(c), setID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope)
}

// POST /api/v1/flashcards/import
func (h *FlashcardHandler) Import(c *gin.Context) {
	var req struct {
		Data map[string]any `json:"data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondValidationError(c, "invalid request body")
		return
	}
	result, err := h.flashcardSvc.Import(c.Request.Context(), currentUserID(c), req.Data)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFlashcardSetResponse(result))
}
