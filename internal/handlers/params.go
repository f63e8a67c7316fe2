package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/smartcram/smartcram-backend/internal/requestdata"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

func currentUserID(c *gin.Context) uuid.UUID {
	return requestdata.GetRequestData(c.Request.Context()).UserID
}

// parseIDParam reads the :id path segment; a malformed id is rejected before
// any lookup runs.
func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondValidationError(c, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func parsePagination(c *gin.Context) (int, int) {
	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		skip = 0
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if err != nil || limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return skip, limit
}
