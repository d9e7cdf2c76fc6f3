package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abdulachik/whatif/internal/llm"
	"github.com/abdulachik/whatif/internal/simulation"
	"github.com/abdulachik/whatif/internal/story"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, Response{Success: true, Data: data})
}

func respondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Response{Success: false, Error: msg})
}

// handleError maps an error to a status code and a message safe to show a
// user. Provider details stay in the logs.
func handleError(c *gin.Context, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, simulation.ErrInvalidInput), errors.Is(err, story.ErrInvalidChoice):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, simulation.ErrNotFound):
		respondError(c, http.StatusNotFound, "simulation not found")
	case errors.Is(err, simulation.ErrComplete):
		respondError(c, http.StatusConflict, "simulation complete: request the final letter")
	case errors.Is(err, simulation.ErrFinished):
		respondError(c, http.StatusConflict, "simulation already finished")
	case errors.Is(err, simulation.ErrConflict):
		respondError(c, http.StatusConflict, "simulation was updated by another request, reload and try again")
	case errors.Is(err, simulation.ErrNoChapters):
		respondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, llm.ErrNoCredentials):
		respondError(c, http.StatusServiceUnavailable, "server configuration error: API key missing")
	case errors.Is(err, llm.ErrProviderExhausted):
		respondError(c, http.StatusBadGateway, "the story could not be generated right now, try again")
	default:
		respondError(c, http.StatusInternalServerError, "an unexpected internal error occurred")
	}
}
