// Package api exposes story generation over HTTP: stateless actions that
// take the whole history in every request, and stored simulations.
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abdulachik/whatif/internal/llm"
	"github.com/abdulachik/whatif/internal/simulation"
	"github.com/abdulachik/whatif/internal/story"
)

// Handler serves the HTTP API.
type Handler struct {
	narrator    simulation.Narrator
	simulations *simulation.Manager
	health      *llm.Health
	gatherer    prometheus.Gatherer
	logger      *slog.Logger
	now         func() time.Time
}

// Config holds the handler's dependencies.
type Config struct {
	Narrator    simulation.Narrator
	Simulations *simulation.Manager
	Health      *llm.Health
	Gatherer    prometheus.Gatherer
	Logger      *slog.Logger
}

// NewHandler creates a handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	health := cfg.Health
	if health == nil {
		health = llm.NewHealth()
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.NewRegistry()
	}
	return &Handler{
		narrator:    cfg.Narrator,
		simulations: cfg.Simulations,
		health:      health,
		gatherer:    gatherer,
		logger:      logger,
		now:         time.Now,
	}
}

// Router builds the gin engine with every route registered.
func (h *Handler) Router() *gin.Engine {
	router := gin.New()
	router.Use(RequestLogger(h.logger), gin.Recovery())

	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))

	actions := router.Group("/api/actions")
	{
		actions.POST("/start", h.StartAction)
		actions.POST("/continue", h.ContinueAction)
		actions.POST("/letter", h.LetterAction)
	}

	sims := router.Group("/api/simulations")
	{
		sims.POST("", h.CreateSimulation)
		sims.GET("", h.ListSimulations)
		sims.GET("/:id", h.GetSimulation)
		sims.POST("/:id/continue", h.ContinueSimulation)
		sims.POST("/:id/letter", h.FinishSimulation)
	}

	return router
}

// Health reports the last observed state of every model.
func (h *Handler) Health(c *gin.Context) {
	status, code := "ok", http.StatusOK
	if !h.health.AnyHealthy() {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status": status,
		"models": h.health.All(),
	})
}

type startActionRequest struct {
	Name      string        `json:"name"`
	BirthYear int           `json:"birth_year"`
	Profile   story.Profile `json:"profile"`
	Choice    story.Choice  `json:"choice"`
}

// StartAction generates an opening chapter without storing anything.
func (h *Handler) StartAction(c *gin.Context) {
	var req startActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	now := h.now()
	in := simulation.StartInput{Name: req.Name, BirthYear: req.BirthYear, Profile: req.Profile, Choice: req.Choice}
	if err := in.ValidateUnnamed(now); err != nil {
		handleError(c, err)
		return
	}

	ch, err := h.narrator.StartChapter(c.Request.Context(), req.Name, now.Year()-req.BirthYear, req.Profile, req.Choice)
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusOK, ch)
}

type continueActionRequest struct {
	Name         string          `json:"name"`
	CurrentAge   int             `json:"current_age"`
	CurrentStats story.Stats     `json:"current_stats"`
	LastChoice   *string         `json:"last_choice"`
	History      []story.Chapter `json:"history"`
}

// ContinueAction generates the next chapter from caller-supplied history.
func (h *Handler) ContinueAction(c *gin.Context) {
	var req continueActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	var lastChoice string
	if req.LastChoice != nil {
		lastChoice = *req.LastChoice
	}
	if n := utf8.RuneCountInString(lastChoice); n > story.MaxChoiceLength {
		handleError(c, fmt.Errorf("%w: last_choice is %d characters, max %d", simulation.ErrInvalidInput, n, story.MaxChoiceLength))
		return
	}
	if len(req.History) == 0 {
		handleError(c, fmt.Errorf("%w: history is required", simulation.ErrInvalidInput))
		return
	}

	ch, err := h.narrator.ContinueChapter(c.Request.Context(), req.Name, req.CurrentAge, req.CurrentStats, lastChoice, req.History)
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusOK, ch)
}

type letterActionRequest struct {
	Name      string          `json:"name"`
	BirthYear int             `json:"birth_year"`
	History   []story.Chapter `json:"history"`
	Stats     story.Stats     `json:"stats"`
}

// LetterAction writes the closing letter from caller-supplied history.
func (h *Handler) LetterAction(c *gin.Context) {
	var req letterActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.History) == 0 {
		handleError(c, fmt.Errorf("%w: history is required", simulation.ErrInvalidInput))
		return
	}

	letter, err := h.narrator.GenerateLetter(c.Request.Context(), req.Name, req.BirthYear, req.History, req.Stats)
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusOK, letter)
}

// CreateSimulation starts and stores a new simulation.
func (h *Handler) CreateSimulation(c *gin.Context) {
	var in simulation.StartInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	s, err := h.simulations.Start(c.Request.Context(), in)
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, s)
}

// ListSimulations returns recent simulations.
func (h *Handler) ListSimulations(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	sessions, err := h.simulations.List(c.Request.Context(), limit)
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusOK, sessions)
}

// GetSimulation returns one stored simulation.
func (h *Handler) GetSimulation(c *gin.Context) {
	s, err := h.simulations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusOK, s)
}

type continueSimulationRequest struct {
	Choice string `json:"choice"`
}

// ContinueSimulation advances a stored simulation. An empty body lets the
// story flow without a decision.
func (h *Handler) ContinueSimulation(c *gin.Context) {
	var req continueSimulationRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	s, err := h.simulations.Advance(c.Request.Context(), c.Param("id"), req.Choice)
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusOK, s)
}

// FinishSimulation writes the closing letter of a stored simulation.
func (h *Handler) FinishSimulation(c *gin.Context) {
	s, err := h.simulations.Finish(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, http.StatusOK, s)
}
