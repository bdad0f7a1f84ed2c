package api

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/quantfolio/advisor-engine/internal/advisor"
	"github.com/quantfolio/advisor-engine/internal/platform/marketdata"
	"github.com/quantfolio/advisor-engine/internal/store"
)

// ChatService answers investor questions with advisory context.
type ChatService interface {
	Chat(ctx context.Context, question string) (string, error)
}

// AdviceService runs the full advisory pipeline.
type AdviceService interface {
	Run(ctx context.Context, request advisor.AdviceRequest) (*advisor.PipelineContext, error)
}

// MarketService exposes market data to the HTTP layer.
type MarketService interface {
	GetMarketSummary(ctx context.Context) (*marketdata.Summary, error)
	GetMajorIndices(ctx context.Context) ([]marketdata.IndexQuote, error)
	GetHistory(ctx context.Context, symbol, period string) (*marketdata.History, error)
	Health(ctx context.Context) error
}

// HealthChecker reports the health of an optional subsystem.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler holds the service dependencies for all HTTP endpoints.
type Handler struct {
	chat     ChatService
	advice   AdviceService
	market   MarketService
	profiles *store.ProfileStore
	journal  *store.JournalStore
	holdings *store.HoldingsStore
	memory   HealthChecker
}

// NewHandler wires the HTTP handler from its services. memory may be nil when
// no report memory is configured.
func NewHandler(chat ChatService, advice AdviceService, market MarketService,
	profiles *store.ProfileStore, journal *store.JournalStore, holdings *store.HoldingsStore,
	memory HealthChecker) *Handler {
	return &Handler{
		chat:     chat,
		advice:   advice,
		market:   market,
		profiles: profiles,
		journal:  journal,
		holdings: holdings,
		memory:   memory,
	}
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type ProfileRequest struct {
	Name          string  `json:"name"`
	Age           int     `json:"age"`
	Income        float64 `json:"income"`
	RiskTolerance string  `json:"risk_tolerance,omitempty"`
}

type PreferencesRequest struct {
	Preferences []store.InvestmentPreference `json:"preferences"`
}

type HoldingRequest struct {
	Symbol        string  `json:"symbol"`
	Shares        float64 `json:"shares"`
	PurchasePrice float64 `json:"purchase_price"`
	Notes         string  `json:"notes,omitempty"`
}

type JournalRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Symbol  string   `json:"symbol,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// Health reports the status of the API and its upstream dependencies.
func (h *Handler) Health(c *fiber.Ctx) error {
	services := map[string]string{"api": "healthy"}
	status := "healthy"

	if err := h.market.Health(c.Context()); err != nil {
		services["market_data"] = "unavailable"
		status = "degraded"
	} else {
		services["market_data"] = "healthy"
	}

	if h.memory != nil {
		if err := h.memory.HealthCheck(c.Context()); err != nil {
			services["report_memory"] = "unavailable"
			status = "degraded"
		} else {
			services["report_memory"] = "healthy"
		}
	}

	return c.JSON(HealthResponse{Status: status, Services: services})
}

// Chat answers an investor question.
func (h *Handler) Chat(c *fiber.Ctx) error {
	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid request payload",
			"details": err.Error(),
		})
	}
	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "message is required",
		})
	}

	response, err := h.chat.Chat(c.Context(), req.Message)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to generate response",
			"details": err.Error(),
		})
	}

	return c.JSON(ChatResponse{Response: response})
}

// Advise runs the advisory pipeline for a submitted profile.
func (h *Handler) Advise(c *fiber.Ctx) error {
	var req advisor.AdviceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid request payload",
			"details": err.Error(),
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	pipeline, err := h.advice.Run(c.Context(), req)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Advisory pipeline failed",
			"details": err.Error(),
		})
	}

	return c.JSON(pipeline)
}

// CreateProfile creates (or replaces) the stored user profile.
func (h *Handler) CreateProfile(c *fiber.Ctx) error {
	var req ProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid request payload",
			"details": err.Error(),
		})
	}
	if req.Name == "" || req.Age <= 0 || req.Income <= 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "name, age and income are required",
		})
	}

	profile := store.DefaultProfile(uuid.New().String(), req.Name, req.Age, req.Income)
	if req.RiskTolerance != "" {
		profile.RiskTolerance = req.RiskTolerance
	}

	if err := h.profiles.Save(profile); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to save profile",
			"details": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(profile)
}

// GetProfile returns the stored user profile.
func (h *Handler) GetProfile(c *fiber.Ctx) error {
	profile, err := h.profiles.Load()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to load profile",
			"details": err.Error(),
		})
	}
	if profile == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no user profile found",
		})
	}

	return c.JSON(profile)
}

// UpdatePreferences replaces the stored profile's asset preferences.
func (h *Handler) UpdatePreferences(c *fiber.Ctx) error {
	var req PreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid request payload",
			"details": err.Error(),
		})
	}
	if len(req.Preferences) == 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "preferences cannot be empty",
		})
	}

	if err := h.profiles.UpdatePreferences(req.Preferences); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"status": "updated"})
}

// PortfolioSummary returns the allocation summary of the stored profile.
func (h *Handler) PortfolioSummary(c *fiber.Ctx) error {
	summary, err := h.profiles.Summary()
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(summary)
}

// ListHoldings returns all portfolio positions.
func (h *Handler) ListHoldings(c *fiber.Ctx) error {
	holdings, err := h.holdings.Holdings()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to load holdings",
			"details": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"holdings": holdings})
}

// AddHolding records a new position and its buy transaction.
func (h *Handler) AddHolding(c *fiber.Ctx) error {
	var req HoldingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid request payload",
			"details": err.Error(),
		})
	}
	if req.Symbol == "" || req.Shares <= 0 || req.PurchasePrice <= 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "symbol, shares and purchase_price are required",
		})
	}

	transaction, err := h.holdings.AddHolding(store.Holding{
		Symbol:        req.Symbol,
		Shares:        req.Shares,
		PurchasePrice: req.PurchasePrice,
		Notes:         req.Notes,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to add holding",
			"details": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(transaction)
}

// ListTransactions returns the full trade log.
func (h *Handler) ListTransactions(c *fiber.Ctx) error {
	transactions, err := h.holdings.Transactions()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to load transactions",
			"details": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"transactions": transactions})
}

// ListJournal returns all journal entries, newest first.
func (h *Handler) ListJournal(c *fiber.Ctx) error {
	entries, err := h.journal.Entries()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to load journal",
			"details": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"entries": entries})
}

// AddJournalEntry records a new journal entry.
func (h *Handler) AddJournalEntry(c *fiber.Ctx) error {
	var req JournalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid request payload",
			"details": err.Error(),
		})
	}
	if req.Title == "" || req.Content == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "title and content are required",
		})
	}

	entry, err := h.journal.Add(store.JournalEntry{
		Title:   req.Title,
		Content: req.Content,
		Symbol:  req.Symbol,
		Tags:    req.Tags,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to add journal entry",
			"details": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(entry)
}

// MarketSummary returns the benchmark summary with sentiment.
func (h *Handler) MarketSummary(c *fiber.Ctx) error {
	summary, err := h.market.GetMarketSummary(c.Context())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "Failed to fetch market summary",
			"details": err.Error(),
		})
	}

	return c.JSON(summary)
}

// MarketIndices returns quotes for the tracked major indices.
func (h *Handler) MarketIndices(c *fiber.Ctx) error {
	indices, err := h.market.GetMajorIndices(c.Context())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "Failed to fetch market indices",
			"details": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"indices": indices})
}

// MarketHistory returns the closing-price series for a symbol. The period
// query parameter accepts 1d, 5d, 1mo and longer Yahoo-style ranges.
func (h *Handler) MarketHistory(c *fiber.Ctx) error {
	symbol := c.Params("symbol")
	period := c.Query("period", "1d")

	history, err := h.market.GetHistory(c.Context(), symbol, period)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "Failed to fetch market history",
			"details": err.Error(),
		})
	}

	return c.JSON(history)
}
