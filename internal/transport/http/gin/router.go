package httpgin

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/tourdesk/internal/assistant"
	"github.com/kirinyoku/tourdesk/internal/quote"
	"github.com/kirinyoku/tourdesk/internal/repository"
	redisrepo "github.com/kirinyoku/tourdesk/internal/repository/redis"
	"github.com/kirinyoku/tourdesk/internal/service"
	"github.com/kirinyoku/tourdesk/internal/service/bookings"
	"github.com/kirinyoku/tourdesk/internal/service/catalog"
	"github.com/kirinyoku/tourdesk/internal/service/clients"
	"github.com/kirinyoku/tourdesk/internal/service/quotes"
	"github.com/kirinyoku/tourdesk/internal/sheets"
	"github.com/kirinyoku/tourdesk/internal/validation"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterConfig struct {
	Production bool
	// MetricsHandler defaults to the default Prometheus registry.
	MetricsHandler http.Handler
}

func NewRouter(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	logger *slog.Logger,
	cfg RouterConfig,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(
		gin.Recovery(),
		LoggingMiddleware(logger),
		RequestIDMiddleware(),
		SecureHeaders(cfg.Production),
		CORS(),
		svcs.Metrics.Middleware(),
	)
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	metrics := cfg.MetricsHandler
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	r.GET("/metrics", gin.WrapH(metrics))

	// Registries
	r.GET("/gigs", handleListGigs(svcs))
	r.POST("/gigs", handleCreateGig(svcs))
	r.GET("/gigs/:id", handleGetGig(svcs))
	r.PATCH("/gigs/:id", handleUpdateGig(svcs))

	r.GET("/clients", handleListClients(svcs))
	r.POST("/clients", handleCreateClient(svcs))
	r.GET("/clients/:id", handleGetClient(svcs))

	r.GET("/catalog", handleListCatalog(svcs))
	r.POST("/catalog", handleAddCatalogItem(svcs))

	r.GET("/expenses", handleListExpenses(svcs))
	r.POST("/expenses", handleAddExpense(svcs))
	r.GET("/finance/summary", handleFinanceSummary(svcs))

	r.GET("/documents", handleListDocuments(svcs))
	r.GET("/documents/:id", handleGetDocument(svcs))

	// Quote builder
	drafts := r.Group("/quotes/drafts")
	{
		drafts.POST("", handleStartDraft(svcs))
		drafts.GET("/:id", handleGetDraft(svcs))
		drafts.DELETE("/:id", handleDiscardDraft(svcs))
		drafts.POST("/:id/catalog-items", handleDraftAddCatalogItem(svcs))
		drafts.POST("/:id/custom-items", handleDraftAddCustomItem(svcs))
		drafts.PATCH("/:id/items/:item_id", handleDraftSetQuantity(svcs))
		drafts.DELETE("/:id/items/:item_id", handleDraftRemoveItem(svcs))
		drafts.PUT("/:id/performance-fee", handleDraftSetPerformanceFee(svcs))
		drafts.POST("/:id/issue", handleIssueDraft(svcs, idem))
	}

	// Integrations
	r.GET("/calendar.ics", handleCalendar(svcs))
	r.POST("/sync/sheets", handleSyncSheets(svcs))
	r.GET("/drive/files", handleDriveFiles(svcs))
	r.POST("/assistant/chat", handleChat(svcs))
	r.POST("/assistant/bio", handleBio(svcs))

	return r
}

// --- Helpers ---

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var verr validation.Error
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid input", Fields: verr.Fields})
		return
	}

	var qerr quote.ValidationError
	if errors.As(err, &qerr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:  qerr.Error(),
			Fields: map[string]string{qerr.Field: qerr.Reason},
		})
		return
	}

	var rl bookings.RateLimitedError
	if errors.As(err, &rl) {
		secs := int(rl.RetryAfter.Seconds())
		if secs < 1 {
			secs = 1
		}
		c.Header("Retry-After", strconv.Itoa(secs))
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limited"})
		return
	}

	switch {
	case errors.Is(err, quote.ErrCurrencyMismatch):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:  err.Error(),
			Fields: map[string]string{"currency": "must match the draft currency"},
		})
	case errors.Is(err, quote.ErrValidation),
		errors.Is(err, bookings.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, quote.ErrEmptyDocument):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "document has no value to issue"})
	// registries
	case errors.Is(err, bookings.ErrGigNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "gig not found"})
	case errors.Is(err, clients.ErrClientNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "client not found"})
	case errors.Is(err, catalog.ErrItemNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "catalog item not found"})
	case errors.Is(err, quote.ErrNotFound),
		errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: notFoundMessage(err)})
	case errors.Is(err, repository.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "conflict"})
	// integrations
	case errors.Is(err, assistant.ErrNotConfigured),
		errors.Is(err, sheets.ErrNotConfigured):
		c.JSON(http.StatusNotImplemented, ErrorResponse{Error: notConfiguredMessage(err)})
	case errors.Is(err, assistant.ErrAssistant):
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "assistant unavailable, please retry"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

func notFoundMessage(err error) string {
	var li quote.LineItemNotFoundError
	if errors.As(err, &li) {
		return li.Error()
	}

	for _, target := range []error{
		quotes.ErrDraftNotFound, quotes.ErrDocumentNotFound, quotes.ErrGigNotFound,
		quotes.ErrClientNotFound, quotes.ErrCatalogItemNotFound,
	} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}

	return "not found"
}

func notConfiguredMessage(err error) string {
	if errors.Is(err, sheets.ErrNotConfigured) {
		return "Google Sheets integration not configured"
	}
	return "assistant not configured"
}
