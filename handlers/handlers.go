package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"pbank/auth"
	"pbank/ledger"
	"pbank/middleware"
	"pbank/store"
)

// Handler holds the service components behind the HTTP surface. Everything
// is injected at construction; there is no package-level state.
type Handler struct {
	creds  *auth.Credentials
	tokens *auth.TokenManager
	ledger *ledger.Ledger
	stocks store.Stocks
	users  store.Users

	// sessions stores refresh tokens; nil disables the refresh flow.
	sessions   *redis.Client
	refreshTTL time.Duration

	log *zap.Logger
}

func New(creds *auth.Credentials, tokens *auth.TokenManager, l *ledger.Ledger,
	stocks store.Stocks, users store.Users, sessions *redis.Client,
	refreshTTL time.Duration, log *zap.Logger) *Handler {
	return &Handler{
		creds:      creds,
		tokens:     tokens,
		ledger:     l,
		stocks:     stocks,
		users:      users,
		sessions:   sessions,
		refreshTTL: refreshTTL,
		log:        log,
	}
}

// userID returns the authenticated user set by the JWT middleware.
func userID(c *gin.Context) uuid.UUID {
	return c.MustGet(middleware.UserIDKey).(uuid.UUID)
}

// respondError maps a domain error to its stable code and HTTP status. Each
// error kind keeps a distinct code so clients can branch on it; anything
// unrecognized is a storage failure.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"code": "invalid_credentials", "error": "invalid credentials"})
	case errors.Is(err, ledger.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_quantity", "error": "quantity must be positive"})
	case errors.Is(err, ledger.ErrStockNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "stock_not_found", "error": "stock not found"})
	case errors.Is(err, ledger.ErrInsufficientHoldings):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"code": "insufficient_holdings", "error": "insufficient holdings"})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "error": "not found"})
	default:
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"code": "storage_error", "error": "internal error"})
	}
}
