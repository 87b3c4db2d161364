package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"pbank/models"
)

// Quantity carries no binding tag: zero and negative values must reach the
// ledger so they surface as invalid_quantity rather than a generic bind error.
type TradeInput struct {
	StockID  uuid.UUID `json:"stock_id" binding:"required"`
	Quantity int       `json:"quantity"`
}

// Buy records a buy for the token's subject. There is no cash constraint,
// so any positive quantity of an existing stock succeeds.
func (h *Handler) Buy(c *gin.Context) {
	h.trade(c, models.TransactionTypeBuy)
}

// Sell records a sell, rejecting it when the quantity exceeds the user's
// current net holding.
func (h *Handler) Sell(c *gin.Context) {
	h.trade(c, models.TransactionTypeSell)
}

func (h *Handler) trade(c *gin.Context, typ models.TransactionType) {
	uid := userID(c)

	var input TradeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "bad_request", "error": err.Error()})
		return
	}

	var (
		txn *models.Transaction
		err error
	)
	if typ == models.TransactionTypeBuy {
		txn, err = h.ledger.Buy(c.Request.Context(), uid, input.StockID, input.Quantity)
	} else {
		txn, err = h.ledger.Sell(c.Request.Context(), uid, input.StockID, input.Quantity)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.log.Info("trade recorded",
		zap.String("type", string(typ)),
		zap.String("user_id", uid.String()),
		zap.String("stock_id", input.StockID.String()),
		zap.Int("quantity", input.Quantity),
	)
	c.JSON(http.StatusOK, txn)
}

// ListTransactions returns the acting user's history, oldest first.
func (h *Handler) ListTransactions(c *gin.Context) {
	txns, err := h.ledger.Transactions(c.Request.Context(), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if txns == nil {
		txns = []models.Transaction{}
	}
	c.JSON(http.StatusOK, txns)
}

// GetHolding returns the user's current net quantity for one stock.
func (h *Handler) GetHolding(c *gin.Context) {
	stockID, err := uuid.Parse(c.Param("stock_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "bad_request", "error": "invalid stock id"})
		return
	}

	held, err := h.ledger.Holding(c.Request.Context(), userID(c), stockID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stock_id": stockID, "quantity": held})
}
