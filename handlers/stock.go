package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pbank/store"
)

// GetStock looks up a stock by its symbol. The match is exact and
// case-sensitive.
func (h *Handler) GetStock(c *gin.Context) {
	symbol := c.Param("symbol")

	stock, err := h.stocks.BySymbol(c.Request.Context(), symbol)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "stock_not_found", "error": "stock not found"})
			return
		}
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stock)
}
