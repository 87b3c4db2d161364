package handlers

import (
	"github.com/gin-gonic/gin"

	"pbank/auth"
	"pbank/middleware"
)

// NewRouter wires all routes. Everything past the auth group requires a
// valid, unexpired token; the acted-upon user is always the token's subject.
func NewRouter(h *Handler, tokens *auth.TokenManager) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.POST("/signup", h.Signup)
	router.POST("/login", h.Login)
	router.POST("/refresh", h.Refresh)

	protected := router.Group("/")
	protected.Use(middleware.JWTAuth(tokens))
	{
		protected.GET("/stocks/:symbol", h.GetStock)
		protected.POST("/buy", h.Buy)
		protected.POST("/sell", h.Sell)
		protected.GET("/transactions", h.ListTransactions)
		protected.GET("/holdings/:stock_id", h.GetHolding)
	}

	return router
}
