package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"pbank/auth"
	"pbank/models"
	"pbank/store"
)

type AuthInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Signup creates a user with a bcrypt-hashed password.
func (h *Handler) Signup(c *gin.Context) {
	var input AuthInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "bad_request", "error": err.Error()})
		return
	}

	_, err := h.users.ByUsername(c.Request.Context(), input.Username)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"code": "conflict", "error": "username already exists"})
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		h.respondError(c, err)
		return
	}

	hashed, err := auth.HashPassword(input.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	user := models.User{Username: input.Username, HashedPassword: hashed}
	if err := h.users.Create(c.Request.Context(), &user); err != nil {
		h.respondError(c, err)
		return
	}

	h.log.Info("user created", zap.String("username", user.Username))
	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "username": user.Username})
}

// Login verifies credentials and returns a signed access token, plus a
// refresh token when Redis is configured.
func (h *Handler) Login(c *gin.Context) {
	var input AuthInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "bad_request", "error": err.Error()})
		return
	}

	user, err := h.creds.Verify(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	accessToken, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := gin.H{"token": accessToken}
	if h.sessions != nil {
		refreshToken, err := h.tokens.IssueRefresh(user.ID, h.refreshTTL)
		if err != nil {
			h.respondError(c, err)
			return
		}
		key := refreshKey(refreshToken)
		if err := h.sessions.Set(c.Request.Context(), key, user.ID.String(), h.refreshTTL).Err(); err != nil {
			h.respondError(c, err)
			return
		}
		resp["refresh_token"] = refreshToken
	}

	c.JSON(http.StatusOK, resp)
}

type RefreshInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh exchanges a live refresh token for a new access token. Unlike
// access tokens, refresh tokens are server-side state and can be revoked by
// deleting the Redis key.
func (h *Handler) Refresh(c *gin.Context) {
	if h.sessions == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"code": "refresh_unavailable", "error": "refresh tokens are not enabled"})
		return
	}

	var input RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "bad_request", "error": err.Error()})
		return
	}

	if _, err := h.tokens.ValidateRefresh(input.RefreshToken); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "unauthorized", "error": "invalid or expired token"})
		return
	}

	stored, err := h.sessions.Get(c.Request.Context(), refreshKey(input.RefreshToken)).Result()
	if err == redis.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "unauthorized", "error": "invalid or expired token"})
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	uid, err := uuid.Parse(stored)
	if err != nil {
		h.respondError(c, err)
		return
	}

	accessToken, err := h.tokens.Issue(uid)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": accessToken})
}

func refreshKey(token string) string {
	return fmt.Sprintf("refresh:%s", token)
}
