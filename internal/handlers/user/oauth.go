package user

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/RainersCode/honey-sub001/internal/models"
	"github.com/RainersCode/honey-sub001/internal/store"
	"github.com/RainersCode/honey-sub001/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/markbates/goth/gothic"
)

type ctxKey string

// ProviderKey carries the OAuth provider name through the request
// context so gothic can resolve it without query parameters.
const ProviderKey ctxKey = "provider"

func (h *Handler) BeginAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No provider specified"})
		return
	}

	c.Request = c.Request.WithContext(
		context.WithValue(c.Request.Context(), ProviderKey, provider),
	)

	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// CallbackAuth finishes the OAuth dance, provisions a local account on
// first sign-in and hands back a JWT like the password flow does.
func (h *Handler) CallbackAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No provider specified"})
		return
	}

	c.Request = c.Request.WithContext(
		context.WithValue(c.Request.Context(), ProviderKey, provider),
	)

	gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(gothUser.Email))
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provider did not supply an e-mail address"})
		return
	}

	u, err := h.Users.GetByEmail(c.Request.Context(), email)
	if errors.Is(err, store.ErrUserNotFound) {
		u = &models.User{
			ID:         gocql.UUID(uuid.New()),
			Email:      email,
			Name:       gothUser.Name,
			Role:       "customer",
			Provider:   provider,
			ProviderID: gothUser.UserID,
		}
		if err := h.Users.Create(c.Request.Context(), u); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot create account"})
			return
		}
		log.Printf("✅ OAuth account created via %s: %s", provider, email)
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	token, err := utils.GenerateJWT(u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": u})
}
