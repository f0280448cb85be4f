package user

import (
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
)

type Handler struct {
	Users *store.ScyllaUsers
}

func (h *Handler) Register(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		Name     string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid registration data", "details": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	if _, err := h.Users.GetByEmail(c.Request.Context(), email); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "An account with this e-mail already exists"})
		return
	} else if !errors.Is(err, store.ErrUserNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot hash password"})
		return
	}

	u := &models.User{
		ID:       gocql.UUID(uuid.New()),
		Email:    email,
		Password: hash,
		Name:     input.Name,
		Role:     "customer",
		Provider: "local",
	}

	if err := h.Users.Create(c.Request.Context(), u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot create account"})
		return
	}

	token, err := utils.GenerateJWT(u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot issue token"})
		return
	}

	log.Printf("✅ Account created: %s", email)
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": u})
}

func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid login data"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	u, err := h.Users.GetByEmail(c.Request.Context(), email)
	if errors.Is(err, store.ErrUserNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid e-mail or password"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	ok, err := utils.VerifyPassword(input.Password, u.Password)
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid e-mail or password"})
		return
	}

	token, err := utils.GenerateJWT(u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": u})
}

// Me returns the profile of the authenticated user.
func (h *Handler) Me(c *gin.Context) {
	userUUID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	u, err := h.Users.GetByID(c.Request.Context(), gocql.UUID(userUUID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, u)
}
