package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	middleware "github.com/phillip/donation-hub-go/middleware"
	models "github.com/phillip/donation-hub-go/models"
	"github.com/phillip/donation-hub-go/store"
)

// ---------------- REGISTER ----------------
func Register(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Name     string `json:"name" binding:"required"`
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required,min=8"`
			Role     string `json:"role" binding:"omitempty,oneof=donor organization"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			d.respondError(c, err, "could not hash password")
			return
		}

		role := input.Role
		if role == "" {
			role = models.RoleDonor
		}
		now := time.Now()
		user := &models.User{
			ID:           primitive.NewObjectID(),
			Name:         strings.TrimSpace(input.Name),
			Email:        strings.ToLower(strings.TrimSpace(input.Email)),
			PasswordHash: string(hash),
			Role:         role,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		if err := d.Store.InsertUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
				return
			}
			d.respondError(c, err, "could not create user")
			return
		}

		tokens, err := middleware.IssueTokens(d.Config, user)
		if err != nil {
			d.respondError(c, err, "could not issue tokens")
			return
		}
		d.Log.Info("user registered", zap.String("user_id", user.ID.Hex()), zap.String("role", user.Role))

		c.JSON(http.StatusCreated, gin.H{"user": user, "tokens": tokens})
	}
}

// ---------------- LOGIN ----------------
func Login(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email    string `json:"email" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		user, err := d.Store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			d.respondError(c, err, "could not load user")
			return
		}
		if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}

		tokens, err := middleware.IssueTokens(d.Config, user)
		if err != nil {
			d.respondError(c, err, "could not issue tokens")
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user, "tokens": tokens})
	}
}

// ---------------- REFRESH ----------------
func RefreshToken(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			RefreshToken string `json:"refresh_token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		claims, err := middleware.ParseToken(d.Config, input.RefreshToken, middleware.TokenRefresh)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
			return
		}
		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		// re-read the user so role changes apply on refresh
		user, err := d.Store.GetUser(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "user no longer exists"})
				return
			}
			d.respondError(c, err, "could not load user")
			return
		}

		tokens, err := middleware.IssueTokens(d.Config, user)
		if err != nil {
			d.respondError(c, err, "could not issue tokens")
			return
		}
		c.JSON(http.StatusOK, gin.H{"tokens": tokens})
	}
}
