package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	config "github.com/phillip/donation-hub-go/config"
	"github.com/phillip/donation-hub-go/services"
	"github.com/phillip/donation-hub-go/store"
	utils "github.com/phillip/donation-hub-go/utils"
)

const requestTimeout = 10 * time.Second

// Deps is what every handler closes over.
type Deps struct {
	Config    *config.Config
	Store     store.Store
	History   *services.HistoryService
	Donations *services.DonationService
	// Uploader is nil when Cloudinary is not configured.
	Uploader utils.ImageUploader
	Log      *zap.Logger
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// viewerFrom reads the identity set by the auth middleware; nil when anonymous.
func viewerFrom(c *gin.Context) *services.Viewer {
	uid, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		return nil
	}
	return &services.Viewer{
		UserID: uid,
		Email:  c.GetString("email"),
		Role:   c.GetString("role"),
	}
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidTransition), errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, services.ErrPaymentFailed):
		return http.StatusPaymentRequired
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": msg}. Unexpected errors are logged
// and replaced with a generic message.
func (d *Deps) respondError(c *gin.Context, err error, msg string) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		d.Log.Error(msg, zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// uploadImage stores the optional form file under field. ok is false when an
// error response has already been written.
func (d *Deps) uploadImage(c *gin.Context, field, folder string) (url string, ok bool) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		// no file sent
		return "", true
	}
	if d.Uploader == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ErrUploadsDisabled.Error()})
		return "", false
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open file"})
		return "", false
	}
	defer file.Close()

	url, err = d.Uploader.Upload(c.Request.Context(), file, folder)
	if err != nil {
		d.Log.Warn("image upload failed", zap.String("file", fileHeader.Filename), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "image upload failed",
			"details": err.Error(),
			"file":    fileHeader.Filename,
		})
		return "", false
	}
	return url, true
}

// dropImage deletes a replaced or orphaned image; failures are only logged.
func (d *Deps) dropImage(ctx context.Context, imageURL string) {
	if d.Uploader == nil || imageURL == "" {
		return
	}
	if err := d.Uploader.Delete(ctx, imageURL); err != nil {
		d.Log.Warn("image delete failed", zap.String("url", imageURL), zap.Error(err))
	}
}

// ---------------- HEALTH ----------------
func Healthz(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d.Config != nil && d.Config.MongoClient != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := d.Config.MongoClient.Ping(ctx, nil); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
