package utils

import (
	"crypto/sha1"
	"encoding/hex"
	"hash"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Version identifies one revision of a stored document.
type Version struct {
	ID        primitive.ObjectID
	UpdatedAt time.Time
}

func writeVersion(h hash.Hash, v Version) {
	h.Write([]byte(v.ID.Hex() + "|" + v.UpdatedAt.UTC().Format(time.RFC3339Nano) + "\n"))
}

func weakTag(h hash.Hash) string {
	return `W/"` + hex.EncodeToString(h.Sum(nil)[:8]) + `"`
}

// GenerateETag derives a weak validator from a document id and its last update.
func GenerateETag(id primitive.ObjectID, updatedAt time.Time) string {
	h := sha1.New()
	writeVersion(h, Version{ID: id, UpdatedAt: updatedAt})
	return weakTag(h)
}

// GenerateListETag covers every row of a list response, so adding, removing
// or editing any row changes the validator.
func GenerateListETag(versions []Version) string {
	h := sha1.New()
	h.Write([]byte(strconv.Itoa(len(versions)) + "\n"))
	for _, v := range versions {
		writeVersion(h, v)
	}
	return weakTag(h)
}

// NotModified sets ETag and Last-Modified and reports whether the client's
// copy is current, in which case a 304 has already been written.
func NotModified(c *gin.Context, id primitive.ObjectID, updatedAt time.Time) bool {
	return checkValidators(c, GenerateETag(id, updatedAt), updatedAt)
}

// ListNotModified is NotModified for list responses.
func ListNotModified(c *gin.Context, versions []Version) bool {
	var latest time.Time
	for _, v := range versions {
		if v.UpdatedAt.After(latest) {
			latest = v.UpdatedAt
		}
	}
	return checkValidators(c, GenerateListETag(versions), latest)
}

func checkValidators(c *gin.Context, etag string, lastModified time.Time) bool {
	if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	c.Header("ETag", etag)
	c.Header("Last-Modified", lastModified.UTC().Format(http.TimeFormat))
	return false
}
