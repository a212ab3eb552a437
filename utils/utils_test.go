package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	config "github.com/phillip/donation-hub-go/config"
)

func TestExtractPublicID(t *testing.T) {
	tests := []struct {
		url, want string
	}{
		{"https://res.cloudinary.com/demo/image/upload/v1234567890/campaign-images/abc123.jpg", "campaign-images/abc123"},
		{"https://res.cloudinary.com/demo/image/upload/organization-logos/logo.png", "organization-logos/logo"},
		{"https://res.cloudinary.com/demo/image/upload/v12/plain.webp", "plain"},
	}
	for _, tt := range tests {
		got, err := extractPublicID(tt.url)
		require.NoError(t, err, tt.url)
		assert.Equal(t, tt.want, got)
	}

	_, err := extractPublicID("https://example.com/no/marker.jpg")
	assert.Error(t, err)
}

func TestNewCloudinaryUploaderDisabled(t *testing.T) {
	_, err := NewCloudinaryUploader(&config.Config{})
	assert.ErrorIs(t, err, ErrUploadsDisabled)
}

func TestZeptoMailer(t *testing.T) {
	var got emailRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Zoho-enczapikey test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m := NewZeptoMailer(&config.Config{
		ZeptoAPIURL: srv.URL, ZeptoAPIKey: "Zoho-enczapikey test", EmailFrom: "noreply@example.org",
	}, nil)
	require.NoError(t, m.SendEmail(context.Background(), "dana@example.com", "Thanks", "<p>hi</p>"))

	assert.Equal(t, "noreply@example.org", got.From.Address)
	require.Len(t, got.To, 1)
	assert.Equal(t, "dana@example.com", got.To[0].Email.Address)
	assert.Equal(t, "<p>hi</p>", got.HtmlBody)
}

func TestZeptoMailerErrors(t *testing.T) {
	err := NewZeptoMailer(&config.Config{}, nil).SendEmail(context.Background(), "a@b.c", "s", "b")
	assert.ErrorIs(t, err, ErrEmailNotConfigured)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()
	m := NewZeptoMailer(&config.Config{ZeptoAPIURL: srv.URL, ZeptoAPIKey: "k", EmailFrom: "f@example.org"}, nil)
	assert.ErrorContains(t, m.SendEmail(context.Background(), "a@b.c", "s", "b"), "401")
}

func TestNotModified(t *testing.T) {
	gin.SetMode(gin.TestMode)
	id := primitive.NewObjectID()
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, NotModified(c, id, at))
	etag := w.Header().Get("ETag")
	assert.Equal(t, GenerateETag(id, at), etag)
	assert.Equal(t, "Thu, 02 Jan 2025 03:04:05 GMT", w.Header().Get("Last-Modified"))

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("If-None-Match", etag)
	assert.True(t, NotModified(c, id, at))
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNotModified, w.Code)

	assert.NotEqual(t, etag, GenerateETag(id, at.Add(time.Second)))
}

func TestGenerateListETag(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	a := Version{ID: primitive.NewObjectID(), UpdatedAt: at}
	b := Version{ID: primitive.NewObjectID(), UpdatedAt: at.Add(time.Hour)}

	both := GenerateListETag([]Version{a, b})
	assert.Equal(t, both, GenerateListETag([]Version{a, b}))
	assert.NotEqual(t, both, GenerateListETag([]Version{b}), "removing an older row changes the tag")
	assert.NotEqual(t, both, GenerateListETag([]Version{a, {ID: b.ID, UpdatedAt: at.Add(2 * time.Hour)}}))
	assert.NotEqual(t, both, GenerateListETag(nil))

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, ListNotModified(c, []Version{a, b}))
	assert.Equal(t, both, w.Header().Get("ETag"))
	assert.Equal(t, "Thu, 02 Jan 2025 04:04:05 GMT", w.Header().Get("Last-Modified"))
}

func TestParseDates(t *testing.T) {
	start, dateOnly, err := ParseDate("2025-03-01")
	require.NoError(t, err)
	assert.True(t, dateOnly)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), start)

	end, err := ParseRangeEnd("2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 23, 59, 59, 999999999, time.UTC), end)

	exact, err := ParseRangeEnd("2025-03-01T12:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 12, exact.Hour())

	_, _, err = ParseDate("March 1st")
	assert.Error(t, err)
}
