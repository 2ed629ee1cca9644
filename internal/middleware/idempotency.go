package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	idempotencyHeader = "Idempotency-Key"
	idempotencyTTL    = 24 * time.Hour
	idempotencyPrefix = "idempotency:"
)

// storedResponse is the replayable part of a handled request.
type storedResponse struct {
	StatusCode  int             `json:"status_code"`
	ContentType string          `json:"content_type"`
	Body        json.RawMessage `json:"body"`
}

// bodyRecorder tees the response body.
type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response for a POST or DELETE that repeats
// an Idempotency-Key seen within the last 24 hours. Keys are scoped to the
// route. A nil client or a Redis failure lets the request through.
func Idempotency(client *redis.Client, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if client == nil || (c.Request.Method != http.MethodPost && c.Request.Method != http.MethodDelete) {
			c.Next()
			return
		}

		key := c.GetHeader(idempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		cacheKey := idempotencyPrefix + c.Request.Method + " " + c.Request.URL.Path + ":" + key

		stored, err := loadResponse(ctx, client, cacheKey)
		if err != nil && err != redis.Nil {
			logger.Warn("idempotency lookup failed", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if stored != nil {
			c.Header("Idempotent-Replay", "true")
			c.Data(stored.StatusCode, stored.ContentType, stored.Body)
			c.Abort()
			return
		}

		w := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w

		c.Next()

		// Server errors and lock contention are worth retrying.
		status := c.Writer.Status()
		if status >= 500 || status == http.StatusConflict || status == http.StatusTooManyRequests {
			return
		}
		resp := storedResponse{
			StatusCode:  status,
			ContentType: c.Writer.Header().Get("Content-Type"),
			Body:        w.body.Bytes(),
		}
		if err := saveResponse(context.WithoutCancel(ctx), client, cacheKey, &resp); err != nil {
			logger.Warn("idempotency store failed", zap.String("key", key), zap.Error(err))
		}
	}
}

func loadResponse(ctx context.Context, client *redis.Client, key string) (*storedResponse, error) {
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	var resp storedResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func saveResponse(ctx context.Context, client *redis.Client, key string, resp *storedResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, data, idempotencyTTL).Err()
}
