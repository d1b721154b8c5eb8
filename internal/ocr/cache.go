package ocr

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// Cache stores serialized recognition results keyed by image hash.
// A missing entry is returned as nil, nil.
type Cache interface {
	GetTicketCache(ctx context.Context, imageHash string) ([]byte, error)
	SetTicketCache(ctx context.Context, imageHash string, data []byte) error
}

// CachedAnalyzer wraps an ImageAnalyzer with a result cache so the same
// ticket photo sent twice costs a single model call.
type CachedAnalyzer struct {
	inner ImageAnalyzer
	cache Cache
}

// NewCachedAnalyzer creates a cached analyzer.
func NewCachedAnalyzer(inner ImageAnalyzer, cache Cache) *CachedAnalyzer {
	return &CachedAnalyzer{inner: inner, cache: cache}
}

func hashImage(image []byte) string {
	sum := sha256.Sum256(image)
	return hex.EncodeToString(sum[:])
}

type cachedResult struct {
	Data       TicketData `json:"data"`
	Confidence float64    `json:"confidence"`
}

// AnalyzeTicket implements ImageAnalyzer with caching. Only successful
// recognitions are cached.
func (c *CachedAnalyzer) AnalyzeTicket(ctx context.Context, image []byte, mimeType string) (*Result, error) {
	hash := hashImage(image)

	if c.cache != nil {
		raw, err := c.cache.GetTicketCache(ctx, hash)
		if err != nil {
			log.Warn().Err(err).Msg("failed to check ticket cache")
		} else if raw != nil {
			var cached cachedResult
			if err := json.Unmarshal(raw, &cached); err == nil {
				log.Debug().Str("hash", hash[:16]).Msg("ticket cache hit")
				data := cached.Data
				return &Result{Success: true, Data: &data, Confidence: cached.Confidence}, nil
			}
			log.Warn().Str("hash", hash[:16]).Msg("discarding unreadable ticket cache entry")
		}
	}

	result, err := c.inner.AnalyzeTicket(ctx, image, mimeType)
	if err != nil {
		return nil, err
	}

	if c.cache != nil && result.Success && result.Data != nil {
		raw, err := json.Marshal(cachedResult{Data: *result.Data, Confidence: result.Confidence})
		if err == nil {
			err = c.cache.SetTicketCache(ctx, hash, raw)
		}
		if err != nil {
			log.Warn().Err(err).Msg("failed to cache ticket result")
		}
	}

	return result, nil
}
