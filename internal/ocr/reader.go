package ocr

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// maxImageSize bounds downloads; Telegram bots cannot fetch files above 20 MB anyway.
const maxImageSize = 20 << 20

// Reader fetches a ticket image by URL and runs it through an analyzer.
type Reader struct {
	analyzer ImageAnalyzer
	http     *resty.Client
}

// NewReader creates a Reader that downloads images with a 30 second timeout.
func NewReader(analyzer ImageAnalyzer) *Reader {
	return &Reader{
		analyzer: analyzer,
		http:     resty.New().SetDebug(false).SetTimeout(30 * time.Second),
	}
}

// ExtractTicketData downloads the image at imageURL and recognizes its
// ticket fields. Transport failures are returned as errors; an image that
// is not a readable ticket gives a Result with Success false.
func (r *Reader) ExtractTicketData(ctx context.Context, imageURL string) (*Result, error) {
	image, err := r.download(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	mimeType := http.DetectContentType(image)
	if !strings.HasPrefix(mimeType, "image/") {
		return &Result{Success: false, Error: "the file is not an image"}, nil
	}

	result, err := r.analyzer.AnalyzeTicket(ctx, image, mimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze ticket: %w", err)
	}

	log.Info().
		Bool("success", result.Success).
		Float64("confidence", result.Confidence).
		Int("bytes", len(image)).
		Msg("ticket analyzed")
	return result, nil
}

func (r *Reader) download(ctx context.Context, url string) ([]byte, error) {
	res, err := r.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("image download failed: %s", res.Status())
	}
	body := res.Body()
	if len(body) == 0 {
		return nil, fmt.Errorf("image download returned no data")
	}
	if len(body) > maxImageSize {
		return nil, fmt.Errorf("image is too large (%d bytes)", len(body))
	}
	return body, nil
}
