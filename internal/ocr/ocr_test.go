package ocr

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pokerlog/telegram-poker-bot/internal/tournament"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough for http.DetectContentType to report image/png
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type mockAnalyzer struct {
	mock.Mock
}

func (m *mockAnalyzer) AnalyzeTicket(ctx context.Context, image []byte, mimeType string) (*Result, error) {
	args := m.Called(ctx, image, mimeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Result), args.Error(1)
}

type memoryCache struct {
	entries map[string][]byte
	sets    int
}

func (c *memoryCache) GetTicketCache(_ context.Context, hash string) ([]byte, error) {
	return c.entries[hash], nil
}

func (c *memoryCache) SetTicketCache(_ context.Context, hash string, data []byte) error {
	c.entries[hash] = data
	c.sets++
	return nil
}

func TestParseTicketResponse(t *testing.T) {
	text := "```json\n" + `{"is_ticket": true, "name": "Sunday Special", "date": "2024-12-15", "venue": "Hall X", "buyin": "$1,100", "type": "Bounty", "starting_stack": 30000, "confidence": 0.82}` + "\n```"

	res, err := parseTicketResponse(text)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, 0.82, res.Confidence)

	d := res.Data.Draft()
	assert.Equal(t, "Sunday Special", d.Name)
	assert.Equal(t, time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC), d.Date)
	assert.Equal(t, "Hall X", d.Venue)
	assert.Equal(t, 1100.0, d.BuyIn)
	assert.Equal(t, tournament.TypeBounty, d.Type)
	assert.Equal(t, 30000, d.StartingStack)
}

func TestParseTicketResponse_NotATicket(t *testing.T) {
	res, err := parseTicketResponse(`{"is_ticket": false, "confidence": 0.1}`)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
}

func TestParseTicketResponse_Garbage(t *testing.T) {
	_, err := parseTicketResponse("sorry, I cannot help")
	assert.Error(t, err)
}

func TestTicketData_DraftDropsUnparseableFields(t *testing.T) {
	d := TicketData{Name: "  Main Event ", Date: "next friday", Type: "turbo", BuyIn: -5}.Draft()
	assert.Equal(t, "Main Event", d.Name)
	assert.True(t, d.Date.IsZero())
	assert.Empty(t, d.Type)
	assert.Zero(t, d.BuyIn)
}

func TestCachedAnalyzer_UsesCacheOnSecondCall(t *testing.T) {
	inner := new(mockAnalyzer)
	cache := &memoryCache{entries: map[string][]byte{}}
	analyzer := NewCachedAnalyzer(inner, cache)

	want := &Result{Success: true, Data: &TicketData{Name: "Cached"}, Confidence: 0.7}
	inner.On("AnalyzeTicket", mock.Anything, pngHeader, "image/png").Return(want, nil).Once()

	first, err := analyzer.AnalyzeTicket(context.Background(), pngHeader, "image/png")
	require.NoError(t, err)
	second, err := analyzer.AnalyzeTicket(context.Background(), pngHeader, "image/png")
	require.NoError(t, err)

	assert.Equal(t, "Cached", first.Data.Name)
	assert.Equal(t, "Cached", second.Data.Name)
	assert.Equal(t, 0.7, second.Confidence)
	assert.Equal(t, 1, cache.sets)
	inner.AssertExpectations(t)
}

func TestCachedAnalyzer_DoesNotCacheFailures(t *testing.T) {
	inner := new(mockAnalyzer)
	cache := &memoryCache{entries: map[string][]byte{}}
	analyzer := NewCachedAnalyzer(inner, cache)

	inner.On("AnalyzeTicket", mock.Anything, mock.Anything, mock.Anything).
		Return(&Result{Success: false, Error: "blurry"}, nil).Twice()

	for i := 0; i < 2; i++ {
		res, err := analyzer.AnalyzeTicket(context.Background(), pngHeader, "image/png")
		require.NoError(t, err)
		assert.False(t, res.Success)
	}
	assert.Zero(t, cache.sets)
	inner.AssertExpectations(t)
}

func TestReader_DownloadsAndAnalyzes(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ticket.png" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write(pngHeader)
	}))
	defer ts.Close()

	inner := new(mockAnalyzer)
	inner.On("AnalyzeTicket", mock.Anything, pngHeader, "image/png").
		Return(&Result{Success: true, Data: &TicketData{Venue: "Hall X"}}, nil).Once()

	res, err := NewReader(inner).ExtractTicketData(context.Background(), ts.URL+"/ticket.png")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Hall X", res.Data.Venue)
	inner.AssertExpectations(t)
}

func TestReader_RejectsNonImage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-1.4 not an image"))
	}))
	defer ts.Close()

	inner := new(mockAnalyzer)
	res, err := NewReader(inner).ExtractTicketData(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.False(t, res.Success)
	inner.AssertNotCalled(t, "AnalyzeTicket", mock.Anything, mock.Anything, mock.Anything)
}

func TestReader_DownloadError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := NewReader(new(mockAnalyzer)).ExtractTicketData(context.Background(), ts.URL)
	assert.Error(t, err)
}

func TestReader_AnalyzerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pngHeader)
	}))
	defer ts.Close()

	inner := new(mockAnalyzer)
	inner.On("AnalyzeTicket", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("quota"))

	_, err := NewReader(inner).ExtractTicketData(context.Background(), ts.URL)
	assert.ErrorContains(t, err, "quota")
}
