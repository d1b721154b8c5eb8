package ocr

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

const geminiModel = "gemini-2.5-flash"

// Gemini pricing (per million tokens)
const (
	geminiInputPricePerMillion  = 0.30
	geminiOutputPricePerMillion = 2.50
)

const ticketPrompt = `This image should show a poker tournament ticket, receipt or registration slip.

Read it and respond in JSON format with these fields:
- is_ticket: true if the image is a poker tournament ticket or receipt, false otherwise
- name: tournament name (empty string if not visible)
- date: tournament date as YYYY-MM-DD (empty string if not visible)
- venue: casino or club name (empty string if not visible)
- buyin: total buy-in amount as a number, without currency (0 if not visible)
- type: one of freezeout, rebuy, addon, bounty, satellite (empty string if unclear)
- structure: structure description such as "20 min levels" (empty string if not visible)
- participants: number of entries if printed (0 otherwise)
- prize_pool: prize pool as a number (0 if not visible)
- starting_stack: starting chips as a number (0 if not visible)
- blind_levels: blind level duration or schedule (empty string if not visible)
- confidence: your confidence in the extracted fields from 0 to 1

Example response:
{"is_ticket": true, "name": "Sunday Special", "date": "2024-12-15", "venue": "Aria Casino", "buyin": 500, "type": "freezeout", "structure": "30 min levels", "participants": 0, "prize_pool": 0, "starting_stack": 30000, "blind_levels": "30 min", "confidence": 0.9}

Respond ONLY with the JSON object, no markdown or other text.`

// GeminiAnalyzer uses Google's Gemini API to read tickets.
type GeminiAnalyzer struct {
	client *genai.Client
}

// NewGeminiAnalyzer creates a Gemini-based analyzer using apiKey.
func NewGeminiAnalyzer(ctx context.Context, apiKey string) (*GeminiAnalyzer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiAnalyzer{client: client}, nil
}

// AnalyzeTicket implements ImageAnalyzer.
func (g *GeminiAnalyzer) AnalyzeTicket(ctx context.Context, image []byte, mimeType string) (*Result, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("no image provided")
	}

	parts := []*genai.Part{
		genai.NewPartFromText(ticketPrompt),
		{InlineData: &genai.Blob{Data: image, MIMEType: mimeType}},
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	result, err := g.client.Models.GenerateContent(ctx, geminiModel, contents, config)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from Gemini")
	}

	if result.UsageMetadata != nil {
		log.Info().
			Str("model", geminiModel).
			Int32("inputTokens", result.UsageMetadata.PromptTokenCount).
			Int32("outputTokens", result.UsageMetadata.CandidatesTokenCount).
			Float64("costUSD", calculateGeminiCost(
				int64(result.UsageMetadata.PromptTokenCount),
				int64(result.UsageMetadata.CandidatesTokenCount),
			)).
			Msg("ticket ocr llm call")
	}

	return parseTicketResponse(result.Text())
}

func calculateGeminiCost(inputTokens, outputTokens int64) float64 {
	inputCost := float64(inputTokens) / 1_000_000 * geminiInputPricePerMillion
	outputCost := float64(outputTokens) / 1_000_000 * geminiOutputPricePerMillion
	return inputCost + outputCost
}

type ticketResponse struct {
	IsTicket   bool    `json:"is_ticket"`
	Confidence float64 `json:"confidence"`
	TicketData
}

// extractJSONObject extracts a JSON object from text that may be wrapped in
// markdown code fences.
func extractJSONObject(text string) (string, error) {
	text = strings.TrimSpace(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in response: %s", text)
	}
	return text[start : end+1], nil
}

func parseTicketResponse(text string) (*Result, error) {
	jsonStr, err := extractJSONObject(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w", err)
	}

	var resp ticketResponse
	if err := json.Unmarshal([]byte(jsonStr), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w (response: %s)", err, jsonStr)
	}

	if !resp.IsTicket {
		return &Result{Success: false, Error: "the image does not look like a tournament ticket"}, nil
	}

	data := resp.TicketData
	return &Result{
		Success:    true,
		Data:       &data,
		Confidence: clampConfidence(resp.Confidence),
	}, nil
}

func clampConfidence(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}
