package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pokerlog/telegram-poker-bot/config"
	"github.com/pokerlog/telegram-poker-bot/internal/ocr"
	"github.com/pokerlog/telegram-poker-bot/internal/tournament"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <image-path>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment variables:\n")
		fmt.Fprintf(os.Stderr, "  GEMINI_API_KEY - Required\n")
		os.Exit(1)
	}

	config.LoadEnvFile()
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "GEMINI_API_KEY is not set")
		os.Exit(1)
	}

	imagePath := os.Args[1]
	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read image: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	analyzer, err := ocr.NewGeminiAnalyzer(ctx, apiKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating Gemini analyzer: %v\n", err)
		os.Exit(1)
	}

	result, err := analyzer.AnalyzeTicket(ctx, imageData, getMimeType(imagePath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error analyzing image: %v\n", err)
		os.Exit(1)
	}

	printResult(result)
}

func printResult(result *ocr.Result) {
	if !result.Success {
		fmt.Printf("Not recognized: %s\n", result.Error)
		return
	}

	d := result.Data
	fmt.Printf("Name:           %s\n", d.Name)
	fmt.Printf("Date:           %s\n", d.Date)
	fmt.Printf("Venue:          %s\n", d.Venue)
	fmt.Printf("Buy-in:         %.2f\n", float64(d.BuyIn))
	fmt.Printf("Type:           %s\n", d.Type)
	fmt.Printf("Structure:      %s\n", d.Structure)
	fmt.Printf("Participants:   %d\n", d.Participants)
	fmt.Printf("Prize pool:     %.2f\n", float64(d.PrizePool))
	fmt.Printf("Starting stack: %d\n", d.StartingStack)
	fmt.Printf("Blind levels:   %s\n", d.BlindLevels)
	fmt.Printf("Confidence:     %.0f%%\n", result.Confidence*100)
	fmt.Println()

	draft := d.Draft().WithDefaults()
	if err := draft.Validate(); err != nil {
		fmt.Printf("Draft:          not saveable (%v)\n", err)
		return
	}
	fmt.Printf("Draft:          %s on %s, %s\n", draft.Name, tournament.FormatDate(draft.Date), tournament.FormatCurrency(draft.BuyIn))
}

func getMimeType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
