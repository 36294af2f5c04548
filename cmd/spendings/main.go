package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"card-spendings/internal/gateway"
	"card-spendings/internal/logger"
	"card-spendings/internal/usecase"
)

func main() {
	defaults := usecase.DefaultOptions()

	// Define command-line flags
	file := flag.String("file", "", "Path to the card transactions CSV file (required)")
	layout := flag.String("layout", defaults.DateLayout, "Go time layout of the Date column")
	workers := flag.Int("workers", defaults.Workers, "Number of partitions summed concurrently")
	top := flag.Int("top", defaults.TopN, "Number of cities in the top gender gap lists")
	bottom := flag.Int("bottom", defaults.BottomN, "Number of cities in the bottom gender gap lists")
	topCities := flag.Int("top-cities", defaults.TopCities, "Number of most frequent cities in the profile")
	daysStr := flag.String("days", "29,30,31", "Comma-separated days of month for the end-of-month analysis")
	citiesStr := flag.String("cities", "", "Comma-separated cities to check for card usage")
	prefixesStr := flag.String("prefixes", "", "Comma-separated first letters for the city name search")
	minLength := flag.Int("min-length", 10, "City names in the search must be longer than this")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	// Validate required flags
	if *file == "" {
		fmt.Println("Error: the -file flag is required.")
		flag.Usage()
		os.Exit(1)
	}

	log, _ := logger.WithRunID(logger.New(*logLevel))
	ctx := logger.WithContext(context.Background(), log)

	days, err := parseDays(*daysStr)
	if err != nil {
		log.Fatal().Err(err).Msg("Error parsing days")
	}

	opts := usecase.Options{
		DateLayout:     *layout,
		Workers:        *workers,
		TopN:           *top,
		BottomN:        *bottom,
		TopCities:      *topCities,
		EndOfMonthDays: days,
		Cities:         splitList(*citiesStr),
		CityPrefixes:   splitList(*prefixesStr),
		CityMinLength:  *minLength,
	}

	// --- Dependency Injection ---
	csvRepo := gateway.NewCSVTransactionRepository()
	analysisUseCase := usecase.NewSpendingAnalysisUseCase(csvRepo, opts)

	// --- Execute the Usecase ---
	report, err := analysisUseCase.Analyze(ctx, *file)
	if err != nil {
		log.Fatal().Err(err).Msg("Analysis failed")
	}

	// --- Present the Output ---
	output, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to generate JSON report")
	}

	fmt.Println(string(output))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDays(s string) ([]int, error) {
	var days []int
	for _, part := range splitList(s) {
		day, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid day '%s': %w", part, err)
		}
		if day < 1 || day > 31 {
			return nil, fmt.Errorf("day %d is outside 1-31", day)
		}
		days = append(days, day)
	}
	return days, nil
}
