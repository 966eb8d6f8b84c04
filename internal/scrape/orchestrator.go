package scrape

import (
	"context"

	"go.uber.org/zap"
)

// Summarization payload cap; bounds the remote-call request size.
const maxSummaryInput = 15000

// Orchestrator composes fetch, extraction and summarization for one URL.
type Orchestrator struct {
	fetcher    Fetcher
	extractor  Extractor
	summarizer Summarizer
	logger     *zap.Logger
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(fetcher Fetcher, extractor Extractor, summarizer Summarizer, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		fetcher:    fetcher,
		extractor:  extractor,
		summarizer: summarizer,
		logger:     logger,
	}
}

// Process fetches, extracts and summarizes a single URL. A fetch failure
// yields a record with only URL and Error set; nothing else is attempted.
func (o *Orchestrator) Process(ctx context.Context, url string, apiKey string) ScrapeRecord {
	resp, err := o.fetcher.Fetch(ctx, FetchRequest{URL: url})
	if err != nil {
		o.logger.Warn("fetch failed", zap.String("url", url), zap.Error(err))
		return ScrapeRecord{URL: url, Error: "failed_fetch"}
	}

	extracted := o.extractor.Extract(resp.Body, url)

	text := extracted.Text
	if len(text) > maxSummaryInput {
		if r := []rune(text); len(r) > maxSummaryInput {
			text = string(r[:maxSummaryInput])
		}
	}
	summary := o.summarizer.Summarize(ctx, text, apiKey)

	return ScrapeRecord{
		URL:         url,
		Title:       extracted.Title,
		Description: extracted.Description,
		Price:       extracted.Price,
		Images:      extracted.Images,
		Summary:     summary,
		Suggestions: deriveSuggestions(extracted),
	}
}

// deriveSuggestions builds the fixed-order advisory list. Only price and
// images participate; title and description never produce a suggestion.
func deriveSuggestions(extracted ExtractionResult) []string {
	suggestions := make([]string, 0, 2)
	if extracted.Price != "" {
		suggestions = append(suggestions,
			"Price detected: "+extracted.Price+" — consider comparing with other sellers.")
	} else {
		suggestions = append(suggestions,
			"No obvious price detected — might not be a product page or price is loaded dynamically.")
	}
	if len(extracted.Images) > 0 {
		suggestions = append(suggestions,
			"Page has images; consider downloading the top ones for quick preview.")
	}
	return suggestions
}
