package scrape

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	body []byte
	err  error
}

func (f *fakeFetcher) Fetch(_ context.Context, req FetchRequest) (FetchResponse, error) {
	if f.err != nil {
		return FetchResponse{}, f.err
	}
	return FetchResponse{URL: req.URL, StatusCode: 200, Body: f.body}, nil
}

type fakeExtractor struct {
	result ExtractionResult
}

func (f *fakeExtractor) Extract(_ []byte, baseURL string) ExtractionResult {
	out := f.result
	out.URL = baseURL
	return out
}

type fakeSummarizer struct {
	out      string
	lastText string
	lastKey  string
}

func (f *fakeSummarizer) Summarize(_ context.Context, text string, apiKey string) string {
	f.lastText = text
	f.lastKey = apiKey
	return f.out
}

func TestProcess_FetchFailure(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(
		&fakeFetcher{err: errors.New("connection refused")},
		&fakeExtractor{},
		&fakeSummarizer{},
		nil,
	)

	record := o.Process(context.Background(), "https://down.example.com", "")

	require.Equal(t, ScrapeRecord{
		URL:   "https://down.example.com",
		Error: "failed_fetch",
	}, record)
}

func TestProcess_ProductPage(t *testing.T) {
	t.Parallel()

	extracted := ExtractionResult{
		Title:       "Widget",
		Description: "A fine widget.",
		Price:       "$19.99",
		Images:      []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg", "https://cdn.example.com/c.jpg"},
		Text:        "The widget page content, long enough to pass along to summarization.",
	}
	summarizer := &fakeSummarizer{out: "It is a widget."}
	o := NewOrchestrator(&fakeFetcher{body: []byte("<html></html>")}, &fakeExtractor{result: extracted}, summarizer, nil)

	record := o.Process(context.Background(), "https://shop.example.com/widget", "key-123")

	require.Equal(t, "https://shop.example.com/widget", record.URL)
	require.Equal(t, "Widget", record.Title)
	require.Equal(t, "A fine widget.", record.Description)
	require.Equal(t, "$19.99", record.Price)
	require.Len(t, record.Images, 3)
	require.Equal(t, "It is a widget.", record.Summary)
	require.Empty(t, record.Error)
	require.Equal(t, "key-123", summarizer.lastKey)
	require.Equal(t, []string{
		"Price detected: $19.99 — consider comparing with other sellers.",
		"Page has images; consider downloading the top ones for quick preview.",
	}, record.Suggestions)
}

func TestProcess_NoPriceNoImages(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(
		&fakeFetcher{body: []byte("<html></html>")},
		&fakeExtractor{result: ExtractionResult{Title: "Blog Post", Text: "words"}},
		&fakeSummarizer{out: "summary"},
		nil,
	)

	record := o.Process(context.Background(), "https://blog.example.com", "")

	require.Equal(t, []string{
		"No obvious price detected — might not be a product page or price is loaded dynamically.",
	}, record.Suggestions)
}

func TestProcess_TruncatesSummaryInput(t *testing.T) {
	t.Parallel()

	summarizer := &fakeSummarizer{out: "summary"}
	o := NewOrchestrator(
		&fakeFetcher{body: []byte("<html></html>")},
		&fakeExtractor{result: ExtractionResult{Text: strings.Repeat("a", maxSummaryInput+1000)}},
		summarizer,
		nil,
	)

	o.Process(context.Background(), "https://example.com", "")
	require.Len(t, summarizer.lastText, maxSummaryInput)
}

func TestJobStatusIsTerminal(t *testing.T) {
	t.Parallel()

	require.False(t, JobStatusPending.IsTerminal())
	require.True(t, JobStatusSuccess.IsTerminal())
	require.True(t, JobStatusFailed.IsTerminal())
}
