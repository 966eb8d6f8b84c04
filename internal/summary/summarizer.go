// Package summary produces page summaries with a two-tier strategy: a
// best-effort remote generative call and a deterministic local extractive
// fallback that guarantees a usable result.
package summary

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pagesift/pagesift/internal/metrics"
)

const (
	// Inputs shorter than this are not worth summarizing at all.
	minInputLen = 50
	// Only the head of the text is submitted to the remote model.
	maxPromptInput = 8000
	// Remote generation can take tens of seconds on long inputs.
	defaultRemoteTimeout = 90 * time.Second

	notEnoughContentMessage = "Not enough content to summarize."
)

// RemoteClient is the narrow surface of a generative-text endpoint. It is
// treated as unreliable: any error is recovered via the local fallback and
// never reaches the Summarizer's caller.
type RemoteClient interface {
	Generate(ctx context.Context, apiKey string, prompt string) (string, error)
}

// Config controls Summarizer behavior. The API key lives here rather than
// in process environment so construction stays explicit.
type Config struct {
	APIKey        string
	RemoteTimeout time.Duration
	MaxSentences  int
}

// Summarizer implements scrape.Summarizer.
type Summarizer struct {
	remote RemoteClient
	cfg    Config
	logger *zap.Logger
}

// New constructs a Summarizer. A nil remote client disables the remote tier
// entirely; only the local extractive algorithm runs.
func New(remote RemoteClient, cfg Config, logger *zap.Logger) *Summarizer {
	if cfg.RemoteTimeout <= 0 {
		cfg.RemoteTimeout = defaultRemoteTimeout
	}
	if cfg.MaxSentences <= 0 {
		cfg.MaxSentences = defaultMaxSentences
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Summarizer{remote: remote, cfg: cfg, logger: logger}
}

// Summarize returns a summary for the text. It never fails: short inputs
// get a fixed message, remote errors degrade silently to the local
// algorithm, and the local algorithm always yields a string.
func (s *Summarizer) Summarize(ctx context.Context, text string, apiKey string) string {
	if len(strings.TrimSpace(text)) < minInputLen {
		return notEnoughContentMessage
	}

	if apiKey == "" {
		apiKey = s.cfg.APIKey
	}
	if apiKey != "" && s.remote != nil {
		if out, err := s.tryRemote(ctx, text, apiKey); err == nil {
			return out
		} else {
			s.logger.Warn("remote summarization unavailable, using local fallback", zap.Error(err))
			metrics.ObserveSummaryFallback()
		}
	}

	return Local(text, s.cfg.MaxSentences)
}

func (s *Summarizer) tryRemote(ctx context.Context, text string, apiKey string) (string, error) {
	remoteCtx, cancel := context.WithTimeout(ctx, s.cfg.RemoteTimeout)
	defer cancel()

	out, err := s.remote.Generate(remoteCtx, apiKey, buildPrompt(text))
	if err != nil {
		return "", err
	}
	return out, nil
}

func buildPrompt(text string) string {
	head := text
	if len(head) > maxPromptInput {
		r := []rune(head)
		if len(r) > maxPromptInput {
			head = string(r[:maxPromptInput])
		}
	}
	return "Summarize this webpage content in 4-6 complete sentences. " +
		"Include all key facts, what the page is about, and any important details " +
		"like prices, features, or dates. Make sure to write complete sentences.\n\n" +
		"Webpage content:\n" + head + "\n\nProvide a complete summary:"
}
