package collyfetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pagesift/pagesift/internal/scrape"
)

func TestFetchReturnsBody(t *testing.T) {
	t.Parallel()

	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><title>hello</title></html>"))
	}))
	defer srv.Close()

	f := New(Config{})
	resp, err := f.Fetch(context.Background(), scrape.FetchRequest{URL: srv.URL})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(resp.Body), "hello")
	require.Positive(t, resp.Duration)

	require.Contains(t, gotUA, "Mozilla/5.0")
	require.Contains(t, gotAccept, "text/html")
}

func TestFetchNonSuccessStatusIsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := New(Config{})
	_, err := f.Fetch(context.Background(), scrape.FetchRequest{URL: srv.URL})
	require.Error(t, err)
}

func TestFetchUnreachableHost(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	f := New(Config{})
	_, err := f.Fetch(context.Background(), scrape.FetchRequest{URL: url})
	require.Error(t, err)
}

func TestFetchContextCancellation(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	f := New(Config{Timeout: 30 * time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := f.Fetch(ctx, scrape.FetchRequest{URL: srv.URL})
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetchPerRequestTimeoutOverride(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	f := New(Config{Timeout: 30 * time.Second})
	start := time.Now()
	_, err := f.Fetch(context.Background(), scrape.FetchRequest{
		URL:     srv.URL,
		Timeout: 100 * time.Millisecond,
	})
	require.Error(t, err)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestNewAppliesDefaults(t *testing.T) {
	t.Parallel()

	f := New(Config{})
	require.Equal(t, defaultUserAgent, f.cfg.UserAgent)
	require.Equal(t, defaultTimeout, f.cfg.Timeout)

	custom := New(Config{UserAgent: "test-agent", Timeout: time.Second})
	require.Equal(t, "test-agent", custom.cfg.UserAgent)
	require.Equal(t, time.Second, custom.cfg.Timeout)
}
