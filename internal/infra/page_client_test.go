package infra_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nrad-K/izu-radar/internal/config"
	"github.com/nrad-K/izu-radar/internal/infra"
	"github.com/nrad-K/izu-radar/internal/logger"
)

func quietLogger() logger.AppLogger {
	return logger.NewAppLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func fastFetchConfig() config.FetchConfig {
	return config.FetchConfig{
		TimeoutSeconds:    5,
		RetryCount:        3,
		RequestsPerSecond: 100,
		Burst:             10,
	}
}

func TestPageClientFetchSetsHeaders(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		io.WriteString(w, "<html>ok</html>")
	}))
	defer server.Close()

	client := infra.NewPageClient(fastFetchConfig(), "izu-radar-test", quietLogger())
	html, err := client.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", html)
	assert.Equal(t, "izu-radar-test", gotUA)
}

func TestPageClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		io.WriteString(w, "<html>recovered</html>")
	}))
	defer server.Close()

	client := infra.NewPageClient(fastFetchConfig(), "izu-radar-test", quietLogger())
	html, err := client.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html>recovered</html>", html)
	assert.Equal(t, int32(2), calls.Load())
}

func TestPageClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := infra.NewPageClient(fastFetchConfig(), "izu-radar-test", quietLogger())
	_, err := client.Fetch(context.Background(), server.URL)
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "4xxは恒久的な失敗としてリトライしない")
}
