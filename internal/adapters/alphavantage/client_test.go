package alphavantage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"papertrader/internal/ports"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := New(Config{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Timeout: 2 * time.Second,
		Logger:  &mockLogger{},
	})
	require.NoError(t, err)
	return client
}

func TestQuote(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"function": q.Get("function"),
			"symbol":   q.Get("symbol"),
			"apikey":   q.Get("apikey"),
		}
		w.Write([]byte(`{"Global Quote": {"01. symbol": "TATA.MOTORS.NSE", "05. price": "945.5000"}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	price, err := client.Quote(context.Background(), "TATA-MOTORS")
	require.NoError(t, err)
	assert.Equal(t, 945.5, price)

	assert.Equal(t, "GLOBAL_QUOTE", gotQuery["function"])
	assert.Equal(t, "TATA.MOTORS.NSE", gotQuery["symbol"], "series separator becomes a dot and the venue suffix is appended")
	assert.Equal(t, "test-key", gotQuery["apikey"])
}

func TestQuoteServerThrottleNote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Quote(context.Background(), "RELIANCE")
	assert.ErrorIs(t, err, ports.ErrRateLimited, "quota exhaustion arrives as a 200 with a Note body")
}

func TestQuoteServerThrottleInformation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Information": "API key detected, but your quota has been reached."}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Quote(context.Background(), "RELIANCE")
	assert.ErrorIs(t, err, ports.ErrRateLimited)
}

func TestQuoteEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Unknown symbols come back as an empty quote object.
		w.Write([]byte(`{"Global Quote": {}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Quote(context.Background(), "NOSUCH")
	assert.ErrorIs(t, err, ports.ErrQuoteUnavailable)
}

func TestQuoteMalformedPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Global Quote": {"05. price": "not-a-number"}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Quote(context.Background(), "RELIANCE")
	assert.ErrorIs(t, err, ports.ErrQuoteUnavailable)
}

func TestQuoteHTTPErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   error
	}{
		{"server error", http.StatusInternalServerError, ports.ErrFeedUnavailable},
		{"throttled", http.StatusTooManyRequests, ports.ErrRateLimited},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer server.Close()

			client := newTestClient(t, server.URL)
			_, err := client.Quote(context.Background(), "RELIANCE")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestQuoteLocalQuota(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`{"Global Quote": {"05. price": "100.0"}}`))
	}))
	defer server.Close()

	client, err := New(Config{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		DailyQuota: 1,
		Logger:     &mockLogger{},
	})
	require.NoError(t, err)

	_, err = client.Quote(context.Background(), "RELIANCE")
	require.NoError(t, err)

	_, err = client.Quote(context.Background(), "TCS")
	assert.ErrorIs(t, err, ports.ErrRateLimited, "local limiter fails fast instead of waiting")
	assert.Equal(t, 1, requests, "quota-refused requests never reach the server")
}

func TestFormatSymbol(t *testing.T) {
	client := newTestClient(t, "http://localhost")

	cases := []struct {
		in   string
		want string
	}{
		{"RELIANCE", "RELIANCE.NSE"},
		{"TATA-MOTORS", "TATA.MOTORS.NSE"},
		{" infy ", "INFY.NSE"},
		{"M-M", "M.M.NSE"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, client.FormatSymbol(tc.in))
	}
}

func TestNewRequiresLogger(t *testing.T) {
	_, err := New(Config{APIKey: "test-key"})
	assert.Error(t, err)
}
