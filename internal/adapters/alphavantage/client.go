package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"papertrader/internal/ports"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL     = "https://www.alphavantage.co"
	defaultVenueSuffix = ".NSE"
	defaultTimeout     = 10 * time.Second
	defaultDailyQuota  = 25 // Free tier allowance
)

// Client implements the ports.PriceFeed interface against the Alpha Vantage
// GLOBAL_QUOTE endpoint. A local limiter guards the daily request quota so
// the valuator degrades per position instead of burning the allowance on
// requests the server would refuse anyway.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	venueSuffix string
	limiter     *rate.Limiter
	logger      ports.Logger
}

// Config holds configuration specific to the Alpha Vantage client adapter.
type Config struct {
	APIKey      string
	BaseURL     string        // Defaults to the public Alpha Vantage endpoint
	VenueSuffix string        // Exchange suffix appended to symbols (default ".NSE")
	Timeout     time.Duration // Per-request timeout (default 10s)
	DailyQuota  int           // Requests allowed per day (default 25)
	Logger      ports.Logger
}

// New creates a new Alpha Vantage client adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Alpha Vantage client")
	}
	if cfg.APIKey == "" {
		cfg.Logger.Warn(context.Background(), "Alpha Vantage API key is empty; the server will reject quote requests")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	venueSuffix := cfg.VenueSuffix
	if venueSuffix == "" {
		venueSuffix = defaultVenueSuffix
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	quota := cfg.DailyQuota
	if quota <= 0 {
		quota = defaultDailyQuota
	}

	// Refill spread across the day; the burst lets one full portfolio
	// refresh go through at once.
	limiter := rate.NewLimiter(rate.Limit(float64(quota)/(24*60*60)), quota)

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      cfg.APIKey,
		venueSuffix: venueSuffix,
		limiter:     limiter,
		logger:      cfg.Logger,
	}, nil
}

// FormatSymbol applies the venue formatting Alpha Vantage expects for NSE
// tickers: series separators ('-') become '.' and the exchange suffix is
// appended.
func (c *Client) FormatSymbol(symbol string) string {
	formatted := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(symbol)), "-", ".")
	return formatted + c.venueSuffix
}

// Quote returns the last traded price for a ticker symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (float64, error) {
	if !c.limiter.Allow() {
		return 0, fmt.Errorf("daily quote quota exhausted: %w", ports.ErrRateLimited)
	}

	formatted := c.FormatSymbol(symbol)
	endpoint := fmt.Sprintf("%s/query?function=GLOBAL_QUOTE&symbol=%s&apikey=%s",
		c.baseURL, url.QueryEscape(formatted), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build quote request for %s: %w", symbol, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("quote request for %s failed: %w: %w", symbol, ports.ErrFeedUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return 0, fmt.Errorf("quote for %s throttled by server: %w", symbol, ports.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("quote for %s returned http %d: %w", symbol, resp.StatusCode, ports.ErrFeedUnavailable)
	}

	var raw struct {
		GlobalQuote struct {
			Price string `json:"05. price"`
		} `json:"Global Quote"`
		// Alpha Vantage reports quota exhaustion as a 200 with one of
		// these fields set instead of a quote.
		Note        string `json:"Note"`
		Information string `json:"Information"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return 0, fmt.Errorf("failed to decode quote for %s: %w: %w", symbol, ports.ErrQuoteUnavailable, err)
	}
	if raw.Note != "" || raw.Information != "" {
		c.logger.Warn(ctx, "Alpha Vantage throttled the request", map[string]interface{}{"symbol": formatted})
		return 0, fmt.Errorf("quote for %s throttled by server: %w", symbol, ports.ErrRateLimited)
	}
	if raw.GlobalQuote.Price == "" {
		return 0, fmt.Errorf("no quote returned for %s: %w", symbol, ports.ErrQuoteUnavailable)
	}

	price, err := strconv.ParseFloat(raw.GlobalQuote.Price, 64)
	if err != nil || price <= 0 {
		return 0, fmt.Errorf("malformed price %q for %s: %w", raw.GlobalQuote.Price, symbol, ports.ErrQuoteUnavailable)
	}

	c.logger.Debug(ctx, "Quote fetched", map[string]interface{}{"symbol": formatted, "price": price})
	return price, nil
}
