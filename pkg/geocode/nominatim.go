// Package geocode resolves coordinates to postal codes via the Nominatim
// reverse-geocoding API.
package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/ziplookup/internal/resilience"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org/reverse"

// ErrGeocodeFailed indicates the reverse-geocoding service exhausted its
// retries or returned no usable postal code.
var ErrGeocodeFailed = eris.New("reverse geocode failed")

// Client resolves a coordinate to its postal code.
type Client interface {
	// ReverseZip returns the primary postal code at the given coordinate.
	ReverseZip(ctx context.Context, lat, lon float64) (string, error)
}

// Option configures the Nominatim client.
type Option func(*nominatim)

// WithHTTPClient sets a custom HTTP client (e.g. with a relaxed TLS config).
func WithHTTPClient(hc *http.Client) Option {
	return func(n *nominatim) {
		n.httpClient = hc
	}
}

// WithBaseURL overrides the Nominatim reverse endpoint.
func WithBaseURL(u string) Option {
	return func(n *nominatim) {
		n.baseURL = u
	}
}

// WithUserAgent sets the client identifier. Nominatim rejects requests
// without a descriptive User-Agent.
func WithUserAgent(ua string) Option {
	return func(n *nominatim) {
		n.userAgent = ua
	}
}

// WithRateLimit sets the requests-per-second limit. The default honors the
// Nominatim usage policy of 1 request per second.
func WithRateLimit(rps float64) Option {
	return func(n *nominatim) {
		n.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithRetryConfig overrides the default retry behavior.
func WithRetryConfig(cfg resilience.RetryConfig) Option {
	return func(n *nominatim) {
		n.retry = cfg
	}
}

type nominatim struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	retry      resilience.RetryConfig
}

// nominatimResponse is the subset of the reverse-geocode JSON we consume.
type nominatimResponse struct {
	Address struct {
		Postcode string `json:"postcode"`
	} `json:"address"`
}

// NewClient creates a Nominatim reverse-geocoding Client with the given
// options. Requests are limited to 1/s per the Nominatim usage policy.
func NewClient(opts ...Option) Client {
	n := &nominatim{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		userAgent:  "ziplookup/1.0",
		limiter:    rate.NewLimiter(1, 1),
		retry:      resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// ReverseZip queries Nominatim for the address at (lat, lon) and returns the
// primary postal code, stripping any ZIP+4 suffix. Transient failures are
// retried with backoff, honoring a Retry-After hint on 429. Exhausted retries
// wrap ErrGeocodeFailed.
func (n *nominatim) ReverseZip(ctx context.Context, lat, lon float64) (string, error) {
	retry := n.retry
	if retry.OnRetry == nil {
		retry.OnRetry = resilience.RetryLogger("nominatim", "reverse")
	}

	code, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (string, error) {
		return n.reverseOnce(ctx, lat, lon)
	})
	if err != nil {
		return "", eris.Wrapf(ErrGeocodeFailed, "geocode: nominatim reverse: %v", err)
	}
	return code, nil
}

func (n *nominatim) reverseOnce(ctx context.Context, lat, lon float64) (string, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "geocode: rate limit")
	}

	params := url.Values{
		"lat":            {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon":            {strconv.FormatFloat(lon, 'f', -1, 64)},
		"format":         {"json"},
		"addressdetails": {"1"},
		"zoom":           {"18"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", eris.Wrap(err, "geocode: build request")
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "geocode: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		te := resilience.NewTransientError(
			eris.Errorf("geocode: nominatim returned status %d", resp.StatusCode),
			resp.StatusCode,
		)
		if resp.StatusCode == http.StatusTooManyRequests {
			te.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
		}
		return "", te
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "geocode: read body")
	}

	var parsed nominatimResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		// Nominatim occasionally serves an HTML error page; retryable.
		return "", resilience.NewTransientError(eris.Wrap(err, "geocode: non-JSON response"), 0)
	}

	postcode := strings.TrimSpace(parsed.Address.Postcode)
	if postcode == "" {
		return "", resilience.NewTransientError(eris.New("geocode: no postcode in response"), 0)
	}

	// ZIP+4 codes carry a -xxxx suffix; callers want the primary code.
	return strings.SplitN(postcode, "-", 2)[0], nil
}

// parseRetryAfter parses a Retry-After header given in seconds. Zero means no
// usable hint.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
