// Package nominatim - адаптер внешнего геокодера (OpenStreetMap Nominatim).
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"ads-service/internal/contextkeys"
	"ads-service/internal/core/domain"
	"ads-service/internal/core/port"
)

const (
	DefaultBaseURL     = "https://nominatim.openstreetmap.org/search"
	DefaultMinInterval = time.Second
	defaultUserAgent   = "ads-service/1.0"
)

// Политика Nominatim: не больше одного запроса в секунду на весь процесс.
// Gate общий для всех клиентов и всех конкурентных вызовов: вызывающий
// может ждать за чужой задержкой, но интервал между стартами реально
// отправленных запросов выдерживается всегда.
var gate = struct {
	mu          sync.Mutex
	lastRequest time.Time
}{}

type Config struct {
	BaseURL        string
	MinInterval    time.Duration
	AcceptLanguage string // язык display_name в ответе
	HTTPClient     *http.Client
}

type Client struct {
	baseURL        string
	minInterval    time.Duration
	acceptLanguage string
	httpClient     *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = DefaultMinInterval
	}
	if cfg.AcceptLanguage == "" {
		cfg.AcceptLanguage = "en"
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:        cfg.BaseURL,
		minInterval:    cfg.MinInterval,
		acceptLanguage: cfg.AcceptLanguage,
		httpClient:     cfg.HTTPClient,
	}
}

// nominatimResult - релевантная часть ответа. Координаты приходят строками.
type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Resolve переводит адресную строку в координаты первого кандидата.
func (c *Client) Resolve(ctx context.Context, address string) (*domain.GeocodeResult, error) {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: address cannot be empty", domain.ErrInvalidInput)
	}

	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "nominatim_client",
	})

	gate.mu.Lock()
	defer gate.mu.Unlock()

	if since := time.Since(gate.lastRequest); since < c.minInterval {
		wait := c.minInterval - since
		logger.Debug("Throttling geocode request", port.Fields{"wait_ms": wait.Milliseconds()})
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	// Маркер обновляется после ожидания и до запроса: интервал меряется
	// между стартами реально отправленных запросов
	gate.lastRequest = time.Now()

	params := url.Values{}
	params.Set("q", trimmed)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("addressdetails", "0")
	params.Set("accept-language", c.acceptLanguage)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("Nominatim request failed", err, nil)
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Error("Nominatim returned non-success status", nil, port.Fields{
			"status": resp.StatusCode,
		})
		return nil, fmt.Errorf("%w: status %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamMalformed, err)
	}
	if len(results) == 0 {
		return nil, domain.ErrAddressNotFound
	}

	first := results[0]
	lat, latErr := strconv.ParseFloat(first.Lat, 64)
	lng, lngErr := strconv.ParseFloat(first.Lon, 64)
	if latErr != nil || lngErr != nil {
		logger.Error("Failed to parse coordinates from Nominatim response", nil, port.Fields{
			"lat": first.Lat,
			"lon": first.Lon,
		})
		return nil, fmt.Errorf("%w: unparsable coordinates", domain.ErrUpstreamMalformed)
	}

	return &domain.GeocodeResult{
		Lat:              lat,
		Lng:              lng,
		FormattedAddress: first.DisplayName,
	}, nil
}
