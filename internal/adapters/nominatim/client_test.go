package nominatim

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"ads-service/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc, minInterval time.Duration) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	client := NewClient(Config{
		BaseURL:     srv.URL,
		MinInterval: minInterval,
		HTTPClient:  srv.Client(),
	})
	return client, srv
}

func TestResolveSuccess(t *testing.T) {
	var gotQuery string
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat": "53.9024716", "lon": "27.5618225", "display_name": "Minsk, Belarus"}]`))
	}, time.Millisecond)
	defer srv.Close()

	result, err := client.Resolve(context.Background(), "  Minsk  ")
	require.NoError(t, err)

	assert.Equal(t, "Minsk", gotQuery)
	assert.InDelta(t, 53.9024716, result.Lat, 1e-9)
	assert.InDelta(t, 27.5618225, result.Lng, 1e-9)
	assert.Equal(t, "Minsk, Belarus", result.FormattedAddress)
}

func TestResolveEmptyAddressIsInvalidInput(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request must not be sent for an empty address")
	}, time.Millisecond)
	defer srv.Close()

	_, err := client.Resolve(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestResolveNoResultsIsAddressNotFound(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}, time.Millisecond)
	defer srv.Close()

	_, err := client.Resolve(context.Background(), "gibberish address")
	assert.ErrorIs(t, err, domain.ErrAddressNotFound)
}

func TestResolveServerErrorIsUpstreamUnavailable(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, time.Millisecond)
	defer srv.Close()

	_, err := client.Resolve(context.Background(), "Minsk")
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestResolveUnparsableCoordinatesIsUpstreamMalformed(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"lat": "not-a-number", "lon": "27.5", "display_name": "x"}]`))
	}, time.Millisecond)
	defer srv.Close()

	_, err := client.Resolve(context.Background(), "Minsk")
	assert.ErrorIs(t, err, domain.ErrUpstreamMalformed)
}

func TestResolveMalformedBodyIsUpstreamMalformed(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected": "shape"`))
	}, time.Millisecond)
	defer srv.Close()

	_, err := client.Resolve(context.Background(), "Minsk")
	assert.ErrorIs(t, err, domain.ErrUpstreamMalformed)
}

func TestResolveThrottlesSequentialRequests(t *testing.T) {
	const interval = 60 * time.Millisecond

	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"lat": "1", "lon": "2", "display_name": "x"}]`))
	}, interval)
	defer srv.Close()

	const requests = 3
	start := time.Now()
	for i := 0; i < requests; i++ {
		_, err := client.Resolve(context.Background(), "Minsk")
		require.NoError(t, err)
	}
	elapsed := time.Since(start)

	// Между стартами запросов выдерживается минимальный интервал
	assert.GreaterOrEqual(t, elapsed, (requests-1)*interval)
}

func TestResolveThrottleIsSharedAcrossClients(t *testing.T) {
	const interval = 50 * time.Millisecond

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"lat": "1", "lon": "2", "display_name": "x"}]`))
	}))
	defer srv.Close()

	clientA := NewClient(Config{BaseURL: srv.URL, MinInterval: interval, HTTPClient: srv.Client()})
	clientB := NewClient(Config{BaseURL: srv.URL, MinInterval: interval, HTTPClient: srv.Client()})

	const requests = 4
	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(requests)
	for i := 0; i < requests; i++ {
		client := clientA
		if i%2 == 1 {
			client = clientB
		}
		go func(c *Client) {
			defer wg.Done()
			_, err := c.Resolve(context.Background(), "Minsk")
			assert.NoError(t, err)
		}(client)
	}
	wg.Wait()
	elapsed := time.Since(start)

	// Лимит общий на процесс: конкурентные вызовы разных экземпляров
	// клиента выстраиваются в очередь с тем же интервалом
	assert.GreaterOrEqual(t, elapsed, (requests-1)*interval)
}

func TestResolveContextCancelledWhileThrottled(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"lat": "1", "lon": "2", "display_name": "x"}]`))
	}, 5*time.Second)
	defer srv.Close()

	// Свежий маркер отправляет следующий вызов в ожидание
	gate.mu.Lock()
	gate.lastRequest = time.Now()
	gate.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Resolve(ctx, "Minsk")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
