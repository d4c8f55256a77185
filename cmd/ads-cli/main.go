// ads-cli - интерактивный клиент сервиса объявлений.
// Каждая введенная строка трактуется как очередное состояние поля
// адреса; резолвер сам решает, когда дернуть сервис геокодирования.
// Команда ":post" отправляет объявление с последним разрешенным адресом.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"ads-service/pkg/addressresolver"
)

type apiClient struct {
	baseURL string
	client  *http.Client
}

func (c *apiClient) Resolve(ctx context.Context, address string) (*addressresolver.Result, error) {
	body, err := c.postJSON(ctx, "/api/v1/geocoding/geocode", map[string]string{"address": address})
	if err != nil {
		return nil, err
	}

	var result struct {
		Lat              float64 `json:"lat"`
		Lng              float64 `json:"lng"`
		FormattedAddress string  `json:"formattedAddress"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("unexpected response body: %w", err)
	}

	return &addressresolver.Result{
		Lat:              result.Lat,
		Lng:              result.Lng,
		FormattedAddress: result.FormattedAddress,
	}, nil
}

func (c *apiClient) createAd(ctx context.Context, payload map[string]interface{}) (string, error) {
	body, err := c.postJSON(ctx, "/api/v1/ads", payload)
	if err != nil {
		return "", err
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("unexpected response body: %w", err)
	}
	return created.ID, nil
}

func (c *apiClient) postJSON(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("%s", apiErr.Error)
		}
		return nil, fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return body, nil
}

func printSnapshot(snap addressresolver.Snapshot) {
	switch snap.State {
	case addressresolver.StateDebouncing:
		fmt.Printf("... waiting for you to stop typing (%q)\n", snap.Address)
	case addressresolver.StateInFlight:
		fmt.Printf("... resolving %q\n", snap.Address)
	case addressresolver.StateSucceeded:
		fmt.Printf("resolved: %s (%.6f, %.6f)\n", snap.FormattedAddress, *snap.Lat, *snap.Lng)
	case addressresolver.StateFailed:
		fmt.Printf("error: %s\n", snap.Err)
	case addressresolver.StateIdle:
		fmt.Println("cleared")
	}
}

// handlePost разбирает ":post Title | Description | Price | Name | Phone"
// и отправляет объявление, прикладывая последний разрешенный адрес
func handlePost(client *apiClient, resolver *addressresolver.Resolver, line string) {
	parts := strings.Split(strings.TrimPrefix(line, ":post"), "|")
	if len(parts) < 5 {
		fmt.Println("usage: :post Title | Description | Price | Contact name | Phone")
		return
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	payload := map[string]interface{}{
		"title":       parts[0],
		"description": parts[1],
		"contact": map[string]string{
			"name":  parts[3],
			"phone": parts[4],
		},
	}
	if parts[2] != "" {
		price, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			fmt.Printf("bad price %q: %v\n", parts[2], err)
			return
		}
		payload["price"] = price
	}

	snap := resolver.Snapshot()
	if snap.State == addressresolver.StateSucceeded && snap.Lat != nil {
		payload["location"] = map[string]interface{}{
			"address": snap.FormattedAddress,
			"lat":     *snap.Lat,
			"lng":     *snap.Lng,
		}
	} else if addr := strings.TrimSpace(snap.Address); addr != "" {
		payload["location"] = map[string]interface{}{"address": addr}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	id, err := client.createAd(ctx, payload)
	if err != nil {
		fmt.Printf("failed to create ad: %v\n", err)
		return
	}
	fmt.Printf("created ad %s\n", id)
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the ads service")
	debounce := flag.Duration("debounce", addressresolver.DefaultDebounce, "pause after the last edit before resolving")
	flag.Parse()

	client := &apiClient{
		baseURL: *baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}

	resolver := addressresolver.New(client,
		addressresolver.WithDebounce(*debounce),
		addressresolver.WithListener(printSnapshot),
	)
	defer resolver.Close()

	fmt.Println("Type an address (empty line clears, Ctrl+D exits).")
	fmt.Println("To submit: :post Title | Description | Price | Contact name | Phone")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ":post") {
			handlePost(client, resolver, line)
			continue
		}
		resolver.SetAddress(line)
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "stdin error: %v\n", err)
		os.Exit(1)
	}
}
