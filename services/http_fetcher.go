package services

import (
	"context"
	"io"
	"net/http"
	"time"
)

// NewHTTPFetcher returns the production Fetcher. Responses are read fully;
// the worker decides what to cache.
func NewHTTPFetcher() Fetcher {
	client := &http.Client{Timeout: 15 * time.Second}
	return func(ctx context.Context, url string) (*FetchResult, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		res, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()

		body, err := io.ReadAll(io.LimitReader(res.Body, 10<<20))
		if err != nil {
			return nil, err
		}
		return &FetchResult{
			Status:      res.StatusCode,
			ContentType: res.Header.Get("Content-Type"),
			Body:        body,
		}, nil
	}
}
