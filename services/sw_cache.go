package services

import (
	"context"
	"net/url"
	"strings"
)

// cachePrefix namespaces every worker cache key; the version segment after
// it distinguishes the current cache from stale ones.
const cachePrefix = "swcache:"

// DefaultCacheVersion is the cache namespace tag baked into this build.
const DefaultCacheVersion = "wellness-v2"

// shellAssets is the fixed set prefetched during install.
var shellAssets = []string{
	"/",
	"/index.html",
	"/manifest.json",
	"/icons/icon-192.png",
	"/icons/icon-512.png",
}

// defaultDenyHosts never hit the cache: the remote backend and analytics.
var defaultDenyHosts = []string{
	"api.wellness.app",
	"www.google-analytics.com",
	"region1.google-analytics.com",
}

// CacheStore is the versioned response cache the worker populates. The
// Redis-backed implementation lives in the cache package; tests use an
// in-memory double.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Keys(ctx context.Context, pattern string) ([]string, error)
	Delete(ctx context.Context, keys ...string) error
}

// FetchResult is a simplified network response.
type FetchResult struct {
	Status      int
	ContentType string
	Body        []byte
	FromCache   bool
}

// Fetcher performs the actual network request for a fetch event.
type Fetcher func(ctx context.Context, url string) (*FetchResult, error)

func cacheKey(version, rawURL string) string {
	return cachePrefix + version + ":" + rawURL
}

// cacheable reports whether a request may involve the cache at all:
// GET over http(s), to a host outside the deny list.
func cacheable(method, rawURL string, deny map[string]struct{}) bool {
	if !strings.EqualFold(method, "GET") {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	_, denied := deny[u.Hostname()]
	return !denied
}
