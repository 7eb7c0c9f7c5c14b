package api

import "sync"

// DefaultBaseURL is the production Jules API root.
const DefaultBaseURL = "https://jules.googleapis.com/v1alpha"

// Config holds the credential and endpoint shared by every client call.
// It is the single owner of the API key: a request started just before
// SetAPIKey completes with whichever key was current at build time.
type Config struct {
	mu      sync.RWMutex
	apiKey  string
	baseURL string
}

// NewConfig creates a Config with the given API key and the production
// base URL. An empty key is allowed; requests fail with ErrMissingAPIKey
// until one is set.
func NewConfig(apiKey string) *Config {
	return &Config{apiKey: apiKey, baseURL: DefaultBaseURL}
}

// SetAPIKey replaces the credential. In-flight requests are unaffected.
func (c *Config) SetAPIKey(key string) {
	c.mu.Lock()
	c.apiKey = key
	c.mu.Unlock()
}

// APIKey returns the current credential, empty if not configured.
func (c *Config) APIKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey
}

// SetBaseURL overrides the API root, mainly for tests and staging.
func (c *Config) SetBaseURL(u string) {
	c.mu.Lock()
	c.baseURL = u
	c.mu.Unlock()
}

// BaseURL returns the current API root.
func (c *Config) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}
