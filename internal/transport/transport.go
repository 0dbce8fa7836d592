package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"sitegen/internal/catalog"
	"sitegen/internal/config"
	"sitegen/internal/models"
)

const (
	defaultDialTimeout     = 10 * time.Second
	defaultKeepAlive       = 30 * time.Second
	defaultIdleConnTimeout = 90 * time.Second
)

// ErrNoCredential indicates the resolved provider has no API key configured.
var ErrNoCredential = errors.New("no credential configured")

// UpstreamError carries a non-success HTTP response from a provider.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error status %d: %s", e.Status, e.Body)
}

// TokenStream yields incremental text deltas from a provider. Next
// returns io.EOF when the provider signals completion; any other error
// aborts the stream. Empty deltas are filtered by the transport.
type TokenStream interface {
	Next(ctx context.Context) (string, error)
	Close() error
}

// ClientRegistry holds one configured transport per provider, shared
// across requests. SDK-backed clients are built from the environment
// at startup or on first use and cached; the generic HTTP path shares
// a single connection-pooled client and reads credentials per call.
type ClientRegistry struct {
	gen        config.GenerationConfig
	httpClient *http.Client

	mu  sync.Mutex
	sdk map[string]*sdkClient
}

// NewClientRegistry constructs transports for every catalog provider
// whose credential is present at startup.
func NewClientRegistry(gen config.GenerationConfig) *ClientRegistry {
	r := &ClientRegistry{
		gen:        gen,
		httpClient: newStreamingHTTPClient(),
		sdk:        make(map[string]*sdkClient),
	}

	for _, p := range catalog.Providers() {
		if p.ID != sdkProviderID {
			continue
		}
		if key := os.Getenv(p.EnvKey); key != "" {
			r.sdk[p.ID] = newSDKClient(key, p.BaseURL)
		}
	}
	return r
}

// Stream opens a token stream against the resolved model's provider.
// It fails with ErrNoCredential before any upstream call when the
// provider's API key is missing, and with UpstreamError when the
// provider rejects the request outright.
func (r *ClientRegistry) Stream(ctx context.Context, resolved catalog.Resolved, messages []models.Message) (TokenStream, error) {
	if resolved.Provider.ID == sdkProviderID {
		client, err := r.sdkFor(resolved.Provider)
		if err != nil {
			return nil, err
		}
		return client.stream(ctx, resolved, messages, r.gen)
	}
	return r.openGeneric(ctx, resolved, messages)
}

// sdkFor returns the cached SDK client for the provider, building one
// when its credential appeared after startup. The catalog reports
// availability from the live environment, so the transport has to
// honor a late-set key too.
func (r *ClientRegistry) sdkFor(p catalog.Provider) (*sdkClient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if client, ok := r.sdk[p.ID]; ok {
		return client, nil
	}
	key := os.Getenv(p.EnvKey)
	if key == "" {
		return nil, fmt.Errorf("%w for provider %s (%s)", ErrNoCredential, p.Name, p.EnvKey)
	}
	client := newSDKClient(key, p.BaseURL)
	r.sdk[p.ID] = client
	return client, nil
}

// newStreamingHTTPClient builds the shared client for generic provider
// calls. The overall client timeout stays disabled: a streaming
// response outlives any fixed deadline, so bounds come from dial and
// TLS timeouts plus the normalizer's stream limits.
func newStreamingHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAlive}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          50,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Transport: transport,
	}
}
