package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrUnknownModel indicates the requested model key is not in the catalog.
var ErrUnknownModel = errors.New("unknown model")

// Model describes a single model offered by a provider. Key is the
// short catalog key; ID is the provider-native identifier sent upstream.
type Model struct {
	Key           string
	ID            string
	Name          string
	ContextWindow int
	Description   string
	Category      string
}

// Provider describes an upstream LLM vendor. EnvKey names the
// environment variable holding its API key.
type Provider struct {
	ID      string
	Name    string
	BaseURL string
	EnvKey  string
	Models  []Model
}

// Available reports whether the provider's credential is configured.
// It reads the environment fresh on every call so credentials injected
// at runtime are picked up without a restart.
func (p Provider) Available() bool {
	return os.Getenv(p.EnvKey) != ""
}

// Resolved pairs a provider with one of its models after a key lookup.
type Resolved struct {
	Provider Provider
	Model    Model
}

// Key returns the composite provider/model key.
func (r Resolved) Key() string {
	return r.Provider.ID + "/" + r.Model.Key
}

// ModelInfo is the client-facing model listing entry.
type ModelInfo struct {
	Key           string `json:"key"`
	Provider      string `json:"provider"`
	ProviderName  string `json:"providerName"`
	ID            string `json:"id"`
	Name          string `json:"name"`
	ContextWindow int    `json:"contextWindow"`
	Description   string `json:"description"`
	Category      string `json:"category,omitempty"`
	Available     bool   `json:"available"`
}

// Providers returns the static provider catalog in listing order.
func Providers() []Provider {
	return providers
}

// Resolve looks up a composite provider/model key. The second return
// is false when the key does not parse or names an unknown provider or
// model; availability is deliberately not part of resolution.
func Resolve(key string) (Resolved, bool) {
	providerID, modelKey, ok := strings.Cut(key, "/")
	if !ok || providerID == "" || modelKey == "" {
		return Resolved{}, false
	}

	for _, p := range providers {
		if p.ID != providerID {
			continue
		}
		for _, m := range p.Models {
			if m.Key == modelKey {
				return Resolved{Provider: p, Model: m}, true
			}
		}
		return Resolved{}, false
	}
	return Resolved{}, false
}

// ResolveStrict is Resolve with a wrapped sentinel error for callers
// that surface the failure to clients.
func ResolveStrict(key string) (Resolved, error) {
	resolved, ok := Resolve(key)
	if !ok {
		return Resolved{}, fmt.Errorf("%w: %s", ErrUnknownModel, key)
	}
	return resolved, nil
}

// ListModels flattens the catalog into listing entries, computing
// availability per call from the provider credential variables.
func ListModels() []ModelInfo {
	var out []ModelInfo
	for _, p := range providers {
		available := p.Available()
		for _, m := range p.Models {
			out = append(out, ModelInfo{
				Key:           p.ID + "/" + m.Key,
				Provider:      p.ID,
				ProviderName:  p.Name,
				ID:            m.ID,
				Name:          m.Name,
				ContextWindow: m.ContextWindow,
				Description:   m.Description,
				Category:      m.Category,
				Available:     available,
			})
		}
	}
	return out
}
