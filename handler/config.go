package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mstgnz/robogate/infra/response"
	"github.com/mstgnz/robogate/provider"
)

// ProviderInfo describes a registered provider and the config it expects
type ProviderInfo struct {
	Name       string                 `json:"name"`
	Configured bool                   `json:"configured"`
	Fields     []provider.ConfigField `json:"fields,omitempty"`
}

// ConfigHandler exposes provider metadata. Secrets are never returned.
type ConfigHandler struct {
	providers ProviderLister
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(providers ProviderLister) *ConfigHandler {
	return &ConfigHandler{providers: providers}
}

// ListProviders returns every registered provider and whether it is configured
func (h *ConfigHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	configured := make(map[string]bool)
	for _, name := range h.providers.ConfiguredProviders() {
		configured[name] = true
	}

	registered := provider.GetAvailableProviders()
	infos := make([]ProviderInfo, 0, len(registered))
	for _, name := range registered {
		infos = append(infos, ProviderInfo{Name: name, Configured: configured[name]})
	}

	response.Success(w, http.StatusOK, "Providers retrieved", infos)
}

// GetRequiredConfig returns the config fields a provider needs
func (h *ConfigHandler) GetRequiredConfig(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(chi.URLParam(r, "provider"))

	p, err := provider.CreateProvider(name)
	if err != nil {
		response.Error(w, http.StatusNotFound, "Unknown provider", err)
		return
	}

	configured := false
	for _, n := range h.providers.ConfiguredProviders() {
		if n == name {
			configured = true
			break
		}
	}

	response.Success(w, http.StatusOK, "Provider configuration retrieved", ProviderInfo{
		Name:       name,
		Configured: configured,
		Fields:     p.GetRequiredConfig(),
	})
}
