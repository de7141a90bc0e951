package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/authgateway/pkg/logger"
)

// Entry is a single tenant as described in configuration.
type Entry struct {
	Key          string `yaml:"key"`
	Name         string `yaml:"name"`
	RealmName    string `yaml:"realm_name"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	BaseURL      string `yaml:"base_url"`
	// Active defaults to true when omitted.
	Active *bool `yaml:"active"`
}

type fileConfig struct {
	Tenants []Entry `yaml:"tenants"`
}

// LoadEntries reads tenant entries from a YAML file.
// Environment references like ${ACME_CLIENT_SECRET} are expanded before parsing,
// so secrets can stay out of the file itself.
func LoadEntries(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrInvalidTenantConfig, err)
	}
	return ParseEntries(data)
}

// ParseEntries parses tenant entries from YAML data.
func ParseEntries(data []byte) ([]Entry, error) {
	var cfg fileConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, errors.Join(ErrInvalidTenantConfig, err)
	}
	return cfg.Tenants, nil
}

// Registry is an immutable, process-wide lookup table of tenants keyed by tenant key.
type Registry struct {
	tenants map[string]*Tenant
}

// NewRegistry builds the registry from configured entries.
// Entries with a blank key are skipped. IDs are assigned sequentially from 1
// in configuration order. A duplicated key replaces the earlier entry and
// keeps its ID, so IDs stay contiguous.
func NewRegistry(entries []Entry, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}

	r := &Registry{tenants: make(map[string]*Tenant, len(entries))}

	var seq int64
	for i, e := range entries {
		key := strings.TrimSpace(e.Key)
		if key == "" {
			log.Warn("skipping tenant entry without key",
				slog.Int("index", i),
				slog.String("name", e.Name),
				logger.Component("tenant_registry"),
			)
			continue
		}

		var id int64
		if prev, exists := r.tenants[key]; exists {
			log.Warn("duplicate tenant key, later entry wins",
				logger.TenantKey(key),
				logger.Component("tenant_registry"),
			)
			id = prev.ID
		} else {
			seq++
			id = seq
		}

		active := true
		if e.Active != nil {
			active = *e.Active
		}

		r.tenants[key] = &Tenant{
			ID:           id,
			Key:          key,
			Name:         e.Name,
			RealmName:    e.RealmName,
			ClientID:     e.ClientID,
			ClientSecret: e.ClientSecret,
			BaseURL:      strings.TrimRight(e.BaseURL, "/"),
			Active:       active,
		}
	}

	log.Info("tenant registry loaded",
		slog.Int("count", len(r.tenants)),
		slog.Any("keys", r.Keys()),
		logger.Component("tenant_registry"),
	)

	return r
}

// Lookup implements Provider.
func (r *Registry) Lookup(_ context.Context, key string) (*Tenant, error) {
	t, ok := r.tenants[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTenantNotFound, key)
	}
	return t, nil
}

// Keys returns registered tenant keys in sorted order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.tenants))
	for k := range r.tenants {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the number of registered tenants.
func (r *Registry) Len() int {
	return len(r.tenants)
}
