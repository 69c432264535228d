package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-config/cfgx"
	opts "github.com/goliatone/go-options"
)

// Config holds the ambient settings the core itself owns: cache layout,
// host architecture override, and HTTP/retry tuning for the download
// layer. The repository-definition loader (.repo file parsing) is
// out of scope per spec.md's Non-goals; Config only carries what the
// resolver and download packages need to operate.
type Config struct {
	ServiceName string `koanf:"service_name" mapstructure:"service_name"`

	CacheRoot      string `koanf:"cache_root" mapstructure:"cache_root"`
	HostArch       string `koanf:"host_arch" mapstructure:"host_arch"`

	HTTPTimeout         time.Duration `koanf:"http_timeout" mapstructure:"http_timeout"`
	MirrorConnectTimeout time.Duration `koanf:"mirror_connect_timeout" mapstructure:"mirror_connect_timeout"`
	MaxRetries          int           `koanf:"max_retries" mapstructure:"max_retries"`
	UserAgent           string        `koanf:"user_agent" mapstructure:"user_agent"`
}

// DefaultConfig mirrors the teacher's DefaultConfig: a fully-populated,
// independently valid Config, suitable as the base layer of an Options
// merge.
func DefaultConfig() Config {
	return Config{
		ServiceName:          "low",
		CacheRoot:            "/var/cache/low",
		HostArch:             "x86_64",
		HTTPTimeout:          30 * time.Second,
		MirrorConnectTimeout: 5 * time.Second,
		MaxRetries:           3,
		UserAgent:            "low/1",
	}
}

// Validate reports the first structural problem found in c, mirroring the
// teacher's Config.Validate contract (called by both the plain load path
// and the options-merge resolve path).
func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if strings.TrimSpace(c.CacheRoot) == "" {
		return fmt.Errorf("core: cache_root is required")
	}
	if strings.TrimSpace(c.HostArch) == "" {
		return fmt.Errorf("core: host_arch is required")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("core: max_retries must be non-negative")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("core: http_timeout must be positive")
	}
	return nil
}

// Arch returns the configured host architecture as an Arch value.
func (c Config) Arch() Arch {
	return Arch(c.HostArch)
}

// RawConfigLoader supplies the untyped config document a ConfigProvider
// builds a Config from — e.g. a parsed yum.conf-equivalent, or a static map
// in tests. It is the core package's seam for the external config loader
// spec.md §1 places out of scope: the core only needs the result.
type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

// ConfigProvider resolves a defaults-overlaid Config from a RawConfigLoader.
type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

// CfgxConfigProvider loads and validates a Config via go-config's cfgx
// builder, exactly as the teacher's CfgxConfigProvider does: raw document
// in, typed+validated Config out.
type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

// NewCfgxConfigProvider wraps loader (a nil loader degrades to an
// empty-document loader, yielding defaults unchanged).
func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// OptionsResolver merges three config layers (compiled-in defaults, a
// loaded document, and programmatic runtime overrides) into one Config.
type OptionsResolver interface {
	Resolve(defaults, loaded, runtime Config) (Config, error)
}

// GoOptionsResolver implements OptionsResolver with go-options' scoped
// layer stack: defaults at priority 0, the loaded document at 10, runtime
// overrides at 20 (highest wins), matching the teacher's
// GoOptionsResolver precedence exactly. This is the one place in the core
// that needs three-way config precedence (a CLI flag beats a repo
// definition file's tuning, which beats the compiled-in default), so it is
// the one place go-options' layered-merge API earns its keep over a
// simpler struct-overlay.
type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults, loaded, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

// configToLayerMap renders cfg's non-ambient fields as a go-options layer
// document. includeZero is true only for the defaults layer: every other
// layer omits a field entirely when it carries its zero value, so it
// doesn't clobber a lower-priority layer's non-zero setting during merge.
func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ServiceName) != "" {
		layer["service_name"] = cfg.ServiceName
	}
	if includeZero || strings.TrimSpace(cfg.CacheRoot) != "" {
		layer["cache_root"] = cfg.CacheRoot
	}
	if includeZero || strings.TrimSpace(cfg.HostArch) != "" {
		layer["host_arch"] = cfg.HostArch
	}
	if includeZero || cfg.HTTPTimeout != 0 {
		layer["http_timeout"] = cfg.HTTPTimeout
	}
	if includeZero || cfg.MirrorConnectTimeout != 0 {
		layer["mirror_connect_timeout"] = cfg.MirrorConnectTimeout
	}
	if includeZero || cfg.MaxRetries != 0 {
		layer["max_retries"] = cfg.MaxRetries
	}
	if includeZero || strings.TrimSpace(cfg.UserAgent) != "" {
		layer["user_agent"] = cfg.UserAgent
	}
	return layer
}
