package core

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goliatone/go-config/cfgx"
	opts "github.com/goliatone/go-options"
	"gopkg.in/yaml.v3"
)

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

// RawConfigLoader yields one partial configuration layer as a nested map.
// Loaders emit only the keys they actually saw, so explicit false/zero values
// survive layer merging.
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

func NewStaticRawConfigLoader(values map[string]any) RawConfigLoader {
	return staticRawConfigLoader{Values: values}
}

// FileRawConfigLoader reads a YAML config file. An empty path loads nothing;
// a set path that does not exist is an error.
type FileRawConfigLoader struct {
	Path string
}

func (l FileRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	path := strings.TrimSpace(l.Path)
	if path == "" {
		return map[string]any{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("core: config file read failed: %w", err)
	}
	values := map[string]any{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("core: config file parse failed: %w", err)
	}
	return values, nil
}

type envValueKind int

const (
	envString envValueKind = iota
	envInt
	envBool
)

type envBinding struct {
	key  string
	path []string
	kind envValueKind
}

var envBindings = []envBinding{
	{key: "SERVICE_NAME", path: []string{"service_name"}, kind: envString},
	{key: "TRACKER_BASE_URL", path: []string{"tracker", "base_url"}, kind: envString},
	{key: "TRACKER_EMAIL", path: []string{"tracker", "email"}, kind: envString},
	{key: "TRACKER_PASSWORD", path: []string{"tracker", "password"}, kind: envString},
	{key: "DESTINATION_BASE_URL", path: []string{"destination", "base_url"}, kind: envString},
	{key: "DESTINATION_TOKEN", path: []string{"destination", "token"}, kind: envString},
	{key: "DESTINATION_VERSION", path: []string{"destination", "version"}, kind: envString},
	{key: "DESTINATION_COLLECTION_SLEEP", path: []string{"destination", "collections", "sleep"}, kind: envString},
	{key: "DESTINATION_COLLECTION_STEPS", path: []string{"destination", "collections", "steps"}, kind: envString},
	{key: "DESTINATION_COLLECTION_ACTIVITY", path: []string{"destination", "collections", "activity"}, kind: envString},
	{key: "SYNC_LOOKBACK_DAYS", path: []string{"sync", "lookback_days"}, kind: envInt},
	{key: "SYNC_TIMEZONE", path: []string{"sync", "timezone"}, kind: envString},
	{key: "SYNC_SKIP_ZERO_SLEEP", path: []string{"sync", "skip_zero_sleep"}, kind: envBool},
	{key: "SYNC_SKIP_ZERO_STEPS", path: []string{"sync", "skip_zero_steps"}, kind: envBool},
	{key: "SYNC_CALL_DELAY_MS", path: []string{"sync", "call_delay_ms"}, kind: envInt},
	{key: "SYNC_PAGE_SIZE", path: []string{"sync", "page_size"}, kind: envInt},
	{key: "SYNC_CACHE_TTL_MS", path: []string{"sync", "cache_ttl_ms"}, kind: envInt},
	{key: "STORAGE_DRIVER", path: []string{"storage", "driver"}, kind: envString},
	{key: "STORAGE_DSN", path: []string{"storage", "dsn"}, kind: envString},
}

// EnvRawConfigLoader maps DAYPULSE_* environment variables onto the config
// tree. Lookup defaults to os.LookupEnv; tests inject their own.
type EnvRawConfigLoader struct {
	Prefix string
	Lookup func(key string) (string, bool)
}

func (l EnvRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	prefix := strings.TrimSpace(l.Prefix)
	if prefix == "" {
		prefix = "DAYPULSE"
	}
	lookup := l.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	values := map[string]any{}
	for _, binding := range envBindings {
		raw, ok := lookup(prefix + "_" + binding.key)
		if !ok {
			continue
		}
		raw = strings.TrimSpace(raw)
		switch binding.kind {
		case envInt:
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("core: env %s_%s is not an integer: %w", prefix, binding.key, err)
			}
			setPath(values, binding.path, parsed)
		case envBool:
			parsed, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, fmt.Errorf("core: env %s_%s is not a boolean: %w", prefix, binding.key, err)
			}
			setPath(values, binding.path, parsed)
		default:
			setPath(values, binding.path, raw)
		}
	}
	return values, nil
}

func setPath(values map[string]any, path []string, value any) {
	if len(path) == 0 {
		return
	}
	node := values
	for _, segment := range path[:len(path)-1] {
		child, ok := node[segment].(map[string]any)
		if !ok {
			child = map[string]any{}
			node[segment] = child
		}
		node = child
	}
	node[path[len(path)-1]] = value
}

// CfgxConfigProvider resolves the final config by layering defaults, the
// file loader, and the env loader, in that precedence order, then building
// and validating the typed config.
type CfgxConfigProvider struct {
	FileLoader RawConfigLoader
	EnvLoader  RawConfigLoader
}

func NewCfgxConfigProvider(fileLoader, envLoader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{FileLoader: fileLoader, EnvLoader: envLoader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}

	fileLoader := p.FileLoader
	if fileLoader == nil {
		fileLoader = staticRawConfigLoader{}
	}
	envLoader := p.EnvLoader
	if envLoader == nil {
		envLoader = staticRawConfigLoader{}
	}

	fileLayer, err := fileLoader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	envLayer, err := envLoader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			configToLayerMap(defaults),
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("file", 10),
			fileLayer,
			opts.WithSnapshotID[map[string]any]("file"),
		),
		opts.NewLayer(
			opts.NewScope("env", 20),
			envLayer,
			opts.WithSnapshotID[map[string]any]("env"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	cfg, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func configToLayerMap(cfg Config) map[string]any {
	collections := make(map[string]any, len(cfg.Destination.Collections))
	for metric, id := range cfg.Destination.Collections {
		collections[metric] = id
	}
	return map[string]any{
		"service_name": cfg.ServiceName,
		"tracker": map[string]any{
			"base_url": cfg.Tracker.BaseURL,
			"email":    cfg.Tracker.Email,
			"password": cfg.Tracker.Password,
		},
		"destination": map[string]any{
			"base_url":    cfg.Destination.BaseURL,
			"token":       cfg.Destination.Token,
			"version":     cfg.Destination.Version,
			"collections": collections,
		},
		"sync": map[string]any{
			"lookback_days":   cfg.Sync.LookbackDays,
			"timezone":        cfg.Sync.Timezone,
			"skip_zero_sleep": cfg.Sync.SkipZeroSleep,
			"skip_zero_steps": cfg.Sync.SkipZeroSteps,
			"call_delay_ms":   cfg.Sync.CallDelayMS,
			"page_size":       cfg.Sync.PageSize,
			"cache_ttl_ms":    cfg.Sync.CacheTTLMS,
		},
		"storage": map[string]any{
			"driver": cfg.Storage.Driver,
			"dsn":    cfg.Storage.DSN,
		},
	}
}
