package core

import (
	"context"

	"github.com/mlow/low/adapters/gologger"
)

// ErrorMapper normalizes an arbitrary error into the typed envelope
// (MapError's signature), so a Runtime consumer can override the default
// mapping without every package importing goerrors directly.
type ErrorMapper func(err error) error

// runtimeBuilder accumulates Option values before NewRuntime freezes them
// into a Runtime, mirroring the teacher's serviceBuilder/Option pattern.
type runtimeBuilder struct {
	config           Config
	logger           Logger
	loggerProvider   LoggerProvider
	progressRecorder ProgressRecorder
	tracer           Tracer
	errorMapper      ErrorMapper
	configProvider   ConfigProvider
	optionsResolver  OptionsResolver
}

// Option configures a Runtime at construction time.
type Option func(*runtimeBuilder)

// WithLogger supplies an explicit Logger, taking precedence over any
// LoggerProvider also passed (matches gologger.Resolve's precedence rule).
func WithLogger(logger Logger) Option {
	return func(b *runtimeBuilder) { b.logger = logger }
}

// WithLoggerProvider supplies a LoggerProvider used to derive the Logger
// when no explicit Logger Option is given.
func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *runtimeBuilder) { b.loggerProvider = provider }
}

// WithProgressRecorder wires a counter/histogram sink for resolver pass
// boundaries and download byte-count ticks.
func WithProgressRecorder(recorder ProgressRecorder) Option {
	return func(b *runtimeBuilder) { b.progressRecorder = recorder }
}

// WithTracer wires structured debug tracing, independent of metrics.
func WithTracer(tracer Tracer) Option {
	return func(b *runtimeBuilder) { b.tracer = tracer }
}

// WithErrorMapper overrides the default MapError-based mapping.
func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *runtimeBuilder) { b.errorMapper = mapper }
}

// WithConfigProvider supplies the loaded-config layer (e.g. a parsed
// repo-config document) NewRuntime merges under the cfg passed as its
// runtime-override layer.
func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *runtimeBuilder) { b.configProvider = provider }
}

// WithOptionsResolver overrides the default GoOptionsResolver used to merge
// defaults/loaded/runtime config layers.
func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *runtimeBuilder) { b.optionsResolver = resolver }
}

// Runtime bundles the ambient seams every package in this module accepts:
// configuration, logging, progress/tracing, and error normalization. It is
// the resolver/download/repo packages' analogue of the teacher's Service.
type Runtime struct {
	Config           Config
	Logger           Logger
	ProgressRecorder ProgressRecorder
	Tracer           Tracer
	ErrorMapper      ErrorMapper
}

// NewRuntime builds a Runtime from cfg and opts, filling every seam not
// explicitly supplied with its no-op default, exactly as the teacher's
// defaultServiceBuilder does before applying Options over it. cfg is
// treated as the highest-priority (runtime-override) config layer; when a
// ConfigProvider option is supplied, its loaded document is merged beneath
// cfg via the OptionsResolver (GoOptionsResolver unless overridden), per
// GoOptionsResolver's defaults<config<runtime precedence.
func NewRuntime(ctx context.Context, cfg Config, opts ...Option) (*Runtime, error) {
	builder := runtimeBuilder{
		config:           cfg,
		progressRecorder: NopProgressRecorder{},
		errorMapper:      func(err error) error { return MapError(err) },
		optionsResolver:  GoOptionsResolver{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&builder)
		}
	}

	resolvedConfig := builder.config
	if builder.configProvider != nil {
		defaults := DefaultConfig()
		loaded, err := builder.configProvider.Load(ctx, defaults)
		if err != nil {
			return nil, err
		}
		resolved, err := builder.optionsResolver.Resolve(defaults, loaded, builder.config)
		if err != nil {
			return nil, err
		}
		resolvedConfig = resolved
	}
	builder.config = resolvedConfig

	logger := builder.logger
	if logger == nil {
		_, resolved := gologger.Resolve(resolvedConfig.ServiceName, builder.loggerProvider, nil)
		logger = resolved
	}
	tracer := builder.tracer
	if tracer == nil {
		tracer = LogTracer{Logger: logger}
	}
	builder.tracer = tracer

	return &Runtime{
		Config:           builder.config,
		Logger:           logger,
		ProgressRecorder: builder.progressRecorder,
		Tracer:           builder.tracer,
		ErrorMapper:      builder.errorMapper,
	}, nil
}
