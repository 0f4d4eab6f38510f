package emit

import (
	"github.com/lunfardo314/lsig/global"
	"go.uber.org/zap"
)

type (
	ConfigOptions struct {
		log            *zap.SugaredLogger
		maxSourceSize  int
		maxProgramSize int
	}

	ConfigOption func(options *ConfigOptions)
)

const DefaultMaxSourceSize = 64 * 1024

func defaultConfigOptions() *ConfigOptions {
	return &ConfigOptions{
		log:            global.NopLogger(),
		maxSourceSize:  DefaultMaxSourceSize,
		maxProgramSize: MaxProgramSize,
	}
}

func configOptions(opts ...ConfigOption) *ConfigOptions {
	cfg := defaultConfigOptions()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func WithLogger(log *zap.SugaredLogger) ConfigOption {
	return func(o *ConfigOptions) {
		if log != nil {
			o.log = log.Named("emit")
		}
	}
}

// WithMaxSourceSize limits size of the emitted source text. 0 means default
func WithMaxSourceSize(size int) ConfigOption {
	return func(o *ConfigOptions) {
		if size > 0 {
			o.maxSourceSize = size
		}
	}
}

// WithMaxProgramSize limits size of the compiled bytecode. 0 means default
func WithMaxProgramSize(size int) ConfigOption {
	return func(o *ConfigOptions) {
		if size > 0 {
			o.maxProgramSize = size
		}
	}
}
