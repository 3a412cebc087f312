package config

import (
	_ "embed"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/crimsonvanitas/brew/pkg/errors"
	"github.com/crimsonvanitas/brew/pkg/logging"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// rawBytesProvider feeds embedded bytes to a koanf parser.
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, stderrors.New("not implemented")
}

const (
	appName   = "kegreloc"
	envPrefix = "KEGRELOC_"
)

// LoadOptions selects the sources layered over the embedded defaults.
type LoadOptions struct {
	// File overrides the user config file location. A missing default
	// location is fine; a missing explicit file is an error.
	File string

	// Overrides are dotted keys set from command line flags.
	Overrides map[string]interface{}
}

// DefaultFile returns the user config file location.
func DefaultFile() string {
	xdg.Reload()
	return filepath.Join(xdg.ConfigHome, appName, "config.toml")
}

// LoadConfiguration builds the effective configuration.
func LoadConfiguration(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to parse embedded defaults")
	}

	// 2. User config file
	path, explicit := opts.File, opts.File != ""
	if !explicit {
		path = DefaultFile()
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path).
				WithDetail("path", path)
		}
		logger.Debug().Str("path", path).Msg("Loaded config file")
	} else if explicit {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "config file %s not found", path).
			WithDetail("path", path)
	}

	// 3. Environment, matched against known keys so underscores inside key
	// names survive: KEGRELOC_TOOLCHAIN_GCC_COMMAND -> toolchain.gcc_command
	known := map[string]string{}
	for _, key := range k.Keys() {
		known[strings.ReplaceAll(key, ".", "_")] = key
	}
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return known[strings.ToLower(strings.TrimPrefix(s, envPrefix))]
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment")
	}

	// 4. Flags
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply flag overrides")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
