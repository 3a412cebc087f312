package config

import (
	"github.com/pelletier/go-toml/v2"

	"github.com/crimsonvanitas/brew/pkg/errors"
)

// Dump renders cfg as TOML.
func Dump(cfg *Config) ([]byte, error) {
	out, err := toml.Marshal(cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to render configuration")
	}
	return out, nil
}
