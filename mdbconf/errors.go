package mdbconf

import (
	"errors"
	"strings"
)

// ErrConfig is matched by every configuration failure returned from this package.
var ErrConfig = errors.New("connection configuration")

// ConfigError lists the problems found while building a Connection.
type ConfigError struct {
	Problems []string
}

func (ce *ConfigError) Error() string {
	return ErrConfig.Error() + ": " + strings.Join(ce.Problems, "; ")
}

// Is makes errors.Is(err, ErrConfig) true for any *ConfigError.
func (ce *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

func (ce *ConfigError) add(problem string) {
	ce.Problems = append(ce.Problems, problem)
}

func (ce *ConfigError) orNil() error {
	if len(ce.Problems) == 0 {
		return nil
	}
	return ce
}
