// Package that provides key generation configurations.
// It supports configuration versioning, having each implementation
// register themselves in this package.
// External parties should only use this package for configuring
// and ignore the underlying implementations. Also this package
// must not import packages of it's implementations to avoid circular
// imports.
//
// This package assumes that each underlying implementation will be
// in YAML or JSON, with the topmost element being a map containg a
// property named 'version' that is set to an integer. All other
// details are set by the underlying implementation.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/wokdav/minirsa/logging"

	"github.com/ghodss/yaml"
)

var configurators map[int]Configurator = make(map[int]Configurator, 1)

// Configuration implementations register themselves using this function.
// It is recommended to keep verion > 0 to avoid bugs regarding to uninitialized
// version numbers.
func AddConfigurator(version int, c Configurator) {
	configurators[version] = c
}

// Get configurator for the supplied version.
// Returns an error, if this version does not exist (yet).
func GetConfigurator(version int) (Configurator, error) {
	c, ok := configurators[version]
	if !ok {
		return nil, fmt.Errorf("config: unknown version: %d", version)
	}

	return c, nil
}

// This is the minimum requirement for config implementations.
// A test-marshal into this is done to determine the underlying config implementation.
type configProxy struct {
	Version int
}

// The main parsing function for configurations.
// It reads the version integer from the config and hands the content to the
// matching implementation.
func ParseConfig(r io.Reader) (*KeygenConfig, error) {
	sb := new(strings.Builder)
	w, err := io.Copy(sb, r)
	if err != nil {
		return nil, fmt.Errorf("config: error reading config buffer after %d bytes: %v", w, err)
	}
	cfgstr := sb.String()

	var proxy configProxy
	err = yaml.Unmarshal([]byte(cfgstr), &proxy)
	if err != nil {
		return nil, errors.New("config: top level must be a map containg a key called 'version' that contains an integer")
	}

	configurator, prs := configurators[proxy.Version]
	if !prs {
		return nil, fmt.Errorf("config: unknown version: %d", proxy.Version)
	}

	return configurator.ParseConfiguration(cfgstr)
}

// The interface each configuration version must implement.
type Configurator interface {
	ParseConfiguration(s string) (*KeygenConfig, error)
	Example() string
}

// Widths supported by the key generator.
const (
	Width32 = 32
	Width64 = 64
)

// The general representation of a key generation configuration.
type KeygenConfig struct {
	// Word width of the key, either Width32 or Width64.
	Width int
	// Seed for the random source. Nil means seeding from the wall clock.
	Seed *int64
	// Miller-Rabin rounds per prime candidate.
	Rounds int
	// Budget for each retry loop of the key generation.
	MaxAttempts int
	// Range for prime candidates. Both zero means the default range for Width.
	PrimeMin uint64
	PrimeMax uint64
	LogLevel logging.LogLevel
}

// HasPrimeRange reports whether an explicit prime range is configured.
func (c KeygenConfig) HasPrimeRange() bool {
	return c.PrimeMin != 0 || c.PrimeMax != 0
}

// Check performs the checks a schema cannot express.
func (c KeygenConfig) Check() error {
	if c.Width != Width32 && c.Width != Width64 {
		return fmt.Errorf("config: unsupported width %d", c.Width)
	}

	if !c.HasPrimeRange() {
		return nil
	}

	if c.PrimeMin >= c.PrimeMax {
		return fmt.Errorf("config: prime range [%d, %d] is empty", c.PrimeMin, c.PrimeMax)
	}

	if c.Width == Width32 && c.PrimeMax > 1<<32-1 {
		return fmt.Errorf("config: prime %d does not fit into %d bits", c.PrimeMax, c.Width)
	}

	return nil
}
