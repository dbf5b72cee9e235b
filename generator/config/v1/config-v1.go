// Implements version 1 of the configuration parser.
//
// It applies some defaults to the configurations:
// - Default width: 32 bits.
// - Default Miller-Rabin rounds: 10.
// - Default attempt budget: 100000 per retry loop.
// - Default log level: warning.
// - No seed, so the random source is seeded from the clock.
package v1

import (
	"bytes"

	"github.com/wokdav/minirsa/generator/config"
	"github.com/wokdav/minirsa/logging"

	"github.com/ghodss/yaml"
)

func init() {
	config.AddConfigurator(1, V1Configurator{})
}

const (
	DefaultWidth       = config.Width32
	DefaultRounds      = 10
	DefaultMaxAttempts = 100000
	DefaultLogLevel    = "warning"
)

// Struct for YAML/JSON marshaling.
type PrimeRange struct {
	Min uint64 `json:"min"`
	Max uint64 `json:"max"`
}

// Struct for YAML/JSON marshaling.
type KeygenProfile struct {
	Version     int         `json:"version"`
	Width       int         `json:"width"`
	Seed        *int64      `json:"seed"`
	Rounds      int         `json:"rounds"`
	MaxAttempts int         `json:"maxAttempts"`
	Primes      *PrimeRange `json:"primes"`
	LogLevel    string      `json:"logLevel"`
}

// The implementor of [config.Configurator] for version 1.
type V1Configurator struct{}

// Implements ParseConfiguration from [config.Configurator].
// It validates the provided string against the schema and generates the
// configuration object with the stated defaults.
func (v V1Configurator) ParseConfiguration(s string) (*config.KeygenConfig, error) {
	js, err := yaml.YAMLToJSON([]byte(s))
	if err != nil {
		return nil, err
	}

	err = keygenSchema.Validate(bytes.NewBuffer(js))
	if err != nil {
		return nil, err
	}

	profile := KeygenProfile{}
	err = yaml.Unmarshal(js, &profile)
	if err != nil {
		return nil, err
	}

	return initKeygenConfig(profile)
}

func initKeygenConfig(p KeygenProfile) (*config.KeygenConfig, error) {
	out := config.KeygenConfig{
		Width:       p.Width,
		Seed:        p.Seed,
		Rounds:      p.Rounds,
		MaxAttempts: p.MaxAttempts,
	}

	if out.Width == 0 {
		out.Width = DefaultWidth
	}
	if out.Rounds == 0 {
		out.Rounds = DefaultRounds
	}
	if out.MaxAttempts == 0 {
		out.MaxAttempts = DefaultMaxAttempts
	}
	if p.Primes != nil {
		out.PrimeMin, out.PrimeMax = p.Primes.Min, p.Primes.Max
	}

	levelName := p.LogLevel
	if levelName == "" {
		levelName = DefaultLogLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	out.LogLevel = level

	err = out.Check()
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (v V1Configurator) Example() string {
	return keygenExample
}
