// Package generator acts as the front-end for key generation and should
// always be the way external packages generate keys from a configuration.
//
// The functions defined here turn a [config.KeygenConfig] into a seeded
// random source and key generation parameters of the configured width, and
// they run the encrypt/decrypt round trip the command line demo shows.
package generator

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"

	"github.com/wokdav/minirsa/generator/codec"
	"github.com/wokdav/minirsa/generator/config"
	"github.com/wokdav/minirsa/generator/dcrypto/modarith"
	"github.com/wokdav/minirsa/generator/dcrypto/random"
	"github.com/wokdav/minirsa/generator/dcrypto/rsa"
	"github.com/wokdav/minirsa/logging"

	v1 "github.com/wokdav/minirsa/generator/config/v1"
)

// DefaultConfig returns the configuration that an empty version 1 config
// file would yield.
func DefaultConfig() config.KeygenConfig {
	return config.KeygenConfig{
		Width:       v1.DefaultWidth,
		Rounds:      v1.DefaultRounds,
		MaxAttempts: v1.DefaultMaxAttempts,
		LogLevel:    logging.LevelWarning,
	}
}

// LoadConfig reads and parses the config file at path.
func LoadConfig(path string) (*config.KeygenConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("generator: can't open config: %w", err)
	}
	defer f.Close()

	cfg, err := config.ParseConfig(f)
	if err != nil {
		return nil, fmt.Errorf("generator: can't parse '%s': %w", path, err)
	}

	return cfg, nil
}

// NewSource returns the random source for c together with its seed.
// Without a configured seed the wall clock is used.
func NewSource(c config.KeygenConfig) (*rand.Rand, int64) {
	if c.Seed != nil {
		return random.New(*c.Seed), *c.Seed
	}
	return random.NewTimeSeeded()
}

// ParamsFor converts c into key generation parameters for words of type T.
func ParamsFor[T modarith.Word](c config.KeygenConfig) (rsa.Params[T], error) {
	p := rsa.DefaultParams[T]()
	if c.Rounds > 0 {
		p.Rounds = c.Rounds
	}
	if c.MaxAttempts > 0 {
		p.MaxAttempts = c.MaxAttempts
	}

	if c.HasPrimeRange() {
		if c.PrimeMax > uint64(^T(0)) {
			return p, fmt.Errorf("generator: prime %d does not fit into %d bits",
				c.PrimeMax, rsa.Width[T]())
		}
		p.PrimeMin, p.PrimeMax = T(c.PrimeMin), T(c.PrimeMax)
	}

	return p, p.Validate()
}

// Key is a generated keypair independent of its word width.
type Key struct {
	Width         int
	Seed          int64
	P, Q, E, D, N uint64
}

func newKey[T modarith.Word](k *rsa.Keypair[T], seed int64) *Key {
	return &Key{
		Width: rsa.Width[T](),
		Seed:  seed,
		P:     uint64(k.P),
		Q:     uint64(k.Q),
		E:     uint64(k.E),
		D:     uint64(k.D),
		N:     uint64(k.N),
	}
}

// generate runs the key generation for words of type T.
func generate[T modarith.Word](c config.KeygenConfig) (*rsa.Keypair[T], int64, error) {
	params, err := ParamsFor[T](c)
	if err != nil {
		return nil, 0, err
	}

	src, seed := NewSource(c)
	logging.Debugf("seeding random source with %d", seed)

	k, err := rsa.GenerateKey(src, params)
	if err != nil {
		logging.Errorf("key generation failed (seed %d): %v", seed, err)
		return nil, seed, err
	}

	return k, seed, nil
}

// GenerateKey generates a keypair as configured by c.
func GenerateKey(c config.KeygenConfig) (*Key, error) {
	if err := c.Check(); err != nil {
		return nil, err
	}

	switch c.Width {
	case config.Width64:
		k, seed, err := generate[uint64](c)
		if err != nil {
			return nil, err
		}
		return newKey(k, seed), nil
	default:
		k, seed, err := generate[uint32](c)
		if err != nil {
			return nil, err
		}
		return newKey(k, seed), nil
	}
}

// RoundTrip is the outcome of encrypting and decrypting a message.
type RoundTrip struct {
	Key        *Key
	Plaintext  []uint64
	Ciphertext []uint64
	Decrypted  []uint64
	Message    []byte
}

// Success reports whether the decrypted message equals msg.
func (r RoundTrip) Success(msg []byte) bool {
	return bytes.Equal(r.Message, msg)
}

func roundTrip[T modarith.Word](c config.KeygenConfig, msg []byte) (*RoundTrip, error) {
	k, seed, err := generate[T](c)
	if err != nil {
		return nil, err
	}

	// a message that fits into one word below n is transformed as that
	// word, anything else block by block
	blocks := codec.Pack[T](msg)
	w, single := codec.Word[T](msg)
	single = single && w < k.N
	if single {
		blocks = []T{w}
	}

	out := &RoundTrip{Key: newKey(k, seed)}
	decrypted := make([]T, 0, len(blocks))

	for _, m := range blocks {
		ct, err := k.Encrypt(m)
		if err != nil {
			return nil, err
		}
		pt, err := k.Decrypt(ct)
		if err != nil {
			return nil, err
		}

		out.Plaintext = append(out.Plaintext, uint64(m))
		out.Ciphertext = append(out.Ciphertext, uint64(ct))
		out.Decrypted = append(out.Decrypted, uint64(pt))
		decrypted = append(decrypted, pt)
	}

	if single {
		out.Message, err = codec.FromWord(decrypted[0], len(msg))
	} else {
		out.Message, err = codec.Unpack(decrypted, len(msg))
	}
	if err != nil {
		return nil, err
	}

	return out, nil
}

// EncryptDecrypt generates a keypair as configured by c, encrypts msg with
// the public exponent and decrypts the result again. msg is packed into a
// single little-endian word if that word is below n, into 3 byte blocks
// otherwise.
func EncryptDecrypt(c config.KeygenConfig, msg []byte) (*RoundTrip, error) {
	if err := c.Check(); err != nil {
		return nil, err
	}

	if c.Width == config.Width64 {
		return roundTrip[uint64](c, msg)
	}
	return roundTrip[uint32](c, msg)
}

// Transform computes data^key mod n on 64 bit words.
func Transform(data, key, n uint64) (uint64, error) {
	if n == 0 {
		return 0, fmt.Errorf("generator: modulus must not be zero")
	}
	return rsa.Transform(data, key, n), nil
}
