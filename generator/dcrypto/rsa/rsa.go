// Package rsa implements textbook RSA on single machine words.
//
// Key generation draws two primes from a restricted range so that their
// product occupies the full width of the word, picks a random public
// exponent coprime to the totient and derives the private exponent as its
// modular inverse. Encryption and decryption are the same primitive,
// [Transform], applied with the public or the private exponent.
//
// There is no padding and no protection against timing side channels.
// Keys of 32 or 64 bits are toys and must not protect anything.
package rsa

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/wokdav/minirsa/generator/dcrypto/modarith"
	"github.com/wokdav/minirsa/generator/dcrypto/prime"
	"github.com/wokdav/minirsa/generator/dcrypto/random"
	"github.com/wokdav/minirsa/logging"
)

var (
	ErrKeygenExhausted = errors.New("rsa: key generation exceeded its attempt budget")
	ErrRangeViolation  = errors.New("rsa: modulus does not occupy the full word width")
	ErrInvalidParams   = errors.New("rsa: invalid key generation parameters")
	ErrInvalidKey      = errors.New("rsa: invalid keypair")
	ErrMessageTooLarge = errors.New("rsa: message is not smaller than the modulus")
)

// Params controls key generation.
type Params[T modarith.Word] struct {
	// Both primes are drawn uniformly from [PrimeMin, PrimeMax].
	PrimeMin, PrimeMax T
	// Number of Miller-Rabin rounds per candidate.
	Rounds int
	// Upper bound for every retry loop: candidates per prime, exponent
	// candidates and re-selections of the whole prime pair.
	MaxAttempts int
}

// Width returns the bit width W of T.
func Width[T modarith.Word]() int {
	return bits.Len64(uint64(^T(0)))
}

// DefaultParams returns parameters whose prime range always yields a full
// width modulus: the smallest value is ceil(sqrt(2^(W-1))), the largest
// 2^(W/2) - 1.
func DefaultParams[T modarith.Word]() Params[T] {
	p := Params[T]{
		Rounds:      prime.DefaultRounds,
		MaxAttempts: 100000,
	}

	if Width[T]() == 32 {
		p.PrimeMin, p.PrimeMax = 46341, 65535
	} else {
		v := uint64(3037000500)
		p.PrimeMin, p.PrimeMax = T(v), T(uint64(^T(0))>>32)
	}

	return p
}

// Validate checks the parameters for obvious mistakes. It does not check
// whether the range contains enough primes.
func (p Params[T]) Validate() error {
	switch {
	case p.PrimeMin < 3:
		return fmt.Errorf("%w: smallest prime candidate must be at least 3, got %d", ErrInvalidParams, p.PrimeMin)
	case p.PrimeMax <= p.PrimeMin:
		return fmt.Errorf("%w: prime range [%d, %d] is too small", ErrInvalidParams, p.PrimeMin, p.PrimeMax)
	case p.Rounds < 1:
		return fmt.Errorf("%w: at least one Miller-Rabin round is required", ErrInvalidParams)
	case p.MaxAttempts < 1:
		return fmt.Errorf("%w: attempt budget must be positive", ErrInvalidParams)
	}
	return nil
}

// Keypair holds both primes, both exponents and the modulus.
type Keypair[T modarith.Word] struct {
	P, Q T
	E, D T
	N    T
}

// modulus returns p*q if it lies in [2^(W-1), 2^W - 1].
func modulus[T modarith.Word](p, q T) (T, error) {
	hi, lo := bits.Mul64(uint64(p), uint64(q))
	upper := uint64(^T(0))
	lower := upper>>1 + 1
	if hi != 0 || lo > upper || lo < lower {
		return 0, fmt.Errorf("%w: %d * %d is not in [%d, %d]", ErrRangeViolation, p, q, lower, upper)
	}
	return T(lo), nil
}

// GenerateKey generates a keypair of width W = [Width] of T, drawing all
// randomness from src. A seeded src makes the result reproducible.
//
// Every retry loop is bounded by params.MaxAttempts. Running out of
// attempts returns an error wrapping [ErrKeygenExhausted] together with the
// reason for the last retry.
func GenerateKey[T modarith.Word](src random.Source, params Params[T]) (*Keypair[T], error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var cause error

NextSetOfPrimes:
	for attempt := 1; attempt <= params.MaxAttempts; attempt++ {
		primes := make([]T, 2)
		for i := range primes {
			var err error
			primes[i], _, err = prime.Find(src, params.PrimeMin, params.PrimeMax,
				params.Rounds, params.MaxAttempts)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrKeygenExhausted, err)
			}

			for j := 0; j < i; j++ {
				if primes[i] == primes[j] {
					cause = fmt.Errorf("rsa: drew %d twice", primes[i])
					logging.Debug(cause.Error())
					continue NextSetOfPrimes
				}
			}
		}
		p, q := primes[0], primes[1]

		n, err := modulus(p, q)
		if err != nil {
			cause = err
			logging.Debugf("n out of range, selecting new primes: %v", err)
			continue
		}

		totient := (p - 1) * (q - 1)
		e, err := selectExponent(src, totient, params.MaxAttempts)
		if err != nil {
			return nil, err
		}

		d, err := modarith.ModInv(e, totient)
		if err != nil {
			// gcd(e, totient) = 1 was checked by selectExponent
			return nil, fmt.Errorf("rsa: %w", err)
		}

		logging.Infof("selected p = %d, q = %d, so n = %d", p, q, n)
		logging.Infof("e is %d, so d must be %d", e, d)

		return &Keypair[T]{P: p, Q: q, E: e, D: d, N: n}, nil
	}

	return nil, fmt.Errorf("%w: %d prime pairs rejected, last reason: %w",
		ErrKeygenExhausted, params.MaxAttempts, cause)
}

// selectExponent draws e from [2, totient) until gcd(e, totient) = 1.
func selectExponent[T modarith.Word](src random.Source, totient T, maxAttempts int) (T, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		e := T(random.Between(src, 2, uint64(totient-1)))
		if modarith.GCD(e, totient) == 1 {
			return e, nil
		}
		logging.Debugf("e = %d shares a factor with %d", e, totient)
	}
	return 0, fmt.Errorf("%w: no exponent coprime to %d after %d candidates",
		ErrKeygenExhausted, totient, maxAttempts)
}

// FromPrimes assembles a keypair from two distinct primes and a public
// exponent. Primality of p and q is not checked, use [Keypair.Validate].
func FromPrimes[T modarith.Word](p, q, e T) (*Keypair[T], error) {
	if p == q {
		return nil, fmt.Errorf("%w: p and q must differ", ErrInvalidKey)
	}
	if p < 3 || q < 3 {
		return nil, fmt.Errorf("%w: primes must be odd primes", ErrInvalidKey)
	}

	n, err := modulus(p, q)
	if err != nil {
		return nil, err
	}

	totient := (p - 1) * (q - 1)
	if e < 2 || e >= totient {
		return nil, fmt.Errorf("%w: e = %d is not in [2, %d)", ErrInvalidKey, e, totient)
	}

	d, err := modarith.ModInv(e, totient)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}

	return &Keypair[T]{P: p, Q: q, E: e, D: d, N: n}, nil
}

// Totient returns (p-1)(q-1).
func (k *Keypair[T]) Totient() T {
	return (k.P - 1) * (k.Q - 1)
}

// Validate checks all invariants of the keypair. Primality is tested with
// [prime.DefaultRounds] rounds using witnesses from src.
func (k *Keypair[T]) Validate(src random.Source) error {
	if err := k.checkPublic(); err != nil {
		return err
	}

	n, err := modulus(k.P, k.Q)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	if n != k.N {
		return fmt.Errorf("%w: n = %d is not p*q = %d", ErrInvalidKey, k.N, n)
	}

	for _, p := range []T{k.P, k.Q} {
		if !prime.IsPrime(p, prime.DefaultRounds, src) {
			return fmt.Errorf("%w: %d is not prime", ErrInvalidKey, p)
		}
	}

	totient := k.Totient()
	if k.E >= totient || modarith.GCD(k.E, totient) != 1 {
		return fmt.Errorf("%w: e = %d is not a unit below %d", ErrInvalidKey, k.E, totient)
	}
	if modarith.ModMul(k.E, k.D, totient) != 1 {
		return fmt.Errorf("%w: e*d is not 1 mod %d", ErrInvalidKey, totient)
	}

	return nil
}

// checkPublic sanity checks the public part before it is used.
func (k *Keypair[T]) checkPublic() error {
	if k.N == 0 {
		return fmt.Errorf("%w: missing modulus", ErrInvalidKey)
	}
	if k.E < 2 {
		return fmt.Errorf("%w: public exponent too small", ErrInvalidKey)
	}
	return nil
}

// Transform computes data^key mod n. It is both the encryption (key = e)
// and the decryption (key = d) primitive.
func Transform[T modarith.Word](data, key, n T) T {
	return modarith.ModPow(data, key, n)
}

// Encrypt returns m^e mod n.
func (k *Keypair[T]) Encrypt(m T) (T, error) {
	if err := k.checkPublic(); err != nil {
		return 0, err
	}
	if m >= k.N {
		return 0, fmt.Errorf("%w: %d >= %d", ErrMessageTooLarge, m, k.N)
	}
	return Transform(m, k.E, k.N), nil
}

// Decrypt returns c^d mod n.
func (k *Keypair[T]) Decrypt(c T) (T, error) {
	if k.N == 0 {
		return 0, fmt.Errorf("%w: missing modulus", ErrInvalidKey)
	}
	if c >= k.N {
		return 0, fmt.Errorf("%w: %d >= %d", ErrMessageTooLarge, c, k.N)
	}
	return Transform(c, k.D, k.N), nil
}
