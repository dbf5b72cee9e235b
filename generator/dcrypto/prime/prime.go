// Package prime implements the Miller-Rabin probabilistic primality test on
// single words and a bounded search for random primes in a range.
package prime

import (
	"errors"
	"fmt"

	"github.com/wokdav/minirsa/generator/dcrypto/modarith"
	"github.com/wokdav/minirsa/generator/dcrypto/random"
	"github.com/wokdav/minirsa/logging"
)

// DefaultRounds bounds the probability of accepting a composite by 4^-10.
const DefaultRounds = 10

var ErrExhausted = errors.New("prime: no prime found within the attempt budget")

// IsPrime reports whether n is prime with an error probability of at most
// 4^-rounds. Witnesses are drawn from src.
//
// Values below 4 and even values are decided directly without consuming
// any randomness. At least one round is needed to reject a composite, so
// rounds < 1 falls back to [DefaultRounds].
func IsPrime[T modarith.Word](n T, rounds int, src random.Source) bool {
	if rounds < 1 {
		rounds = DefaultRounds
	}

	switch {
	case n < 2:
		return false
	case n < 4:
		return true
	case n&1 == 0:
		return false
	}

	// n-1 = 2^s * d with d odd
	nm1 := n - 1
	d := nm1
	s := 0
	for d&1 == 0 {
		d >>= 1
		s++
	}

	for i := 0; i < rounds; i++ {
		a := T(random.Between(src, 2, uint64(nm1)))
		if modarith.GCD(a, n) != 1 {
			return false
		}

		x := modarith.ModPow(a, d, n)
		if x == 1 || x == nm1 {
			continue
		}

		passed := false
		for j := 0; j < s-1; j++ {
			x = modarith.ModMul(x, x, n)
			if x == nm1 {
				passed = true
				break
			}
		}

		if !passed {
			return false
		}
	}

	return true
}

// Find draws candidates uniformly from [lo, hi] until one of them passes
// [IsPrime]. It returns the prime and the number of candidates drawn.
// After maxAttempts failed candidates an error wrapping [ErrExhausted] is
// returned.
func Find[T modarith.Word](src random.Source, lo, hi T, rounds, maxAttempts int) (T, int, error) {
	if lo > hi {
		return 0, 0, fmt.Errorf("prime: empty range [%d, %d]", lo, hi)
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		candidate := T(random.Between(src, uint64(lo), uint64(hi)))
		if IsPrime(candidate, rounds, src) {
			logging.Debugf("%d may be prime", candidate)
			return candidate, attempt, nil
		}
		logging.Debugf("%d is not prime", candidate)
	}

	return 0, maxAttempts, fmt.Errorf("%w: [%d, %d] after %d candidates",
		ErrExhausted, lo, hi, maxAttempts)
}
