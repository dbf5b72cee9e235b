// Package modarith implements modular arithmetic on single machine words.
//
// Every operation stays within the word width of its operands: sums that
// would wrap around are folded back using the modulus, and products are
// built from modular doublings instead of a native multiplication. This
// makes the functions usable with moduli that occupy the full width of
// the word, which is what RSA moduli in this project do.
//
// The functions are generic over [Word]; W = 32 and W = 64 are supported.
// A modulus of zero is a programming error and panics just like an integer
// division by zero would.
package modarith

import (
	"errors"
	"fmt"
)

// Word is the set of unsigned word types the arithmetic is defined on.
type Word interface {
	~uint32 | ~uint64
}

// Op selects between modular addition and subtraction in [ModAdd].
type Op byte

const (
	OpAdd Op = '+'
	OpSub Op = '-'
)

var (
	ErrInvalidOperator = errors.New("modarith: invalid operator")
	ErrNotInvertible   = errors.New("modarith: value is not invertible")
)

// ModAdd returns (a op b) mod n, where op is either [OpAdd] or [OpSub].
// Operands that are not yet reduced are reduced first.
// Any other operator yields an error wrapping [ErrInvalidOperator].
func ModAdd[T Word](a, b T, op Op, n T) (T, error) {
	a %= n
	b %= n

	switch op {
	case OpAdd:
		return addMod(a, b, n), nil
	case OpSub:
		return subMod(a, b, n), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidOperator, byte(op))
	}
}

// ModSub returns (a - b) mod n.
func ModSub[T Word](a, b, n T) T {
	return subMod(a%n, b%n, n)
}

// addMod expects a and b to be residues of n.
func addMod[T Word](a, b, n T) T {
	s := a + b
	if s < a {
		// the true sum is at least 2^W > n, so a > n-b and the
		// difference below is the reduced sum.
		return a - (n - b)
	}
	if s >= n {
		return s - n
	}
	return s
}

// subMod expects a and b to be residues of n.
func subMod[T Word](a, b, n T) T {
	switch {
	case a > b:
		return a - b
	case a == b:
		return 0
	default:
		return n - (b - a)
	}
}

// ModMul returns (x * y) mod n without forming the product x*y.
//
// The bits of x are walked from the least significant one upwards while y
// is doubled modulo n in every step. Whenever a bit is set, the current
// multiple of y is added to the result.
func ModMul[T Word](x, y, n T) T {
	y %= n
	var result T
	for x > 0 {
		if x&1 == 1 {
			result = addMod(result, y, n)
		}
		x >>= 1
		if x > 0 {
			y = addMod(y, y, n)
		}
	}
	return result % n
}

// ModPow returns base^exp mod n using square-and-multiply.
func ModPow[T Word](base, exp, n T) T {
	result := 1 % n
	base %= n
	for ; exp > 0; exp >>= 1 {
		if exp&1 == 1 {
			result = ModMul(result, base, n)
		}
		base = ModMul(base, base, n)
	}
	return result
}

// GCD returns the greatest common divisor of a and b.
// GCD(a, 0) is a; GCD(0, 0) is 0.
func GCD[T Word](a, b T) T {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// coefficient is a signed Bézout coefficient, stored as magnitude and sign
// so the whole word width is available for the magnitude.
type coefficient[T Word] struct {
	mag T
	neg bool
}

// minusMul returns c - q*o. The caller guarantees that q*o.mag and the
// resulting magnitude fit into T.
func (c coefficient[T]) minusMul(q T, o coefficient[T]) coefficient[T] {
	p := coefficient[T]{mag: q * o.mag, neg: !o.neg}
	if p.mag == 0 {
		return c
	}

	if c.neg == p.neg {
		return coefficient[T]{mag: c.mag + p.mag, neg: c.neg}
	}
	if c.mag >= p.mag {
		return coefficient[T]{mag: c.mag - p.mag, neg: c.neg && c.mag != p.mag}
	}
	return coefficient[T]{mag: p.mag - c.mag, neg: p.neg}
}

// ModInv returns the x in [0, m) with a*x = 1 (mod m), computed with the
// extended Euclidean algorithm. If gcd(a, m) != 1 there is no such x and an
// error wrapping [ErrNotInvertible] is returned.
func ModInv[T Word](a, m T) (T, error) {
	if m == 0 {
		return 0, fmt.Errorf("%w: modulus is zero", ErrNotInvertible)
	}
	if m == 1 {
		return 0, nil
	}

	// invariant: r0 = t0*a (mod m) and r1 = t1*a (mod m).
	// |t| never exceeds m, so all magnitudes fit into T.
	r0, r1 := m, a%m
	t0, t1 := coefficient[T]{}, coefficient[T]{mag: 1}
	for r1 != 0 {
		q := r0 / r1
		r0, r1 = r1, r0-q*r1
		t0, t1 = t1, t0.minusMul(q, t1)
	}

	if r0 != 1 {
		return 0, fmt.Errorf("%w: gcd(%d, %d) = %d", ErrNotInvertible, a, m, r0)
	}

	inv := t0.mag % m
	if t0.neg && inv != 0 {
		inv = m - inv
	}
	return inv, nil
}
