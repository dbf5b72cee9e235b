package prime

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// sieve returns a table where composite[i] is true for every composite i < limit
func sieve(limit int) []bool {
	composite := make([]bool, limit)
	composite[0], composite[1] = true, true
	for i := 2; i*i < limit; i++ {
		if composite[i] {
			continue
		}
		for j := i * i; j < limit; j += i {
			composite[j] = true
		}
	}
	return composite
}

func TestIsPrimeSmall(t *testing.T) {
	tests := map[uint32]bool{
		0: false, 1: false, 2: true, 3: true, 4: false,
		5: true, 9: false, 25: false, 97: true, 561: false,
	}
	src := rand.New(rand.NewSource(1))
	for n, want := range tests {
		require.Equal(t, want, IsPrime(n, DefaultRounds, src), "IsPrime(%d)", n)
	}
}

func TestIsPrimeAgainstSieve(t *testing.T) {
	const limit = 70000
	composite := sieve(limit)
	src := rand.New(rand.NewSource(2))

	for i := 2; i < limit; i++ {
		if !composite[i] {
			require.True(t, IsPrime(uint32(i), DefaultRounds, src), "%d is prime", i)
		}
	}
}

func TestIsPrimeRandomComposites(t *testing.T) {
	src := rand.New(rand.NewSource(3))
	for i := 0; i < 10000; i++ {
		a := uint64(src.Intn(1<<16-3) + 3)
		b := uint64(src.Intn(1<<16-3) + 3)
		require.False(t, IsPrime(uint32(a*b), DefaultRounds, src), "%d * %d", a, b)
	}
}

func TestIsPrimeCarmichael(t *testing.T) {
	src := rand.New(rand.NewSource(4))
	for _, n := range []uint32{561, 1105, 1729, 2465, 2821, 6601, 8911, 41041, 825265, 321197185} {
		require.False(t, IsPrime(n, DefaultRounds, src), "%d is a Carmichael number", n)
	}
}

func TestIsPrimeWithoutRounds(t *testing.T) {
	src := rand.New(rand.NewSource(5))
	for _, rounds := range []int{0, -3} {
		for _, n := range []uint32{9, 15, 561, 46349 * 3} {
			require.False(t, IsPrime(n, rounds, src), "IsPrime(%d) with %d rounds", n, rounds)
		}
		require.True(t, IsPrime(uint32(46349), rounds, src))
	}
}

func TestIsPrime64(t *testing.T) {
	src := rand.New(rand.NewSource(5))
	primes := []uint64{4294967291, 4294967311, 18446744073709551557, 3037000507}
	for _, p := range primes {
		require.True(t, IsPrime(p, DefaultRounds, src), "%d", p)
	}

	composites := []uint64{4294967291 * 4294967279, 3037000507 * 3, 18446744073709551615}
	for _, c := range composites {
		require.False(t, IsPrime(c, DefaultRounds, src), "%d", c)
	}
}

func TestIsPrimeDeterministicPerSeed(t *testing.T) {
	a := rand.New(rand.NewSource(6))
	b := rand.New(rand.NewSource(6))
	for n := uint32(46341); n < 46441; n++ {
		require.Equal(t, IsPrime(n, DefaultRounds, a), IsPrime(n, DefaultRounds, b))
	}
}

func TestFind(t *testing.T) {
	src := rand.New(rand.NewSource(7))
	composite := sieve(65536)

	for i := 0; i < 50; i++ {
		p, attempts, err := Find[uint32](src, 46341, 65535, DefaultRounds, 10000)
		require.NoError(t, err)
		require.GreaterOrEqual(t, attempts, 1)
		require.GreaterOrEqual(t, p, uint32(46341))
		require.LessOrEqual(t, p, uint32(65535))
		require.False(t, composite[p], "%d is not prime", p)
	}
}

func TestFindExhausted(t *testing.T) {
	src := rand.New(rand.NewSource(8))

	// no primes between 24 and 28
	_, attempts, err := Find[uint32](src, 24, 28, DefaultRounds, 25)
	require.ErrorIs(t, err, ErrExhausted)
	require.Equal(t, 25, attempts)

	_, _, err = Find[uint32](src, 10, 9, DefaultRounds, 25)
	require.Error(t, err)
}
