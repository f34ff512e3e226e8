package ghost

import (
	"math"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/require"
)

func checkBuckets(t *testing.T, domain uint64, nproc int) {
	t.Helper()
	require.Equal(t, GlobalID(0), BucketStart(0, domain, nproc))
	require.Equal(t, GlobalID(domain), BucketStart(nproc, domain, nproc))
	lo, hi := domain/uint64(nproc), (domain+uint64(nproc)-1)/uint64(nproc)
	for r := 0; r < nproc; r++ {
		start, end := BucketStart(r, domain, nproc), BucketStart(r+1, domain, nproc)
		require.LessOrEqual(t, start, end)
		n := uint64(end - start)
		if domain >= uint64(nproc) {
			require.True(t, n == lo || n == hi, "rank %d has %d ids, domain %d over %d", r, n, domain, nproc)
		}
		if n > 0 {
			require.Equal(t, r, BucketOf(start, domain, nproc))
			require.Equal(t, r, BucketOf(end-1, domain, nproc))
		}
	}
}

func TestBucketsSmall(t *testing.T) {
	for nproc := 1; nproc <= 9; nproc++ {
		for domain := uint64(1); domain <= 40; domain++ {
			checkBuckets(t, domain, nproc)
			for id := uint64(0); id < domain; id++ {
				r := BucketOf(GlobalID(id), domain, nproc)
				require.GreaterOrEqual(t, GlobalID(id), BucketStart(r, domain, nproc))
				require.Less(t, GlobalID(id), BucketStart(r+1, domain, nproc))
			}
		}
	}
}

func TestBucketsFewerIDsThanRanks(t *testing.T) {
	covered := 0
	for r := 0; r < 8; r++ {
		covered += int(BucketStart(r+1, 3, 8) - BucketStart(r, 3, 8))
	}
	require.Equal(t, 3, covered)
}

func TestBucketsLargeDomain(t *testing.T) {
	f := fuzz.NewWithSeed(7)
	for i := 0; i < 200; i++ {
		var (
			domain uint64
			nproc  uint16
		)
		f.Fuzz(&domain)
		f.Fuzz(&nproc)
		domain = domain%uint64(MaxGlobalID) + 1
		p := int(nproc%1024) + 1
		checkBuckets(t, domain, p)

		var id uint64
		f.Fuzz(&id)
		id %= domain
		r := BucketOf(GlobalID(id), domain, p)
		require.GreaterOrEqual(t, GlobalID(id), BucketStart(r, domain, p))
		require.Less(t, GlobalID(id), BucketStart(r+1, domain, p))
	}
	require.Equal(t, 1023, BucketOf(MaxGlobalID, math.MaxInt64, 1024))
}
