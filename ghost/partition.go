package ghost

import "math/bits"

// BucketOf returns the rank that negotiates id when the global id domain
// [0, domain) is split into nproc contiguous ranges. It computes
// floor(id*nproc/domain) without overflowing. id must be below domain.
func BucketOf(id GlobalID, domain uint64, nproc int) int {
	hi, lo := bits.Mul64(uint64(id), uint64(nproc))
	q, _ := bits.Div64(hi, lo, domain)
	return int(q)
}

// BucketStart returns the first global id negotiated by rank, that is
// ceil(rank*domain/nproc). BucketStart(nproc, ...) equals domain, so rank r
// negotiates [BucketStart(r), BucketStart(r+1)), which is empty when the
// domain has fewer ids than ranks.
func BucketStart(rank int, domain uint64, nproc int) GlobalID {
	hi, lo := bits.Mul64(uint64(rank), domain)
	q, rem := bits.Div64(hi, lo, uint64(nproc))
	if rem != 0 {
		q++
	}
	return GlobalID(q)
}
