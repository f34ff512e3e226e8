package ghost

import (
	"slices"

	"github.com/spacemeshos/go-scale"
	"github.com/zeebo/blake3"
)

// Plan is the communication plan derived by a negotiation round.
// Send[p] lists the local ids whose records are sent to rank p and Recv[p] the
// local ids that receive records from rank p, both in wire order.
type Plan struct {
	Send [][]LocalID
	Recv [][]LocalID
}

func newPlan(size int) *Plan {
	return &Plan{Send: make([][]LocalID, size), Recv: make([][]LocalID, size)}
}

// SendCount returns the number of records sent to peer.
func (p *Plan) SendCount(peer int) int { return len(p.Send[peer]) }

// RecvCount returns the number of records received from peer.
func (p *Plan) RecvCount(peer int) int { return len(p.Recv[peer]) }

// Peers returns the ranks exchanging at least one record with this rank.
func (p *Plan) Peers() []int {
	var peers []int
	for r := range p.Send {
		if len(p.Send[r]) != 0 || len(p.Recv[r]) != 0 {
			peers = append(peers, r)
		}
	}
	return peers
}

// Ghosts returns the number of local slots receiving records.
func (p *Plan) Ghosts() int {
	n := 0
	for _, lids := range p.Recv {
		n += len(lids)
	}
	return n
}

// Clone returns a deep copy of the plan.
func (p *Plan) Clone() *Plan {
	c := &Plan{Send: make([][]LocalID, len(p.Send)), Recv: make([][]LocalID, len(p.Recv))}
	for r := range p.Send {
		c.Send[r] = slices.Clone(p.Send[r])
	}
	for r := range p.Recv {
		c.Recv[r] = slices.Clone(p.Recv[r])
	}
	return c
}

// Fingerprint hashes the scale encoding of the plan. Identical plans have
// identical fingerprints.
func (p *Plan) Fingerprint() [32]byte {
	h := blake3.New()
	if _, err := p.EncodeScale(scale.NewEncoder(h)); err != nil {
		panic("BUG: encoding plan into a hash failed: " + err.Error())
	}
	var fp [32]byte
	copy(fp[:], h.Sum(nil))
	return fp
}

// EncodeScale implements scale.Encodable.
func (p *Plan) EncodeScale(enc *scale.Encoder) (total int, err error) {
	for _, lists := range [][][]LocalID{p.Send, p.Recv} {
		n, err := scale.EncodeCompact32(enc, uint32(len(lists)))
		if err != nil {
			return total, err
		}
		total += n
		for _, lids := range lists {
			n, err := scale.EncodeCompact32(enc, uint32(len(lids)))
			if err != nil {
				return total, err
			}
			total += n
			for _, lid := range lids {
				n, err := scale.EncodeCompact32(enc, uint32(lid))
				if err != nil {
					return total, err
				}
				total += n
			}
		}
	}
	return total, nil
}
