package ghost

import "slices"

// freeList hands out local ids. Released ids are kept on a stack and reused
// before the high-water mark grows, so local ids stay dense under churn.
type freeList struct {
	holes []LocalID
	next  LocalID
}

func (f *freeList) alloc(limit uint32) (LocalID, error) {
	if n := len(f.holes); n > 0 {
		lid := f.holes[n-1]
		f.holes = f.holes[:n-1]
		return lid, nil
	}
	if uint32(f.next) >= limit {
		return NoLocalID, ErrLocalIDExhausted
	}
	lid := f.next
	f.next++
	return lid, nil
}

func (f *freeList) release(lid LocalID) {
	f.holes = append(f.holes, lid)
}

// extent is the number of local ids ever handed out and not trimmed.
func (f *freeList) extent() int {
	return int(f.next)
}

func (f *freeList) available() []LocalID {
	return slices.Clone(f.holes)
}

// trim moves the high-water mark down to end directly above the highest id
// in use. Holes above it merge into the unallocated tail.
func (f *freeList) trim(end LocalID) {
	f.next = end
	f.holes = slices.DeleteFunc(f.holes, func(lid LocalID) bool { return lid >= end })
}

func (f *freeList) clone() freeList {
	return freeList{holes: slices.Clone(f.holes), next: f.next}
}
