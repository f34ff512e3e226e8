package ghost

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlan(t *testing.T) {
	plan := newPlan(4)
	plan.Send[1] = []LocalID{0, 2}
	plan.Recv[1] = []LocalID{5}
	plan.Recv[3] = []LocalID{6, 7}

	require.Equal(t, []int{1, 3}, plan.Peers())
	require.Equal(t, 3, plan.Ghosts())
	require.Equal(t, 2, plan.SendCount(1))
	require.Equal(t, 0, plan.SendCount(3))
	require.Equal(t, 2, plan.RecvCount(3))

	clone := plan.Clone()
	require.Equal(t, plan, clone)
	require.Equal(t, plan.Fingerprint(), clone.Fingerprint())

	clone.Recv[3][0] = 8
	require.Equal(t, LocalID(6), plan.Recv[3][0])
	require.NotEqual(t, plan.Fingerprint(), clone.Fingerprint())
}

func TestPlanFingerprintSeparatesDirections(t *testing.T) {
	send := newPlan(2)
	send.Send[1] = []LocalID{1}
	recv := newPlan(2)
	recv.Recv[1] = []LocalID{1}
	require.NotEqual(t, send.Fingerprint(), recv.Fingerprint())
	require.NotEqual(t, newPlan(2).Fingerprint(), newPlan(3).Fingerprint())
}
