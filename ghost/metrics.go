package ghost

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/meshsim/ghostsync/metrics"
)

const (
	subsystem    = "ghost"
	outcomeLabel = "outcome"
)

var (
	negotiations = metrics.NewCounter(
		"negotiations",
		subsystem,
		"negotiation rounds by outcome",
		[]string{outcomeLabel},
	)
	negotiationLatency = metrics.NewHistogramWithBuckets(
		"negotiation_seconds",
		subsystem,
		"duration of negotiation rounds that ran the full protocol",
		[]string{outcomeLabel},
		prometheus.ExponentialBuckets(0.0005, 2, 16),
	)
	claimsSent = metrics.NewCounter(
		"claims",
		subsystem,
		"claims sent to negotiating ranks",
		[]string{},
	).WithLabelValues()
	syncs = metrics.NewCounter(
		"syncs",
		subsystem,
		"channel synchronizations by outcome",
		[]string{outcomeLabel},
	)
	syncBytes = metrics.NewCounter(
		"sync_bytes",
		subsystem,
		"record bytes exchanged by synchronization",
		[]string{"direction"},
	)

	negotiationsFast      = negotiations.WithLabelValues("fastpath")
	negotiationsCommitted = negotiations.WithLabelValues("committed")
	negotiationsFailed    = negotiations.WithLabelValues("failed")
	syncsSkipped          = syncs.WithLabelValues("skipped")
	syncsDone             = syncs.WithLabelValues("synced")
	syncsFailed           = syncs.WithLabelValues("failed")
	syncBytesSent         = syncBytes.WithLabelValues("sent")
	syncBytesReceived     = syncBytes.WithLabelValues("received")
)
