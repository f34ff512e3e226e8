package transport

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/meshsim/ghostsync/metrics"
)

const (
	subsystem = "transport"
	kindLabel = "kind"
)

var (
	collectives = metrics.NewCounter(
		"collectives",
		subsystem,
		"collective calls by kind and result",
		[]string{kindLabel, "result"},
	)
	payload = metrics.NewCounter(
		"payload_bytes",
		subsystem,
		"bytes exchanged with other ranks",
		[]string{"direction"},
	)
	latency = metrics.NewHistogramWithBuckets(
		"collective_seconds",
		subsystem,
		"time from entering a collective until all contributions arrived",
		[]string{kindLabel},
		prometheus.ExponentialBuckets(0.0001, 2, 16),
	)
)

const (
	kindAllToAll  = "alltoall"
	kindAllReduce = "allreduce"
	kindBarrier   = "barrier"
)

type kindTracker struct {
	ok, failed prometheus.Counter
	latency    prometheus.Observer
}

func newKindTracker(kind string) kindTracker {
	return kindTracker{
		ok:      collectives.WithLabelValues(kind, "ok"),
		failed:  collectives.WithLabelValues(kind, "failed"),
		latency: latency.WithLabelValues(kind),
	}
}

func newTracker() *tracker {
	return &tracker{
		kinds: map[string]kindTracker{
			kindAllToAll:  newKindTracker(kindAllToAll),
			kindAllReduce: newKindTracker(kindAllReduce),
			kindBarrier:   newKindTracker(kindBarrier),
		},
		sent:     payload.WithLabelValues("sent"),
		received: payload.WithLabelValues("received"),
	}
}

// tracker records collective metrics. A nil tracker records nothing.
type tracker struct {
	kinds          map[string]kindTracker
	sent, received prometheus.Counter
}

func (t *tracker) done(kind string, seconds float64, err error) {
	if t == nil {
		return
	}
	k := t.kinds[kind]
	if err != nil {
		k.failed.Inc()
		return
	}
	k.ok.Inc()
	k.latency.Observe(seconds)
}

func (t *tracker) bytes(sent, received int) {
	if t == nil {
		return
	}
	t.sent.Add(float64(sent))
	t.received.Add(float64(received))
}
