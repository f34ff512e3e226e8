package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// PushMetrics pushes the default registry to a prometheus push gateway once.
func PushMetrics(ctx context.Context, url, job string, grouping map[string]string) error {
	pusher := push.New(url, job).Gatherer(prometheus.DefaultGatherer)
	for k, v := range grouping {
		pusher = pusher.Grouping(k, v)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
