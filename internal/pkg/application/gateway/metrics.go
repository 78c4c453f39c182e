package gateway

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	callKindEntities   string = "entities"
	callKindExtensions string = "extensions"
	callKindSchema     string = "schema"
)

var subgraphRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "federation",
	Subsystem: "subgraph",
	Name:      "requests_total",
	Help:      "Number of calls made to subgraphs, by outcome",
}, []string{"subgraph", "kind", "outcome"})

var subgraphRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "federation",
	Subsystem: "subgraph",
	Name:      "request_duration_seconds",
	Help:      "Duration of calls made to subgraphs",
	Buckets:   prometheus.DefBuckets,
}, []string{"subgraph", "kind"})

func observe(subgraph, kind string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}

	subgraphRequests.WithLabelValues(subgraph, kind, outcome).Inc()
	subgraphRequestDuration.WithLabelValues(subgraph, kind).Observe(time.Since(start).Seconds())
}
