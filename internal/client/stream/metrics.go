package stream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// knownEvents are counted under their own name; anything else the server
// sends is counted as "other".
var knownEvents = map[string]bool{
	"attendee_created":   true,
	"attendee_updated":   true,
	"attendee_deleted":   true,
	"convention_created": true,
	"convention_updated": true,
	"convention_deleted": true,
}

func eventLabel(name string) string {
	switch {
	case name == "":
		return "message"
	case knownEvents[name]:
		return name
	default:
		return "other"
	}
}

type metrics struct {
	connects    prometheus.Counter
	disconnects prometheus.Counter
	events      *prometheus.CounterVec
}

// newMetrics creates the stream counters and registers them with reg. A nil
// registry leaves them unregistered.
func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		connects: factory.NewCounter(prometheus.CounterOpts{
			Name: "conops_stream_connects_total",
			Help: "Total number of successful live-update connections",
		}),
		disconnects: factory.NewCounter(prometheus.CounterOpts{
			Name: "conops_stream_disconnects_total",
			Help: "Total number of live-update connection losses and failed attempts",
		}),
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "conops_stream_events_total",
			Help: "Total number of live-update events dispatched, by event name",
		}, []string{"event"}),
	}
}
