package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsTotal counts interaction events routed to the manager, by event name.
	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "charsheet_events_total",
		Help: "Total number of interaction events handled",
	}, []string{"event"})

	StoreWritesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "charsheet_store_writes_total",
		Help: "Total number of successful full-collection writes",
	})
	StoreWriteErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "charsheet_store_write_errors_total",
		Help: "Total number of failed full-collection writes",
	})

	ImageDecodeSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "charsheet_image_decode_seconds",
		Help:    "Time spent encoding uploaded images",
		Buckets: prometheus.DefBuckets,
	})
)

// Event names used as the EventsTotal label.
const (
	EventSubmit = "submit"
	EventSelect = "select"
	EventDelete = "delete"
	EventClear  = "clear"
	EventImage  = "image"
)
