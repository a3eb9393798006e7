// Package metrics holds the Prometheus collectors shared by the bot's components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesSent counts outbound messages by result (ok, error).
	MessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "survey_messages_sent_total",
		Help: "Outbound chat messages by result",
	}, []string{"result"})

	// ResponsesIngested counts stored survey responses.
	ResponsesIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "survey_responses_ingested_total",
		Help: "Survey responses stored from card submissions",
	})

	// Rotations counts rotation runs by outcome (archived, empty, error, locked).
	Rotations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "survey_rotations_total",
		Help: "Archive rotations by outcome",
	}, []string{"outcome"})

	// ArchivedResponses counts records written to the archive.
	ArchivedResponses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "survey_archived_responses_total",
		Help: "Survey responses written to the archive",
	})

	// Commands counts routed admin commands by name.
	Commands = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "survey_commands_total",
		Help: "Admin chat commands by name",
	}, []string{"command"})

	// NameLookupDuration tracks display-name resolution latency.
	NameLookupDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "survey_name_lookup_duration_seconds",
		Help:    "Display name lookup duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
	})
)
