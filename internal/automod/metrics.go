package automod

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var eventProcessDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "automod_event_duration_sec",
	Help:    "Duration of the check battery for one message event",
	Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
}, []string{"kind"})

var eventProcessCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_event_processed",
	Help: "Number of message events processed, by gate outcome",
}, []string{"kind", "outcome"})

var checkResultCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_check_results",
	Help: "Number of check evaluations, by category and result",
}, []string{"category", "result"})

var actionCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_actions",
	Help: "Number of moderation actions requested, by category and result",
}, []string{"category", "result"})
