package upload

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// uploadsTotal counts finished relays by outcome: complete, error, rejected.
	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_uploads_total",
			Help: "Uploads handled by the relay, by outcome",
		},
		[]string{"outcome"},
	)

	uploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "portfolio_upload_bytes",
			Help:    "Size of files written to object storage",
			Buckets: prometheus.ExponentialBuckets(16<<10, 2, 10), // 16 KiB … 8 MiB
		},
	)

	storeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "portfolio_upload_store_duration_seconds",
			Help:    "Time spent writing one file to object storage",
			Buckets: prometheus.DefBuckets,
		},
	)
)
