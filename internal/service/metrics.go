package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Listing outcomes recorded in storefront_listing_requests_total.
const (
	outcomeOK          = "ok"
	outcomeEmpty       = "empty"
	outcomeInvalid     = "invalid"
	outcomeUnavailable = "unavailable"
)

var (
	listingRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_listing_requests_total",
			Help: "Listing page requests by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	listingItems = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_listing_items",
			Help:    "Number of eligible entries in a full listing",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"kind"},
	)
)
