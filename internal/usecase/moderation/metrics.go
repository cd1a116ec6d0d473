package moderation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var reviewsModerated = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "catalogo_moderation_reviews_total",
	Help: "Number of committed hide/unhide actions",
}, []string{"action"})

var suspensionChanges = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "catalogo_moderation_suspension_changes_total",
	Help: "Number of suspension windows extended or cleared",
}, []string{"action"})

var reportsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "catalogo_moderation_reports_created_total",
	Help: "Number of reports filed",
}, []string{"reason"})

var reportsTransitioned = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "catalogo_moderation_reports_transitioned_total",
	Help: "Number of reports closed",
}, []string{"status"})

var appealsCreated = promauto.NewCounter(prometheus.CounterOpts{
	Name: "catalogo_moderation_appeals_created_total",
	Help: "Number of appeals filed",
})

var appealsTransitioned = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "catalogo_moderation_appeals_transitioned_total",
	Help: "Number of appeals decided",
}, []string{"status"})
