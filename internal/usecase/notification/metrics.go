package notification

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var notificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "catalogo_notifications_created_total",
	Help: "Number of notifications inserted",
}, []string{"type"})

var notificationsDeduped = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "catalogo_notifications_deduped_total",
	Help: "Number of notifications skipped because an unread one already existed",
}, []string{"type"})
