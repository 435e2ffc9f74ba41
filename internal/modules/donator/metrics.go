package donator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	revokeCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qbot_donator_revoked_total",
		Help: "Donator roles revoked by reconciliation",
	}, []string{"reason"})

	passCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qbot_donator_reconciled_total",
		Help: "Members evaluated by reconciliation",
	}, []string{"action"})

	gatewayCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qbot_donator_gateway_total",
		Help: "Successful gateway mutations",
	}, []string{"op"})
)
