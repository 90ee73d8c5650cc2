package auth

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// decisions counts permission evaluations by outcome.
var decisions = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Name: "authorization_decisions_total",
		Help: "Number of permission evaluations, differentiated by result.",
	},
	[]string{"result"},
)

func observeDecision(err error) {
	var result string

	switch {
	case err == nil:
		result = "allow"
	case errors.Is(err, ErrPermissionDenied):
		result = "deny"
	case errors.Is(err, ErrNoRoleAssigned):
		result = "no_role"
	case errors.Is(err, ErrUserNotFound):
		result = "unknown_user"
	default:
		result = "error"
	}

	decisions.WithLabelValues(result).Inc()
}
