package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SignupAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fixly_signup_attempts_total",
		Help: "Signup attempts by auth method and outcome.",
	}, []string{"method", "outcome"})

	PasswordResets = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fixly_password_resets_total",
		Help: "Password reset flow events by stage and outcome.",
	}, []string{"stage", "outcome"})

	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fixly_rate_limited_total",
		Help: "Requests rejected by the rate limiter, by action.",
	}, []string{"action"})

	AdminActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fixly_admin_actions_total",
		Help: "Admin moderation actions by kind.",
	}, []string{"action"})
)

// Handler returns an http.Handler for Prometheus scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
