// Package metrics exposes the Prometheus counters published at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GenerationsTotal counts finished generation requests by outcome:
	// "ok", "degraded" (generated but not persisted), "blocked",
	// "insufficient_credits", "error".
	GenerationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "halalchat_generations_total",
		Help: "Content generation requests by outcome.",
	}, []string{"outcome"})

	// PolicyViolationsTotal counts prompts rejected by moderation, by category.
	PolicyViolationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "halalchat_policy_violations_total",
		Help: "Prompts rejected by content moderation, by category.",
	}, []string{"category"})

	// ClassifierFallbacksTotal counts classifications served by the degraded
	// zero-shot path instead of the primary model.
	ClassifierFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "halalchat_classifier_fallbacks_total",
		Help: "Classifications that fell back to the zero-shot labeler.",
	})

	// CreditDebitsTotal counts successful credit debits.
	CreditDebitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "halalchat_credit_debits_total",
		Help: "Successful generation credit debits.",
	})

	// ReferralsTotal counts referral outcomes: "recorded", "duplicate".
	ReferralsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "halalchat_referrals_total",
		Help: "Referral processing results.",
	}, []string{"result"})

	// UpstreamErrorsTotal counts failed calls to the inference backend, by
	// operation ("classify", "label", "advise", "generate", "remediate").
	UpstreamErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "halalchat_upstream_errors_total",
		Help: "Failed inference backend calls by operation.",
	}, []string{"operation"})
)
