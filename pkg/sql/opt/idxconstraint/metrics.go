// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package idxconstraint

import "github.com/prometheus/client_golang/prometheus"

// Reasons a conjunct is kept as a residual filter without constraining the
// scan.
const (
	reasonNotConstant         = "not_constant"
	reasonNoKeyPart           = "no_key_part"
	reasonUnsupportedOperator = "unsupported_operator"
	reasonInexactConstant     = "inexact_constant"
)

// Metrics counts the outcomes of scan planning. A nil *Metrics records
// nothing.
type Metrics struct {
	Plans          prometheus.Counter
	Contradictions prometheus.Counter
	// DerivedRanges counts conjuncts that constrained a key column, by
	// comparison operator.
	DerivedRanges *prometheus.CounterVec
	// Fallbacks counts conjuncts that could not constrain the scan, by
	// reason.
	Fallbacks *prometheus.CounterVec
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	plans := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rangepush_scan_plans_total",
		Help: "Total scan plans built",
	})
	contradictions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rangepush_scan_plan_contradictions_total",
		Help: "Total scan plans whose filter can match no row",
	})
	derived := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rangepush_derived_ranges_total",
		Help: "Total comparisons turned into key ranges",
	}, []string{"operator"})
	fallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rangepush_range_fallbacks_total",
		Help: "Total comparisons left to the residual filter without a key range",
	}, []string{"reason"})

	reg.MustRegister(plans, contradictions, derived, fallbacks)

	return &Metrics{
		Plans:          plans,
		Contradictions: contradictions,
		DerivedRanges:  derived,
		Fallbacks:      fallbacks,
	}
}

func (m *Metrics) plan(contradiction bool) {
	if m == nil {
		return
	}
	m.Plans.Inc()
	if contradiction {
		m.Contradictions.Inc()
	}
}

func (m *Metrics) derived(op string) {
	if m != nil {
		m.DerivedRanges.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) fallback(reason string) {
	if m != nil {
		m.Fallbacks.WithLabelValues(reason).Inc()
	}
}
