package engine

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the counters and gauges a long-lived indexer or monitor wires up around a
// Processor, mirroring the dashboards the pack's control-plane and lake services expose for
// their own processing loops.
type Metrics struct {
	DebtPaymentsProcessed   prometheus.Counter
	DebtWriteOffsProcessed  prometheus.Counter
	DebtRecoveriesProcessed prometheus.Counter
	RewardsDistributed      prometheus.Counter
	DistributionsInitialized prometheus.Counter
	CommunityBurnRate       prometheus.Gauge
}

// NewMetrics constructs and registers a Metrics set on reg. Pass prometheus.NewRegistry() in
// tests to avoid colliding with the default global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DebtPaymentsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "revdist_debt_payments_processed_total",
			Help: "Number of PaySolanaValidatorDebt calls that succeeded.",
		}),
		DebtWriteOffsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "revdist_debt_write_offs_processed_total",
			Help: "Number of WriteOffSolanaValidatorDebt calls that succeeded.",
		}),
		DebtRecoveriesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "revdist_debt_recoveries_processed_total",
			Help: "Number of RecoverBadSolanaValidatorDebt calls that succeeded.",
		}),
		RewardsDistributed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "revdist_rewards_distributed_total",
			Help: "Number of DistributeRewards calls that succeeded.",
		}),
		DistributionsInitialized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "revdist_distributions_initialized_total",
			Help: "Number of InitializeDistribution calls that succeeded.",
		}),
		CommunityBurnRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "revdist_community_burn_rate",
			Help: "Most recently computed community burn rate, as a UnitShare32 fraction of 1e9.",
		}),
	}
	reg.MustRegister(
		m.DebtPaymentsProcessed,
		m.DebtWriteOffsProcessed,
		m.DebtRecoveriesProcessed,
		m.RewardsDistributed,
		m.DistributionsInitialized,
		m.CommunityBurnRate,
	)
	return m
}
