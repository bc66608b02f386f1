package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registered once on the default registry; exposed at GET /metrics.
var (
	CertificatesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wastecert_certificates_issued_total",
		Help: "Certificates committed by the issuer",
	})
	CertificatesRevoked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wastecert_certificates_revoked_total",
		Help: "Certificates moved to the revoked state (idempotent repeats excluded)",
	})
	IssuanceRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wastecert_issuance_rejected_total",
		Help: "Issuance attempts rejected or rolled back, by reason",
	}, []string{"reason"})
	IntegrityFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wastecert_issuance_integrity_failures_total",
		Help: "Issuances whose compensation failed and need manual reconciliation",
	})
	CodeCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wastecert_code_collisions_total",
		Help: "Validator code collisions retried by the issuer",
	})
	ValidatorLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wastecert_validator_lookups_total",
		Help: "Public validator lookups by outcome",
	}, []string{"result"})
	IssueDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wastecert_issue_duration_ms",
		Help:    "Latency of certificate issuance in milliseconds",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	})
)

// Rejection reasons used as label values.
const (
	ReasonValidation  = "validation"
	ReasonStale       = "stale"
	ReasonScope       = "scope"
	ReasonCode        = "code_generation"
	ReasonPersistence = "persistence"
	ReasonIntegrity   = "integrity"
)
