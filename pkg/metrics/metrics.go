package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultAllowed = "allowed"
	ResultDenied  = "denied"
	ResultError   = "error"
)

var (
	mu                     sync.RWMutex
	authorizationDecisions *prometheus.CounterVec
	roleMutations          *prometheus.CounterVec
)

// NewRegistry returns a private registry carrying the Go runtime and process
// collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Register creates the service counters on reg. Until it is called the
// record helpers do nothing. A nil reg is ignored.
func Register(reg *prometheus.Registry) {
	if reg == nil {
		return
	}

	decisions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "erp_authorization_decisions_total",
			Help: "Authorization decisions taken by the RBAC middleware.",
		},
		[]string{"module", "action", "result"},
	)
	mutations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "erp_role_mutations_total",
			Help: "Role writes by operation.",
		},
		[]string{"operation"},
	)
	reg.MustRegister(decisions, mutations)

	mu.Lock()
	authorizationDecisions = decisions
	roleMutations = mutations
	mu.Unlock()
}

// Reset detaches the counters so the record helpers become no-ops again.
func Reset() {
	mu.Lock()
	authorizationDecisions = nil
	roleMutations = nil
	mu.Unlock()
}

func RecordAuthorization(module, action, result string) {
	mu.RLock()
	c := authorizationDecisions
	mu.RUnlock()
	if c != nil {
		c.WithLabelValues(module, action, result).Inc()
	}
}

func RecordRoleMutation(operation string) {
	mu.RLock()
	c := roleMutations
	mu.RUnlock()
	if c != nil {
		c.WithLabelValues(operation).Inc()
	}
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
