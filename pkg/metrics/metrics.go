package metrics

import (
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uber-go/tally/v4"
	promreporter "github.com/uber-go/tally/v4/prometheus"
)

// NewScope creates the service's tally root scope backed by a Prometheus
// reporter, and the handler exposing it.
func NewScope(service string) (tally.Scope, http.Handler, io.Closer) {
	registry := prometheus.NewRegistry()
	reporter := promreporter.NewReporter(promreporter.Options{Registerer: registry})

	scope, closer := tally.NewRootScope(tally.ScopeOptions{
		Prefix:         "cinelog",
		Tags:           map[string]string{"service": service},
		CachedReporter: reporter,
		Separator:      promreporter.DefaultSeparator,
	}, time.Second)

	return scope, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), closer
}
