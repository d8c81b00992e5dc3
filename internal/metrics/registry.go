// Package metrics exposes Prometheus collectors for crypto operations
// and migration progress. All collectors register against a private
// registry so embedding applications keep their default registry clean.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "housler"

// Registry holds all housler-crypto collectors.
var Registry = prometheus.NewRegistry()
