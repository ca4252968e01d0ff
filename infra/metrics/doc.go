// Package metrics implements the prediction sinks: Prometheus, InfluxDB and
// the event bus collector feeding them.
package metrics
