// Package infra contains technical adapters such as the MQTT publisher,
// the metrics sinks and the error tracker. These packages should depend
// only on the interfaces defined in the core packages.
package infra
