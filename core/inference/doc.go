// Package inference evaluates pre-trained model artifacts.
//
// Artifacts are JSON envelopes of the form
//
//	{"kind": "random_forest", "params": {...}}
//
// The kind selects a decoder from a registry; the params are decoded into the
// typed model with mapstructure. Point models implement Regressor, the water
// sequence model implements SequenceRegressor. All models are immutable once
// decoded and safe for concurrent use.
package inference
