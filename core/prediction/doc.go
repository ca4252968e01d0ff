// Package prediction turns typed domain requests into model inputs, runs the
// loaded artifacts and normalises their outputs into a uniform Result.
//
// A Dispatcher is built once by Load and is read-only afterwards, so its
// operations may be called concurrently without locking. Failures never
// escape an operation: they are reported as a Result with status "error".
package prediction
