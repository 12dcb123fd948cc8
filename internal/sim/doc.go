// Package sim drives the device fleet forward in time.
//
// An Engine owns one goroutine that fires on a fixed ticker. Each
// firing runs a single pass over the whole registry; every device rolls
// its chance-to-change and the resulting non-empty deltas are handed to
// the publisher. Passes never overlap: a pass that overruns the
// interval delays the next firing instead of spawning a second one.
//
// Stopping, whether through context cancellation or Stop, lets the
// in-flight pass finish before the goroutine exits.
package sim
