// Package channel correlates commands sent to the document host with their
// responses. Each Send registers a pending entry with a deadline; the entry
// is completed exactly once by a matching response, its timeout, a transmit
// failure or channel teardown.
package channel
