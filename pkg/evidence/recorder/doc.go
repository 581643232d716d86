// Package recorder provides asynchronous evidence recording for
// decision tree evaluations.
//
// The Recorder receives evaluation outcomes from the tree manager and
// writes them to an evidence storage backend through a buffered
// channel, so evaluation latency is never coupled to storage latency.
// Sensitive answer values can be redacted by name before storage while
// a hash of the unredacted answers is retained for integrity checks.
//
// Records that cannot be enqueued within the configured write timeout
// are dropped with an error log rather than blocking the caller. On
// Close the recorder drains all pending records before returning.
package recorder
