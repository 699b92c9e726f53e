// Package progress provides the event primitives, non-blocking hub, and emitter
// interfaces that the analysis pipeline uses to report job progress. The hub
// groups events per job and delivers each job's events as one ordered batch to
// pluggable sinks such as Prometheus metrics, structured logs, or the run
// history store.
package progress
