/*
Package observability turns instance lifecycle events into Prometheus metrics
and structured log lines.

Both are plain domain.LifecycleHooks; combine them with domain.MergeHooks and
hand the result to the engine and the session manager.
*/
package observability
