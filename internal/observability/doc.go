// Package observability exposes composite model execution to Prometheus and
// OpenTelemetry.
//
// Collector implements sos.Observer and counts model simulations, convergence
// passes and timesteps. InitTracing installs the global tracer provider used
// by the spans the sos package opens around every run, model simulation and
// convergence group.
package observability
