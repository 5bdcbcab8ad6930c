// Package ring provides a bounded single-producer single-consumer ring
// buffer used to hand commands from ingress to the matching worker and
// formatted output from the worker to the log writer.
package ring
