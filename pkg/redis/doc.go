// Package redis opens go-redis clients for the role resolver cache and
// other shared-state concerns. Config is env-driven; Connect retries on
// startup and Healthcheck exposes a readiness probe.
package redis
