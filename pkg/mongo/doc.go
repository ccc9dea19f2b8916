// Package mongo opens MongoDB connections for stores that prefer a document
// database over PostgreSQL. It mirrors pkg/pg in shape: env-driven Config,
// a Connect with startup retry, and a health check closure for readiness
// probes.
package mongo
