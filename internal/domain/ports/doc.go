// Package ports defines the worker contracts that plugin adapters must implement.
// Every capability in the registry is one of these; services depend only on the
// interfaces so tests can swap in mock workers.
package ports
