// Package ports defines interfaces for infrastructure operations.
// These ports enable dependency inversion - the SDK facade and the host
// functions depend on abstractions, and infrastructure adapters implement them.
package ports
