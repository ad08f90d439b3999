// Package host is the reference host for scripts.
//
// Executor runs scripts compiled to wasip1 on wazero and exports the host
// function registry to them as the "script_host" import module. Runtime runs
// Go scripts in process against the same registry. Services wires the
// registry from a Config: scope rules loaded from a YAML scope file, the
// findings store, the console sink and the outbound request options.
package host
