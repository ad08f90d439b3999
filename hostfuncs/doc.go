// Package hostfuncs provides pure Go implementations of the script host
// functions: console_log, requests_send, requests_in_scope and findings_create.
// These implementations have no WASM runtime dependencies; the same registry
// serves in-process scripts, wazero guests and the remote bridge.
package hostfuncs
