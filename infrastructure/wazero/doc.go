// Package wazero exposes host functions to scripts running in the wazero
// WebAssembly runtime.
//
// Every function of a registry becomes an export of the host module
// (default "script_host") with the signature (i64) -> i64. The argument and
// result are packed pointer/length values addressing JSON documents in guest
// memory:
//
//   - the request is read from the range the guest passed in
//   - the registry is invoked with the request bytes
//   - the reply is written to memory obtained from the guest's "allocate"
//     export and returned packed
//
// Requests that cannot be read, or exceed the configured size, are answered
// with a HostFault document rather than a trap.
//
// # Basic Usage
//
//	registry, err := hostfuncs.NewRegistry(
//	    hostfuncs.WithBundle(hostfuncs.AllBundles(services)),
//	)
//	if err != nil {
//	    return err
//	}
//
//	runtime := wazero.NewRuntime(ctx)
//	err = wzadapter.RegisterWithRuntime(ctx, runtime, registry)
package wazero
