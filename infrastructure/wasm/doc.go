// Package wasm connects a script compiled for wasip1 to its host.
//
// Invoker implements ports.HostInvoker on top of functions imported from the
// "script_host" module. Payloads are copied into pinned guest memory and
// handed over as packed pointer/length values (see internal/abi); the host
// writes its reply into memory obtained from the guest's allocate export.
//
// Outside wasip1 the Invoker reports errors.ErrNotSupported, so scripts can
// be unit tested natively with sdktest.MockHost instead.
package wasm
