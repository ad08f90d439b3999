//go:build wasip1

package wasm

import "github.com/proxyscript/script-sdk/go/domain/entities"

// HostModule is the import module every host function lives in.
const HostModule = "script_host"

//go:wasmimport script_host console_log
func hostConsoleLog(requestPacked uint64) uint64

//go:wasmimport script_host requests_send
func hostRequestsSend(requestPacked uint64) uint64

//go:wasmimport script_host requests_in_scope
func hostRequestsInScope(requestPacked uint64) uint64

//go:wasmimport script_host findings_create
func hostFindingsCreate(requestPacked uint64) uint64

var imports = map[string]func(uint64) uint64{
	entities.FuncConsoleLog:     hostConsoleLog,
	entities.FuncRequestsSend:   hostRequestsSend,
	entities.FuncRequestsScope:  hostRequestsInScope,
	entities.FuncFindingsCreate: hostFindingsCreate,
}
