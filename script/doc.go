// Package script turns Go functions into runnable scripts.
//
// A script registers one entry point from its init or main function:
//
//	func main() {}
//
//	func init() {
//	    script.RegisterPassive(func(ctx context.Context, in sdk.HTTPInput, s *sdk.SDK) error {
//	        if in.Response != nil && in.Response.Code() >= 500 {
//	            s.Console.Warn("server error on " + in.Request.URL())
//	        }
//	        return nil
//	    })
//	}
//
// Built with GOOS=wasip1, the package exports run, allocate and deallocate,
// and routes every SDK call and slog record to the host. Natively, Dispatch
// runs the registered entry point against any ports.HostInvoker, which is
// how hosts run in-process scripts and how scripts are tested.
package script
