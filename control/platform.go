// control/platform.go
// Author: momentics <momentics@gmail.com>
//
// Platform debug probes.

package control

import (
	"runtime"
)

// RegisterPlatformProbes sets platform debug metrics.
func RegisterPlatformProbes(dp *DebugProbes) {
	dp.RegisterProbe("platform.os", func() any {
		return runtime.GOOS
	})
	dp.RegisterProbe("platform.goroutines", func() any {
		return runtime.NumGoroutine()
	})
}
