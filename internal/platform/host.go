package platform

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
)

// HostSignals builds Signals for the machine this process runs on.
//
// The platform string is "<goos>/<arch> <distro>", with the kernel
// architecture preferred over GOARCH so a 32-bit build on a 64-bit OS still
// resolves to x64. The CPU model name stands in for the GPU renderer: on
// Apple silicon it reads "Apple M…", on Intel Macs "Intel(R) …".
//
// gopsutil failures are not returned. Missing host info falls back to the
// runtime values and a missing CPU model becomes a probe error.
func HostSignals(ctx context.Context) Signals {
	arch := runtime.GOARCH
	distro := ""

	info, err := host.InfoWithContext(ctx)
	if err == nil && info != nil {
		if info.KernelArch != "" {
			arch = info.KernelArch
		}
		distro = info.Platform
	}

	return Signals{
		Platform: strings.TrimSpace(fmt.Sprintf("%s/%s %s", runtime.GOOS, arch, distro)),
		Probe:    cpuModelProbe(ctx),
	}
}

// cpuModelProbe reports the first CPU's model name.
func cpuModelProbe(ctx context.Context) RendererProbe {
	return ProbeFunc(func() (string, error) {
		infos, err := cpu.InfoWithContext(ctx)
		if err != nil {
			return "", fmt.Errorf("read cpu info: %w", err)
		}
		for _, ci := range infos {
			if ci.ModelName != "" {
				return ci.ModelName, nil
			}
		}
		return "", ErrNoGraphicsContext
	})
}

// DetectHost resolves the local machine's platform.
func DetectHost(ctx context.Context) Platform {
	return Resolve(HostSignals(ctx))
}
