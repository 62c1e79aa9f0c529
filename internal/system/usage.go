package system

import (
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Usage is a snapshot of process and host memory.
type Usage struct {
	RSSBytes        uint64
	HostTotalBytes  uint64
	HostUsedPercent float64
}

// ResourceUsage samples the current process and the host.
func ResourceUsage() (Usage, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return Usage{}, fmt.Errorf("inspect process: %w", err)
	}
	info, err := p.MemoryInfo()
	if err != nil {
		return Usage{}, fmt.Errorf("process memory: %w", err)
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return Usage{}, fmt.Errorf("host memory: %w", err)
	}
	return Usage{
		RSSBytes:        info.RSS,
		HostTotalBytes:  vm.Total,
		HostUsedPercent: vm.UsedPercent,
	}, nil
}

// MiB formats a byte count in mebibytes.
func MiB(b uint64) string {
	return fmt.Sprintf("%.1f MiB", float64(b)/(1<<20))
}
