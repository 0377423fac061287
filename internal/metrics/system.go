package metrics

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shopspring/decimal"

	"gradpredict/pkg/errors"
)

const bytesPerGB = 1024 * 1024 * 1024

// SystemUsage is the host resource snapshot reported by /metrics
type SystemUsage struct {
	CPUPercent        float64 `json:"cpu_percent"`
	MemoryPercent     float64 `json:"memory_percent"`
	MemoryAvailableGB float64 `json:"memory_available_gb"`
	DiskPercent       float64 `json:"disk_percent"`
	DiskFreeGB        float64 `json:"disk_free_gb"`
}

// Sampler reads host resource usage
type Sampler interface {
	Sample(ctx context.Context) (*SystemUsage, error)
}

// HostSampler samples CPU, memory and disk usage through gopsutil
type HostSampler struct {
	cpuInterval time.Duration
	diskPath    string
}

// NewHostSampler creates a sampler; CPU usage is measured over cpuInterval
func NewHostSampler(cpuInterval time.Duration, diskPath string) *HostSampler {
	if diskPath == "" {
		diskPath = "/"
	}
	return &HostSampler{
		cpuInterval: cpuInterval,
		diskPath:    diskPath,
	}
}

// Sample blocks for the CPU interval and returns the current usage
func (s *HostSampler) Sample(ctx context.Context) (*SystemUsage, error) {
	cpuPercents, err := cpu.PercentWithContext(ctx, s.cpuInterval, false)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sample cpu")
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sample memory")
	}

	du, err := disk.UsageWithContext(ctx, s.diskPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to sample disk usage of %s", s.diskPath)
	}

	usage := &SystemUsage{
		MemoryPercent:     Round(vm.UsedPercent, 1),
		MemoryAvailableGB: Round(float64(vm.Available)/bytesPerGB, 2),
		DiskPercent:       Round(du.UsedPercent, 1),
		DiskFreeGB:        Round(float64(du.Free)/bytesPerGB, 2),
	}
	if len(cpuPercents) > 0 {
		usage.CPUPercent = Round(cpuPercents[0], 1)
	}

	return usage, nil
}

// Round rounds x half away from zero to the given number of decimal places
func Round(x float64, places int32) float64 {
	return decimal.NewFromFloat(x).Round(places).InexactFloat64()
}
