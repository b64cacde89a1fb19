package session

import (
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/videoscribe/analyzer/config"
)

// ResourceMonitor reports instantaneous CPU and memory pressure, grounded
// on the gopsutil-based hardware collectors in the agent pack repo, cut
// down to the two gauges the admission policy actually needs.
type ResourceMonitor interface {
	UnderPressure() bool
}

type gopsutilMonitor struct {
	sampleWindow time.Duration
	cpuThreshold float64
	memThreshold float64
}

func NewResourceMonitor() ResourceMonitor {
	return &gopsutilMonitor{
		sampleWindow: 100 * time.Millisecond,
		cpuThreshold: config.DefaultCPUPressurePercent,
		memThreshold: config.DefaultMemPressurePercent,
	}
}

// UnderPressure samples CPU over a 100ms window and current memory
// percent. Per §4.1's failure semantics, a read error defaults to
// allow-task (i.e. not under pressure) rather than blocking admission.
func (m *gopsutilMonitor) UnderPressure() bool {
	cpuPercents, err := cpu.Percent(m.sampleWindow, false)
	if err == nil && len(cpuPercents) > 0 && cpuPercents[0] >= m.cpuThreshold {
		return true
	}

	vm, err := mem.VirtualMemory()
	if err == nil && vm.UsedPercent >= m.memThreshold {
		return true
	}

	return false
}
