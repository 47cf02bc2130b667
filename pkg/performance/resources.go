// Package performance reports the resources a wordsmith run consumed and
// captures pprof profiles around it.
package performance

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// ResourceMonitor monitors the resources of the current process
type ResourceMonitor struct {
	process      *process.Process
	startCPUTime float64
	startTime    time.Time
	mu           sync.RWMutex
}

// NewResourceMonitor creates a resource monitor. CPU usage is measured from
// this call onwards.
func NewResourceMonitor() (*ResourceMonitor, error) {
	proc, err := process.NewProcess(int32(os.Getpid())) //nolint:gosec // pids fit in int32
	if err != nil {
		return nil, fmt.Errorf("failed to inspect process: %w", err)
	}
	rm := &ResourceMonitor{
		process:   proc,
		startTime: time.Now(),
	}
	if cpuTime, err := proc.Times(); err == nil {
		rm.startCPUTime = cpuTime.Total()
	}
	return rm, nil
}

// Usage returns current resource usage. Fields that cannot be read on this
// platform are left zero.
func (rm *ResourceMonitor) Usage() *ResourceUsage {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	usage := &ResourceUsage{
		Goroutines: runtime.NumGoroutine(),
	}

	// CPU usage
	if cpuTime, err := rm.process.Times(); err == nil {
		if elapsed := time.Since(rm.startTime).Seconds(); elapsed > 0 {
			usage.CPUPercent = ((cpuTime.Total() - rm.startCPUTime) / elapsed) * 100
		}
	}
	if n, err := cpu.Counts(true); err == nil {
		usage.LogicalCPUs = n
	}

	// Memory usage
	if memInfo, err := rm.process.MemoryInfo(); err == nil {
		usage.MemoryRSS = memInfo.RSS
		usage.MemoryVMS = memInfo.VMS
	}

	// System memory
	if vmStat, err := mem.VirtualMemory(); err == nil {
		usage.SystemMemoryPercent = vmStat.UsedPercent
		usage.SystemMemoryAvailable = vmStat.Available
		usage.SystemMemoryTotal = vmStat.Total
	}

	usage.Threads, _ = rm.process.NumThreads()
	return usage
}

// ResourceUsage contains resource usage information
type ResourceUsage struct {
	CPUPercent            float64 `json:"cpu_percent"`
	LogicalCPUs           int     `json:"logical_cpus"`
	MemoryRSS             uint64  `json:"memory_rss"`
	MemoryVMS             uint64  `json:"memory_vms"`
	SystemMemoryPercent   float64 `json:"system_memory_percent"`
	SystemMemoryAvailable uint64  `json:"system_memory_available"`
	SystemMemoryTotal     uint64  `json:"system_memory_total"`
	Goroutines            int     `json:"goroutines"`
	Threads               int32   `json:"threads"`
}

// CeilingHeadroom reports how far below ceiling the current RSS sits, as a
// fraction of the ceiling. It is negative once the ceiling is exceeded and
// 1 when ceiling is 0 (no watchdog).
func (u *ResourceUsage) CeilingHeadroom(ceiling uint64) float64 {
	if ceiling == 0 {
		return 1
	}
	return (float64(ceiling) - float64(u.MemoryRSS)) / float64(ceiling)
}
