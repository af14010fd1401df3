// Package systeminfo captures a small host snapshot for report headers, so a
// report can be traced back to the machine and runtime that produced it.
package systeminfo

import (
	"fmt"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"xfid/logger"
)

type SystemInfo struct {
	Hostname      string `json:"hostname"`
	OS            string `json:"os"`
	Platform      string `json:"platform,omitempty"`
	OSVersion     string `json:"os_version,omitempty"`
	KernelVersion string `json:"kernel_version,omitempty"`
	Architecture  string `json:"architecture"`
	CPUCount      int    `json:"cpu_count"`
	TotalMemory   uint64 `json:"total_memory,omitempty"`
	GoVersion     string `json:"go_version"`
	CollectedAt   string `json:"collected_at"`
}

// Collect gathers the snapshot. Failures of individual probes are logged and
// leave their fields empty; a partial snapshot is still useful.
func Collect() *SystemInfo {
	info := &SystemInfo{
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		CPUCount:     runtime.NumCPU(),
		GoVersion:    runtime.Version(),
		CollectedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	if hostInfo, err := host.Info(); err != nil {
		logger.Debugf("Host info unavailable: %v", err)
	} else {
		info.Hostname = hostInfo.Hostname
		info.Platform = hostInfo.Platform
		info.KernelVersion = hostInfo.KernelVersion
		info.OSVersion = fmt.Sprintf("%s %s", hostInfo.Platform, hostInfo.PlatformVersion)
	}

	if vm, err := mem.VirtualMemory(); err != nil {
		logger.Debugf("Memory info unavailable: %v", err)
	} else {
		info.TotalMemory = vm.Total
	}

	return info
}
