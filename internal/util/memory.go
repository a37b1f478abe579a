// Package util provides small system-resource helpers shared across the
// shell's startup path.
package util

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"
)

// LowMemoryThresholdBytes is the available-memory floor below which
// Environment startup logs a warning before scanning PATH and building
// the completion trie. It is deliberately tiny: a PATH scan never
// allocates more than a few hundred KB, so this only fires on genuinely
// starved hosts.
const LowMemoryThresholdBytes = 32 * 1024 * 1024

// MemoryInfo summarizes system memory at a point in time.
type MemoryInfo struct {
	TotalBytes     uint64
	AvailableBytes uint64
	UsedPercent    float64
}

// GetMemoryInfo reports current system memory.
func GetMemoryInfo() (*MemoryInfo, error) {
	v, err := mem.VirtualMemory()
	if err != nil {
		return nil, fmt.Errorf("get memory info: %w", err)
	}
	return &MemoryInfo{
		TotalBytes:     v.Total,
		AvailableBytes: v.Available,
		UsedPercent:    v.UsedPercent,
	}, nil
}

// CheckStartupMemory reports a warning string if available memory is
// below LowMemoryThresholdBytes. ok is false only when memory could not
// be sampled at all, in which case the caller should proceed silently —
// this check never aborts startup.
func CheckStartupMemory() (warning string, ok bool) {
	info, err := GetMemoryInfo()
	if err != nil {
		return "", false
	}
	if info.AvailableBytes < LowMemoryThresholdBytes {
		return fmt.Sprintf(
			"available memory is low (%s); PATH scan and completion indexing may be slow",
			FormatBytes(int64(info.AvailableBytes)),
		), true
	}
	return "", true
}

// FormatBytes formats a byte count as a human-readable string.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
