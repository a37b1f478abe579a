package util

import (
	"testing"
)

func TestGetMemoryInfo(t *testing.T) {
	info, err := GetMemoryInfo()
	if err != nil {
		t.Fatalf("GetMemoryInfo failed: %v", err)
	}

	if info.TotalBytes == 0 {
		t.Error("TotalBytes should not be 0")
	}

	if info.AvailableBytes > info.TotalBytes {
		t.Error("AvailableBytes should not exceed TotalBytes")
	}
}

func TestCheckStartupMemory(t *testing.T) {
	warning, ok := CheckStartupMemory()
	if !ok {
		t.Skip("could not sample memory on this host")
	}
	info, err := GetMemoryInfo()
	if err != nil {
		t.Fatalf("GetMemoryInfo failed: %v", err)
	}
	if info.AvailableBytes < LowMemoryThresholdBytes && warning == "" {
		t.Error("expected a warning when available memory is below the threshold")
	}
	if info.AvailableBytes >= LowMemoryThresholdBytes && warning != "" {
		t.Errorf("unexpected warning with plenty of memory available: %s", warning)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0 B"},
		{100, "100 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{1073741824, "1.0 GB"},
		{1099511627776, "1.0 TB"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := FormatBytes(tt.bytes)
			if result != tt.expected {
				t.Errorf("FormatBytes(%d) = %q, want %q", tt.bytes, result, tt.expected)
			}
		})
	}
}
