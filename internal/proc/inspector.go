package proc

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Inspector resolves a process id to its launch command line. Lookup fails
// if the process no longer exists.
type Inspector interface {
	Cmdline(pid int) ([]string, error)
}

// TableInspector reads the process table under /proc.
type TableInspector struct{}

// NewTableInspector creates a process-table inspector.
func NewTableInspector() *TableInspector {
	return &TableInspector{}
}

// Cmdline returns the NUL-separated argument vector of pid.
func (t *TableInspector) Cmdline(pid int) ([]string, error) {
	path := filepath.Join("/proc", strconv.Itoa(pid), "cmdline")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cmdline for pid %d: %w", pid, err)
	}

	args := make([]string, 0, 4)
	for _, part := range bytes.Split(data, []byte{0}) {
		if len(part) == 0 {
			continue
		}
		args = append(args, string(part))
	}
	return args, nil
}
