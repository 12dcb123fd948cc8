package bootstrap

import (
	"fmt"
	"os"
)

// File permissions for the status file.
const statusFileMode = 0o644

// StatusFile exposes process lifecycle through a plain file so
// container probes can check it with a grep. Liveness looks for
// "healthy"; readiness looks for "ready".
type StatusFile struct {
	path string
}

// NewStatusFile creates a status file handle. The file itself is
// created on first write.
func NewStatusFile(path string) *StatusFile {
	return &StatusFile{path: path}
}

// MarkHealthy truncate-writes "healthy": the process is alive but not
// (or no longer) connected to the broker. Called at startup and on
// every disconnect, which also clears stale "ready" lines.
func (s *StatusFile) MarkHealthy() error {
	if err := os.WriteFile(s.path, []byte("healthy\n"), statusFileMode); err != nil {
		return fmt.Errorf("writing status file: %w", err)
	}
	return nil
}

// MarkReady appends "ready": the broker connection is up. Append keeps
// the "healthy" line intact for the liveness probe.
func (s *StatusFile) MarkReady() error {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, statusFileMode)
	if err != nil {
		return fmt.Errorf("opening status file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write([]byte("ready\n")); err != nil {
		return fmt.Errorf("writing status file: %w", err)
	}
	return nil
}

// Path returns the file location, for logging.
func (s *StatusFile) Path() string {
	return s.path
}
