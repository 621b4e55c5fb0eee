package deps

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	versionTimeout = 5 * time.Second
	probeWorkers   = 4
)

// Requirement names an external executable the pipeline shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	// VersionArgs, when set, are passed to Command to report its version.
	VersionArgs []string
}

// Status is the probe result for one Requirement.
type Status struct {
	Requirement
	Available bool
	Version   string
	Detail    string
}

// CheckBinaries resolves each requirement on PATH and, when VersionArgs are
// given, asks the binary for its version. Results keep the input order.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, len(requirements))
	var g errgroup.Group
	g.SetLimit(probeWorkers)
	for i, req := range requirements {
		g.Go(func() error {
			results[i] = probe(req)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func probe(req Requirement) Status {
	req.Command = strings.TrimSpace(req.Command)
	req.Description = strings.TrimSpace(req.Description)
	status := Status{Requirement: req}
	if req.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	path, err := exec.LookPath(req.Command)
	if err != nil {
		status.Detail = strconv.Quote(req.Command) + " not found on PATH"
		return status
	}
	status.Available = true
	if len(req.VersionArgs) > 0 {
		status.Version = ToolVersion(path, req.VersionArgs...)
	}
	return status
}

// Missing filters statuses down to unavailable required tools.
func Missing(statuses []Status) []Status {
	var out []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			out = append(out, s)
		}
	}
	return out
}

// ToolVersion runs binary with args and returns the first output line, or just
// the version token when the line reads "<name> version <x> ...". Failures
// yield "".
func ToolVersion(binary string, args ...string) string {
	ctx, cancel := context.WithTimeout(context.Background(), versionTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, binary, args...).Output() //nolint:gosec
	if err != nil {
		return ""
	}
	first, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	first = strings.TrimSpace(first)
	if f := strings.Fields(first); len(f) >= 3 && strings.EqualFold(f[1], "version") {
		return f[2]
	}
	return first
}
