package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external dependency tunecast relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// Gate reports external tool availability at call time. Implementations must
// be cheap enough to consult on every conversion and readiness query.
type Gate interface {
	Extractor() (string, bool)
	Transcoder() (string, bool)
}

// Checker is the PATH-backed Gate the daemon wires everywhere. Each call
// probes anew, so tools installed after startup flip readiness without a
// restart.
type Checker struct {
	ExtractorCandidates []string
	TranscoderBinary    string
}

// Extractor returns the first resolvable extractor candidate.
func (c Checker) Extractor() (string, bool) {
	return DetectExtractor(c.ExtractorCandidates)
}

// Transcoder returns the configured transcoder name and whether it resolves.
func (c Checker) Transcoder() (string, bool) {
	return strings.TrimSpace(c.TranscoderBinary), DetectTranscoder(c.TranscoderBinary)
}

// DetectExtractor walks the candidate binaries in priority order and returns
// the first one resolvable on PATH. The boolean reports whether any candidate
// was found.
func DetectExtractor(candidates []string) (string, bool) {
	for _, candidate := range candidates {
		trimmed := strings.TrimSpace(candidate)
		if trimmed == "" {
			continue
		}
		if _, err := exec.LookPath(trimmed); err == nil {
			return trimmed, true
		}
	}
	return "", false
}

// DetectTranscoder reports whether the transcoder binary is resolvable on PATH.
func DetectTranscoder(binary string) bool {
	trimmed := strings.TrimSpace(binary)
	if trimmed == "" {
		return false
	}
	_, err := exec.LookPath(trimmed)
	return err == nil
}
