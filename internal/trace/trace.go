// Package trace provides tracing utilities for debugging gitpack's
// parser, indexer and delta-application internals, modelled on
// go-git's utils/trace plus its sibling internal/trace env-var reader
// folded into one package: this module has no cmd/ entrypoint to call
// ReadEnv from, so targets self-activate from the environment at
// package init instead.
package trace

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
)

var (
	logger  = newLogger()
	current atomic.Int32
)

func newLogger() *log.Logger {
	return log.New(os.Stderr, "", log.Ltime|log.Lmicroseconds|log.Lshortfile)
}

// Target is a tracing target.
type Target int32

const (
	// Parser traces the packfile parser's header (version, entry count)
	// and its completion once the trailer has been verified.
	Parser Target = 1 << iota
	// Indexer traces indexer bookkeeping: entry creation, delta
	// resolution, thin-pack base injection.
	Indexer
	// Delta traces delta application: the base and result byte counts
	// of each applied delta.
	Delta
)

// envVars maps the environment variables that enable each target,
// following go-git's GIT_TRACE_* convention but scoped to this
// module's own subsystems. Set GITPACK_TRACE_ALL=1 to enable all of
// them at once.
var envVars = map[string]Target{
	"GITPACK_TRACE_PARSER":  Parser,
	"GITPACK_TRACE_INDEXER": Indexer,
	"GITPACK_TRACE_DELTA":   Delta,
}

func init() {
	SetTarget(readEnv())
}

// readEnv computes the target bitmask from the process environment
// without mutating global state, so it can be unit tested directly.
func readEnv() Target {
	if all, _ := strconv.ParseBool(os.Getenv("GITPACK_TRACE_ALL")); all {
		var t Target
		for _, v := range envVars {
			t |= v
		}
		return t
	}

	var t Target
	for k, v := range envVars {
		if on, _ := strconv.ParseBool(os.Getenv(k)); on {
			t |= v
		}
	}
	return t
}

// ParseTargets parses a comma-separated list of target names (case
// insensitive: "parser", "indexer", "delta") into a bitmask, ignoring
// unrecognised names. Used by callers that want to enable tracing from
// a flag or config value rather than the environment.
func ParseTargets(s string) Target {
	var t Target
	for _, name := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "parser":
			t |= Parser
		case "indexer":
			t |= Indexer
		case "delta":
			t |= Delta
		}
	}
	return t
}

// SetTarget sets the tracing targets, replacing whatever the
// environment selected at init.
func SetTarget(target Target) {
	current.Store(int32(target))
}

// SetLogger replaces the logger used for tracing.
func SetLogger(l *log.Logger) {
	logger = l
}

// Print prints the given message only if the target is enabled.
func (t Target) Print(args ...any) {
	if t.Enabled() {
		logger.Output(2, fmt.Sprint(args...)) //nolint:errcheck
	}
}

// Printf prints the given message only if the target is enabled.
func (t Target) Printf(format string, args ...any) {
	if t.Enabled() {
		logger.Output(2, fmt.Sprintf(format, args...)) //nolint:errcheck
	}
}

// Enabled reports whether the target is currently enabled.
func (t Target) Enabled() bool {
	return int32(t)&current.Load() != 0
}

// GetTarget returns the currently enabled target bitmask.
func GetTarget() Target {
	return Target(current.Load())
}
