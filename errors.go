package devflow

import (
	"errors"
	"fmt"
)

// Command resolution errors
var (
	// ErrUnknownPrimary indicates the command verb is not one of the
	// canonical primaries.
	ErrUnknownPrimary = errors.New("unknown primary")

	// ErrUnknownSelector indicates the selector is not valid for its primary.
	ErrUnknownSelector = errors.New("unknown selector")

	// ErrNoCapableExtension indicates no registered extension advertises the
	// requested command.
	ErrNoCapableExtension = errors.New("no capable extension")
)

// Execution errors
var (
	// ErrCommandFailed indicates a planned child command exited non-zero.
	ErrCommandFailed = errors.New("command failed")

	// ErrExtensionDiscovery indicates a required extension failed its
	// discovery handshake.
	ErrExtensionDiscovery = errors.New("extension discovery failed")

	// ErrProtocol indicates a subprocess extension violated the JSON
	// request/response protocol.
	ErrProtocol = errors.New("extension protocol violation")

	// ErrEngineMissing indicates the configured container engine is not
	// available on PATH.
	ErrEngineMissing = errors.New("container engine missing")

	// ErrMissingFingerprintInput indicates a configured fingerprint input
	// file does not exist.
	ErrMissingFingerprintInput = errors.New("missing fingerprint input")
)

// Configuration and workspace errors
var (
	// ErrConfig indicates devflow.toml is missing, malformed, or invalid.
	ErrConfig = errors.New("invalid configuration")

	// ErrWorkflowDrift indicates the on-disk CI workflow does not match the
	// generated one.
	ErrWorkflowDrift = errors.New("workflow drift")

	// ErrScaffoldExists indicates init would overwrite an existing file
	// without --force.
	ErrScaffoldExists = errors.New("scaffold target already exists")
)

// ConfigKind classifies configuration failures.
type ConfigKind string

const (
	ConfigMissing    ConfigKind = "missing"
	ConfigParse      ConfigKind = "parse"
	ConfigUnknownKey ConfigKind = "unknown-key"
	ConfigInvalid    ConfigKind = "invalid"
)

// ConfigError wraps a configuration failure with its location.
type ConfigError struct {
	Kind ConfigKind // Failure class
	Key  string     // Dotted key path, when known (e.g. "runtime.profile")
	Path string     // Config file path
	Err  error      // Underlying error
}

func (e *ConfigError) Error() string {
	msg := string(e.Kind)
	if e.Key != "" {
		msg += " " + e.Key
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return "config: " + msg
}

func (e *ConfigError) Unwrap() error {
	return ErrConfig
}

// DriftError carries the unified diff between the on-disk workflow and the
// expected rendering.
type DriftError struct {
	Path string // Workflow file path
	Diff string // Unified diff, on-disk vs expected
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("workflow drift in %s", e.Path)
}

func (e *DriftError) Unwrap() error {
	return ErrWorkflowDrift
}

// CommandFailedError records the canonical command and the child's exit code.
type CommandFailedError struct {
	Command string // Canonical primary:selector
	Code    int    // Child exit code
}

func (e *CommandFailedError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Command, e.Code)
}

func (e *CommandFailedError) Unwrap() error {
	return ErrCommandFailed
}

// ExitCode maps an error to the dwf process exit code. A nil error maps
// to zero. A CommandFailedError with a positive child code propagates that
// code verbatim.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var cmdErr *CommandFailedError
	if errors.As(err, &cmdErr) && cmdErr.Code > 0 {
		return cmdErr.Code
	}

	switch {
	case errors.Is(err, ErrConfig):
		return 2
	case errors.Is(err, ErrUnknownPrimary),
		errors.Is(err, ErrUnknownSelector),
		errors.Is(err, ErrNoCapableExtension):
		return 3
	case errors.Is(err, ErrExtensionDiscovery):
		return 4
	case errors.Is(err, ErrWorkflowDrift):
		return 5
	case errors.Is(err, ErrEngineMissing):
		return 6
	default:
		return 1
	}
}
