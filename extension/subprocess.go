package extension

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/softmentor/devflow"
)

// Protocol timeouts. Discovery probes must answer quickly; build-action
// is allowed to do a little more work.
const (
	DiscoverTimeout    = 5 * time.Second
	BuildActionTimeout = 10 * time.Second
)

// buildRequest is the single JSON object written to a child's stdin for
// --build-action.
type buildRequest struct {
	Primary  string  `json:"primary"`
	Selector *string `json:"selector"`
}

// Subprocess is an extension hosted in an external binary. Each call
// spawns the binary fresh; there is no long-lived child process.
type Subprocess struct {
	name       string
	binaryPath string
	caps       []string
}

// NewSubprocess wraps a discovered extension binary with its advertised
// capabilities.
func NewSubprocess(name, binaryPath string, caps []string) *Subprocess {
	return &Subprocess{name: name, binaryPath: binaryPath, caps: caps}
}

func (s *Subprocess) Name() string           { return s.name }
func (s *Subprocess) Origin() Origin         { return OriginSubprocess }
func (s *Subprocess) Capabilities() []string { return s.caps }
func (s *Subprocess) BinaryPath() string     { return s.binaryPath }

func (s *Subprocess) CacheMounts() []Mount            { return nil }
func (s *Subprocess) EnvOverlay() map[string]string   { return nil }
func (s *Subprocess) FingerprintInputs() []string     { return nil }

// Discover probes a binary with --discover and returns the capability
// strings it advertises. The child must print a JSON array to stdout and
// exit 0 within DiscoverTimeout.
func Discover(ctx context.Context, binaryPath string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, DiscoverTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binaryPath, "--discover")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s --discover timed out after %v", devflow.ErrExtensionDiscovery, binaryPath, DiscoverTimeout)
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return nil, fmt.Errorf("%w: %s --discover: %s", devflow.ErrExtensionDiscovery, binaryPath, detail)
	}

	var caps []string
	if err := json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &caps); err != nil {
		return nil, fmt.Errorf("%w: %s --discover wrote malformed JSON: %v", devflow.ErrExtensionDiscovery, binaryPath, err)
	}
	return caps, nil
}

// BuildAction resolves a command through the subprocess protocol: one JSON
// request on stdin, one JSON response on stdout, stderr passed through.
func (s *Subprocess) BuildAction(ctx context.Context, ref devflow.CommandRef) (*Action, error) {
	req := buildRequest{Primary: string(ref.Primary)}
	if ref.Selector != "" {
		sel := ref.Selector
		req.Selector = &sel
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode build-action request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, BuildActionTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.binaryPath, "--build-action")
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Stderr = os.Stderr

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s --build-action timed out after %v", devflow.ErrProtocol, s.name, BuildActionTimeout)
		}
		return nil, fmt.Errorf("%w: %s --build-action: %v", devflow.ErrProtocol, s.name, err)
	}

	var action Action
	dec := json.NewDecoder(bytes.NewReader(bytes.TrimSpace(stdout.Bytes())))
	if err := dec.Decode(&action); err != nil {
		return nil, fmt.Errorf("%w: %s wrote malformed action JSON: %v", devflow.ErrProtocol, s.name, err)
	}
	if action.Program == "" {
		return nil, fmt.Errorf("%w: %s returned an action without a program", devflow.ErrProtocol, s.name)
	}
	return &action, nil
}
