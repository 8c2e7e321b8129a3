package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/softmentor/devflow"
)

// DefaultPath is the policy file name looked up in the repository root.
const DefaultPath = "devflow.toml"

// Stack names the loader accepts in project.stack.
var knownStacks = []string{"rust", "node", "tsc", "python", "custom"}

// Reserved target profile names, in their fixed plan order.
var ReservedProfiles = []string{"pr", "main", "release"}

// Config is the deserialized policy. It is immutable after Load.
type Config struct {
	Project    Project              `toml:"project"`
	Runtime    Runtime              `toml:"runtime"`
	Container  *Container           `toml:"container"`
	Targets    map[string][]string  `toml:"targets"`
	Extensions map[string]Extension `toml:"extensions"`

	// Path is the file the config was loaded from. Not part of the schema.
	Path string `toml:"-"`
}

// Project identifies the repository and its ordered stack list.
type Project struct {
	Name  string   `toml:"name"`
	Stack []string `toml:"stack"`
}

// Runtime selects where resolved commands run.
type Runtime struct {
	Profile string `toml:"profile"` // host | container | auto
}

// Container configures the container runtime. Required when
// runtime.profile is container; when auto resolves to container without
// it, the engine is auto-selected and the image reference is derived.
type Container struct {
	Image  string `toml:"image"`
	Engine string `toml:"engine"` // docker | podman | auto
}

// Extension declares how a stack's extension is sourced.
type Extension struct {
	Source       string   `toml:"source"` // builtin | path | subprocess | custom
	Path         string   `toml:"path"`
	Required     bool     `toml:"required"`
	Capabilities []string `toml:"capabilities"`
}

// Load reads and validates the policy file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &devflow.ConfigError{Kind: devflow.ConfigMissing, Path: path, Err: err}
		}
		return nil, &devflow.ConfigError{Kind: devflow.ConfigParse, Path: path, Err: err}
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		var cfgErr *devflow.ConfigError
		if errors.As(err, &cfgErr) {
			cfgErr.Path = path
		}
		return nil, err
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes and validates a policy document from r. The decode is
// strict: unknown keys at any level fail the load.
func Parse(r io.Reader) (*Config, error) {
	var cfg Config
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&cfg); err != nil {
		var strictErr *toml.StrictMissingError
		if errors.As(err, &strictErr) {
			key := ""
			if len(strictErr.Errors) > 0 {
				key = strings.Join(strictErr.Errors[0].Key(), ".")
			}
			return nil, &devflow.ConfigError{Kind: devflow.ConfigUnknownKey, Key: key, Err: errors.New("key not in schema")}
		}
		var decErr *toml.DecodeError
		if errors.As(err, &decErr) {
			return nil, &devflow.ConfigError{Kind: devflow.ConfigParse, Key: strings.Join(decErr.Key(), "."), Err: err}
		}
		return nil, &devflow.ConfigError{Kind: devflow.ConfigParse, Err: err}
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Runtime.Profile == "" {
		c.Runtime.Profile = "auto"
	}
	if c.Container != nil && c.Container.Engine == "" {
		c.Container.Engine = "auto"
	}
}

// HasStack reports whether name appears in project.stack.
func (c *Config) HasStack(name string) bool {
	for _, s := range c.Project.Stack {
		if s == name {
			return true
		}
	}
	return false
}

// Profiles returns the names of every defined target profile, reserved
// names first in their fixed order, then the rest lexicographically.
func (c *Config) Profiles() []string {
	var names []string
	for _, r := range ReservedProfiles {
		if _, ok := c.Targets[r]; ok {
			names = append(names, r)
		}
	}
	var custom []string
	for name := range c.Targets {
		if !isReservedProfile(name) {
			custom = append(custom, name)
		}
	}
	sort.Strings(custom)
	return append(names, custom...)
}

func isReservedProfile(name string) bool {
	for _, r := range ReservedProfiles {
		if name == r {
			return true
		}
	}
	return false
}

func invalid(key, format string, args ...any) *devflow.ConfigError {
	return &devflow.ConfigError{
		Kind: devflow.ConfigInvalid,
		Key:  key,
		Err:  fmt.Errorf(format, args...),
	}
}
