package config

import (
	"fmt"
	"os"

	"github.com/softmentor/devflow"
)

func (c *Config) validate() error {
	if c.Project.Name == "" {
		return invalid("project.name", "required")
	}
	if len(c.Project.Stack) == 0 {
		return invalid("project.stack", "at least one stack required")
	}

	seen := make(map[string]bool)
	for _, stack := range c.Project.Stack {
		if !isKnownStack(stack) {
			return invalid("project.stack", "unknown stack %q (known: %v)", stack, knownStacks)
		}
		if seen[stack] {
			return invalid("project.stack", "duplicate stack %q", stack)
		}
		seen[stack] = true
	}

	switch c.Runtime.Profile {
	case "host", "container", "auto":
	default:
		return invalid("runtime.profile", "must be host, container, or auto, got %q", c.Runtime.Profile)
	}

	if c.Runtime.Profile == "container" && c.Container == nil {
		return invalid("container", "table required when runtime.profile is container")
	}
	if c.Container != nil {
		switch c.Container.Engine {
		case "docker", "podman", "auto":
		default:
			return invalid("container.engine", "must be docker, podman, or auto, got %q", c.Container.Engine)
		}
	}

	for profile, entries := range c.Targets {
		if err := validateProfileName(profile); err != nil {
			return err
		}
		for i, entry := range entries {
			if _, err := devflow.ParseCommand(entry); err != nil {
				return invalid(
					fmt.Sprintf("targets.%s[%d]", profile, i),
					"bad command %q: %v", entry, err,
				)
			}
		}
	}

	for _, stack := range c.Project.Stack {
		if stack == "custom" {
			continue
		}
		if _, ok := c.Extensions[stack]; !ok {
			return invalid("extensions."+stack, "stack %q has no extension entry", stack)
		}
	}

	for name, ext := range c.Extensions {
		key := "extensions." + name
		if !isKnownStack(name) {
			return invalid(key, "unknown stack %q", name)
		}
		switch ext.Source {
		case "builtin", "subprocess", "custom":
		case "path":
			if ext.Path == "" {
				return invalid(key+".path", "required when source is path")
			}
			if _, err := os.Stat(ext.Path); err != nil {
				return invalid(key+".path", "%q: %v", ext.Path, err)
			}
		default:
			return invalid(key+".source", "must be builtin, path, subprocess, or custom, got %q", ext.Source)
		}
		for i, cap := range ext.Capabilities {
			if err := validateCapability(cap); err != nil {
				return invalid(fmt.Sprintf("%s.capabilities[%d]", key, i), "%v", err)
			}
		}
	}

	return nil
}

func isKnownStack(name string) bool {
	for _, s := range knownStacks {
		if s == name {
			return true
		}
	}
	return false
}

func validateProfileName(name string) error {
	if name == "" {
		return invalid("targets", "empty profile name")
	}
	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return invalid("targets."+name, "profile names use lowercase letters, digits, and hyphens")
		}
	}
	return nil
}

// validateCapability checks a capability pattern: either a bare primary or
// a fully qualified primary:selector.
func validateCapability(pattern string) error {
	if _, err := devflow.ParseCommand(pattern); err != nil {
		return fmt.Errorf("bad capability %q: %w", pattern, err)
	}
	return nil
}
