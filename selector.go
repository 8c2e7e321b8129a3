package devflow

import "fmt"

// selectors maps each primary to its closed selector set. A nil set marks a
// free-form selector: check takes any profile name and init takes its
// template name, given as a selector or as an argument.
var selectors = map[Primary][]string{
	PrimaryFmt:     {"check", "fix"},
	PrimaryLint:    {"static"},
	PrimaryBuild:   {"debug", "release"},
	PrimaryTest:    {"unit", "integration", "smoke"},
	PrimaryPackage: {"artifact"},
	PrimaryCheck:   nil,
	PrimaryRelease: {"candidate"},
	PrimaryCI:      {"generate", "check", "plan", "status"},
	PrimarySetup:   {"doctor", "deps", "toolchain"},
	PrimaryInit:    nil,
}

// defaultSelectors maps primaries with exactly one canonical default. ci
// and init are absent: ci requires an explicit selector, and bare init
// leaves the template to marker-file detection.
var defaultSelectors = map[Primary]string{
	PrimaryFmt:     "check",
	PrimaryLint:    "static",
	PrimaryBuild:   "debug",
	PrimaryTest:    "unit",
	PrimaryPackage: "artifact",
	PrimaryCheck:   "pr",
	PrimaryRelease: "candidate",
	PrimarySetup:   "doctor",
}

// Selectors returns the closed selector set for a primary, or nil when the
// primary takes a free-form selector.
func Selectors(p Primary) []string {
	return selectors[p]
}

// KnownPrimary reports whether p is one of the canonical primaries.
func KnownPrimary(p Primary) bool {
	_, ok := selectors[p]
	return ok
}

// DefaultSelector returns the canonical default selector for a primary and
// whether one exists.
func DefaultSelector(p Primary) (string, bool) {
	s, ok := defaultSelectors[p]
	return s, ok
}

// ValidateSelector checks a CommandRef against the selector tables. An
// empty selector is only valid for init; ci requires one of its selectors
// explicitly.
func ValidateSelector(ref CommandRef) error {
	set, ok := selectors[ref.Primary]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPrimary, ref.Primary)
	}

	if ref.Selector == "" {
		if ref.Primary == PrimaryInit {
			return nil
		}
		return fmt.Errorf("%w: %s requires a selector", ErrUnknownSelector, ref.Primary)
	}

	if set == nil {
		// Free-form selectors are grammar-checked by the parser; profile
		// existence is validated against config at plan time.
		return nil
	}

	for _, s := range set {
		if s == ref.Selector {
			return nil
		}
	}
	return fmt.Errorf("%w: %q for %s", ErrUnknownSelector, ref.Selector, ref.Primary)
}
