package devflow

import (
	"fmt"
	"regexp"
	"strings"
)

// Primary is a canonical command verb.
type Primary string

const (
	PrimaryFmt     Primary = "fmt"
	PrimaryLint    Primary = "lint"
	PrimaryBuild   Primary = "build"
	PrimaryTest    Primary = "test"
	PrimaryPackage Primary = "package"
	PrimaryCheck   Primary = "check"
	PrimaryRelease Primary = "release"
	PrimaryCI      Primary = "ci"
	PrimarySetup   Primary = "setup"
	PrimaryInit    Primary = "init"
)

// Primaries lists every canonical primary in display order.
var Primaries = []Primary{
	PrimaryFmt,
	PrimaryLint,
	PrimaryBuild,
	PrimaryTest,
	PrimaryPackage,
	PrimaryCheck,
	PrimaryRelease,
	PrimaryCI,
	PrimarySetup,
	PrimaryInit,
}

// CommandRef is a parsed primary:selector pair. Selector may be empty for
// primaries invoked bare (init) or before defaulting is applied.
type CommandRef struct {
	Primary  Primary
	Selector string
}

// Canonical returns the primary:selector form, or just the primary when no
// selector is set.
func (r CommandRef) Canonical() string {
	if r.Selector == "" {
		return string(r.Primary)
	}
	return string(r.Primary) + ":" + r.Selector
}

func (r CommandRef) String() string {
	return r.Canonical()
}

// aliases rewrite legacy spellings to their canonical form. Rewriting
// happens on the whole token before it is split.
var aliases = map[string]string{
	"verify":    "check",
	"smoke":     "test:smoke",
	"ci:render": "ci:generate",
}

var tokenPart = regexp.MustCompile(`^[a-z0-9-]+$`)

// ParseCommand parses a command token into a CommandRef. Input is
// lowercased, legacy aliases are rewritten, and the result is validated
// against the canonical primary and selector tables. A primary with a
// single canonical default gets it applied when the selector is omitted.
func ParseCommand(token string) (CommandRef, error) {
	token = strings.ToLower(strings.TrimSpace(token))
	if rewritten, ok := aliases[token]; ok {
		token = rewritten
	}

	name, selector, hasSelector := strings.Cut(token, ":")
	if !tokenPart.MatchString(name) {
		return CommandRef{}, fmt.Errorf("%w: %q", ErrUnknownPrimary, name)
	}

	primary := Primary(name)
	if _, ok := selectors[primary]; !ok {
		return CommandRef{}, fmt.Errorf("%w: %q", ErrUnknownPrimary, name)
	}

	if hasSelector {
		if !tokenPart.MatchString(selector) {
			return CommandRef{}, fmt.Errorf("%w: %q for %s", ErrUnknownSelector, selector, primary)
		}
	} else {
		selector = defaultSelectors[primary]
	}

	ref := CommandRef{Primary: primary, Selector: selector}
	if err := ValidateSelector(ref); err != nil {
		return CommandRef{}, err
	}
	return ref, nil
}
