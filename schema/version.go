package schema

import (
	"fmt"
	"strings"
)

// VersionTriple identifies the manifest artifact to resolve. The zero value is
// not valid; use NewVersionTriple so that an incomplete triple is rejected at
// construction instead of at use.
type VersionTriple struct {
	platform    string
	mapping     string
	abstraction string
}

// NewVersionTriple validates that all three components are set.
func NewVersionTriple(platform, mapping, abstraction string) (VersionTriple, error) {
	var missing []string
	if strings.TrimSpace(platform) == "" {
		missing = append(missing, "platform-version")
	}
	if strings.TrimSpace(mapping) == "" {
		missing = append(missing, "mapping-build")
	}
	if strings.TrimSpace(abstraction) == "" {
		missing = append(missing, "abstraction-build")
	}
	if len(missing) > 0 {
		return VersionTriple{}, fmt.Errorf("%w: missing %s", ErrConfiguration, strings.Join(missing, ", "))
	}
	return VersionTriple{platform: platform, mapping: mapping, abstraction: abstraction}, nil
}

// Platform returns the platform version (e.g. "1.16.5").
func (v VersionTriple) Platform() string { return v.platform }

// Mapping returns the mapping build number.
func (v VersionTriple) Mapping() string { return v.mapping }

// Abstraction returns the abstraction build number.
func (v VersionTriple) Abstraction() string { return v.abstraction }

// IsZero reports whether the triple was never constructed.
func (v VersionTriple) IsZero() bool { return v == VersionTriple{} }

// Equal compares all three components by string equality.
func (v VersionTriple) Equal(other VersionTriple) bool { return v == other }

// ArtifactVersion renders the dependency version, "<platform>+<mapping>-<abstraction>".
func (v VersionTriple) ArtifactVersion() string {
	return fmt.Sprintf("%s+%s-%s", v.platform, v.mapping, v.abstraction)
}

// String implements fmt.Stringer.
func (v VersionTriple) String() string {
	if v.IsZero() {
		return "<unset>"
	}
	return v.ArtifactVersion()
}
