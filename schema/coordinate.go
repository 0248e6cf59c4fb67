package schema

import (
	"fmt"
	"path"
	"strings"
)

// Default coordinate parts for the abstraction manifest artifact.
const (
	DefaultGroup       = "io.github.febb"
	DefaultArtifact    = "api"
	ManifestClassifier = "dev-manifest"
	DefaultExtension   = "jar"

	// ManifestEntryName is the well-known archive entry holding the manifest.
	ManifestEntryName = "/abstractionManifest.json"
)

// Coordinate is a Maven-style dependency coordinate.
type Coordinate struct {
	Group      string
	Artifact   string
	Version    string
	Classifier string
	Extension  string // defaults to "jar"
}

// ManifestCoordinate builds the coordinate of the manifest artifact for a version triple.
func ManifestCoordinate(group, artifact string, versions VersionTriple) Coordinate {
	if group == "" {
		group = DefaultGroup
	}
	if artifact == "" {
		artifact = DefaultArtifact
	}
	return Coordinate{
		Group:      group,
		Artifact:   artifact,
		Version:    versions.ArtifactVersion(),
		Classifier: ManifestClassifier,
	}
}

// ParseCoordinate parses "group:artifact:version[:classifier][@extension]".
func ParseCoordinate(s string) (Coordinate, error) {
	var c Coordinate
	body := s
	if at := strings.LastIndex(body, "@"); at >= 0 {
		c.Extension = body[at+1:]
		body = body[:at]
	}
	parts := strings.Split(body, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return Coordinate{}, fmt.Errorf("invalid coordinate %q: expected group:artifact:version[:classifier]", s)
	}
	for _, p := range parts {
		if p == "" {
			return Coordinate{}, fmt.Errorf("invalid coordinate %q: empty component", s)
		}
	}
	c.Group, c.Artifact, c.Version = parts[0], parts[1], parts[2]
	if len(parts) == 4 {
		c.Classifier = parts[3]
	}
	return c, nil
}

// String renders the coordinate in Gradle notation.
func (c Coordinate) String() string {
	s := c.Group + ":" + c.Artifact + ":" + c.Version
	if c.Classifier != "" {
		s += ":" + c.Classifier
	}
	if c.Extension != "" && c.Extension != DefaultExtension {
		s += "@" + c.Extension
	}
	return s
}

// FileName returns "<artifact>-<version>[-<classifier>].<ext>".
func (c Coordinate) FileName() string {
	ext := c.Extension
	if ext == "" {
		ext = DefaultExtension
	}
	name := c.Artifact + "-" + c.Version
	if c.Classifier != "" {
		name += "-" + c.Classifier
	}
	return name + "." + ext
}

// Path returns the slash-separated Maven repository layout path.
func (c Coordinate) Path() string {
	return path.Join(strings.ReplaceAll(c.Group, ".", "/"), c.Artifact, c.Version, c.FileName())
}
