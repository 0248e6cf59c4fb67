package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Astrarre/FebbGradle/schema"
	"go.uber.org/zap/zapcore"
)

// Default values for configuration.
const (
	DefaultRecordNamespace = "febb"
	DefaultLogLevel        = "info"
)

// Config holds the runtime configuration for a processing run.
// This struct remains the "final, validated" config.
type Config struct {
	ArchivePath string

	// ManifestPath is a custom manifest file. When set, no resolution happens.
	ManifestPath string

	// Versions is nil unless all three version strings were given.
	Versions *schema.VersionTriple

	Group           string
	Artifact        string
	LocalRepository string
	Repositories    []string
	ResolverCommand string

	OutputDir string // build output directory, the key of the invalidation record
	WorkDir   string // where resolved manifests are extracted
	Excludes  []string

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool
	LogLevel   zapcore.Level

	RecordBackend   schema.DatabaseBackend
	RecordDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext
}

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	ArchivePathStr string

	// --- Manifest source ---
	PlatformVersion  string   `mapstructure:"platform-version"`
	MappingBuild     string   `mapstructure:"mapping-build"`
	AbstractionBuild string   `mapstructure:"abstraction-build"`
	Manifest         string   `mapstructure:"manifest"`
	Group            string   `mapstructure:"group"`
	Artifact         string   `mapstructure:"artifact"`
	LocalRepository  string   `mapstructure:"local-repository"`
	Repositories     []string `mapstructure:"repositories"`
	ResolverCommand  string   `mapstructure:"resolver-command"`

	// --- Processing ---
	OutputDir string `mapstructure:"output-dir"`
	WorkDir   string `mapstructure:"work-dir"`
	Exclude   string `mapstructure:"exclude"`

	// --- Output ---
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Width      int    `mapstructure:"width"`
	Color      string `mapstructure:"color"`
	LogLevel   string `mapstructure:"log-level"`

	// --- Storage ---
	RecordBackend    string `mapstructure:"record-backend"`
	RecordDBConnect  string `mapstructure:"record-db-connect"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Repositories = slices.Clone(c.Repositories)
	clone.Excludes = slices.Clone(c.Excludes)
	if c.Versions != nil {
		v := *c.Versions
		clone.Versions = &v
	}
	return &clone
}

// RequireManifestSource returns a configuration error unless either a custom
// manifest or a complete version triple is configured.
func (c *Config) RequireManifestSource() error {
	if c.ManifestPath == "" && c.Versions == nil {
		return fmt.Errorf("%w: set --manifest or all of --platform-version, --mapping-build, --abstraction-build", schema.ErrConfiguration)
	}
	return nil
}

// RecordKey returns the key the invalidation record is stored under.
func (c *Config) RecordKey() string {
	return c.OutputDir
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processVersions(cfg, input); err != nil {
		return err
	}
	if err := processPaths(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.FileBackend, schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates output related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.ResolverCommand = strings.TrimSpace(input.ResolverCommand)

	colorStr := input.Color
	if colorStr == "" {
		colorStr = "yes"
	}
	colors, err := ParseBoolString(colorStr)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}

	output := input.Output
	if output == "" {
		output = string(schema.TextOut)
	}
	cfg.Output = schema.OutputMode(strings.ToLower(output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, yaml, parquet", cfg.Output)
	}

	level := input.LogLevel
	if level == "" {
		level = DefaultLogLevel
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return fmt.Errorf("invalid log level '%s': %w", input.LogLevel, err)
	}

	cfg.Excludes = nil
	for p := range strings.SplitSeq(input.Exclude, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			cfg.Excludes = append(cfg.Excludes, trimmed)
		}
	}
	return nil
}

// processVersions builds the version triple. The three values are all or
// nothing: a partial set is a configuration error unless a custom manifest
// is given, in which case the triple is never needed and is dropped.
func processVersions(cfg *Config, input *ConfigRawInput) error {
	cfg.Versions = nil
	parts := []string{input.PlatformVersion, input.MappingBuild, input.AbstractionBuild}
	given := 0
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			given++
		}
	}
	if given == 0 {
		return nil
	}
	v, err := schema.NewVersionTriple(input.PlatformVersion, input.MappingBuild, input.AbstractionBuild)
	if err != nil {
		if strings.TrimSpace(input.Manifest) != "" {
			return nil
		}
		return err
	}
	cfg.Versions = &v

	cfg.Group = strings.TrimSpace(input.Group)
	if cfg.Group == "" {
		cfg.Group = schema.DefaultGroup
	}
	cfg.Artifact = strings.TrimSpace(input.Artifact)
	if cfg.Artifact == "" {
		cfg.Artifact = schema.DefaultArtifact
	}
	return nil
}

// processPaths resolves the archive, manifest and directory paths.
func processPaths(cfg *Config, input *ConfigRawInput) error {
	if input.ArchivePathStr != "" {
		abs, err := filepath.Abs(input.ArchivePathStr)
		if err != nil {
			return err
		}
		cfg.ArchivePath = filepath.Clean(abs)
	}

	cfg.ManifestPath = ""
	if m := strings.TrimSpace(input.Manifest); m != "" {
		abs, err := filepath.Abs(m)
		if err != nil {
			return fmt.Errorf("%w: manifest path %q: %w", schema.ErrConfiguration, m, err)
		}
		cfg.ManifestPath = abs
	}

	cfg.OutputDir = strings.TrimSpace(input.OutputDir)
	if cfg.OutputDir == "" && cfg.ArchivePath != "" {
		cfg.OutputDir = filepath.Dir(cfg.ArchivePath)
	}
	if cfg.OutputDir != "" {
		abs, err := filepath.Abs(cfg.OutputDir)
		if err != nil {
			return err
		}
		cfg.OutputDir = abs
	}

	cfg.WorkDir = strings.TrimSpace(input.WorkDir)
	if cfg.WorkDir == "" && cfg.OutputDir != "" {
		cfg.WorkDir = filepath.Join(cfg.OutputDir, DefaultRecordNamespace)
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = GetWorkDirPath()
	}

	cfg.LocalRepository = strings.TrimSpace(input.LocalRepository)
	if cfg.LocalRepository == "" {
		cfg.LocalRepository = GetLocalRepositoryPath()
	}

	cfg.Repositories = nil
	for _, r := range input.Repositories {
		for part := range strings.SplitSeq(r, ",") {
			if trimmed := strings.TrimRight(strings.TrimSpace(part), "/"); trimmed != "" {
				cfg.Repositories = append(cfg.Repositories, trimmed)
			}
		}
	}
	return nil
}

// validateBackendConfigs validates record and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Record Backend Validation ---
	record := input.RecordBackend
	if record == "" {
		record = string(schema.FileBackend)
	}
	cfg.RecordBackend = schema.DatabaseBackend(strings.ToLower(record))
	if _, ok := schema.ValidRecordBackends[cfg.RecordBackend]; !ok {
		return fmt.Errorf("invalid record backend '%s'. must be file, sqlite, mysql, postgresql, none", input.RecordBackend)
	}
	cfg.RecordDBConnect = input.RecordDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RecordBackend, cfg.RecordDBConnect); err != nil {
		return err
	}

	// --- History Backend Validation ---
	history := input.HistoryBackend
	if history == "" {
		history = string(schema.NoneBackend)
	}
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(history))
	if _, ok := schema.ValidHistoryBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return err
	}

	// For SQLite, resolve to actual file paths to catch default path conflicts
	if cfg.RecordBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		recordPath := cfg.RecordDBConnect
		if recordPath == "" {
			recordPath = GetRecordDBFilePath()
		}
		historyPath := cfg.HistoryDBConnect
		if historyPath == "" {
			historyPath = GetHistoryDBFilePath()
		}
		if recordPath == historyPath {
			return fmt.Errorf("record and history storage must use different SQLite database files. Both resolve to %q", recordPath)
		}
	}
	return nil
}

// GetLocalRepositoryPath returns the default Maven local repository.
func GetLocalRepositoryPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".m2", "repository")
	}
	return filepath.Join(homeDir, ".m2", "repository")
}

// RevalidateArchive overrides the archive of an already validated config, as the
// MCP tools do per call. An empty outputDir defaults to the archive's directory.
func RevalidateArchive(cfg *Config, archivePath, outputDir string) error {
	if strings.TrimSpace(archivePath) == "" {
		return fmt.Errorf("%w: archive_path is required", schema.ErrConfiguration)
	}
	abs, err := filepath.Abs(archivePath)
	if err != nil {
		return err
	}
	cfg.ArchivePath = filepath.Clean(abs)

	out := strings.TrimSpace(outputDir)
	if out == "" {
		out = filepath.Dir(cfg.ArchivePath)
	}
	if out, err = filepath.Abs(out); err != nil {
		return err
	}
	cfg.OutputDir = out
	cfg.WorkDir = filepath.Join(out, DefaultRecordNamespace)
	return nil
}

// RevalidateManifestSource overrides the manifest source of an already
// validated config. Empty values keep what the config has; the version
// triple is still all or nothing unless a custom manifest is set.
func RevalidateManifestSource(cfg *Config, manifestPath, platform, mapping, abstraction string) error {
	if m := strings.TrimSpace(manifestPath); m != "" {
		abs, err := filepath.Abs(m)
		if err != nil {
			return fmt.Errorf("%w: manifest path %q: %w", schema.ErrConfiguration, m, err)
		}
		cfg.ManifestPath = abs
	}
	if platform == "" && mapping == "" && abstraction == "" {
		return nil
	}
	input := &ConfigRawInput{
		Manifest:         cfg.ManifestPath,
		PlatformVersion:  platform,
		MappingBuild:     mapping,
		AbstractionBuild: abstraction,
		Group:            cfg.Group,
		Artifact:         cfg.Artifact,
	}
	return processVersions(cfg, input)
}

// ProcessProfilingConfig enables profiling when a file prefix is given.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
