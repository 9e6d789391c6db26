package config

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"

	"github.com/vango-dev/outlet/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "outlet.json"

	// DefaultInspectorAddr is the default inspector listen address.
	DefaultInspectorAddr = "localhost:7070"

	// DefaultManifestOutput is the default manifest export path.
	DefaultManifestOutput = "manifest.json"

	// DefaultMetricsNamespace is the default Prometheus namespace.
	DefaultMetricsNamespace = "outlet"
)

// Config represents the complete outlet.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Version is the project version.
	Version string `json:"version,omitempty"`

	// Inspector contains inspector server configuration.
	Inspector InspectorConfig `json:"inspector,omitempty"`

	// Manifest contains manifest export configuration.
	Manifest ManifestConfig `json:"manifest,omitempty"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Publish contains S3 manifest publishing configuration.
	Publish PublishConfig `json:"publish,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// InspectorConfig contains inspector server settings.
type InspectorConfig struct {
	// Addr is the listen address (default: "localhost:7070").
	Addr string `json:"addr,omitempty"`

	// Enabled controls whether the inspector is served.
	Enabled bool `json:"enabled,omitempty"`
}

// ManifestConfig contains manifest export settings.
type ManifestConfig struct {
	// Output is the manifest file path for exports.
	Output string `json:"output,omitempty"`

	// Pretty indents exported JSON for humans.
	Pretty bool `json:"pretty,omitempty"`
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "outlet").
	Namespace string `json:"namespace,omitempty"`

	// Subsystem is the metrics subsystem.
	Subsystem string `json:"subsystem,omitempty"`
}

// PublishConfig contains S3 manifest publishing settings.
type PublishConfig struct {
	// Bucket is the target S3 bucket.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is prepended to every published object key.
	Prefix string `json:"prefix,omitempty"`

	// Region is the AWS region of the bucket.
	Region string `json:"region,omitempty"`

	// Latest also publishes under a stable manifest-latest.json key.
	Latest bool `json:"latest,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Version: "0.1.0",
		Inspector: InspectorConfig{
			Addr: DefaultInspectorAddr,
		},
		Manifest: ManifestConfig{
			Output: DefaultManifestOutput,
			Pretty: true,
		},
		Metrics: MetricsConfig{
			Namespace: DefaultMetricsNamespace,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for outlet.json in the directory.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("N104").
				WithDetail("No outlet.json found in " + filepath.Dir(path)).
				WithSuggestion("Create outlet.json in the project root or pass --config")
		}
		return nil, errors.New("N080").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("N080").
			WithDetail("Failed to parse outlet.json: " + err.Error()).
			WithSuggestion("Check that outlet.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("N080").Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("N080").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Inspector.Addr == "" {
		c.Inspector.Addr = DefaultInspectorAddr
	}
	if c.Manifest.Output == "" {
		c.Manifest.Output = DefaultManifestOutput
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsNamespace
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Inspector.Addr); err != nil {
		return errors.New("N082").
			WithDetail("Inspector address " + c.Inspector.Addr + " is not a valid host:port").
			WithExample(`"inspector": {"addr": "localhost:7070"}`)
	}
	if (c.Publish.Bucket == "") != (c.Publish.Region == "") {
		return errors.New("N083").
			WithExample(`"publish": {"bucket": "my-manifests", "region": "us-east-1"}`)
	}
	return nil
}

// InspectorURL returns the full URL for the inspector server.
func (c *Config) InspectorURL() string {
	return "http://" + c.Inspector.Addr
}

// ManifestPath returns the absolute path to the manifest export file.
func (c *Config) ManifestPath() string {
	if filepath.IsAbs(c.Manifest.Output) {
		return c.Manifest.Output
	}
	return filepath.Join(c.Dir(), c.Manifest.Output)
}

// PublishEnabled reports whether S3 publishing is configured.
func (c *Config) PublishEnabled() bool {
	return c.Publish.Bucket != ""
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing outlet.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("N104").
				WithDetail("No outlet.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
