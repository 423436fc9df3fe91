package initramfs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/thediveo/enumflag/v2"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the system-wide configuration file.
const DefaultConfigPath = "/etc/rebuild-initramfs.yaml"

// FileConfig mirrors the YAML configuration file.
//
//	verbose: true            # or: verbosity: quiet|normal|verbose
//	key_path: /etc/mok/MOK.key
//	cert_path: /etc/mok/MOK.crt
//	build_fallback: false
type FileConfig struct {
	Verbose bool `yaml:"verbose"`
	// Verbosity takes precedence over Verbose when set.
	Verbosity     string `yaml:"verbosity"`
	KeyPath       string `yaml:"key_path"`
	CertPath      string `yaml:"cert_path"`
	BuildFallback bool   `yaml:"build_fallback"`
	ModulesDir    string `yaml:"modules_dir"`
	BootDir       string `yaml:"boot_dir"`
	DBPath        string `yaml:"db_path"`
}

// LoadFileConfig reads the configuration file at path.
// A missing file yields an empty configuration.
func LoadFileConfig(path string) (*FileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &FileConfig{}, nil
		}
		return nil, err
	}
	defer f.Close()

	fc, err := parseFileConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fc, nil
}

// parseFileConfig decodes YAML; unknown keys are rejected.
func parseFileConfig(r io.Reader) (*FileConfig, error) {
	fc := &FileConfig{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return fc, nil
}

// BuildConfig applies the file settings on top of the defaults.
func (fc *FileConfig) BuildConfig() (BuildConfig, error) {
	c := BuildConfig{
		Verbosity:     Normal,
		BuildFallback: fc.BuildFallback,
		SigningKey:    fc.KeyPath,
		SigningCert:   fc.CertPath,
		Paths:         DefaultPaths(),
	}

	if fc.Verbose {
		c.Verbosity = Verbose
	}
	if fc.Verbosity != "" {
		v, err := ParseVerbosity(fc.Verbosity)
		if err != nil {
			return BuildConfig{}, err
		}
		c.Verbosity = v
	}

	if fc.ModulesDir != "" {
		c.Paths.ModulesDir = fc.ModulesDir
	}
	if fc.BootDir != "" {
		c.Paths.BootDir = fc.BootDir
	}
	if fc.DBPath != "" {
		c.Paths.DBPath = fc.DBPath
	}

	return c, nil
}

// ParseVerbosity parses "quiet", "normal" or "verbose", ignoring case.
func ParseVerbosity(s string) (Verbosity, error) {
	var v Verbosity
	value := enumflag.New(&v, "verbosity", verbosityNames, enumflag.EnumCaseInsensitive)
	if err := value.Set(strings.TrimSpace(s)); err != nil {
		return Normal, fmt.Errorf("unknown verbosity: %q (available: quiet, normal, verbose)", s)
	}
	return v, nil
}
