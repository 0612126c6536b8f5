// Package config locates and reads the optional YAML files that extend the
// compiled-in tables: coder.yaml, magic.yaml and policy.yaml.
//
// Files are searched in IMAGECORE_CONFIGURE_PATH (a path list) followed by
// the directory of the executable. Every file found is read; a missing file
// is not an error.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mocukie/imagecore/internal/exception"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	EnvConfigurePath = "IMAGECORE_CONFIGURE_PATH"
	EnvModulePath    = "IMAGECORE_MODULE_PATH"

	CoderFilename  = "coder.yaml"
	MagicFilename  = "magic.yaml"
	PolicyFilename = "policy.yaml"
)

type CoderEntry struct {
	Magick  string `yaml:"magick"`
	Name    string `yaml:"name"`
	Stealth bool   `yaml:"stealth"`
}

type CoderFile struct {
	Path   string       `yaml:"-"`
	Coders []CoderEntry `yaml:"coders"`
}

type MagicEntry struct {
	Name       string `yaml:"name"`
	Offset     int64  `yaml:"offset"`
	Target     string `yaml:"target"`
	SkipSpaces bool   `yaml:"skip_spaces"`
	Stealth    bool   `yaml:"stealth"`
}

// Bytes decodes Target, which uses Go string escapes such as \x89 or \n.
func (m MagicEntry) Bytes() ([]byte, error) {
	s, err := strconv.Unquote(`"` + strings.ReplaceAll(m.Target, `"`, `\"`) + `"`)
	if err != nil {
		return nil, errors.Wrapf(err, "magic %s: bad target %q", m.Name, m.Target)
	}
	return []byte(s), nil
}

type MagicFile struct {
	Path  string       `yaml:"-"`
	Magic []MagicEntry `yaml:"magic"`
}

type PolicyEntry struct {
	Domain  string `yaml:"domain"`
	Rights  string `yaml:"rights"`
	Pattern string `yaml:"pattern"`
}

type PolicyFile struct {
	Path     string        `yaml:"-"`
	Policies []PolicyEntry `yaml:"policies"`
}

type Config struct {
	SearchPaths []string
	ModulePaths []string
	Coders      []CoderFile
	Magic       []MagicFile
	Policies    []PolicyFile
}

// SearchPaths returns the configure path list for a client executable path.
// clientPath may be empty.
func SearchPaths(clientPath string) []string {
	var paths []string
	seen := map[string]bool{}
	add := func(p string) {
		if p == "" {
			return
		}
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	for _, p := range filepath.SplitList(os.Getenv(EnvConfigurePath)) {
		add(p)
	}
	if clientPath != "" {
		add(filepath.Dir(clientPath))
	}
	return paths
}

// ModulePaths returns the directories searched for dynamically loaded modules.
func ModulePaths() []string {
	var paths []string
	for _, p := range filepath.SplitList(os.Getenv(EnvModulePath)) {
		if p != "" {
			paths = append(paths, filepath.Clean(p))
		}
	}
	return paths
}

func Load(paths []string) (*Config, error) {
	cfg := &Config{SearchPaths: paths, ModulePaths: ModulePaths()}
	for _, dir := range paths {
		var cf CoderFile
		if ok, err := readFile(filepath.Join(dir, CoderFilename), &cf); err != nil {
			return nil, err
		} else if ok {
			cf.Path = filepath.Join(dir, CoderFilename)
			cfg.Coders = append(cfg.Coders, cf)
		}

		var mf MagicFile
		if ok, err := readFile(filepath.Join(dir, MagicFilename), &mf); err != nil {
			return nil, err
		} else if ok {
			mf.Path = filepath.Join(dir, MagicFilename)
			cfg.Magic = append(cfg.Magic, mf)
		}

		var pf PolicyFile
		if ok, err := readFile(filepath.Join(dir, PolicyFilename), &pf); err != nil {
			return nil, err
		} else if ok {
			pf.Path = filepath.Join(dir, PolicyFilename)
			cfg.Policies = append(cfg.Policies, pf)
		}
	}
	return cfg, nil
}

func readFile(name string, out interface{}) (bool, error) {
	data, err := os.ReadFile(name)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "read config")
	}
	if err = yaml.Unmarshal(data, out); err != nil {
		return false, errors.WithMessage(
			exception.Newf(exception.Error, exception.InvalidConfiguration, name, "%v", err),
			"parse config")
	}
	return true, nil
}
