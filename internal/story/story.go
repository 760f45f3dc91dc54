// Package story loads storyboard manifests: the ordered narrative steps and
// the chart, if any, bound to each step.
package story

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/rshade/scrollviz/internal/chart"
)

// SupportedVersions is the manifest schema range this build understands.
const SupportedVersions = "^1"

// DefaultVersion is assumed when a manifest omits its version.
const DefaultVersion = "1.0.0"

// Common storyboard errors.
var (
	ErrNoSteps            = errors.New("storyboard has no steps")
	ErrUnsupportedVersion = errors.New("unsupported storyboard version")
	ErrMissingData        = errors.New("chart has no data file")
)

// ChartSpec binds a step to a data file and a chart kind.
type ChartSpec struct {
	Kind  string `yaml:"kind"`
	Data  string `yaml:"data"`
	Title string `yaml:"title,omitempty"`
}

// Step is one narrative section. Chart is nil when the step shows no chart.
type Step struct {
	Title string     `yaml:"title,omitempty"`
	Text  string     `yaml:"text"`
	Chart *ChartSpec `yaml:"chart,omitempty"`
}

// HasChart reports whether the step is bound to a chart.
func (s Step) HasChart() bool {
	return s.Chart != nil
}

// Manifest is the YAML document.
type Manifest struct {
	Version string `yaml:"version"`
	Title   string `yaml:"title"`
	Steps   []Step `yaml:"steps"`
}

// Storyboard is a validated manifest plus where it was loaded from. Relative
// data paths resolve against Dir.
type Storyboard struct {
	Manifest

	Path string
	Dir  string
}

// Load reads and validates the manifest at path.
func Load(path string) (*Storyboard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading storyboard %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	sb, err := Parse(data, filepath.Dir(abs))
	if err != nil {
		return nil, fmt.Errorf("storyboard %s: %w", path, err)
	}
	sb.Path = abs
	return sb, nil
}

// Parse decodes and validates a manifest. dir is the base for relative data
// paths.
func Parse(data []byte, dir string) (*Storyboard, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if strings.TrimSpace(m.Version) == "" {
		m.Version = DefaultVersion
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &Storyboard{Manifest: m, Dir: dir}, nil
}

// Validate checks the schema version and every chart binding. All problems
// are reported together.
func (m *Manifest) Validate() error {
	var errs error

	if err := checkVersion(m.Version); err != nil {
		errs = multierr.Append(errs, err)
	}
	if len(m.Steps) == 0 {
		errs = multierr.Append(errs, ErrNoSteps)
	}

	for i, step := range m.Steps {
		if !step.HasChart() {
			continue
		}
		if _, err := chart.ParseKind(step.Chart.Kind); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("step %d: %w", i, err))
		}
		if strings.TrimSpace(step.Chart.Data) == "" {
			errs = multierr.Append(errs, fmt.Errorf("step %d: %w", i, ErrMissingData))
		}
	}

	return errs
}

func checkVersion(raw string) error {
	v, err := semver.NewVersion(raw)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrUnsupportedVersion, raw, err)
	}
	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return fmt.Errorf("parsing supported range: %w", err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrUnsupportedVersion, v, SupportedVersions)
	}
	return nil
}

// ChartCount returns the number of steps bound to a chart.
func (m *Manifest) ChartCount() int {
	n := 0
	for _, step := range m.Steps {
		if step.HasChart() {
			n++
		}
	}
	return n
}

// Label returns a short human label for step i.
func (m *Manifest) Label(i int) string {
	if i < 0 || i >= len(m.Steps) {
		return ""
	}
	if title := strings.TrimSpace(m.Steps[i].Title); title != "" {
		return title
	}
	return fmt.Sprintf("Step %d", i+1)
}
