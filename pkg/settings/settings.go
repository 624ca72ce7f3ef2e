// Package settings loads project settings from agentflow.toml.
//
// Settings tune how agents are loaded and compiled; they never change what
// a document says. Every key is optional:
//
//	output_name     = "SYSTEM_PROMPT.md"
//	reference_limit = 50000
//	max_depth       = 8
//
//	[visualize]
//	format    = "text"   # text, dot, svg or png
//	detailed  = false
//	direction = "TB"
package settings

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/agentflow/pkg/agent"
	"github.com/matzehuels/agentflow/pkg/compiler"
	"github.com/matzehuels/agentflow/pkg/errors"
)

// FileName is the settings file looked up in an agent directory.
const FileName = "agentflow.toml"

// Visualization formats.
const (
	FormatText = "text"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// Formats lists the supported visualization formats.
var Formats = []string{FormatText, FormatDOT, FormatSVG, FormatPNG}

var directions = []string{"TB", "BT", "LR", "RL"}

// Settings holds project-level options.
type Settings struct {
	OutputName     string    `toml:"output_name"`
	ReferenceLimit int64     `toml:"reference_limit"`
	MaxDepth       int       `toml:"max_depth"`
	Visualize      Visualize `toml:"visualize"`
}

// Visualize holds defaults for the visualize command.
type Visualize struct {
	Format    string `toml:"format"`
	Detailed  bool   `toml:"detailed"`
	Direction string `toml:"direction"`
}

// Default returns the settings used when no file is present.
func Default() Settings {
	return Settings{
		OutputName:     compiler.DefaultOutputName,
		ReferenceLimit: agent.DefaultReferenceLimit,
		MaxDepth:       agent.DefaultMaxDepth,
		Visualize:      Visualize{Format: FormatText, Direction: "TB"},
	}
}

// Load decodes the file at path on top of [Default]. Unknown keys and
// invalid values are reported as [errors.ErrCodeInvalidConfig].
func Load(path string) (Settings, error) {
	s := Default()
	md, err := toml.DecodeFile(path, &s)
	if stderrors.Is(err, fs.ErrNotExist) {
		return Settings{}, errors.New(errors.ErrCodeFileNotFound, "settings file %s does not exist", path)
	}
	if err != nil {
		return Settings{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Settings{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := s.Validate(); err != nil {
		return Settings{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
	}
	return s, nil
}

// Discover loads dir/agentflow.toml when it exists and returns the path it
// used. Without a file it returns [Default] and an empty path.
func Discover(dir string) (Settings, string, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return Default(), "", nil
		}
		return Settings{}, "", errors.Wrap(errors.ErrCodeInternal, err, "stat %s", path)
	}
	s, err := Load(path)
	return s, path, err
}

// Validate checks value ranges and names.
func (s Settings) Validate() error {
	if err := errors.ValidateFileName(s.OutputName); err != nil {
		return err
	}
	if s.ReferenceLimit <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "reference_limit must be positive, got %d", s.ReferenceLimit)
	}
	if s.MaxDepth <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_depth must be positive, got %d", s.MaxDepth)
	}
	if !slices.Contains(Formats, s.Visualize.Format) {
		return errors.New(errors.ErrCodeInvalidFormat, "visualize.format must be one of %s, got %q", strings.Join(Formats, ", "), s.Visualize.Format)
	}
	if !slices.Contains(directions, s.Visualize.Direction) {
		return errors.New(errors.ErrCodeInvalidConfig, "visualize.direction must be one of %s, got %q", strings.Join(directions, ", "), s.Visualize.Direction)
	}
	return nil
}

// LoadOptions returns the loader options these settings select.
func (s Settings) LoadOptions() agent.LoadOptions {
	return agent.LoadOptions{ReferenceLimit: s.ReferenceLimit, MaxDepth: s.MaxDepth}
}

// CompileOptions returns the compiler options these settings select.
func (s Settings) CompileOptions() compiler.Options {
	return compiler.Options{OutputName: s.OutputName}
}
