// Package extension loads user-defined blocks from disk manifests,
// supplementing the built-in block library the way the original
// interpreter's course-specific custom blocks did. Grounded on the
// teacher's internal/block.FileLoader YAML-manifest loading pattern
// (block.laq.yaml), adapted to a blockrt-specific manifest shape, and
// gated by the same Masterminds/semver range the registry uses for its
// API compatibility check.
package extension

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/blockrt/blockrt/internal/execctx"
	"github.com/blockrt/blockrt/internal/registry"
	"github.com/blockrt/blockrt/internal/value"
	"gopkg.in/yaml.v3"
)

// Manifest is the on-disk shape of a block.yaml extension manifest.
type Manifest struct {
	Type       string            `yaml:"type"`
	Category   string            `yaml:"category"`
	APIVersion string            `yaml:"api_version"`
	Executor   string            `yaml:"executor"`
	Arguments  []ManifestArgument `yaml:"arguments"`
}

// ManifestArgument is one declared argument in a block.yaml manifest.
type ManifestArgument struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
}

// Symbols maps the executor names extension manifests reference to
// actual Go implementations, since a manifest cannot embed executable
// code — an embedder registers its available extension executors here
// before calling LoadDir, the same way the teacher's native runtime
// resolves a workflow block to a registered WorkflowEngine rather than
// executing arbitrary code from a manifest.
type Symbols map[string]registry.Executor

// LoadDir reads every block.yaml manifest directly under dir, validates
// its declared api_version against registry.SupportedAPIRange, resolves
// its executor from syms, and registers it into r.
func LoadDir(dir string, syms Symbols, r *registry.Registry) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read extension directory %q: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := loadManifest(path, syms, r); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func loadManifest(path string, syms Symbols, r *registry.Registry) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("invalid manifest: %w", err)
	}
	if m.Type == "" {
		return fmt.Errorf("manifest missing required \"type\"")
	}
	if err := registry.CheckAPIVersion(m.APIVersion); err != nil {
		return err
	}
	fn, ok := syms[m.Executor]
	if !ok {
		return fmt.Errorf("no registered executor symbol %q", m.Executor)
	}

	args := make([]registry.Argument, 0, len(m.Arguments))
	for _, a := range m.Arguments {
		args = append(args, registry.Argument{Name: a.Name, Kind: registry.ArgKind(a.Kind)})
	}

	return r.Register(registry.BlockDefinition{
		Type:      m.Type,
		Category:  m.Category,
		IsVisible: true,
		Arguments: args,
		Executor:  fn,
	})
}

// noopExecutor is a placeholder an embedder can register for a
// not-yet-implemented extension symbol during manifest development.
func noopExecutor(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	return ctx.Next(true)
}

// NoopSymbol is exported so embedders can wire "noop" into a Symbols map
// while iterating on a manifest's shape.
var NoopSymbol registry.Executor = noopExecutor
