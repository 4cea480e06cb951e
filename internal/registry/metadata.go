package registry

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/invopop/jsonschema"
	"github.com/stoewer/go-strcase"

	"github.com/blockrt/blockrt/internal/bterr"
)

// ArgumentSchema is the reflected, snake_cased argument schema exported
// for one block, shaped the way the teacher's CustomReflector
// (KeyNamer/Namer both strcase.SnakeCase) emits its workflow schema.
type ArgumentSchema struct {
	Name          string   `json:"name"`
	Kind          string   `json:"kind"`
	VariableTypes []string `json:"variable_types,omitempty"`
	Options       []string `json:"options,omitempty"`
}

// Metadata is the exported shape for a single block, combining its
// registry-level flags with a reflected argument schema and, when
// present, its Blockly-style visual definition.
type Metadata struct {
	Type         string            `json:"type"`
	Category     string            `json:"category"`
	IsVisible    bool              `json:"is_visible"`
	CanRun       bool              `json:"can_run"`
	IsPredefined bool              `json:"is_predefined"`
	Arguments    []ArgumentSchema  `json:"arguments"`
	Visual       map[string]interface{} `json:"visual,omitempty"`
}

// reflector mirrors the teacher's ast.NewCustomReflector: a jsonschema
// reflector whose key namer snake_cases property names (no type namer is
// set), so
// extension-block manifests and built-in blocks describe their
// arguments with the same naming convention the teacher uses for its
// workflow schema.
func reflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		KeyNamer: strcase.SnakeCase,
	}
}

// Schema reflects the JSON shape of a Metadata export payload, the way
// the teacher's schema command reflects its workflow DSL's ast.Workflow
// via CustomReflector — here reflecting the block metadata export shape
// instead, for an embedder that wants to validate a cached export
// against the current build's schema.
func Schema() *jsonschema.Schema {
	return reflector().Reflect(&[]Metadata{})
}

// Export builds the metadata export operation's payload: one Metadata
// entry per registered block, sorted by type for a deterministic
// snapshot-testable order. Returns *bterr.Error{Kind: MalformedDefinition}
// synchronously, per spec's External Interfaces section, the first time a
// block's visual title template references more placeholders than it
// declares arguments for.
func Export(r *Registry) ([]Metadata, error) {
	defs := r.All()
	sort.Slice(defs, func(i, j int) bool { return defs[i].Type < defs[j].Type })
	out := make([]Metadata, 0, len(defs))
	for _, d := range defs {
		m, err := exportOne(d)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func exportOne(d BlockDefinition) (Metadata, error) {
	args := make([]ArgumentSchema, 0, len(d.Arguments))
	for _, a := range d.Arguments {
		schema := ArgumentSchema{
			Name:          strcase.SnakeCase(a.Name),
			Kind:          string(a.Kind),
			VariableTypes: a.VariableTypes,
		}
		for _, opt := range a.Options {
			schema.Options = append(schema.Options, opt[0])
		}
		args = append(args, schema)
	}
	m := Metadata{
		Type:         d.Type,
		Category:     d.Category,
		IsVisible:    d.IsVisible,
		CanRun:       d.CanRun,
		IsPredefined: d.IsPredefined,
		Arguments:    args,
	}
	if !d.IsPredefined && d.Visual != nil {
		visual, err := renderVisual(d)
		if err != nil {
			return Metadata{}, err
		}
		m.Visual = visual
	}
	return m, nil
}

var placeholderPattern = regexp.MustCompile(`%\d+`)

// renderVisual ports the original interpreter's get_block_definition: a
// Blockly-shaped dict built from the title template, colour,
// previous/next statement connectors, output shape, and extensions.
// Per spec's External Interfaces section, the title's newlines split it
// into message0, message1, ... lines; each line's left-to-right %<N>
// placeholders consume the block's declared arguments in order across
// the whole template (not restarting per line), each landing in that
// line's own args{i} array. A line with more placeholders than
// remaining arguments raises MalformedDefinition.
func renderVisual(d BlockDefinition) (map[string]interface{}, error) {
	v := d.Visual
	out := map[string]interface{}{
		"colour": v.Colour,
	}

	lines := strings.Split(v.Title, "\n")
	argIdx := 0
	for i, line := range lines {
		placeholders := placeholderPattern.FindAllString(line, -1)
		lineArgs := make([]map[string]interface{}, 0, len(placeholders))
		for range placeholders {
			if argIdx >= len(d.Arguments) {
				return nil, bterr.New(bterr.MalformedDefinition,
					fmt.Sprintf("block %q title template has more placeholders than declared arguments", d.Type))
			}
			lineArgs = append(lineArgs, argJSON(d.Arguments[argIdx]))
			argIdx++
		}
		out[fmt.Sprintf("message%d", i)] = line
		if len(lineArgs) > 0 {
			out[fmt.Sprintf("args%d", i)] = lineArgs
		}
	}

	if v.HasPreviousStatement {
		out["previousStatement"] = nil
	}
	if v.HasNextStatement {
		out["nextStatement"] = nil
	}
	if v.Output != "" {
		out["output"] = v.Output
	}
	if v.OutputShape != "" {
		out["outputShape"] = v.OutputShape
	}
	if len(v.Extensions) > 0 {
		out["extensions"] = v.Extensions
	}
	return out, nil
}

func argJSON(a Argument) map[string]interface{} {
	arg := map[string]interface{}{
		"type": string(a.Kind),
		"name": strcase.SnakeCase(a.Name),
	}
	switch a.Kind {
	case ArgFieldNumber:
		if a.Min != nil {
			arg["min"] = *a.Min
		}
		if a.Max != nil {
			arg["max"] = *a.Max
		}
	case ArgFieldVariable:
		if len(a.VariableTypes) > 0 {
			arg["variableTypes"] = a.VariableTypes
		}
	case ArgFieldDropdown:
		opts := make([][2]string, len(a.Options))
		copy(opts, a.Options)
		arg["options"] = opts
	}
	return arg
}

// SupportedAPIRange is the semver constraint extension block manifests
// must satisfy to be registered, gating user-defined blocks the same
// way the teacher's workflow files gate against an engine version.
var SupportedAPIRange = mustConstraint(">= 1.0.0, < 2.0.0")

func mustConstraint(s string) *semver.Constraints {
	c, err := semver.NewConstraint(s)
	if err != nil {
		panic(err)
	}
	return c
}

// CheckAPIVersion validates a declared extension API version against
// SupportedAPIRange.
func CheckAPIVersion(declared string) error {
	v, err := semver.NewVersion(declared)
	if err != nil {
		return fmt.Errorf("invalid api_version %q: %w", declared, err)
	}
	if !SupportedAPIRange.Check(v) {
		return fmt.Errorf("api_version %s is not supported (want %s)", declared, SupportedAPIRange.String())
	}
	return nil
}
