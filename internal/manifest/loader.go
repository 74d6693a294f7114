package manifest

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/assemblygo/internal/component"
	"github.com/specialistvlad/assemblygo/internal/ctxlog"
	"github.com/specialistvlad/assemblygo/internal/fsutil"
)

// Model is the loaded, resolved view of a set of manifest files: the
// component catalog plus every declared blueprint in declaration order.
type Model struct {
	Catalog    *component.Hierarchy
	Blueprints []*Blueprint
	ByName     map[string]*Blueprint
}

// Loader parses manifest files into a Model.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader returns a Loader with a fresh parser.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// Load discovers every .hcl file under the given paths (files are
// accepted directly), decodes them, and translates the result into a
// resolved Model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*Model, error) {
	logger := ctxlog.FromContext(ctx)

	var components []*hclComponent
	var blueprints []*hclBlueprint
	for _, path := range paths {
		files, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("failed to discover manifest files under %s: %w", path, err)
		}
		for _, file := range files {
			parsed, err := l.parseFile(file)
			if err != nil {
				return nil, err
			}
			components = append(components, parsed.Components...)
			blueprints = append(blueprints, parsed.Blueprints...)
		}
	}
	logger.Debug("Manifest files decoded.", "components", len(components), "blueprints", len(blueprints))

	model, err := translate(components, blueprints)
	if err != nil {
		return nil, err
	}
	logger.Debug("Manifest model resolved.")
	return model, nil
}

// parseFile decodes a single manifest file into its schema structs.
func (l *Loader) parseFile(path string) (*hclFile, error) {
	hclF, diags := l.parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse manifest file %s: %w", path, diags)
	}
	var parsed hclFile
	if diags := gohcl.DecodeBody(hclF.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode manifest file %s: %w", path, diags)
	}
	return &parsed, nil
}
