package manifest

import "github.com/zclconf/go-cty/cty"

// hclFile is the top-level structure of a manifest file for decoding.
type hclFile struct {
	Components []*hclComponent `hcl:"component,block"`
	Blueprints []*hclBlueprint `hcl:"blueprint,block"`
}

// hclComponent is the decoded form of a `component` block.
type hclComponent struct {
	Name     string `hcl:"name,label"`
	Parent   string `hcl:"parent,optional"`
	Abstract bool   `hcl:"abstract,optional"`

	Requires  []*hclRequirement `hcl:"requires,block"`
	Conflicts []string          `hcl:"conflicts,optional"`

	// ImpliedDefaults, when set, registers an implied constructor for
	// the component producing a blueprint with this payload.
	ImpliedDefaults cty.Value `hcl:"implied_defaults,optional"`
}

// hclRequirement is the decoded form of a `requires` block.
type hclRequirement struct {
	Component string `hcl:"component"`
	Reason    string `hcl:"reason,optional"`
}

// hclBlueprint is the decoded form of a `blueprint` block.
type hclBlueprint struct {
	Name      string `hcl:"name,label"`
	Component string `hcl:"component"`

	Payload cty.Value `hcl:"payload,optional"`

	// Brings names components brought by implication; Embeds names
	// blueprints (declared in any loaded file) brought literally.
	Brings []string `hcl:"brings,optional"`
	Embeds []string `hcl:"embeds,optional"`

	// Requires lists extra blueprint-level required components.
	Requires []string `hcl:"requires,optional"`
}
