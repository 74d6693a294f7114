// Package manifest loads component catalogs and blueprints from HCL
// files and translates them into the engine's terms.
//
// A manifest file declares `component` blocks (the catalog: hierarchy,
// requirements, conflicts, implied defaults) and `blueprint` blocks
// (recipes: a target component, a cty payload, brought sub-recipes).
// Parsing and translation are split: the hclparse/gohcl decode produces
// format-specific schema structs, and a second pass resolves name
// references into catalog types and blueprint values.
package manifest
