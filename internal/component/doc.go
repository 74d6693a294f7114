// Package component defines the component catalog: a single-rooted
// hierarchy of type tags a live system may carry, together with the
// per-type metadata the assembly engine validates against (hard
// requirements, declared conflicts, implied-construction hooks).
//
// A type is either concrete (it can be expanded onto a system) or
// abstract (it only groups concrete types for requirement and conflict
// matching, and for "is some component satisfying capability X present"
// queries). Only concrete types may be the direct target of expansion.
//
// The package also declares the Blueprint contract that domain recipes
// implement, and the narrow System view blueprints are given during
// checks and expansion. The concrete live system lives in the system
// package; the engine itself lives in the assembly package.
package component
