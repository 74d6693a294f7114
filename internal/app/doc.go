// Package app wires the application together: configuration, logger,
// manifest loading, and the assembly run. It owns no domain logic of its
// own; everything interesting happens in the manifest and assembly
// packages.
package app
