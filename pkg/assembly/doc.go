// Package assembly defines the node and link storage for Trestle.
// An assembly is a set of positioned balls (nodes) joined by fixed-length
// struts (links), stored in arenas keyed by stable integer handles.
package assembly
