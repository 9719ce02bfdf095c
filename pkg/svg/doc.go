// Package svg classifies element names by namespace.
//
// Creating a host element requires a namespace decision per tag: SVG
// elements must be created in the SVG namespace, HTML elements in the
// XHTML one. Most names belong to exactly one namespace; a handful exist
// in both and are resolved from the surrounding context.
package svg
