// Package orchestrator wires the assign → render sequence for the posts
// resource: it resolves records from the fixture store when the request does
// not carry them, picks a renderer, resolves the page theme and renders.
package orchestrator
