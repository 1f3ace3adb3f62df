// Package model defines the post record rendered by the views in this module.
// A Post carries the three writable text attributes (name, title, content)
// plus the identifier and timestamps assigned by the fixture store. JSON tags
// double as template keys: the template engine converts values through their
// JSON form, so `{{ post.name }}` reads the Name field.
package model
