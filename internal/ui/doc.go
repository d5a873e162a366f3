// Package ui implements the terminal user interface for holagrid using
// Bubbletea. The App model owns a loader.Controller and translates its
// event stream into redraws; panes render straight from the controller's
// grid and geometry accessors.
package ui
