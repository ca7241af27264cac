// Package components renders the fragments of the host page that are
// swapped independently: the login frame with its server chooser, and the
// overlay menu.
package components
