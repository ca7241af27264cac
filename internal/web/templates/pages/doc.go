// Package pages holds full-page components.
package pages
