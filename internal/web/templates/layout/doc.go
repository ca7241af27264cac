// Package layout holds the page shell shared by every host page.
package layout
