// Package config provides configuration structures and utilities for
// ftlexport. It defines the options controlling browser navigation, page
// selectors, report selection, and export history persistence.
package config
