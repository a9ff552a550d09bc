// Package textutil provides filename and token sanitization for artifact
// names derived from user-supplied sources.
package textutil
