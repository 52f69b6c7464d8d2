// Package templates embeds the per-target file templates.
package templates

import "embed"

//go:embed *.tmpl
var FS embed.FS
