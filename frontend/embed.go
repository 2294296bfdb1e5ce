// Package frontend embeds the static web UI served alongside the JSON API.
package frontend

import "embed"

//go:embed index.html memory.html static
var StaticFiles embed.FS
