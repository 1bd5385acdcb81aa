// Package gamedata provides the embedded farm data: prefab catalog, scene
// layout and default settings.
package gamedata

import "embed"

// dataFS embeds all JSON files from this directory at build time.
//
//go:embed *.json
var dataFS embed.FS
