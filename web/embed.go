package web

import "embed"

// Static embeds the fallback front end served when no build directory is
// configured.
//
//go:embed static
var Static embed.FS
