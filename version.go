package cardweaver

import _ "embed"

// Version is the release of the library and CLI, read from the VERSION file.
//
//go:embed VERSION
var Version string
