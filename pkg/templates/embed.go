package templates

import (
	"embed"
	"io/fs"
)

//go:embed all:bundle
var bundle embed.FS

func bundleFS() fs.FS {
	sub, err := fs.Sub(bundle, "bundle")
	if err != nil {
		// The bundle directory is compiled in; this cannot fail at runtime.
		panic(err)
	}
	return sub
}
