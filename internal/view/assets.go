package view

import (
	"embed"
	"io/fs"
)

//go:embed static
var static embed.FS

// Static returns the browser assets, rooted so that "carousel.js" is at the
// top level.
func Static() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
