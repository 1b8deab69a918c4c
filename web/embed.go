// Package web holds the console's page templates and browser assets.
package web

import (
	"embed"
	"io/fs"
)

// Templates holds layouts, pages, partials and printable documents.
//
//go:embed templates/**/*.html
var Templates embed.FS

//go:embed static/**/*
var static embed.FS

// Static returns the assets rooted at static/, as served under /static/.
func Static() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
