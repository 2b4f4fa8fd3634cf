// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

// Package templates holds the server-rendered pages of Quickboard.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"path"

	"github.com/flosch/pongo2"
)

//go:embed views/*.html
var views embed.FS

// A Collection loads templates from the embedded views directory
type Collection struct {
	fs embed.FS
}

// Abs calculates the path to a given template. Whenever a path must be resolved
// due to an import from another template, the base equals the parent template's path.
func (tc *Collection) Abs(base, name string) string {
	if base == "" {
		return name
	}
	return path.Join(path.Dir(base), name)
}

// Get returns an io.Reader where the template's content can be read from.
func (tc *Collection) Get(pth string) (io.Reader, error) {
	content, err := tc.fs.ReadFile(path.Join("views", pth))
	if err != nil {
		return nil, fmt.Errorf("unknown template %s: %w", pth, err)
	}
	return bytes.NewReader(content), nil
}

var _ pongo2.TemplateLoader = new(Collection)
