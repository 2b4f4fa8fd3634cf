// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package templates

import (
	"net/http"

	"github.com/flosch/pongo2"
	"github.com/gin-gonic/gin/render"
)

// Registry is the templates set of the application
var Registry *TemplateSet

// A TemplateSet is a set of pongo2 templates
type TemplateSet struct {
	*pongo2.TemplateSet
}

// NewTemplateSet returns a pointer to a new TemplateSet reading the embedded views
func NewTemplateSet() *TemplateSet {
	return &TemplateSet{
		TemplateSet: pongo2.NewSet("quickboard", &Collection{fs: views}),
	}
}

// Instance returns the TemplateRenderer given by its name with the given data
func (ts *TemplateSet) Instance(name string, data interface{}) render.Render {
	template := pongo2.Must(ts.FromCache(name))
	ctx, _ := data.(pongo2.Context)
	return TemplateRenderer{
		Template: template,
		Data:     ctx,
	}
}

var _ render.HTMLRender = new(TemplateSet)

// A TemplateRenderer can render a template with the given data
type TemplateRenderer struct {
	Template *pongo2.Template
	Data     pongo2.Context
}

// Render this TemplateRenderer to the given ResponseWriter
func (tr TemplateRenderer) Render(w http.ResponseWriter) error {
	tr.WriteContentType(w)
	return tr.Template.ExecuteWriter(tr.Data, w)
}

// WriteContentType of this TemplateRenderer
func (tr TemplateRenderer) WriteContentType(w http.ResponseWriter) {
	header := w.Header()
	if val := header["Content-Type"]; len(val) == 0 {
		header["Content-Type"] = []string{"text/html; charset=utf-8"}
	}
}

var _ render.Render = TemplateRenderer{}

func init() {
	Registry = NewTemplateSet()
}
