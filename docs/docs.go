// Package docs registers the embedded OpenAPI document with swag so that
// http-swagger can serve it at /swagger/doc.json.
package docs

import (
	_ "embed"

	"github.com/swaggo/swag"
)

//go:embed openapi.json
var OpenAPI string

type openAPIDoc struct{}

func (openAPIDoc) ReadDoc() string { return OpenAPI }

func init() {
	swag.Register(swag.Name, openAPIDoc{})
}
