// Package docs embeds the OpenAPI document served at /docs/swagger.json.
// Regenerate swagger.json with:
//
//	swag init -g cmd/server/main.go -o docs --outputTypes json
package docs

import _ "embed"

//go:embed swagger.json
var SwaggerJSON []byte
