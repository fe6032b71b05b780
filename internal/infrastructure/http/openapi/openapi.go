// Package openapi embeds the OpenAPI document and the Swagger UI page.
package openapi

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed openapi.json
var document []byte

// Document returns the OpenAPI document with its server URL set to prefix
// and its version set to version
func Document(prefix, version string) ([]byte, error) {
	var doc map[string]any
	if err := json.Unmarshal(document, &doc); err != nil {
		return nil, fmt.Errorf("invalid embedded openapi document: %w", err)
	}
	doc["servers"] = []map[string]string{{"url": prefix}}
	if info, ok := doc["info"].(map[string]any); ok && version != "" {
		info["version"] = version
	}
	return json.Marshal(doc)
}

// DocsHTML renders a Swagger UI page loading the document from specURL
func DocsHTML(specURL string) []byte {
	return []byte(fmt.Sprintf(`<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Products API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: %q,
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`, specURL))
}
