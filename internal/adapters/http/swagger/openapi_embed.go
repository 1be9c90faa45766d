package swagger

import _ "embed"

// OpenAPI contains the embedded OpenAPI YAML document of the standings API.
//
//go:embed openapi.yaml
var OpenAPI []byte
