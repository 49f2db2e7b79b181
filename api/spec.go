// Пакет api — OpenAPI-контракт verisure, встроенный в бинарник.
// Используется middleware валидации запросов.
package api

import _ "embed"

//go:generate go run github.com/oapi-codegen/oapi-codegen/v2/cmd/oapi-codegen@v2.5.0 -config oapi-codegen.yaml openapi.yaml

// OpenAPISpec — исходный YAML контракта.
//
//go:embed openapi.yaml
var OpenAPISpec []byte
