package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dafibh/fieldops/fieldops-backend/docs"
	"github.com/labstack/echo/v4"
	"github.com/swaggo/swag"
)

// OpenAPI3Spec is the subset of an OpenAPI 3.0 document built from the swag output
type OpenAPI3Spec struct {
	OpenAPI    string                 `json:"openapi"`
	Info       map[string]interface{} `json:"info"`
	Servers    []Server               `json:"servers"`
	Paths      map[string]interface{} `json:"paths"`
	Components map[string]interface{} `json:"components,omitempty"`
}

// Server represents an OpenAPI 3.0 server
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

var openAPIServers = []Server{
	{URL: "http://localhost:8080/api/v1", Description: "Local Development"},
	{URL: "https://api.fieldops.app/api/v1", Description: "Production"},
}

var parameterSchemaFields = []string{"type", "format", "enum", "default", "minimum", "maximum", "items"}

// convertSwagger2 rewrites definition refs to component refs and moves non-body
// parameter type information under a schema object
func convertSwagger2(node interface{}) interface{} {
	switch v := node.(type) {
	case map[string]interface{}:
		if isNonBodyParameter(v) {
			return convertParameter(v)
		}
		out := make(map[string]interface{}, len(v))
		for key, value := range v {
			if ref, ok := value.(string); ok && key == "$ref" {
				out[key] = strings.Replace(ref, "#/definitions/", "#/components/schemas/", 1)
				continue
			}
			out[key] = convertSwagger2(value)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = convertSwagger2(item)
		}
		return out
	default:
		return node
	}
}

func isNonBodyParameter(v map[string]interface{}) bool {
	_, hasIn := v["in"]
	_, hasName := v["name"]
	return hasIn && hasName && v["in"] != "body"
}

func convertParameter(param map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for _, field := range []string{"name", "in", "description", "required"} {
		if val, ok := param[field]; ok {
			out[field] = val
		}
	}

	schema := make(map[string]interface{})
	for _, field := range parameterSchemaFields {
		if val, ok := param[field]; ok {
			schema[field] = convertSwagger2(val)
		}
	}
	if len(schema) > 0 {
		out["schema"] = schema
	}
	return out
}

// ServeOpenAPI3Spec serves the registered swagger document converted to OpenAPI 3.0
func ServeOpenAPI3Spec(c echo.Context) error {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		return NewInternalError(c, "Failed to read API document")
	}

	var swagger2 map[string]interface{}
	if err := json.Unmarshal([]byte(doc), &swagger2); err != nil {
		return NewInternalError(c, "Failed to parse API document")
	}

	info, _ := swagger2["info"].(map[string]interface{})
	paths, _ := swagger2["paths"].(map[string]interface{})

	components := make(map[string]interface{})
	if secDefs, ok := swagger2["securityDefinitions"].(map[string]interface{}); ok {
		components["securitySchemes"] = secDefs
	}
	if definitions, ok := swagger2["definitions"].(map[string]interface{}); ok {
		components["schemas"] = convertSwagger2(definitions)
	}

	converted, _ := convertSwagger2(paths).(map[string]interface{})

	return c.JSON(http.StatusOK, OpenAPI3Spec{
		OpenAPI:    "3.0.3",
		Info:       info,
		Servers:    openAPIServers,
		Paths:      converted,
		Components: components,
	})
}
