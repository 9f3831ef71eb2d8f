// Package docs holds the API document registered with swag. It is maintained by hand in
// the layout swag init produces; keep it in step with the handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/receivables/outstanding": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Per-project outstanding balances for completed jobs, highest first, with the grand total",
                "produces": ["application/json"],
                "tags": ["receivables"],
                "summary": "Outstanding balances",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.OutstandingReportResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        },
        "/receivables/outstanding/export": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Uploads the current report as CSV and returns a short-lived download link",
                "produces": ["application/json"],
                "tags": ["receivables"],
                "summary": "Export outstanding balances as CSV",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.ReportExportResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        },
        "/receivables/outstanding/{projectId}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["receivables"],
                "summary": "Outstanding balance for one project",
                "parameters": [
                    {"type": "string", "description": "Project ID", "name": "projectId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ProjectBalanceResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        },
        "/projects": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["projects"],
                "summary": "List projects by status",
                "parameters": [
                    {"type": "string", "default": "Completed", "description": "Project status", "name": "status", "in": "query"},
                    {"type": "boolean", "description": "Include soft-deleted projects", "name": "includeDeleted", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.ProjectResponse"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        },
        "/projects/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["projects"],
                "summary": "Get a project",
                "parameters": [
                    {"type": "string", "description": "Project ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ProjectResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        },
        "/invoices": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["invoices"],
                "summary": "List mirrored invoices",
                "parameters": [
                    {"type": "string", "description": "Only invoices linked to this project", "name": "projectId", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.InvoiceResponse"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        },
        "/invoices/sync": {
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Upserts up to 500 invoices atomically",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["invoices"],
                "summary": "Sync invoices from the accounting system",
                "parameters": [
                    {"description": "Invoices to upsert", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.SyncInvoicesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.SyncInvoicesResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        },
        "/ws": {
            "get": {
                "description": "Upgrades to a WebSocket. The first message is an outstanding.snapshot with the workspace's current grand total; invoice.synced and outstanding.refreshed follow.",
                "tags": ["websocket"],
                "summary": "Receivables event stream",
                "parameters": [
                    {"type": "string", "description": "Auth0 access token", "name": "token", "in": "query", "required": true}
                ],
                "responses": {
                    "101": {"description": "Switching Protocols"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        }
    },
    "definitions": {
        "handler.ProblemDetails": {
            "type": "object",
            "properties": {
                "type": {"type": "string"},
                "title": {"type": "string"},
                "status": {"type": "integer"},
                "detail": {"type": "string"},
                "instance": {"type": "string"},
                "errors": {"type": "array", "items": {"$ref": "#/definitions/handler.ValidationError"}}
            }
        },
        "handler.ValidationError": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "handler.ProjectBalanceResponse": {
            "type": "object",
            "properties": {
                "projectId": {"type": "string"},
                "projectName": {"type": "string"},
                "clientName": {"type": "string"},
                "financialStatus": {"type": "string"},
                "outstandingBalance": {"type": "string"},
                "source": {"type": "string"},
                "qualifyingInvoices": {"type": "integer"},
                "invoiceCount": {"type": "integer"}
            }
        },
        "handler.OutstandingReportResponse": {
            "type": "object",
            "properties": {
                "workspaceId": {"type": "integer"},
                "grandTotal": {"type": "string"},
                "projectCount": {"type": "integer"},
                "generatedAt": {"type": "string"},
                "balances": {"type": "array", "items": {"$ref": "#/definitions/handler.ProjectBalanceResponse"}}
            }
        },
        "handler.ReportExportResponse": {
            "type": "object",
            "properties": {
                "url": {"type": "string"},
                "objectPath": {"type": "string"},
                "expiresAt": {"type": "string"},
                "projectCount": {"type": "integer"},
                "grandTotal": {"type": "string"}
            }
        },
        "handler.ProjectResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "clientName": {"type": "string"},
                "status": {"type": "string"},
                "financialStatus": {"type": "string"},
                "totalProjectValue": {"type": "string"},
                "completedAt": {"type": "string"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"},
                "deletedAt": {"type": "string"}
            }
        },
        "handler.InvoiceResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "projectId": {"type": "string"},
                "invoiceNumber": {"type": "string"},
                "status": {"type": "string"},
                "amountDue": {"type": "string"},
                "total": {"type": "string"},
                "dueDate": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "handler.SyncInvoiceItem": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "projectId": {"type": "string"},
                "invoiceNumber": {"type": "string"},
                "status": {"type": "string"},
                "amountDue": {"type": "string"},
                "total": {"type": "string"},
                "dueDate": {"type": "string"}
            }
        },
        "handler.SyncInvoicesRequest": {
            "type": "object",
            "properties": {
                "invoices": {"type": "array", "items": {"$ref": "#/definitions/handler.SyncInvoiceItem"}}
            }
        },
        "handler.SyncInvoicesResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "invoices": {"type": "array", "items": {"$ref": "#/definitions/handler.InvoiceResponse"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Auth0 access token as \"Bearer <token>\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "fieldops receivables API",
	Description:      "Outstanding balances for completed field-service jobs.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
