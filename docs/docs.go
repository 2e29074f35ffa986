// Package docs serves the Swagger 2.0 document for the API at /swagger/.
//
// The document is maintained by hand next to the @-annotations on the
// handlers; docs_test.go fails when a mounted route is missing from it.
// `swag init -g cmd/api/main.go` rewrites this file in the generator's layout.
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
        "/balances/counterparties": {
            "get": {
                "produces": ["application/json"],
                "tags": ["balances"],
                "summary": "Net balance per counterparty",
                "parameters": [
                    {"type": "integer", "description": "Caller user ID", "name": "X-User-ID", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.APIResponse"}}
                }
            }
        },
        "/balances/owed-by-me": {
            "get": {
                "produces": ["application/json"],
                "tags": ["balances"],
                "summary": "Total the caller owes",
                "parameters": [
                    {"type": "integer", "description": "Caller user ID", "name": "X-User-ID", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}}
                }
            }
        },
        "/balances/owed-to-me": {
            "get": {
                "produces": ["application/json"],
                "tags": ["balances"],
                "summary": "Total owed to the caller",
                "parameters": [
                    {"type": "integer", "description": "Caller user ID", "name": "X-User-ID", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}}
                }
            }
        },
        "/balances/summary": {
            "get": {
                "produces": ["application/json"],
                "tags": ["balances"],
                "summary": "Balance summary",
                "description": "Totals the caller owes and is owed across every split the caller is on",
                "parameters": [
                    {"type": "integer", "description": "Caller user ID", "name": "X-User-ID", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}}
                }
            }
        },
        "/shared-expenses": {
            "get": {
                "produces": ["application/json"],
                "tags": ["shared-expenses"],
                "summary": "List shared expenses",
                "parameters": [
                    {"type": "integer", "description": "Caller user ID", "name": "X-User-ID", "in": "header", "required": true},
                    {"type": "string", "description": "Group name substring", "name": "group", "in": "query"},
                    {"type": "boolean", "description": "Only settled (true) or open (false) splits", "name": "settled", "in": "query"},
                    {"type": "integer", "description": "Page number, starting at 1", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size (default 20, max 100)", "name": "per_page", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.APIResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["shared-expenses"],
                "summary": "Split an expense",
                "parameters": [
                    {"type": "integer", "description": "Caller user ID", "name": "X-User-ID", "in": "header", "required": true},
                    {"description": "Split request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/sharedexpense.CreateSplitRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.APIResponse"}}
                }
            }
        },
        "/shared-expenses/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["shared-expenses"],
                "summary": "Get a shared expense",
                "parameters": [
                    {"type": "integer", "description": "Caller user ID", "name": "X-User-ID", "in": "header", "required": true},
                    {"type": "integer", "description": "Shared expense ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.APIResponse"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["shared-expenses"],
                "summary": "Update a shared expense",
                "parameters": [
                    {"type": "integer", "description": "Caller user ID", "name": "X-User-ID", "in": "header", "required": true},
                    {"type": "integer", "description": "Shared expense ID", "name": "id", "in": "path", "required": true},
                    {"description": "Update request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/sharedexpense.UpdateSplitRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.APIResponse"}}
                }
            },
            "delete": {
                "tags": ["shared-expenses"],
                "summary": "Delete a shared expense",
                "parameters": [
                    {"type": "integer", "description": "Caller user ID", "name": "X-User-ID", "in": "header", "required": true},
                    {"type": "integer", "description": "Shared expense ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.APIResponse"}}
                }
            }
        },
        "/shared-expenses/{id}/events": {
            "get": {
                "produces": ["application/json"],
                "tags": ["shared-expenses"],
                "summary": "List split history",
                "parameters": [
                    {"type": "integer", "description": "Caller user ID", "name": "X-User-ID", "in": "header", "required": true},
                    {"type": "integer", "description": "Shared expense ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}}
                }
            }
        },
        "/shared-expenses/{id}/settle": {
            "post": {
                "produces": ["application/json"],
                "tags": ["shared-expenses"],
                "summary": "Settle a shared expense",
                "parameters": [
                    {"type": "integer", "description": "Caller user ID", "name": "X-User-ID", "in": "header", "required": true},
                    {"type": "integer", "description": "Shared expense ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.APIResponse"}}
                }
            }
        },
        "/shared-expenses/{id}/participants/{participantId}/dispute": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["shared-expenses"],
                "summary": "Dispute a share",
                "parameters": [
                    {"type": "integer", "description": "Caller user ID", "name": "X-User-ID", "in": "header", "required": true},
                    {"type": "integer", "description": "Shared expense ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Participant ID", "name": "participantId", "in": "path", "required": true},
                    {"description": "Dispute request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/sharedexpense.DisputeParticipantRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.APIResponse"}}
                }
            }
        },
        "/shared-expenses/{id}/participants/{participantId}/pay": {
            "post": {
                "produces": ["application/json"],
                "tags": ["shared-expenses"],
                "summary": "Mark a share as paid",
                "parameters": [
                    {"type": "integer", "description": "Caller user ID", "name": "X-User-ID", "in": "header", "required": true},
                    {"type": "integer", "description": "Shared expense ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Participant ID", "name": "participantId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.APIResponse"}}
                }
            }
        },
        "/shared-expenses/{id}/participants/{participantId}/waive": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["shared-expenses"],
                "summary": "Waive a share",
                "parameters": [
                    {"type": "integer", "description": "Caller user ID", "name": "X-User-ID", "in": "header", "required": true},
                    {"type": "integer", "description": "Shared expense ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Participant ID", "name": "participantId", "in": "path", "required": true},
                    {"description": "Waive request", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/sharedexpense.WaiveParticipantRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.APIResponse"}}
                }
            }
        }
    },
    "definitions": {
        "response.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "response.APIResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"$ref": "#/definitions/response.APIError"},
                "success": {"type": "boolean"}
            }
        },
        "sharedexpense.CreateSplitRequest": {
            "type": "object",
            "properties": {
                "description": {"type": "string"},
                "expense_id": {"type": "integer"},
                "group_name": {"type": "string"},
                "participants": {"type": "array", "items": {"$ref": "#/definitions/sharedexpense.ParticipantInput"}},
                "split_type": {"type": "string", "enum": ["EQUAL", "PERCENTAGE", "EXACT_AMOUNT", "SHARES"]},
                "total_amount": {"type": "string"}
            }
        },
        "sharedexpense.DisputeParticipantRequest": {
            "type": "object",
            "properties": {
                "reason": {"type": "string"}
            }
        },
        "sharedexpense.ParticipantInput": {
            "type": "object",
            "properties": {
                "external_email": {"type": "string"},
                "external_name": {"type": "string"},
                "notes": {"type": "string"},
                "share_amount": {"type": "string"},
                "share_percentage": {"type": "number"},
                "share_units": {"type": "integer"},
                "user_id": {"type": "integer"}
            }
        },
        "sharedexpense.UpdateSplitRequest": {
            "type": "object",
            "properties": {
                "description": {"type": "string"},
                "group_name": {"type": "string"},
                "participants": {"type": "array", "items": {"$ref": "#/definitions/sharedexpense.ParticipantInput"}},
                "split_type": {"type": "string", "enum": ["EQUAL", "PERCENTAGE", "EXACT_AMOUNT", "SHARES"]}
            }
        },
        "sharedexpense.WaiveParticipantRequest": {
            "type": "object",
            "properties": {
                "note": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Shared Expenses API",
	Description:      "Splits paid expenses among participants, tracks repayment and reports balances.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
