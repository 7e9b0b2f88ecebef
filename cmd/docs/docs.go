// Package docs registers the API description served on /swagger.
// Regenerate the full document with `swag init -g cmd/koperasi_ledger/main.go -o cmd/docs`.
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
        "/client-config": {
            "get": {"tags": ["config"], "summary": "Dashboard configuration", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}
        },
        "/laporan/neraca-harian": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["laporan"], "summary": "Daily trial balance", "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Report date (YYYY-MM-DD)", "name": "tanggal", "in": "query", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid input"}, "500": {"description": "Failed to generate report"}}
            }
        },
        "/laporan/neraca-bulanan": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["laporan"], "summary": "Monthly trial balance", "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "description": "Year", "name": "tahun", "in": "query", "required": true},
                    {"type": "integer", "description": "Month (1-12)", "name": "bulan", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid input"}, "500": {"description": "Failed to generate report"}}
            }
        },
        "/laporan/neraca-tahunan": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["laporan"], "summary": "Yearly trial balance", "produces": ["application/json"],
                "parameters": [{"type": "integer", "description": "Year", "name": "tahun", "in": "query", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid input"}, "500": {"description": "Failed to generate report"}}
            }
        },
        "/laporan/shu-harian": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["laporan"], "summary": "Daily SHU series", "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "description": "Year", "name": "tahun", "in": "query", "required": true},
                    {"type": "integer", "description": "Month (1-12)", "name": "bulan", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid input"}}
            }
        },
        "/laporan/shu-awal": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["laporan"], "summary": "Post SHU awal", "consumes": ["application/json"], "produces": ["application/json"],
                "responses": {"200": {"description": "Replayed"}, "201": {"description": "Posted"}, "400": {"description": "Invalid input"}, "409": {"description": "Idempotency key reused with a different payload"}, "422": {"description": "Unknown account"}}
            }
        },
        "/laporan/snapshots": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["laporan"], "summary": "Snapshot a period", "consumes": ["application/json"], "produces": ["application/json"],
                "responses": {"201": {"description": "Saved"}, "202": {"description": "Queued"}, "400": {"description": "Invalid input"}, "409": {"description": "Ledger changed during computation"}, "503": {"description": "Background worker not configured"}}
            }
        },
        "/laporan/tutup-tahun": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["laporan"], "summary": "Close a year", "consumes": ["application/json"], "produces": ["application/json"],
                "responses": {"201": {"description": "Saved"}, "202": {"description": "Queued"}, "400": {"description": "Invalid input"}, "409": {"description": "Ledger changed during computation"}, "503": {"description": "Background worker not configured"}}
            }
        },
        "/jurnals": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["jurnals"], "summary": "List journal entries", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid input"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["jurnals"], "summary": "Create a journal entry", "consumes": ["application/json"], "produces": ["application/json"],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Invalid input or unbalanced entry"}, "422": {"description": "Unknown or header account"}}
            }
        },
        "/akuns": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["akuns"], "summary": "List accounts", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["akuns"], "summary": "Create an account", "consumes": ["application/json"], "produces": ["application/json"],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Invalid input"}, "409": {"description": "Account code already exists"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Koperasi Ledger API",
	Description:      "Double-entry ledger and period reports for a koperasi.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
