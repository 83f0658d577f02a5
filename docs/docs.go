// Package docs holds the OpenAPI document served under /swagger/. Keep it in
// step with the handler annotations; `swag init` regenerates it.
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
        "/health": {
            "get": {
                "description": "Reports the cache backend, whether it is reachable, and the state of the HubSpot circuit breakers",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "health"
                ],
                "summary": "Service health",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.healthResponse"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/handlers.healthResponse"
                        }
                    }
                }
            }
        },
        "/integrations/hubspot/authorize": {
            "post": {
                "description": "Stores a pending state for the user and returns the HubSpot consent URL",
                "consumes": [
                    "application/x-www-form-urlencoded"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "hubspot"
                ],
                "summary": "Start a HubSpot authorization",
                "parameters": [
                    {
                        "type": "string",
                        "description": "User ID",
                        "name": "user_id",
                        "in": "formData",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Organization ID",
                        "name": "org_id",
                        "in": "formData",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Authorization URL",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "400": {
                        "description": "Invalid identity",
                        "schema": {
                            "$ref": "#/definitions/handlers.errorResponse"
                        }
                    },
                    "429": {
                        "description": "Rate limit exceeded",
                        "schema": {
                            "$ref": "#/definitions/handlers.errorResponse"
                        }
                    },
                    "503": {
                        "description": "Cache unavailable",
                        "schema": {
                            "$ref": "#/definitions/handlers.errorResponse"
                        }
                    }
                }
            }
        },
        "/integrations/hubspot/credentials": {
            "post": {
                "description": "Returns and deletes the token response saved by the callback",
                "consumes": [
                    "application/x-www-form-urlencoded"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "hubspot"
                ],
                "summary": "Collect stored credentials",
                "parameters": [
                    {
                        "type": "string",
                        "description": "User ID",
                        "name": "user_id",
                        "in": "formData",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Organization ID",
                        "name": "org_id",
                        "in": "formData",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "HubSpot token response",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "400": {
                        "description": "No credentials found",
                        "schema": {
                            "$ref": "#/definitions/handlers.errorResponse"
                        }
                    },
                    "503": {
                        "description": "Cache unavailable",
                        "schema": {
                            "$ref": "#/definitions/handlers.errorResponse"
                        }
                    }
                }
            }
        },
        "/integrations/hubspot/load": {
            "post": {
                "description": "Lists the account's contacts followed by its companies",
                "consumes": [
                    "application/x-www-form-urlencoded"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "hubspot"
                ],
                "summary": "Load contacts and companies",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Credential JSON returned by the credentials endpoint",
                        "name": "credentials",
                        "in": "formData",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/models.Item"
                            }
                        }
                    },
                    "400": {
                        "description": "Invalid credentials",
                        "schema": {
                            "$ref": "#/definitions/handlers.errorResponse"
                        }
                    },
                    "503": {
                        "description": "HubSpot unavailable",
                        "schema": {
                            "$ref": "#/definitions/handlers.errorResponse"
                        }
                    }
                }
            }
        },
        "/integrations/hubspot/oauth2callback": {
            "get": {
                "description": "Verifies the state, exchanges the code and stores the credentials, then closes the popup",
                "produces": [
                    "text/html"
                ],
                "tags": [
                    "hubspot"
                ],
                "summary": "HubSpot OAuth redirect target",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Authorization code",
                        "name": "code",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "State issued by authorize",
                        "name": "state",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Error reported by HubSpot",
                        "name": "error",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Error description reported by HubSpot",
                        "name": "error_description",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Page that closes the popup",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "400": {
                        "description": "State mismatch or provider error",
                        "schema": {
                            "$ref": "#/definitions/handlers.errorResponse"
                        }
                    },
                    "503": {
                        "description": "HubSpot or cache unavailable",
                        "schema": {
                            "$ref": "#/definitions/handlers.errorResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "circuitbreaker.Stats": {
            "type": "object",
            "properties": {
                "failures": {
                    "type": "integer"
                },
                "name": {
                    "type": "string"
                },
                "state": {
                    "type": "string"
                },
                "successes": {
                    "type": "integer"
                }
            }
        },
        "handlers.errorResponse": {
            "type": "object",
            "properties": {
                "detail": {
                    "type": "string"
                }
            }
        },
        "handlers.healthResponse": {
            "type": "object",
            "properties": {
                "breakers": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/circuitbreaker.Stats"
                    }
                },
                "cache": {
                    "type": "string"
                },
                "error": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                }
            }
        },
        "models.Item": {
            "type": "object",
            "properties": {
                "creation_time": {
                    "type": "string"
                },
                "id": {
                    "type": "string"
                },
                "last_modified_time": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "parent_id": {
                    "type": "string"
                },
                "parent_path_or_name": {
                    "type": "string"
                },
                "type": {
                    "$ref": "#/definitions/models.ItemType"
                },
                "url": {
                    "type": "string"
                }
            }
        },
        "models.ItemType": {
            "type": "string",
            "enum": [
                "Contact",
                "Company"
            ],
            "x-enum-varnames": [
                "ItemTypeContact",
                "ItemTypeCompany"
            ]
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "HubSpot Connector API",
	Description:      "OAuth2 authorization against HubSpot and listing of CRM contacts and companies.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
