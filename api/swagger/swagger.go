package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Student Portal",
        "description": "Server-rendered student roster portal in front of the student REST backend",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Provider sign-in round trip and sign-out"},
        {"name": "Students", "description": "Roster views, edits and exports (session required)"},
        {"name": "Domains", "description": "Academic domain details (session required)"},
        {"name": "Health", "description": "Probes and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Liveness probe",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Health"],
                "summary": "Readiness probe",
                "description": "Pings Redis-backed storage and the audit database when configured",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Ready", "schema": {"$ref": "#/definitions/Readiness"}},
                    "503": {"description": "A dependency is down", "schema": {"$ref": "#/definitions/Readiness"}}
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": ["Health"],
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {
                    "200": {"description": "Prometheus exposition format"}
                }
            }
        },
        "/login": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Sign-in page",
                "produces": ["text/html"],
                "parameters": [
                    {"name": "from", "in": "query", "type": "string", "description": "Path to return to after sign-in"},
                    {"name": "error", "in": "query", "type": "string", "description": "Provider error code, e.g. unauthorized_email"}
                ],
                "responses": {
                    "200": {"description": "HTML page"}
                }
            }
        },
        "/login/{provider}": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Start provider sign-in",
                "description": "Stores the destination under redirectAfterLogin and redirects to {BACKEND_URL}/oauth2/authorization/{provider}",
                "parameters": [
                    {"name": "provider", "in": "path", "required": true, "type": "string", "default": "google"},
                    {"name": "redirect", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string"}
                ],
                "responses": {
                    "302": {"description": "Redirect to the identity provider"},
                    "400": {"description": "Unknown provider"}
                }
            }
        },
        "/oauth2/redirect": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Complete provider sign-in",
                "parameters": [
                    {"name": "code", "in": "query", "type": "string"},
                    {"name": "error", "in": "query", "type": "string"},
                    {"name": "state", "in": "query", "type": "string", "description": "URL-encoded JSON, may carry {\"from\": path}"}
                ],
                "responses": {
                    "302": {"description": "Redirect to the stored destination, state.from, or /"},
                    "400": {"description": "No authorization code; page returns to /login after a delay"},
                    "401": {"description": "Provider error or no session; page returns to /login after a delay"}
                }
            }
        },
        "/unauthorized": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Not-authorised page",
                "produces": ["text/html"],
                "responses": {
                    "200": {"description": "HTML page"}
                }
            }
        },
        "/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Sign out",
                "description": "Posts to the backend /logout and always redirects to the provider logout page",
                "responses": {
                    "303": {"description": "Redirect to the provider logout page"}
                }
            }
        },
        "/": {
            "get": {
                "tags": ["Students"],
                "summary": "Student roster",
                "produces": ["text/html"],
                "responses": {
                    "200": {"description": "HTML page; backend failures are shown inline"},
                    "302": {"description": "No session: redirect to /login?from=/ or to the provider"}
                }
            }
        },
        "/students/{id}/edit": {
            "get": {
                "tags": ["Students"],
                "summary": "Edit form",
                "produces": ["text/html"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string", "description": "Student id or roll number"}
                ],
                "responses": {
                    "200": {"description": "HTML form"},
                    "404": {"description": "Unknown student"}
                }
            }
        },
        "/students/{id}": {
            "post": {
                "tags": ["Students"],
                "summary": "Save student",
                "consumes": ["application/x-www-form-urlencoded"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "token", "in": "formData", "required": true, "type": "string", "description": "One-shot submit token issued with the form"},
                    {"name": "rollNo", "in": "formData", "required": true, "type": "string"},
                    {"name": "firstName", "in": "formData", "required": true, "type": "string"},
                    {"name": "lastName", "in": "formData", "type": "string"},
                    {"name": "email", "in": "formData", "required": true, "type": "string"},
                    {"name": "cgpa", "in": "formData", "type": "string"},
                    {"name": "totalCredits", "in": "formData", "type": "string"},
                    {"name": "graduationYear", "in": "formData", "type": "string"},
                    {"name": "domain", "in": "formData", "type": "string", "description": "Domain id or program name; blank clears"}
                ],
                "responses": {
                    "303": {"description": "Saved, or replayed submit ignored; redirect to /"},
                    "422": {"description": "Validation failed; form re-rendered"},
                    "502": {"description": "Backend rejected the update; form re-rendered"}
                }
            }
        },
        "/students/export": {
            "get": {
                "tags": ["Students"],
                "summary": "Export roster",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "File download"},
                    "400": {"description": "Unsupported format"}
                }
            }
        },
        "/domains/{program}": {
            "get": {
                "tags": ["Domains"],
                "summary": "Domain details",
                "produces": ["text/html"],
                "parameters": [
                    {"name": "program", "in": "path", "required": true, "type": "string", "description": "Domain id or program name"}
                ],
                "responses": {
                    "200": {"description": "HTML page"},
                    "404": {"description": "Unknown domain"}
                }
            }
        }
    },
    "definitions": {
        "Readiness": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "checks": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "Domain": {
            "type": "object",
            "properties": {
                "domainId": {"type": "integer"},
                "program": {"type": "string"},
                "batch": {"type": "string"},
                "qualification": {"type": "string"},
                "capacity": {"type": "integer"}
            }
        },
        "StudentPayload": {
            "type": "object",
            "description": "Body sent to PUT /api/editstudent",
            "properties": {
                "studentId": {"type": "integer"},
                "rollNo": {"type": "string"},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "email": {"type": "string"},
                "photograph_path": {"type": "string"},
                "cgpa": {"type": "number"},
                "totalCredits": {"type": "integer"},
                "graduationYear": {"type": "integer"},
                "domain": {"$ref": "#/definitions/Domain"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
