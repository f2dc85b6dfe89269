package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Therapy Students API",
        "description": "Student directory and enrollment for the therapy practice",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [
        {"BearerAuth": []}
    ],
    "tags": [
        {"name": "Students", "description": "Student directory, caseloads and enrollment"}
    ],
    "paths": {
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List all students",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/StudentListEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "Backend or integrity failure", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get a student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/StudentEnvelope"}},
                    "403": {"description": "Therapists only", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/my-students": {
            "get": {
                "tags": ["Students"],
                "summary": "List the caller's caseload",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/StudentListEnvelope"}}
                }
            }
        },
        "/my-students/export": {
            "get": {
                "tags": ["Students"],
                "summary": "Download the caller's caseload",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Attachment", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/temp-students": {
            "get": {
                "tags": ["Students"],
                "summary": "List the caller's students enrolled with a prior diagnosis",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/StudentListEnvelope"}}
                }
            }
        },
        "/enroll-student": {
            "post": {
                "tags": ["Students"],
                "summary": "Enroll a new student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/StudentEnvelope"}},
                    "400": {"description": "Malformed payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "Integrity, empty insert or backend failure", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "StudentView": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "age": {"type": "integer", "x-nullable": true},
                "dateOfBirth": {"type": "string", "format": "date", "x-nullable": true},
                "enrollmentDate": {"type": "string", "format": "date"},
                "diagnosis": {"type": "string", "x-nullable": true},
                "status": {"type": "string"},
                "primaryTherapist": {"type": "string", "x-nullable": true},
                "primaryTherapistId": {"type": "integer", "x-nullable": true},
                "profileDetails": {"type": "object"},
                "medicalDiagnosis": {"type": "string", "x-nullable": true},
                "assessmentDetails": {"type": "object", "x-nullable": true},
                "driveUrl": {"type": "string", "x-nullable": true},
                "priorDiagnosis": {"type": "boolean"},
                "photo": {"type": "string", "x-nullable": true},
                "progressPercentage": {"type": "integer"},
                "nextSession": {"type": "string", "x-nullable": true},
                "goals": {"type": "array", "items": {"type": "string"}}
            }
        },
        "EnrollmentRequest": {
            "type": "object",
            "properties": {
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "dateOfBirth": {"type": "string", "format": "date"},
                "therapistId": {"type": "integer"},
                "diagnosis": {"type": "string"},
                "medicalDiagnosis": {"type": "string"},
                "priorDiagnosis": {"type": "boolean"},
                "driveUrl": {"type": "string"},
                "assessmentDetails": {"type": "object"},
                "goals": {"type": "array", "items": {"type": "string"}},
                "profileInfo": {"type": "object"},
                "age": {"type": "integer"}
            },
            "required": ["firstName", "lastName", "dateOfBirth"]
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "kind": {"type": "string", "enum": ["BACKEND", "INTEGRITY", "EMPTY_INSERT"]}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        },
        "StudentEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/StudentView"}
            }
        },
        "StudentListEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/StudentView"}},
                "meta": {"type": "object", "properties": {"count": {"type": "integer"}}}
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
