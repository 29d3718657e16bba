package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Campus Timetable API",
        "description": "Timetable assignment engine: automated generation, interactive editing and scenario management",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Generation", "description": "Automated timetable generation runs"},
        {"name": "Board", "description": "Interactive assignment board"},
        {"name": "Scenarios", "description": "Saved scenario versions, promotion and comparison"}
    ],
    "paths": {
        "/timetable/generate": {
            "post": {
                "tags": ["Generation"],
                "summary": "Start a timetable generation run",
                "parameters": [
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/GenerateRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Empty or malformed catalog"}
                }
            }
        },
        "/timetable/runs/{id}": {
            "get": {
                "tags": ["Generation"],
                "summary": "Get generation run state",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Run not found"}
                }
            }
        },
        "/timetable/runs/{id}/cancel": {
            "post": {
                "tags": ["Generation"],
                "summary": "Cancel a running generation",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "202": {"description": "Cancellation requested"},
                    "409": {"description": "Run already finished"}
                }
            }
        },
        "/board/{scenarioId}": {
            "get": {
                "tags": ["Board"],
                "summary": "View a scenario's board grouped by dimension",
                "parameters": [
                    {"name": "scenarioId", "in": "path", "required": true, "type": "string"},
                    {"name": "group_by", "in": "query", "type": "string", "enum": ["program", "faculty", "room", "cohort"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Board"],
                "summary": "Discard the board's working copy",
                "parameters": [
                    {"name": "scenarioId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/board/{scenarioId}/metrics": {
            "get": {
                "tags": ["Board"],
                "summary": "Score the board's current state",
                "parameters": [
                    {"name": "scenarioId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/board/{scenarioId}/check": {
            "post": {
                "tags": ["Board"],
                "summary": "Validate a placement without committing it",
                "parameters": [
                    {"name": "scenarioId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PlacementRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/board/{scenarioId}/assignments": {
            "post": {
                "tags": ["Board"],
                "summary": "Commit a new assignment to the board",
                "parameters": [
                    {"name": "scenarioId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PlacementRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Constraint violation"}
                }
            }
        },
        "/board/{scenarioId}/assignments/{assignmentId}": {
            "patch": {
                "tags": ["Board"],
                "summary": "Change an assignment's room or faculty in place",
                "parameters": [
                    {"name": "scenarioId", "in": "path", "required": true, "type": "string"},
                    {"name": "assignmentId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EditRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Constraint violation"}
                }
            },
            "delete": {
                "tags": ["Board"],
                "summary": "Remove an assignment from the board",
                "parameters": [
                    {"name": "scenarioId", "in": "path", "required": true, "type": "string"},
                    {"name": "assignmentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/board/{scenarioId}/assignments/{assignmentId}/move": {
            "put": {
                "tags": ["Board"],
                "summary": "Relocate an assignment",
                "parameters": [
                    {"name": "scenarioId", "in": "path", "required": true, "type": "string"},
                    {"name": "assignmentId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MoveRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Constraint violation"}
                }
            }
        },
        "/scenarios": {
            "get": {
                "tags": ["Scenarios"],
                "summary": "List saved scenarios",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Scenarios"],
                "summary": "Save an assignment set as a new scenario version",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveScenarioRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/scenarios/active": {
            "get": {
                "tags": ["Scenarios"],
                "summary": "Get the active scenario",
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "No active scenario"}
                }
            }
        },
        "/scenarios/compare": {
            "get": {
                "tags": ["Scenarios"],
                "summary": "Compare two scenarios metric by metric",
                "parameters": [
                    {"name": "a", "in": "query", "required": true, "type": "string"},
                    {"name": "b", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/scenarios/{id}": {
            "get": {
                "tags": ["Scenarios"],
                "summary": "Get a scenario with its assignment set",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Scenario not found"}
                }
            },
            "delete": {
                "tags": ["Scenarios"],
                "summary": "Delete a scenario",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Active scenario cannot be deleted"}
                }
            }
        },
        "/scenarios/{id}/promote": {
            "post": {
                "tags": ["Scenarios"],
                "summary": "Promote a scenario to active",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Scenario not found"}
                }
            }
        },
        "/scenarios/{id}/export": {
            "get": {
                "tags": ["Scenarios"],
                "summary": "Export a scenario's timetable",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Rendered file"}
                }
            }
        }
    },
    "definitions": {
        "GenerateRequest": {
            "type": "object",
            "properties": {
                "weights": {"$ref": "#/definitions/WeightsPayload"},
                "improvement_iterations": {"type": "integer"},
                "seed": {"type": "integer"}
            }
        },
        "WeightsPayload": {
            "type": "object",
            "properties": {
                "satisfaction": {"type": "number"},
                "balance": {"type": "number"},
                "utilization": {"type": "number"}
            }
        },
        "PlacementRequest": {
            "type": "object",
            "required": ["section_id", "faculty_id", "room_id"],
            "properties": {
                "section_id": {"type": "string"},
                "faculty_id": {"type": "string"},
                "room_id": {"type": "string"},
                "day": {"type": "integer"},
                "period": {"type": "integer"},
                "cohort": {"type": "string"}
            }
        },
        "MoveRequest": {
            "type": "object",
            "properties": {
                "day": {"type": "integer"},
                "period": {"type": "integer"},
                "room_id": {"type": "string"},
                "faculty_id": {"type": "string"}
            }
        },
        "EditRequest": {
            "type": "object",
            "properties": {
                "room_id": {"type": "string"},
                "faculty_id": {"type": "string"}
            }
        },
        "SaveScenarioRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "run_id": {"type": "string"},
                "scenario_id": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"type": "object"},
                "meta": {"type": "object"}
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
