package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "WorkBridge IMS API",
        "description": "Internship and employee management: accounts per role, batches with rosters, attendance ledgers, bulk spreadsheet registration, and range reports.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Per-role login and token issuance"},
        {"name": "Interns", "description": "Intern accounts and batch membership"},
        {"name": "Teachers", "description": "Teacher accounts, assignments, and roll-ups"},
        {"name": "Employees", "description": "Employee accounts"},
        {"name": "Batches", "description": "Batch lifecycle, rosters, and day views"},
        {"name": "Attendance", "description": "Ledger writes, clocking, and reports"},
        {"name": "Uploads", "description": "Bulk spreadsheet registration"},
        {"name": "Notices", "description": "Batch notice boards"},
        {"name": "Notes", "description": "Batch study materials"}
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/auth/admin/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register an admin account",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/auth/admin/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate an admin",
                "responses": {
                    "200": {"description": "Token issued"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/teacher/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate a teacher",
                "responses": {"200": {"description": "Token issued"}}
            }
        },
        "/auth/intern/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate an intern",
                "responses": {"200": {"description": "Token issued"}}
            }
        },
        "/auth/employee/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate an employee",
                "responses": {"200": {"description": "Token issued"}}
            }
        },
        "/interns": {
            "post": {
                "tags": ["Interns"],
                "summary": "Register an intern",
                "responses": {"201": {"description": "Created"}}
            },
            "get": {
                "tags": ["Interns"],
                "summary": "List interns",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/interns/{id}": {
            "get": {
                "tags": ["Interns"],
                "summary": "Get intern detail",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/teachers": {
            "post": {
                "tags": ["Teachers"],
                "summary": "Register a teacher",
                "responses": {"201": {"description": "Created"}}
            },
            "get": {
                "tags": ["Teachers"],
                "summary": "List teachers",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/employees": {
            "post": {
                "tags": ["Employees"],
                "summary": "Register an employee",
                "responses": {"201": {"description": "Created"}}
            },
            "get": {
                "tags": ["Employees"],
                "summary": "List employees registered by the calling admin",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/batches": {
            "post": {
                "tags": ["Batches"],
                "summary": "Create a batch",
                "responses": {"201": {"description": "Created"}, "409": {"description": "Duplicate name and sequence"}}
            },
            "get": {
                "tags": ["Batches"],
                "summary": "List batches",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/batches/{id}/attendance": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Mark a whole batch roster for one date",
                "responses": {"200": {"description": "Per-entry outcomes with absence alerts"}}
            }
        },
        "/batches/{id}/interns/upload": {
            "post": {
                "tags": ["Uploads"],
                "summary": "Bulk-register interns from a spreadsheet",
                "responses": {"200": {"description": "Registered rows and row errors"}}
            }
        },
        "/attendance/clock-in": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Clock in the calling employee",
                "responses": {"200": {"description": "OK"}, "409": {"description": "Already clocked in"}}
            }
        },
        "/attendance/clock-out": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Clock out the calling employee",
                "responses": {"200": {"description": "OK"}, "409": {"description": "No open clock-in"}}
            }
        },
        "/reports/{kind}": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Aggregate attendance over a daily, weekly, or monthly window",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/reports/{kind}/export": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Download a range report as PDF",
                "produces": ["application/pdf"],
                "responses": {"200": {"description": "PDF document"}}
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "Envelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
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
