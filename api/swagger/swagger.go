package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "StudyLab API",
        "description": "Admissions CRM: leads, conversion to students, fee ledger and EMI schedules",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {
            "name": "Authentication",
            "description": "Session sign in"
        },
        {
            "name": "Leads",
            "description": "Sales pipeline"
        },
        {
            "name": "Admissions",
            "description": "Lead conversion and enrolled students"
        },
        {
            "name": "Billing",
            "description": "Payments and EMI schedules"
        },
        {
            "name": "Dashboard",
            "description": "Role landing pages"
        },
        {
            "name": "Ops",
            "description": "Health and metrics"
        }
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": [
                    "Ops"
                ],
                "summary": "Liveness probe",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "tags": [
                    "Ops"
                ],
                "summary": "Readiness probe",
                "description": "Pings the database and, when configured, Redis",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Ready"
                    },
                    "503": {
                        "description": "A dependency is unreachable"
                    }
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": [
                    "Ops"
                ],
                "summary": "Prometheus metrics",
                "produces": [
                    "text/plain"
                ],
                "responses": {
                    "200": {
                        "description": "Metrics in exposition format"
                    }
                }
            }
        },
        "/login": {
            "get": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Sign-in form",
                "responses": {
                    "200": {
                        "description": "HTML page"
                    }
                },
                "parameters": [
                    {
                        "name": "next",
                        "in": "query",
                        "type": "string",
                        "description": "Page to open after sign in"
                    }
                ]
            },
            "post": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Sign in",
                "responses": {
                    "303": {
                        "description": "Redirect with flash message"
                    }
                },
                "description": "Stores the access token in the session cookie",
                "parameters": [
                    {
                        "name": "username",
                        "in": "formData",
                        "type": "string",
                        "required": true,
                        "description": ""
                    },
                    {
                        "name": "password",
                        "in": "formData",
                        "type": "string",
                        "required": true,
                        "description": ""
                    },
                    {
                        "name": "next",
                        "in": "formData",
                        "type": "string",
                        "required": false,
                        "description": ""
                    }
                ],
                "consumes": [
                    "application/x-www-form-urlencoded"
                ]
            }
        },
        "/logout": {
            "post": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Sign out",
                "responses": {
                    "303": {
                        "description": "Redirect with flash message"
                    }
                }
            }
        },
        "/enquiry": {
            "get": {
                "tags": [
                    "Leads"
                ],
                "summary": "Public enquiry form",
                "responses": {
                    "200": {
                        "description": "HTML page"
                    }
                }
            },
            "post": {
                "tags": [
                    "Leads"
                ],
                "summary": "Submit a course enquiry",
                "responses": {
                    "303": {
                        "description": "Redirect with flash message"
                    }
                },
                "description": "Creates a NEW lead",
                "parameters": [
                    {
                        "name": "first_name",
                        "in": "formData",
                        "type": "string",
                        "required": true,
                        "description": ""
                    },
                    {
                        "name": "last_name",
                        "in": "formData",
                        "type": "string",
                        "required": false,
                        "description": ""
                    },
                    {
                        "name": "email",
                        "in": "formData",
                        "type": "string",
                        "required": true,
                        "description": ""
                    },
                    {
                        "name": "phone",
                        "in": "formData",
                        "type": "string",
                        "required": true,
                        "description": ""
                    },
                    {
                        "name": "city",
                        "in": "formData",
                        "type": "string",
                        "required": false,
                        "description": ""
                    },
                    {
                        "name": "course_id",
                        "in": "formData",
                        "type": "string",
                        "required": false,
                        "description": ""
                    }
                ],
                "consumes": [
                    "application/x-www-form-urlencoded"
                ]
            }
        },
        "/dashboard": {
            "get": {
                "tags": [
                    "Dashboard"
                ],
                "summary": "Role landing page",
                "responses": {
                    "200": {
                        "description": "Student fee statement or trainer home"
                    },
                    "303": {
                        "description": "BDM users go to /bdm/dashboard"
                    }
                }
            }
        },
        "/bdm/dashboard": {
            "get": {
                "tags": [
                    "Dashboard"
                ],
                "summary": "BDM finance dashboard",
                "responses": {
                    "200": {
                        "description": "HTML page"
                    }
                },
                "description": "Finance summary, cached in Redis when enabled, plus lead pipeline counts"
            }
        },
        "/bdm/leads": {
            "get": {
                "tags": [
                    "Leads"
                ],
                "summary": "List leads",
                "responses": {
                    "200": {
                        "description": "HTML page"
                    }
                },
                "parameters": [
                    {
                        "name": "status",
                        "in": "query",
                        "type": "string",
                        "description": "Pipeline status"
                    },
                    {
                        "name": "q",
                        "in": "query",
                        "type": "string",
                        "description": "Name, email or phone"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer",
                        "description": "Page"
                    }
                ]
            }
        },
        "/bdm/leads/new": {
            "get": {
                "tags": [
                    "Leads"
                ],
                "summary": "Manual lead form",
                "responses": {
                    "200": {
                        "description": "HTML page"
                    }
                }
            },
            "post": {
                "tags": [
                    "Leads"
                ],
                "summary": "Add a lead",
                "responses": {
                    "303": {
                        "description": "Redirect with flash message"
                    }
                },
                "parameters": [
                    {
                        "name": "first_name",
                        "in": "formData",
                        "type": "string",
                        "required": true,
                        "description": ""
                    },
                    {
                        "name": "last_name",
                        "in": "formData",
                        "type": "string",
                        "required": false,
                        "description": ""
                    },
                    {
                        "name": "email",
                        "in": "formData",
                        "type": "string",
                        "required": true,
                        "description": ""
                    },
                    {
                        "name": "phone",
                        "in": "formData",
                        "type": "string",
                        "required": true,
                        "description": ""
                    },
                    {
                        "name": "city",
                        "in": "formData",
                        "type": "string",
                        "required": false,
                        "description": ""
                    },
                    {
                        "name": "age",
                        "in": "formData",
                        "type": "string",
                        "required": false,
                        "description": ""
                    },
                    {
                        "name": "gender",
                        "in": "formData",
                        "type": "string",
                        "required": false,
                        "description": ""
                    },
                    {
                        "name": "qualification",
                        "in": "formData",
                        "type": "string",
                        "required": false,
                        "description": ""
                    },
                    {
                        "name": "payment_type",
                        "in": "formData",
                        "type": "string",
                        "required": false,
                        "description": ""
                    },
                    {
                        "name": "course_id",
                        "in": "formData",
                        "type": "string",
                        "required": false,
                        "description": ""
                    },
                    {
                        "name": "source_id",
                        "in": "formData",
                        "type": "string",
                        "required": false,
                        "description": ""
                    },
                    {
                        "name": "status",
                        "in": "formData",
                        "type": "string",
                        "required": false,
                        "description": ""
                    }
                ],
                "consumes": [
                    "application/x-www-form-urlencoded"
                ]
            }
        },
        "/bdm/leads/{id}": {
            "get": {
                "tags": [
                    "Leads"
                ],
                "summary": "Lead detail with interactions",
                "responses": {
                    "200": {
                        "description": "HTML page"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Lead ID"
                    }
                ]
            }
        },
        "/bdm/leads/{id}/interactions": {
            "post": {
                "tags": [
                    "Leads"
                ],
                "summary": "Log a counseling interaction",
                "responses": {
                    "303": {
                        "description": "Redirect with flash message"
                    }
                },
                "description": "A NEW lead moves to CONTACTED",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Lead ID"
                    },
                    {
                        "name": "interaction_type",
                        "in": "formData",
                        "type": "string",
                        "required": true,
                        "description": "CALL, WHATSAPP, EMAIL, MEETING or OTHER"
                    },
                    {
                        "name": "notes",
                        "in": "formData",
                        "type": "string",
                        "required": true,
                        "description": ""
                    },
                    {
                        "name": "next_follow_up",
                        "in": "formData",
                        "type": "string",
                        "required": false,
                        "description": "YYYY-MM-DD"
                    }
                ],
                "consumes": [
                    "application/x-www-form-urlencoded"
                ]
            }
        },
        "/bdm/leads/{id}/status": {
            "post": {
                "tags": [
                    "Leads"
                ],
                "summary": "Change pipeline status",
                "responses": {
                    "303": {
                        "description": "Redirect with flash message"
                    }
                },
                "description": "CONVERTED can only be reached through registration",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Lead ID"
                    },
                    {
                        "name": "status",
                        "in": "formData",
                        "type": "string",
                        "required": true,
                        "description": ""
                    }
                ],
                "consumes": [
                    "application/x-www-form-urlencoded"
                ]
            }
        },
        "/bdm/leads/{id}/convert": {
            "get": {
                "tags": [
                    "Admissions"
                ],
                "summary": "Registration form",
                "responses": {
                    "200": {
                        "description": "HTML page"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Lead ID"
                    }
                ]
            },
            "post": {
                "tags": [
                    "Admissions"
                ],
                "summary": "Convert a lead into a student",
                "responses": {
                    "303": {
                        "description": "Redirect with flash message"
                    }
                },
                "description": "Creates the login, student profile, first payment and EMI schedule in one transaction",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Lead ID"
                    },
                    {
                        "name": "password",
                        "in": "formData",
                        "type": "string",
                        "required": true,
                        "description": ""
                    },
                    {
                        "name": "batch",
                        "in": "formData",
                        "type": "string",
                        "required": false,
                        "description": ""
                    },
                    {
                        "name": "address",
                        "in": "formData",
                        "type": "string",
                        "required": false,
                        "description": ""
                    },
                    {
                        "name": "dob",
                        "in": "formData",
                        "type": "string",
                        "required": false,
                        "description": "YYYY-MM-DD"
                    },
                    {
                        "name": "gender",
                        "in": "formData",
                        "type": "string",
                        "required": false,
                        "description": ""
                    },
                    {
                        "name": "amount",
                        "in": "formData",
                        "type": "string",
                        "required": false,
                        "description": ""
                    },
                    {
                        "name": "mode",
                        "in": "formData",
                        "type": "string",
                        "required": false,
                        "description": ""
                    },
                    {
                        "name": "installments",
                        "in": "formData",
                        "type": "string",
                        "required": false,
                        "description": ""
                    }
                ],
                "consumes": [
                    "application/x-www-form-urlencoded"
                ]
            }
        },
        "/bdm/admissions": {
            "get": {
                "tags": [
                    "Admissions"
                ],
                "summary": "List admissions with fee status",
                "responses": {
                    "200": {
                        "description": "HTML page"
                    }
                },
                "parameters": [
                    {
                        "name": "q",
                        "in": "query",
                        "type": "string",
                        "description": "Name, email or student code"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer",
                        "description": "Page"
                    }
                ]
            }
        },
        "/bdm/admissions/{id}": {
            "get": {
                "tags": [
                    "Admissions"
                ],
                "summary": "Student fee statement",
                "responses": {
                    "200": {
                        "description": "HTML page"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Student ID"
                    }
                ]
            }
        },
        "/bdm/admissions/{id}/pay": {
            "get": {
                "tags": [
                    "Billing"
                ],
                "summary": "Payment form",
                "responses": {
                    "200": {
                        "description": "HTML page"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Student ID"
                    }
                ]
            },
            "post": {
                "tags": [
                    "Billing"
                ],
                "summary": "Record a payment",
                "responses": {
                    "303": {
                        "description": "Redirect with flash message"
                    }
                },
                "description": "In EMI mode with an installment count the remaining balance is scheduled monthly",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Student ID"
                    },
                    {
                        "name": "amount",
                        "in": "formData",
                        "type": "string",
                        "required": false,
                        "description": ""
                    },
                    {
                        "name": "mode",
                        "in": "formData",
                        "type": "string",
                        "required": true,
                        "description": ""
                    },
                    {
                        "name": "installments",
                        "in": "formData",
                        "type": "string",
                        "required": false,
                        "description": ""
                    }
                ],
                "consumes": [
                    "application/x-www-form-urlencoded"
                ]
            }
        },
        "/bdm/payments": {
            "get": {
                "tags": [
                    "Billing"
                ],
                "summary": "Payment ledger",
                "responses": {
                    "200": {
                        "description": "HTML page"
                    }
                },
                "parameters": [
                    {
                        "name": "q",
                        "in": "query",
                        "type": "string",
                        "description": "Student name or code"
                    },
                    {
                        "name": "mode",
                        "in": "query",
                        "type": "string",
                        "description": "Payment mode"
                    },
                    {
                        "name": "date",
                        "in": "query",
                        "type": "string",
                        "description": "YYYY-MM-DD"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer",
                        "description": "Page"
                    }
                ]
            }
        },
        "/bdm/payments/pending-emis": {
            "get": {
                "tags": [
                    "Billing"
                ],
                "summary": "Unpaid installments",
                "responses": {
                    "200": {
                        "description": "HTML page"
                    }
                },
                "parameters": [
                    {
                        "name": "q",
                        "in": "query",
                        "type": "string",
                        "description": "Student name or code"
                    },
                    {
                        "name": "course",
                        "in": "query",
                        "type": "string",
                        "description": "Course ID"
                    }
                ]
            }
        },
        "/bdm/payments/export": {
            "get": {
                "tags": [
                    "Billing"
                ],
                "summary": "Export the payment ledger",
                "produces": [
                    "text/csv",
                    "application/pdf"
                ],
                "parameters": [
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "description": "csv or pdf"
                    },
                    {
                        "name": "q",
                        "in": "query",
                        "type": "string",
                        "description": ""
                    },
                    {
                        "name": "mode",
                        "in": "query",
                        "type": "string",
                        "description": ""
                    },
                    {
                        "name": "date",
                        "in": "query",
                        "type": "string",
                        "description": ""
                    }
                ],
                "responses": {
                    "200": {
                        "description": "File download"
                    },
                    "303": {
                        "description": "Invalid filter, redirect with flash"
                    }
                }
            }
        },
        "/bdm/installments/{id}/settle": {
            "post": {
                "tags": [
                    "Billing"
                ],
                "summary": "Mark an installment as paid",
                "responses": {
                    "303": {
                        "description": "Redirect with flash message"
                    }
                },
                "description": "Records an EMI payment for the installment amount",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Installment ID"
                    }
                ]
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                }
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
