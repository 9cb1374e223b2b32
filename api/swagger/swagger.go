package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "FraudLens API",
        "description": "Fraud analysis service with human-in-the-loop review routing",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Analysis", "description": "Transaction fraud scoring"},
        {"name": "Reviews", "description": "Human review queue"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "A backing store is unavailable"}
                }
            }
        },
        "/api/v1/analyze/transaction": {
            "post": {
                "tags": ["Analysis"],
                "summary": "Analyze a transaction for fraud risk",
                "description": "Returns the risk assessment. Responses that trip an escalation rule are augmented with review routing fields (requiresHumanReview, reviewId, reviewStatus, reviewReason).",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AnalyzeTransactionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/AnalysisResult"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Analysis unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/reviews": {
            "get": {
                "tags": ["Reviews"],
                "summary": "List review records",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "enum": ["pending", "approved", "rejected"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid status filter", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/reviews/{id}": {
            "get": {
                "tags": ["Reviews"],
                "summary": "Get review",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Review not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/reviews/{id}/decision": {
            "post": {
                "tags": ["Reviews"],
                "summary": "Submit a reviewer decision",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DecisionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid decision", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Review not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "AnalyzeTransactionRequest": {
            "type": "object",
            "required": ["amount", "merchant"],
            "properties": {
                "transactionId": {"type": "string"},
                "amount": {"type": "number"},
                "merchant": {"type": "string"},
                "location": {"type": "string"},
                "description": {"type": "string"},
                "timestamp": {"type": "string", "format": "date-time"}
            }
        },
        "AnalysisResult": {
            "type": "object",
            "properties": {
                "transactionId": {"type": "string"},
                "riskScore": {"type": "number"},
                "riskLevel": {"type": "string"},
                "isHighRisk": {"type": "boolean"},
                "confidenceScore": {"type": "number"},
                "explanation": {"type": "string"},
                "factors": {"type": "array", "items": {"type": "object"}},
                "recommendations": {"type": "array", "items": {"type": "string"}},
                "provider": {"type": "string"},
                "requiresHumanReview": {"type": "boolean"},
                "reviewId": {"type": "string"},
                "reviewStatus": {"type": "string"},
                "reviewReason": {"type": "string"},
                "reviewReasonDescription": {"type": "string"}
            }
        },
        "DecisionRequest": {
            "type": "object",
            "required": ["status", "reviewerId"],
            "properties": {
                "status": {"type": "string", "enum": ["approved", "rejected"]},
                "reviewerId": {"type": "string"},
                "comments": {"type": "string"}
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
