// Package handlers implements the HTTP API layer of the validator service.
//
// Handlers delegate to the services layer and focus on request validation,
// error mapping, and model-to-API conversion.
//
// # API Endpoints
//
// Validation Endpoints (validations.go):
//
//	┌────────┬───────────────────┬──────────────────────────────────────┐
//	│ Method │ Endpoint          │ Description                          │
//	├────────┼───────────────────┼──────────────────────────────────────┤
//	│ POST   │ /validations      │ Run the pipeline for one connection  │
//	│ GET    │ /validations      │ List recent runs (newest first)      │
//	│ GET    │ /validations/{id} │ Get one run by id                    │
//	└────────┴───────────────────┴──────────────────────────────────────┘
//
// Health Endpoints (health.go):
//
//	┌────────┬──────────────────────┬───────────────────────────────────┐
//	│ Method │ Endpoint             │ Description                       │
//	├────────┼──────────────────────┼───────────────────────────────────┤
//	│ GET    │ /health              │ Cached health of all connections  │
//	│ GET    │ /health/{connection} │ Cached health of one connection   │
//	└────────┴──────────────────────┴───────────────────────────────────┘
//
// # Validation Requests
//
// POST /validations accepts the parameters file path plus the secrets the
// parameters file never carries:
//
//	{
//	    "paramsPath": "/data/connection.params.json",
//	    "variant": "apim",
//	    "deploymentName": "gpt-4o",
//	    "targetUrl": "https://my-apim.azure-api.net/openai",
//	    "apiKey": "..."
//	}
//
// Secrets travel in the request body only; they are never persisted with
// the run record.
//
// # Query Parameters
//
// GET /validations supports:
//
//	┌────────────┬────────┬──────────────────────────────────────────┐
//	│ Parameter  │ Type   │ Description                              │
//	├────────────┼────────┼──────────────────────────────────────────┤
//	│ connection │ string │ Filter by connection name                │
//	│ limit      │ int    │ Max runs returned (default 20, max 100)  │
//	└────────────┴────────┴──────────────────────────────────────────┘
//
// # Error Handling
//
// Handlers use a consistent error response format:
//
//	{ "error": "error message" }
//
// HTTP Status Code Mapping:
//
//	┌─────────────────────────┬────────┬───────────────────────────────┐
//	│ Error Type              │ Status │ When                          │
//	├─────────────────────────┼────────┼───────────────────────────────┤
//	│ Binding/parameter error │ 400    │ Invalid request body or query │
//	│ ResourceNotFoundError   │ 404    │ Run or connection unknown     │
//	│ Internal error          │ 500    │ Unexpected service errors     │
//	└─────────────────────────┴────────┴───────────────────────────────┘
//
// A failed pipeline run is NOT an HTTP error: the run record is returned
// with 201 Created and carries its own status and per-stage results.
package handlers
