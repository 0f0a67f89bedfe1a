// Package handler provides HTTP request handlers for the item API.
package handler

import (
	"net/http"

	"github.com/vyrodovalexey/item-api/internal/model"
)

// Version is the application version.
const Version = "1.0.0"

// Response messages.
const (
	MessageWelcome      = "Welcome to the Item API"
	MessageItemDeleted  = "Item deleted successfully"
	MessageNotFound     = "Not found"
	MessageNotAllowed   = "Method not allowed"
	MessageInternalFail = model.MessageInternalError
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// EventPublisher receives item change events after successful mutations.
type EventPublisher interface {
	Publish(event model.ItemEvent)
}

// serviceInfo returns the static description served on GET /.
func serviceInfo() model.ServiceInfo {
	return model.ServiceInfo{
		Message: MessageWelcome,
		Endpoints: map[string]string{
			http.MethodGet + " /":              "Home page",
			http.MethodGet + " /items":         "Get all items",
			http.MethodPost + " /items":        "Create a new item (JSON: {name, description})",
			http.MethodGet + " /items/{id}":    "Get item by ID",
			http.MethodPut + " /items/{id}":    "Update item by ID (JSON: {name, description})",
			http.MethodDelete + " /items/{id}": "Delete item by ID",
			http.MethodGet + " /ws":            "Stream item change events over WebSocket",
		},
	}
}
