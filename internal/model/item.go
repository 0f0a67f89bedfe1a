// Package model defines data structures used throughout the application.
package model

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Item is the single resource managed by the service.
type Item struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateItemInput is the request body accepted by POST /items.
// Fields are pointers so that absence can be told apart from zero values.
type CreateItemInput struct {
	Name        *string `json:"name" validate:"required,min=1"`
	Description *string `json:"description"`
}

// Validate checks that a name was supplied and is not empty.
func (in *CreateItemInput) Validate() error {
	return validate.Struct(in)
}

// DescriptionOrDefault returns the supplied description or an empty string.
func (in *CreateItemInput) DescriptionOrDefault() string {
	if in.Description == nil {
		return ""
	}
	return *in.Description
}

// UpdateItemInput is the request body accepted by PUT /items/{id}.
// A nil field leaves the stored value untouched.
type UpdateItemInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// UpdateFromFields builds an UpdateItemInput from a decoded JSON object.
// Fields that are missing, null or not strings are left unset.
func UpdateFromFields(fields map[string]json.RawMessage) *UpdateItemInput {
	return &UpdateItemInput{
		Name:        stringField(fields, "name"),
		Description: stringField(fields, "description"),
	}
}

func stringField(fields map[string]json.RawMessage, key string) *string {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	var value *string
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil
	}
	return value
}

// Empty reports whether the input changes nothing.
func (in *UpdateItemInput) Empty() bool {
	return in == nil || (in.Name == nil && in.Description == nil)
}

// Apply copies the present fields onto item.
func (in *UpdateItemInput) Apply(item *Item) {
	if in == nil {
		return
	}
	if in.Name != nil {
		item.Name = *in.Name
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
}

// ItemsResponse wraps the collection returned by GET /items.
type ItemsResponse struct {
	Items []Item `json:"items"`
}

// MessageResponse carries a plain confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// MessageInternalError is reported for failures the client cannot act on.
const MessageInternalError = "internal server error"

// ErrorResponse represents an error response structure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServiceInfo describes the API and its endpoints.
type ServiceInfo struct {
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
}

// Item event types published on the change feed.
const (
	EventItemCreated = "item.created"
	EventItemUpdated = "item.updated"
	EventItemDeleted = "item.deleted"
)

// ItemEvent describes a completed mutation of the collection.
type ItemEvent struct {
	Type      string    `json:"type"`
	Item      Item      `json:"item"`
	Timestamp time.Time `json:"timestamp"`
}

// NewItemEvent creates an event of the given type for item.
func NewItemEvent(eventType string, item Item) ItemEvent {
	return ItemEvent{
		Type:      eventType,
		Item:      item,
		Timestamp: time.Now().UTC(),
	}
}
