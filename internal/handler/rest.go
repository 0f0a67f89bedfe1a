package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/naughtygopher/errors"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/item-api/internal/model"
	"github.com/vyrodovalexey/item-api/internal/store"
)

// RESTHandler handles REST API requests for items.
type RESTHandler struct {
	store  store.Store
	events EventPublisher
	logger *zap.Logger
}

// NewRESTHandler creates a new RESTHandler instance. events may be nil.
func NewRESTHandler(s store.Store, events EventPublisher, logger *zap.Logger) *RESTHandler {
	return &RESTHandler{
		store:  s,
		events: events,
		logger: logger,
	}
}

// RegisterRoutes registers the REST API routes with the router.
// Item IDs must be decimal digits; other paths fall through to NotFound.
func (h *RESTHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/", h.Describe).Methods(http.MethodGet)
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/items", h.ListItems).Methods(http.MethodGet)
	router.HandleFunc("/items", h.CreateItem).Methods(http.MethodPost)
	router.HandleFunc("/items/{id:[0-9]+}", h.GetItem).Methods(http.MethodGet)
	router.HandleFunc("/items/{id:[0-9]+}", h.UpdateItem).Methods(http.MethodPut)
	router.HandleFunc("/items/{id:[0-9]+}", h.DeleteItem).Methods(http.MethodDelete)

	router.NotFoundHandler = http.HandlerFunc(h.NotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(h.MethodNotAllowed)
}

// Describe handles GET / requests.
func (h *RESTHandler) Describe(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, serviceInfo())
}

// HealthCheck handles GET /health requests.
func (h *RESTHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: Version,
	})
}

// ListItems handles GET /items requests.
func (h *RESTHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.List(r.Context())
	if err != nil {
		h.handleStoreError(w, err, "list items")
		return
	}

	h.writeJSON(w, http.StatusOK, model.ItemsResponse{Items: items})
}

// CreateItem handles POST /items requests. A missing, malformed or
// nameless body is reported as "Name is required".
func (h *RESTHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var input model.CreateItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Debug("invalid create body", zap.Error(err))
		h.handleStoreError(w, store.ErrNameRequired, "create item")
		return
	}

	item, err := h.store.Create(r.Context(), &input)
	if err != nil {
		h.handleStoreError(w, err, "create item")
		return
	}

	h.publish(model.EventItemCreated, *item)
	h.writeJSON(w, http.StatusCreated, item)
}

// GetItem handles GET /items/{id} requests.
func (h *RESTHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	item, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.handleStoreError(w, err, "get item")
		return
	}

	h.writeJSON(w, http.StatusOK, item)
}

// UpdateItem handles PUT /items/{id} requests. A body that is absent or
// not a JSON object leaves the item unchanged; string fields that are
// present are applied even when a sibling field has the wrong type.
func (h *RESTHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	var input *model.UpdateItemInput
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		h.logger.Debug("ignoring update body", zap.Int64("id", id), zap.Error(err))
	} else {
		input = model.UpdateFromFields(fields)
	}

	item, err := h.store.Update(r.Context(), id, input)
	if err != nil {
		h.handleStoreError(w, err, "update item")
		return
	}

	if !input.Empty() {
		h.publish(model.EventItemUpdated, *item)
	}
	h.writeJSON(w, http.StatusOK, item)
}

// DeleteItem handles DELETE /items/{id} requests.
func (h *RESTHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	item, err := h.store.Delete(r.Context(), id)
	if err != nil {
		h.handleStoreError(w, err, "delete item")
		return
	}

	h.publish(model.EventItemDeleted, *item)
	h.writeJSON(w, http.StatusOK, model.MessageResponse{Message: MessageItemDeleted})
}

// NotFound answers requests that match no route.
func (h *RESTHandler) NotFound(w http.ResponseWriter, _ *http.Request) {
	h.writeError(w, http.StatusNotFound, MessageNotFound)
}

// MethodNotAllowed answers requests to a known path with an unsupported method.
func (h *RESTHandler) MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	h.writeError(w, http.StatusMethodNotAllowed, MessageNotAllowed)
}

// itemID parses the {id} route variable. The route pattern only admits
// digits, so a parse failure means the value overflows and cannot exist.
func (h *RESTHandler) itemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.handleStoreError(w, store.ErrNotFound, "parse item id")
		return 0, false
	}
	return id, true
}

func (h *RESTHandler) publish(eventType string, item model.Item) {
	if h.events == nil {
		return
	}
	h.events.Publish(model.NewItemEvent(eventType, item))
}

// handleStoreError handles store errors and writes appropriate HTTP responses.
func (h *RESTHandler) handleStoreError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.writeError(w, http.StatusNotFound, store.MsgNotFound)
	case errors.Is(err, store.ErrNameRequired):
		h.writeError(w, http.StatusBadRequest, store.MsgNameRequired)
	default:
		status, message, _ := errors.HTTPStatusCodeMessage(err)
		if status < http.StatusInternalServerError {
			h.writeError(w, status, message)
			return
		}
		h.logger.Error("store operation failed", zap.String("operation", operation), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, MessageInternalFail)
	}
}

// writeJSON writes a JSON response with the given status code.
func (h *RESTHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeError writes an error response with the given status code and message.
func (h *RESTHandler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, model.ErrorResponse{Error: message})
}
