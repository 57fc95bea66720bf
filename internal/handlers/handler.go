package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eldtechnologies/bazaar/internal/hub"
	"github.com/eldtechnologies/bazaar/internal/service"
	"github.com/eldtechnologies/bazaar/internal/store"
)

// walletRegex validates EVM wallet addresses (0x + 40 hex chars).
var walletRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

const maxUploadBytes = 10 << 20 // 10 MB

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	db       store.DataStore
	messages store.MessageStore
	catalog  *service.Catalog
	chat     *service.Chat
	hub      *hub.Hub
	logger   zerolog.Logger
}

// NewHandler creates a new Handler with the given services and stores.
func NewHandler(db store.DataStore, messages store.MessageStore, catalog *service.Catalog, chat *service.Chat, h *hub.Hub, logger zerolog.Logger) *Handler {
	return &Handler{db: db, messages: messages, catalog: catalog, chat: chat, hub: h, logger: logger}
}

// envelope is the uniform response shape: success plus either data or a
// message.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// OK sends a success envelope carrying data.
func (h *Handler) OK(w http.ResponseWriter, status int, data any) {
	h.JSON(w, status, envelope{Success: true, Data: data})
}

// Message sends a success envelope carrying only a message.
func (h *Handler) Message(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, envelope{Success: true, Message: message})
}

// Error sends a failure envelope with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, envelope{Success: false, Message: message})
}

// ServiceError maps service errors onto HTTP status codes. Unknown errors
// are logged and reported as a generic 500 so internals do not leak.
func (h *Handler) ServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		h.Error(w, http.StatusBadRequest, userMessage(err, service.ErrInvalidArgument))
	case errors.Is(err, service.ErrForbidden):
		h.Error(w, http.StatusForbidden, userMessage(err, service.ErrForbidden))
	case errors.Is(err, service.ErrNotFound):
		h.Error(w, http.StatusNotFound, userMessage(err, service.ErrNotFound))
	case errors.Is(err, service.ErrUploadFailed):
		h.Error(w, http.StatusInternalServerError, "image upload failed")
	default:
		h.logger.Error().Err(err).Msg("unhandled service error")
		h.Error(w, http.StatusInternalServerError, "internal error")
	}
}

// userMessage strips the sentinel prefix from a wrapped service error,
// leaving the human-readable detail.
func userMessage(err, sentinel error) string {
	msg := err.Error()
	if detail, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
		return detail
	}
	return msg
}

// resourceForm holds the fields of a create/update request, accepted either
// as JSON or as multipart form data (the latter for image uploads).
type resourceForm struct {
	values map[string]any
	image  []byte
	name   string
}

// parseResourceForm reads a JSON or multipart body into a resourceForm.
func parseResourceForm(r *http.Request) (*resourceForm, error) {
	f := &resourceForm{values: make(map[string]any)}

	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return nil, err
		}
		for key, vals := range r.MultipartForm.Value {
			if len(vals) > 0 {
				f.values[key] = vals[0]
			}
		}
		file, header, err := r.FormFile("image")
		if err == nil {
			defer file.Close()
			data, err := readUpload(file)
			if err != nil {
				return nil, err
			}
			f.image = data
			f.name = header.Filename
		} else if !errors.Is(err, http.ErrMissingFile) {
			return nil, err
		}
		return f, nil
	}

	if r.ContentLength == 0 {
		return f, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&f.values); err != nil {
		return nil, err
	}
	return f, nil
}

func readUpload(file multipart.File) ([]byte, error) {
	return io.ReadAll(io.LimitReader(file, maxUploadBytes))
}

// Str returns the trimmed string value for key, or nil when absent.
func (f *resourceForm) Str(key string) *string {
	v, ok := f.values[key]
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	return &s
}

// Int64 returns the integer value for key, accepting JSON numbers and
// decimal strings. Absent keys yield (nil, nil).
func (f *resourceForm) Int64(key string) (*int64, error) {
	v, ok := f.values[key]
	if !ok {
		return nil, nil
	}
	switch n := v.(type) {
	case float64:
		i := int64(n)
		return &i, nil
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return nil, nil
		}
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, err
		}
		return &i, nil
	default:
		return nil, strconv.ErrSyntax
	}
}

// UUID returns the parsed UUID for key, or (nil, nil) when absent or empty.
func (f *resourceForm) UUID(key string) (*uuid.UUID, error) {
	s := f.Str(key)
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// pathUUID extracts and validates a UUID path parameter.
func pathUUID(r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	return id, err == nil
}
