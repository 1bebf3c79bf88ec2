package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/lmskit/pkg/logger"
)

// HandlerFunc handles a request and returns the response to render.
type HandlerFunc func(r *http.Request) Response

// Response renders itself to an http.ResponseWriter.
// Implementations set headers, status code and body.
type Response interface {
	Render(w http.ResponseWriter, r *http.Request) error
}

// ErrorHandler handles errors from rendering.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type wrapConfig struct {
	errorHandler ErrorHandler
}

// WrapOption configures Wrap.
type WrapOption func(*wrapConfig)

// WithErrorHandler sets a custom error handler.
func WithErrorHandler(h ErrorHandler) WrapOption {
	return func(c *wrapConfig) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// NewErrorHandler returns an ErrorHandler that logs err and answers with a
// JSON error body. Client errors are logged at warn level, the rest at error.
func NewErrorHandler(log *slog.Logger) ErrorHandler {
	if log == nil {
		log = logger.Discard()
	}
	log = log.With(logger.Component("error_handler"))

	return func(w http.ResponseWriter, r *http.Request, err error) {
		level := slog.LevelError
		var httpErr HTTPError
		if errors.As(err, &httpErr) && httpErr.Code < http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		log.LogAttrs(r.Context(), level, "request error",
			logger.Error(err),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		if renderErr := JSONError(err).Render(w, r); renderErr != nil {
			log.ErrorContext(r.Context(), "failed to render error", logger.Error(renderErr))
		}
	}
}

// defaultErrorHandler answers with the HTTPError key and code, or 500.
func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		http.Error(w, httpErr.Key, httpErr.Code)
		return
	}
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// Wrap converts h to an http.HandlerFunc.
func Wrap(h HandlerFunc, opts ...WrapOption) http.HandlerFunc {
	cfg := &wrapConfig{errorHandler: defaultErrorHandler}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		response := h(r)
		if response == nil {
			cfg.errorHandler(w, r, ErrNilResponse)
			return
		}
		if err := response.Render(w, r); err != nil {
			cfg.errorHandler(w, r, err)
		}
	}
}
