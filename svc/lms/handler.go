package lms

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/lmskit/handler"
	"github.com/dmitrymomot/lmskit/pkg/logger"
	"github.com/dmitrymomot/lmskit/pkg/tenantdb"
)

// DefaultPageSize bounds list endpoints.
const DefaultPageSize = 50

// Course is the list projection of a course document.
type Course struct {
	ID        bson.ObjectID `bson:"_id" json:"id"`
	Title     string        `bson:"title" json:"title"`
	Slug      string        `bson:"slug" json:"slug"`
	Published bool          `bson:"published" json:"published"`
}

// Status describes the tenant connection serving a request.
type Status struct {
	TenantID  string    `json:"tenant_id"`
	Database  string    `json:"database"`
	Host      string    `json:"host"`
	State     string    `json:"state"`
	Entities  []string  `json:"entities"`
	Pending   []string  `json:"pending,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrEntityUnavailable is returned when the entity a request needs is not
// attached to the tenant connection or the connection is unusable.
var ErrEntityUnavailable = handler.HTTPError{Code: http.StatusServiceUnavailable, Key: "entity_unavailable"}

// Handler serves tenant-scoped endpoints. It expects tenantdb.Middleware to
// run first.
type Handler struct {
	logger *slog.Logger
}

// NewHandler returns a Handler logging to log.
func NewHandler(log *slog.Logger) *Handler {
	if log == nil {
		log = logger.Discard()
	}
	return &Handler{logger: log.With(logger.Component("lms"))}
}

// Routes returns the tenant-scoped router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(tenantdb.RequireConn(tenantdb.JSONErrorHandler))
	wrap := []handler.WrapOption{handler.WithErrorHandler(handler.NewErrorHandler(h.logger))}
	r.Get("/status", handler.Wrap(h.status, wrap...))
	r.Get("/courses", handler.Wrap(h.listCourses, wrap...))
	return r
}

func (h *Handler) status(r *http.Request) handler.Response {
	conn := tenantdb.MustConnFromContext(r.Context())

	var pending []string
	for _, name := range Schemas().Names() {
		if !conn.Registered(name) {
			pending = append(pending, name)
		}
	}

	return handler.JSON(Status{
		TenantID:  conn.TenantID(),
		Database:  conn.DatabaseName(),
		Host:      conn.Host(),
		State:     conn.State().String(),
		Entities:  conn.RegisteredNames(),
		Pending:   pending,
		CreatedAt: conn.CreatedAt(),
	})
}

func (h *Handler) listCourses(r *http.Request) handler.Response {
	ctx := r.Context()
	conn := tenantdb.MustConnFromContext(ctx)

	coll, err := conn.Collection(EntityCourse)
	if err != nil {
		return h.fail(r, err)
	}

	filter := bson.D{}
	if r.URL.Query().Get("published") == "true" {
		filter = bson.D{{Key: "published", Value: true}}
	}

	opts := options.Find().
		SetLimit(DefaultPageSize).
		SetSort(bson.D{{Key: "title", Value: 1}}).
		SetProjection(bson.D{{Key: "title", Value: 1}, {Key: "slug", Value: 1}, {Key: "published", Value: 1}})

	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return h.fail(r, err)
	}

	courses := make([]Course, 0)
	if err := cur.All(ctx, &courses); err != nil {
		return h.fail(r, err)
	}

	return handler.JSON(courses, handler.WithJSONMeta(map[string]any{"limit": DefaultPageSize}))
}

// fail maps entity and connection errors to 503 and anything else to 500.
func (h *Handler) fail(r *http.Request, err error) handler.Response {
	if errors.Is(err, tenantdb.ErrEntityUnavailable) || tenantdb.IsConnectionError(err) {
		h.logger.WarnContext(r.Context(), "entity unavailable", logger.Error(err))
		return handler.JSONError(ErrEntityUnavailable)
	}
	h.logger.ErrorContext(r.Context(), "request failed", logger.Error(err))
	return handler.JSONError(handler.ErrInternal)
}
