// Package app maps resource objects onto HTTP endpoints. It binds query
// parameters and bodies against operation schemas, enforces security
// requirements, and encodes results.
package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/restforge/restforge/internal/app/middleware"
	"github.com/restforge/restforge/internal/app/shared"
	"github.com/restforge/restforge/internal/resource"
	"github.com/restforge/restforge/internal/schema"
	"github.com/restforge/restforge/internal/security"
)

// App is an HTTP application serving registered resources and static
// content.
type App struct {
	Title   string
	Version string

	router *chi.Mux
	logger *slog.Logger
}

// Option customizes App construction.
type Option func(*App)

// WithLogger sets the logger used by the app's middleware.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// New creates an App with the standard middleware stack.
func New(title, version string, opts ...Option) *App {
	a := &App{
		Title:   title,
		Version: version,
		router:  chi.NewRouter(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.router.Use(chimiddleware.RequestID)
	a.router.Use(chimiddleware.RealIP)
	a.router.Use(chimiddleware.Recoverer)
	a.router.Use(middleware.Trace(a.logger))

	return a
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Router exposes the underlying router so callers can mount extra
// endpoints (health checks and the like).
func (a *App) Router() chi.Router {
	return a.router
}

// RegisterResource mounts every operation of the resource under path.
// Lifecycle operations bind to methods on path itself; actions and
// queries bind to path/{name}.
func (a *App) RegisterResource(path string, rsrc *resource.Resource) error {
	if path == "" || path[0] != '/' {
		return errors.New("resource path must begin with /")
	}
	for _, op := range rsrc.Operations() {
		h := a.operationHandler(op)
		switch op.Kind {
		case resource.KindCreate:
			a.router.Post(path, h)
		case resource.KindRead:
			a.router.Get(path, h)
		case resource.KindUpdate:
			a.router.Put(path, h)
		case resource.KindDelete:
			a.router.Delete(path, h)
		case resource.KindPatch:
			a.router.Patch(path, h)
		case resource.KindAction:
			a.router.Post(path+"/"+op.Name, h)
		case resource.KindQuery:
			a.router.Get(path+"/"+op.Name, h)
		}
	}
	a.logger.Info("registered resource",
		"path", path,
		"resource", rsrc.Name,
		"operations", len(rsrc.Operations()))
	return nil
}

// operationHandler builds the request pipeline for a single operation:
// authenticate, authorize, bind parameters, bind body, invoke, encode.
// Authorization runs before validation so that unauthorized callers
// learn nothing about parameter shapes.
func (a *App) operationHandler(op *resource.Operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, ok := a.authenticate(w, r, op.Security)
		if !ok {
			return
		}
		if !a.authorize(w, r.WithContext(ctx), op.Security) {
			return
		}

		params := make(resource.Params, len(op.Params)+1)
		query := r.URL.Query()
		for name, p := range op.Params {
			raw, present := query[name]
			if !present {
				if p.Required {
					shared.RespondWithError(w, r, http.StatusBadRequest,
						"Missing required parameter: "+name)
					return
				}
				if p.Default != nil {
					params[name] = p.Default
				}
				continue
			}
			v, err := p.Schema.DecodeString(raw[0])
			if err != nil {
				shared.RespondWithError(w, r, http.StatusBadRequest,
					"Invalid parameter "+name+": "+err.Error())
				return
			}
			params[name] = v
		}

		if op.Body != nil {
			body, err := a.decodeBody(r, op.Body)
			if err != nil {
				shared.RespondWithError(w, r, http.StatusBadRequest,
					"Invalid request body: "+err.Error())
				return
			}
			params[resource.BodyKey] = body
		}

		result, err := op.Func(ctx, params)
		if err != nil {
			a.respondOperationError(w, r, err)
			return
		}

		a.encodeResult(w, r, op, result)
	}
}

// decodeBody binds the request body against the operation's body schema.
// Reader schemas receive the body stream as-is; everything else is read
// and unmarshalled.
func (a *App) decodeBody(r *http.Request, t schema.Type) (any, error) {
	if _, stream := t.(*schema.Reader); stream {
		return r.Body, nil
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	return t.UnmarshalValue(data)
}

// authenticate runs every scheme referenced by the requirements against
// the request. Invalid credentials fail the request immediately; absent
// credentials leave the context anonymous for authorize to judge.
func (a *App) authenticate(w http.ResponseWriter, r *http.Request, reqs []security.Requirement) (ctx context.Context, ok bool) {
	ctx = r.Context()
	for _, sch := range schemes(reqs) {
		id, err := sch.Authenticate(r)
		if err != nil {
			w.Header().Set("WWW-Authenticate", sch.Challenge())
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid credentials")
			return ctx, false
		}
		if id != nil {
			ctx = security.WithIdentity(ctx, id)
		}
	}
	return ctx, true
}

// authorize checks the operation's requirements. An operation with no
// requirements is public; otherwise any single passing requirement
// authorizes the request.
func (a *App) authorize(w http.ResponseWriter, r *http.Request, reqs []security.Requirement) bool {
	if len(reqs) == 0 {
		return true
	}
	for _, req := range reqs {
		if err := req.Authorize(r.Context()); err == nil {
			return true
		}
	}
	if sch := firstScheme(reqs); sch != nil {
		w.Header().Set("WWW-Authenticate", sch.Challenge())
	}
	shared.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
	return false
}

func (a *App) respondOperationError(w http.ResponseWriter, r *http.Request, err error) {
	status := resource.StatusCode(err)
	message := resource.SafeMessage(err)
	if errors.Is(err, security.ErrUnauthorized) {
		status, message = http.StatusUnauthorized, "Unauthorized"
	} else if errors.Is(err, security.ErrForbidden) {
		status, message = http.StatusForbidden, "Forbidden"
	}
	if status >= http.StatusInternalServerError {
		a.logger.Error("operation failed",
			"error", err,
			"path", r.URL.Path,
			"method", r.Method,
			"trace_id", shared.GetTraceID(r.Context()))
	}
	shared.RespondWithError(w, r, status, message)
}

// encodeResult writes the operation result. Operations without a returns
// schema, or returning nil, produce 204 No Content.
func (a *App) encodeResult(w http.ResponseWriter, r *http.Request, op *resource.Operation, result any) {
	if op.Returns == nil || result == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	data, err := op.Returns.MarshalValue(result)
	if err != nil {
		a.logger.Error("failed to encode operation result",
			"error", err,
			"path", r.URL.Path,
			"trace_id", shared.GetTraceID(r.Context()))
		shared.RespondWithError(w, r, http.StatusInternalServerError,
			"Failed to encode response")
		return
	}
	w.Header().Set("Content-Type", op.Returns.ContentType())
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		a.logger.Error("failed to write response", "error", err)
	}
}

// schemes returns the distinct authentication schemes referenced by the
// requirements, in order of first reference.
func schemes(reqs []security.Requirement) []security.Scheme {
	var out []security.Scheme
	seen := make(map[security.Scheme]bool)
	for _, req := range reqs {
		sch := req.Scheme()
		if sch == nil || seen[sch] {
			continue
		}
		seen[sch] = true
		out = append(out, sch)
	}
	return out
}

func firstScheme(reqs []security.Requirement) security.Scheme {
	for _, req := range reqs {
		if sch := req.Scheme(); sch != nil {
			return sch
		}
	}
	return nil
}
