// Package httpgateway implements the three HTTP routes the gateway exposes
// (spec.md §4.6): the cached GET query route, the uncached POST query
// route, and the multipart upload route.
package httpgateway

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/splitgraph/seafowl/internal/arrowutil"
	"github.com/splitgraph/seafowl/internal/catalog"
	"github.com/splitgraph/seafowl/internal/errs2"
	"github.com/splitgraph/seafowl/internal/etag"
	"github.com/splitgraph/seafowl/internal/ingest"
	"github.com/splitgraph/seafowl/internal/objectstore"
	"github.com/splitgraph/seafowl/internal/plan"
)

// executionErrorCodes maps the package-level error classes execution
// errors come wrapped in to HTTP status codes. Every one of these is
// currently a 5xx: spec.md §7 classifies planner, executor, and
// object-store errors together as "execution errors", surfaced best-effort
// without being part of the response contract. The map exists so that
// changes to that policy (e.g. giving catalog errors their own 4xx) live
// in one place instead of scattered across handlers.
var executionErrorCodes = errs2.CodeMap{
	&catalog.Error:     http.StatusInternalServerError,
	&etag.Error:        http.StatusInternalServerError,
	&objectstore.Error: http.StatusInternalServerError,
	&ingest.Error:      http.StatusInternalServerError,
}

// Literal response bodies the spec pins exactly (spec.md §7).
const (
	bodyHashMismatch     = "HASH_MISMATCH"
	bodyNotReadOnlyQuery = "NOT_READ_ONLY_QUERY"
	bodyNotModified      = "NOT_MODIFIED"
	bodyDone             = "done"
)

// Gateway holds the dependencies every route handler needs: the catalog
// Context for planning/execution, and an Ingestor for multipart uploads.
type Gateway struct {
	Context  catalog.Context
	Ingestor *ingest.Ingestor
	Logger   *zap.Logger

	sanitizer *errs2.LoggingSanitizer
}

func New(ctx catalog.Context, ing *ingest.Ingestor, logger *zap.Logger) *Gateway {
	return &Gateway{
		Context:   ctx,
		Ingestor:  ing,
		Logger:    logger,
		sanitizer: errs2.NewLoggingSanitizer(nil, logger, executionErrorCodes),
	}
}

// writeExecutionError logs err in full and writes the structured JSON body
// spec.md §7 calls the "revision goal" for execution-error responses.
func (g *Gateway) writeExecutionError(w http.ResponseWriter, msg string, err error) {
	code, sanitized := g.sanitizer.Sanitize(msg, err)
	writeError(w, code, sanitized)
}

// Routes mounts the gateway's handlers on r.
func (g *Gateway) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(cors)
		r.Get("/q/{hash}", g.handleCachedQuery)
		r.Post("/q", g.handleUncachedQuery)
	})
	r.Post("/upload/{schema}/{table}", g.handleUpload)
}

type queryRequestBody struct {
	Query string `json:"query"`
}

// errorResponse is the structured JSON body for 5xx execution failures
// (spec.md §7 "Revision goal: structured error JSON"), used in place of
// the historical plain-text bodies.
type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message})
}

func writePlainText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// extractQuery reads the SQL text from the X-Seafowl-Query header, falling
// back to the JSON body's "query" field; the header takes precedence if
// both are present (spec.md §4.6).
func extractQuery(r *http.Request) (string, error) {
	if q := r.Header.Get("X-Seafowl-Query"); q != "" {
		return q, nil
	}

	var body queryRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.Query == "" {
		return "", errEmptyQuery
	}
	return body.Query, nil
}

var errEmptyQuery = &queryError{"query missing from request"}

type queryError struct{ msg string }

func (e *queryError) Error() string { return e.msg }

// pathHash strips everything after the first '.' in the {hash} path
// param, so clients can append ".json"/".bin" for cache-key diversification
// without affecting semantics (spec.md §4.6).
func pathHash(raw string) string {
	if idx := strings.IndexByte(raw, '.'); idx >= 0 {
		return raw[:idx]
	}
	return raw
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// handleCachedQuery implements GET /q/{hash}[.ext] (spec.md §4.6 steps
// a-h).
func (g *Gateway) handleCachedQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query, err := extractQuery(r)
	if err != nil {
		writePlainText(w, http.StatusBadRequest, "missing query")
		return
	}

	hash := pathHash(chi.URLParam(r, "hash"))
	if sha256Hex(query) != hash {
		writePlainText(w, http.StatusBadRequest, bodyHashMismatch)
		return
	}

	if err := g.Context.ReloadSchema(ctx); err != nil {
		g.writeExecutionError(w, "reload catalog schema", err)
		return
	}

	logical, err := g.Context.CreateLogicalPlan(ctx, query)
	if err != nil {
		g.writeExecutionError(w, "plan query", err)
		return
	}

	if plan.Classify(logical) == plan.Mutating {
		writePlainText(w, http.StatusMethodNotAllowed, bodyNotReadOnlyQuery)
		return
	}

	fp := plan.BuildFingerprint(logical)
	etagValue, err := etag.Encode(fp)
	if err != nil {
		g.writeExecutionError(w, "compute etag", err)
		return
	}

	if r.Header.Get("If-None-Match") == etagValue {
		w.Header().Set("ETag", etagValue)
		writePlainText(w, http.StatusNotModified, bodyNotModified)
		return
	}

	physical, err := g.Context.CreatePhysicalPlan(ctx, logical)
	if err != nil {
		g.writeExecutionError(w, "lower physical plan", err)
		return
	}

	records, err := g.Context.Collect(ctx, physical)
	if err != nil {
		g.writeExecutionError(w, "execute query", err)
		return
	}

	w.Header().Set("ETag", etagValue)
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	if err := writeNDJSON(w, records); err != nil {
		g.Logger.Error("failed writing response body", zap.Error(err))
	}
}

// handleUncachedQuery implements POST /q: always executes, no ETag, no
// read-only gating (spec.md §4.6).
func (g *Gateway) handleUncachedQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query, err := extractQuery(r)
	if err != nil {
		writePlainText(w, http.StatusBadRequest, "missing query")
		return
	}

	if err := g.Context.ReloadSchema(ctx); err != nil {
		g.writeExecutionError(w, "reload catalog schema", err)
		return
	}

	physical, err := g.Context.PlanQuery(ctx, query)
	if err != nil {
		g.writeExecutionError(w, "plan query", err)
		return
	}

	records, err := g.Context.Collect(ctx, physical)
	if err != nil {
		g.writeExecutionError(w, "execute query", err)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	if err := writeNDJSON(w, records); err != nil {
		g.Logger.Error("failed writing response body", zap.Error(err))
	}
}

// handleUpload implements POST /upload/{schema}/{table} (spec.md §4.6,
// §4.5).
func (g *Gateway) handleUpload(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	reader, err := r.MultipartReader()
	if err != nil {
		writePlainText(w, http.StatusBadRequest, "expected multipart/form-data")
		return
	}

	for {
		part, err := reader.NextPart()
		if err != nil {
			break
		}
		if part.FormName() != "file" {
			continue
		}

		if err := g.Ingestor.IngestPart(r.Context(), part, table); err != nil {
			var unsupported ingest.ErrUnsupportedSuffix
			if errors.As(err, &unsupported) {
				writePlainText(w, http.StatusBadRequest, unsupported.Error())
				return
			}
			g.writeExecutionError(w, "ingest upload", err)
			return
		}
	}

	writePlainText(w, http.StatusOK, bodyDone)
}

func writeNDJSON(w http.ResponseWriter, records []arrow.Record) error {
	return arrowutil.WriteNDJSON(w, records)
}
