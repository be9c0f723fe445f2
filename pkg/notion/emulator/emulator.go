// Package emulator runs an in-memory stand-in for the workspace API, used
// by client and sync tests.
package emulator

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/navikt/notion-table/pkg/notion"
)

type Emulator struct {
	mu sync.Mutex

	apiKey    string
	databases map[string]*notion.Database
	rows      map[string][]*notion.Page
	pages     map[string]*notion.Page

	// failQueries makes the next n query requests fail with failStatus,
	// after skipQueries requests have been let through.
	failQueries int
	skipQueries int
	failAppends int
	skipAppends int
	failStatus  int

	queryRequests  int
	appendRequests int

	server *httptest.Server
	log    zerolog.Logger
}

func New(log zerolog.Logger) *Emulator {
	e := &Emulator{
		apiKey:    "emulator-key",
		databases: map[string]*notion.Database{},
		rows:      map[string][]*notion.Page{},
		pages:     map[string]*notion.Page{},
		log:       log,
	}

	router := chi.NewRouter()
	router.Get("/v1/databases/{id}", e.withAuth(e.getDatabase))
	router.Post("/v1/databases/{id}/query", e.withAuth(e.queryDatabase))
	router.Post("/v1/databases/{id}/rows", e.withAuth(e.appendRows))
	router.Post("/v1/databases", e.withAuth(e.createDatabase))
	router.Get("/v1/pages/{id}", e.withAuth(e.getPage))

	e.server = httptest.NewServer(router)

	return e
}

func (e *Emulator) Cleanup() {
	e.server.Close()
}

func (e *Emulator) Endpoint() string {
	return e.server.URL
}

// APIKey is the bearer token the emulator accepts.
func (e *Emulator) APIKey() string {
	return e.apiKey
}

// WithDatabase registers a database and returns its id.
func (e *Emulator) WithDatabase(title string, properties *notion.PropertyConfigs) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := uuid.NewString()
	e.databases[id] = &notion.Database{
		Object:     "database",
		ID:         id,
		URL:        e.server.URL + "/" + strings.ReplaceAll(id, "-", "") + "?v=" + uuid.NewString(),
		Title:      notion.EncodeRichText(title),
		Properties: properties,
	}

	return id
}

// WithRow appends a page row to a database and returns the page id.
func (e *Emulator) WithRow(databaseID string, properties map[string]notion.PropertyValue) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	page := e.newPage(databaseID, properties)
	e.rows[databaseID] = append(e.rows[databaseID], page)
	e.pages[page.ID] = page

	return page.ID
}

// WithPage registers a standalone page (a valid parent for database
// creation) and returns its id.
func (e *Emulator) WithPage() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := uuid.NewString()
	e.pages[id] = &notion.Page{
		Object: "page",
		ID:     id,
		URL:    e.server.URL + "/" + strings.ReplaceAll(id, "-", ""),
	}

	return id
}

// PageURL returns the URL of a registered page.
func (e *Emulator) PageURL(pageID string) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if page, ok := e.pages[pageID]; ok {
		return page.URL
	}

	return ""
}

// RemoveDatabase drops a database, making later lookups 404.
func (e *Emulator) RemoveDatabase(databaseID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.databases, databaseID)
	delete(e.rows, databaseID)
}

// FailQueries makes the next n query requests fail with the given status.
func (e *Emulator) FailQueries(n, status int) {
	e.FailQueriesAfter(0, n, status)
}

// FailQueriesAfter lets skip query requests through, then fails the next
// n with the given status.
func (e *Emulator) FailQueriesAfter(skip, n, status int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.skipQueries = skip
	e.failQueries = n
	e.failStatus = status
}

// FailAppends makes the next n append requests fail with the given status.
func (e *Emulator) FailAppends(n, status int) {
	e.FailAppendsAfter(0, n, status)
}

// FailAppendsAfter lets skip append requests through, then fails the
// next n with the given status.
func (e *Emulator) FailAppendsAfter(skip, n, status int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.skipAppends = skip
	e.failAppends = n
	e.failStatus = status
}

// Rows returns the stored rows of a database.
func (e *Emulator) Rows(databaseID string) []*notion.Page {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]*notion.Page{}, e.rows[databaseID]...)
}

// Database returns a stored database, or nil.
func (e *Emulator) Database(databaseID string) *notion.Database {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.databases[databaseID]
}

// QueryRequests returns the number of query requests served, failed ones
// included.
func (e *Emulator) QueryRequests() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.queryRequests
}

// AppendRequests returns the number of append requests served, failed
// ones included.
func (e *Emulator) AppendRequests() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.appendRequests
}

func (e *Emulator) newPage(databaseID string, properties map[string]notion.PropertyValue) *notion.Page {
	id := uuid.NewString()

	return &notion.Page{
		Object:     "page",
		ID:         id,
		URL:        e.server.URL + "/" + strings.ReplaceAll(id, "-", ""),
		Parent:     &notion.Parent{Type: "database_id", DatabaseID: databaseID},
		Properties: properties,
	}
}

func (e *Emulator) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+e.apiKey {
			writeError(w, http.StatusUnauthorized, "unauthorized", "API token is invalid")
			return
		}

		next(w, r)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(map[string]any{
		"object":  "error",
		"status":  status,
		"code":    code,
		"message": message,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (e *Emulator) getDatabase(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	db, ok := e.databases[chi.URLParam(r, "id")]
	e.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "object_not_found", "Could not find database")
		return
	}

	writeJSON(w, db)
}

func (e *Emulator) getPage(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	page, ok := e.pages[chi.URLParam(r, "id")]
	e.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "object_not_found", "Could not find page")
		return
	}

	writeJSON(w, page)
}

func (e *Emulator) queryDatabase(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.queryRequests++

	if e.skipQueries > 0 {
		e.skipQueries--
	} else if e.failQueries > 0 {
		e.failQueries--
		e.failInjected(w)

		return
	}

	rows, ok := e.rows[chi.URLParam(r, "id")]
	if _, dbOK := e.databases[chi.URLParam(r, "id")]; !ok && !dbOK {
		writeError(w, http.StatusNotFound, "object_not_found", "Could not find database")
		return
	}

	var req struct {
		StartCursor string `json:"start_cursor"`
		PageSize    int    `json:"page_size"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	offset := 0
	if req.StartCursor != "" {
		n, err := decodeCursor(req.StartCursor)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		offset = n
	}

	size := req.PageSize
	if size <= 0 || size > notion.MaxPageSize {
		size = notion.MaxPageSize
	}

	end := offset + size
	if end > len(rows) {
		end = len(rows)
	}

	result := notion.QueryResult{
		Object:  "list",
		Results: rows[offset:end],
		HasMore: end < len(rows),
	}
	if result.HasMore {
		result.NextCursor = encodeCursor(end)
	}

	writeJSON(w, result)
}

func (e *Emulator) createDatabase(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var req struct {
		Parent     notion.Parent           `json:"parent"`
		Title      []notion.RichText       `json:"title"`
		Properties *notion.PropertyConfigs `json:"properties"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	if _, ok := e.pages[req.Parent.PageID]; !ok {
		writeError(w, http.StatusNotFound, "object_not_found", "Could not find parent page")
		return
	}

	titles := 0
	for _, name := range req.Properties.Names {
		if req.Properties.Configs[name].Type == notion.TypeTitle {
			titles++
		}
	}
	if titles != 1 {
		writeError(w, http.StatusBadRequest, "validation_error", fmt.Sprintf("schema must have exactly one title property, got %d", titles))
		return
	}

	id := uuid.NewString()
	db := &notion.Database{
		Object:     "database",
		ID:         id,
		URL:        e.server.URL + "/" + strings.ReplaceAll(id, "-", "") + "?v=" + uuid.NewString(),
		Title:      req.Title,
		Parent:     &req.Parent,
		Properties: req.Properties,
	}
	e.databases[id] = db

	writeJSON(w, db)
}

func (e *Emulator) appendRows(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.appendRequests++

	if e.skipAppends > 0 {
		e.skipAppends--
	} else if e.failAppends > 0 {
		e.failAppends--
		e.failInjected(w)

		return
	}

	databaseID := chi.URLParam(r, "id")
	if _, ok := e.databases[databaseID]; !ok {
		writeError(w, http.StatusNotFound, "object_not_found", "Could not find database")
		return
	}

	var req struct {
		Rows []map[string]notion.PropertyValue `json:"rows"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	if len(req.Rows) > notion.MaxPageSize {
		writeError(w, http.StatusBadRequest, "validation_error", "too many rows in one request")
		return
	}

	created := make([]*notion.Page, 0, len(req.Rows))
	for _, props := range req.Rows {
		page := e.newPage(databaseID, props)
		e.rows[databaseID] = append(e.rows[databaseID], page)
		e.pages[page.ID] = page
		created = append(created, page)
	}

	writeJSON(w, appendResult{Object: "list", Results: created})
}

type appendResult struct {
	Object  string         `json:"object"`
	Results []*notion.Page `json:"results"`
}

func (e *Emulator) failInjected(w http.ResponseWriter) {
	status := e.failStatus
	if status == 0 {
		status = http.StatusTooManyRequests
	}

	e.log.Info().Int("status", status).Msg("injecting failure")

	if status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", "0")
		writeError(w, status, "rate_limited", "Rate limited")

		return
	}

	writeError(w, status, "internal_server_error", "Injected failure")
}

func encodeCursor(offset int) string {
	return "cursor-" + strconv.Itoa(offset)
}

func decodeCursor(cursor string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(cursor, "cursor-"))
	if err != nil {
		return 0, fmt.Errorf("invalid cursor %q", cursor)
	}

	return n, nil
}
