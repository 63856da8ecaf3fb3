package tasks

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// maxBodyBytes caps request bodies; task payloads are tiny.
const maxBodyBytes = 1 << 20

type Handler struct {
	Repo Repository
	Log  *log.Logger
}

func NewHandler(repo Repository, logger *log.Logger) *Handler {
	return &Handler{Repo: repo, Log: logger}
}

// Register mounts the task routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /tareas", h.List)
	mux.HandleFunc("POST /tareas", h.Create)
	mux.HandleFunc("GET /tareas/{id}", h.Get)
	mux.HandleFunc("PATCH /tareas/{id}", h.Patch)
	mux.HandleFunc("DELETE /tareas/{id}", h.Delete)
}

// -------------------------------
// HANDLERS
// -------------------------------

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Repo.List(r.Context()))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeNotFound(w)
		return
	}

	t, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, &ValidationError{
			FormErrors:  []string{err.Error()},
			FieldErrors: map[string][]string{},
		})
		return
	}

	in, verr := ParseCreate(body)
	if verr != nil {
		h.Log.Debug("create rejected", "err", verr)
		writeJSON(w, http.StatusBadRequest, verr)
		return
	}

	t := h.Repo.Create(r.Context(), in)
	h.Log.Debug("task created", "id", t.ID)
	writeJSON(w, http.StatusCreated, t)
}

// Patch looks the task up before validating the body, so an unknown id
// answers 404 even when the payload is also invalid.
func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeNotFound(w)
		return
	}
	if _, err := h.Repo.Get(r.Context(), id); err != nil {
		h.writeRepoError(w, err)
		return
	}

	body, err := readBody(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, &ValidationError{
			FormErrors:  []string{err.Error()},
			FieldErrors: map[string][]string{},
		})
		return
	}

	in, verr := ParsePatch(body)
	if verr != nil {
		h.Log.Debug("patch rejected", "id", id, "err", verr)
		writeJSON(w, http.StatusBadRequest, verr)
		return
	}

	// The task can vanish between the lookup and the update under
	// concurrent deletes; Update reports that as ErrNotFound.
	t, err := h.Repo.Update(r.Context(), id, in)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeNotFound(w)
		return
	}

	t, err := h.Repo.Delete(r.Context(), id)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	h.Log.Debug("task deleted", "id", id)
	writeJSON(w, http.StatusOK, t)
}

// Health always reports the service as up.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// -------------------------------
// helpers
// -------------------------------

// pathID parses {id} the way a JavaScript Number() cast would: surrounding
// whitespace is ignored and any whole decimal value ("1", "1.0", "1e0") is
// accepted. Anything else can never name a task, so callers answer it like
// any other unknown id.
func pathID(r *http.Request) (int, bool) {
	raw := strings.TrimSpace(r.PathValue("id"))
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, errors.New("could not read request body")
	}
	if len(body) > maxBodyBytes {
		return nil, errors.New("request body too large")
	}
	return body, nil
}

func (h *Handler) writeRepoError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		writeNotFound(w)
		return
	}
	h.Log.Error("repository error", "err", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
}

func writeNotFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "No existe"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
