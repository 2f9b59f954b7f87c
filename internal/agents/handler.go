package agents

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/incontext-app/incontext/internal/flash"
	"github.com/incontext-app/incontext/internal/identity"
	"github.com/incontext-app/incontext/internal/web"
	"github.com/incontext-app/incontext/pkg/logging"
)

// msgFieldsRequired is flashed when a create or update form is incomplete.
const msgFieldsRequired = "Model, name, role, and instructions are all required."

// Handler provides HTTP handlers for agent CRUD pages.
type Handler struct {
	sys      System
	renderer *web.Renderer
	logger   *slog.Logger
}

// NewHandler creates an agents HTTP handler.
func NewHandler(sys System, renderer *web.Renderer, logger *slog.Logger) *Handler {
	return &Handler{
		sys:      sys,
		renderer: renderer,
		logger:   logging.WithSystem(logger, "agents"),
	}
}

// Register mounts the agent routes on the mux behind the login gate.
func (h *Handler) Register(mux *http.ServeMux, gate func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("GET /agents/{$}", gate(h.Index))
	mux.HandleFunc("GET /agents/create", gate(h.CreatePage))
	mux.HandleFunc("POST /agents/create", gate(h.Create))
	mux.HandleFunc("GET /agents/{id}/update", gate(h.UpdatePage))
	mux.HandleFunc("POST /agents/{id}/update", gate(h.Update))
	mux.HandleFunc("POST /agents/{id}/delete", gate(h.Delete))
}

// agentView is an AgentWithCreator prepared for the listing template.
type agentView struct {
	AgentWithCreator
	Mine  bool
	Links []ConversationLink
}

type indexData struct {
	Agents []agentView
}

// Index handles GET /agents/ to list every agent with the requesting user's
// conversation cross-links.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	ident := identity.FromContext(r.Context())

	list, err := h.sys.List(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	links, err := h.sys.ConversationLinks(r.Context(), ident.UserID)
	if err != nil {
		h.fail(w, err)
		return
	}

	byAgent := make(map[uuid.UUID][]ConversationLink, len(links))
	for _, l := range links {
		byAgent[l.AgentID] = append(byAgent[l.AgentID], l)
	}

	data := indexData{Agents: make([]agentView, 0, len(list))}
	for _, a := range list {
		data.Agents = append(data.Agents, agentView{
			AgentWithCreator: a,
			Mine:             a.CreatorID == ident.UserID,
			Links:            byAgent[a.ID],
		})
	}

	h.renderer.Render(w, r, http.StatusOK, "agents/index.html", "Agents", data)
}

// CreatePage handles GET /agents/create.
func (h *Handler) CreatePage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, "agents/create.html", "New Agent", Command{})
}

// Create handles POST /agents/create.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ident := identity.FromContext(r.Context())

	cmd, ok := h.command(w, r)
	if !ok {
		return
	}

	if _, err := h.sys.Create(r.Context(), ident.UserID, cmd); err != nil {
		if errors.Is(err, ErrValidation) {
			flash.Add(w, r, flash.CategoryError, msgFieldsRequired)
			http.Redirect(w, r, "/agents/create", http.StatusSeeOther)
			return
		}
		h.fail(w, err)
		return
	}

	http.Redirect(w, r, "/agents/", http.StatusSeeOther)
}

// UpdatePage handles GET /agents/{id}/update for the agent's creator.
func (h *Handler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	ident := identity.FromContext(r.Context())

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	a, err := h.sys.GetOwned(r.Context(), id, ident.UserID)
	if err != nil {
		h.fail(w, err)
		return
	}

	h.renderer.Render(w, r, http.StatusOK, "agents/update.html", "Edit "+a.Name, a.Agent)
}

// Update handles POST /agents/{id}/update for the agent's creator.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ident := identity.FromContext(r.Context())

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if _, err := h.sys.GetOwned(r.Context(), id, ident.UserID); err != nil {
		h.fail(w, err)
		return
	}

	cmd, ok := h.command(w, r)
	if !ok {
		return
	}

	if _, err := h.sys.Update(r.Context(), id, cmd); err != nil {
		if errors.Is(err, ErrValidation) {
			flash.Add(w, r, flash.CategoryError, msgFieldsRequired)
			http.Redirect(w, r, updatePath(id), http.StatusSeeOther)
			return
		}
		h.fail(w, err)
		return
	}

	http.Redirect(w, r, "/agents/", http.StatusSeeOther)
}

// Delete handles POST /agents/{id}/delete for the agent's creator. Deletion
// is refused while conversations still reference the agent; the user is sent
// back to the edit view with the link count.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ident := identity.FromContext(r.Context())

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if _, err := h.sys.GetOwned(r.Context(), id, ident.UserID); err != nil {
		h.fail(w, err)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		var linked *LinkedError
		if errors.As(err, &linked) {
			flash.Add(w, r, flash.CategoryError, fmt.Sprintf(
				"Cannot delete this agent as it is linked to %d conversation(s).", linked.Count,
			))
			http.Redirect(w, r, updatePath(id), http.StatusSeeOther)
			return
		}
		h.fail(w, err)
		return
	}

	http.Redirect(w, r, "/agents/", http.StatusSeeOther)
}

// pathID parses the {id} path segment. Unparseable ids are reported as not
// found, the same as ids that never existed.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "agent not found", http.StatusNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) command(w http.ResponseWriter, r *http.Request) (Command, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return Command{}, false
	}

	return Command{
		Model:        r.PostFormValue("model"),
		Name:         r.PostFormValue("name"),
		Role:         r.PostFormValue("role"),
		Instructions: r.PostFormValue("instructions"),
	}, true
}

// fail writes the mapped status. Domain errors carry user-safe messages;
// anything mapped to 500 is logged and reported as the bare status text.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := MapHTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("handler error", "error", err)
		http.Error(w, http.StatusText(status), status)
		return
	}
	http.Error(w, err.Error(), status)
}

func updatePath(id uuid.UUID) string {
	return fmt.Sprintf("/agents/%s/update", id)
}
