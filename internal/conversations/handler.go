package conversations

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/incontext-app/incontext/internal/agents"
	"github.com/incontext-app/incontext/internal/flash"
	"github.com/incontext-app/incontext/internal/identity"
	"github.com/incontext-app/incontext/internal/web"
	"github.com/incontext-app/incontext/pkg/logging"
)

const msgNameRequired = "A conversation name is required."

// Handler provides HTTP handlers for conversation pages.
type Handler struct {
	sys      System
	agents   agents.System
	renderer *web.Renderer
	logger   *slog.Logger
}

// NewHandler creates a conversations HTTP handler. The agents system backs
// the agent picker on the detail view.
func NewHandler(sys System, agentSys agents.System, renderer *web.Renderer, logger *slog.Logger) *Handler {
	return &Handler{
		sys:      sys,
		agents:   agentSys,
		renderer: renderer,
		logger:   logging.WithSystem(logger, "conversations"),
	}
}

// Register mounts the conversation routes on the mux behind the login gate.
func (h *Handler) Register(mux *http.ServeMux, gate func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("GET /conversations/{$}", gate(h.Index))
	mux.HandleFunc("GET /conversations/create", gate(h.CreatePage))
	mux.HandleFunc("POST /conversations/create", gate(h.Create))
	mux.HandleFunc("GET /conversations/{id}", gate(h.Detail))
	mux.HandleFunc("POST /conversations/{id}/agents", gate(h.LinkAgent))
	mux.HandleFunc("POST /conversations/{id}/agents/{agentID}/remove", gate(h.UnlinkAgent))
	mux.HandleFunc("POST /conversations/{id}/delete", gate(h.Delete))
}

type indexData struct {
	Conversations []Conversation
}

type detailData struct {
	Conversation *Conversation
	Agents       []LinkedAgent
	Available    []agents.Agent
}

// Index handles GET /conversations/ to list the requesting user's
// conversations.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	ident := identity.FromContext(r.Context())

	list, err := h.sys.List(r.Context(), ident.UserID)
	if err != nil {
		h.fail(w, err)
		return
	}

	h.renderer.Render(w, r, http.StatusOK, "conversations/index.html", "Conversations", indexData{
		Conversations: list,
	})
}

// CreatePage handles GET /conversations/create.
func (h *Handler) CreatePage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, "conversations/create.html", "New Conversation", Conversation{})
}

// Create handles POST /conversations/create.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ident := identity.FromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	c, err := h.sys.Create(r.Context(), ident.UserID, r.PostFormValue("name"))
	if err != nil {
		if errors.Is(err, ErrNameRequired) {
			flash.Add(w, r, flash.CategoryError, msgNameRequired)
			http.Redirect(w, r, "/conversations/create", http.StatusSeeOther)
			return
		}
		h.fail(w, err)
		return
	}

	http.Redirect(w, r, detailPath(c.ID), http.StatusSeeOther)
}

// Detail handles GET /conversations/{id} for the conversation's creator,
// showing its linked agents and a picker of agents not yet linked.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	ident := identity.FromContext(r.Context())

	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	c, err := h.sys.GetOwned(r.Context(), id, ident.UserID)
	if err != nil {
		h.fail(w, err)
		return
	}

	linked, err := h.sys.Agents(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}

	all, err := h.agents.List(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	taken := make(map[uuid.UUID]bool, len(linked))
	for _, a := range linked {
		taken[a.AgentID] = true
	}

	available := make([]agents.Agent, 0, len(all))
	for _, a := range all {
		if !taken[a.ID] {
			available = append(available, a.Agent)
		}
	}

	h.renderer.Render(w, r, http.StatusOK, "conversations/detail.html", c.Name, detailData{
		Conversation: c,
		Agents:       linked,
		Available:    available,
	})
}

// LinkAgent handles POST /conversations/{id}/agents to add an agent to the
// conversation.
func (h *Handler) LinkAgent(w http.ResponseWriter, r *http.Request) {
	ident := identity.FromContext(r.Context())

	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if _, err := h.sys.GetOwned(r.Context(), id, ident.UserID); err != nil {
		h.fail(w, err)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	agentID, err := uuid.Parse(r.PostFormValue("agent_id"))
	if err != nil {
		http.Error(w, "agent not found", http.StatusNotFound)
		return
	}

	if err := h.sys.LinkAgent(r.Context(), id, agentID); err != nil && !errors.Is(err, ErrDuplicate) {
		h.fail(w, err)
		return
	}

	http.Redirect(w, r, detailPath(id), http.StatusSeeOther)
}

// UnlinkAgent handles POST /conversations/{id}/agents/{agentID}/remove.
func (h *Handler) UnlinkAgent(w http.ResponseWriter, r *http.Request) {
	ident := identity.FromContext(r.Context())

	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	agentID, ok := h.pathID(w, r, "agentID")
	if !ok {
		return
	}

	if _, err := h.sys.GetOwned(r.Context(), id, ident.UserID); err != nil {
		h.fail(w, err)
		return
	}

	if err := h.sys.UnlinkAgent(r.Context(), id, agentID); err != nil && !errors.Is(err, ErrNotFound) {
		h.fail(w, err)
		return
	}

	http.Redirect(w, r, detailPath(id), http.StatusSeeOther)
}

// Delete handles POST /conversations/{id}/delete for the conversation's
// creator.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ident := identity.FromContext(r.Context())

	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if _, err := h.sys.GetOwned(r.Context(), id, ident.UserID); err != nil {
		h.fail(w, err)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}

	http.Redirect(w, r, "/conversations/", http.StatusSeeOther)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, segment string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(segment))
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return uuid.Nil, false
	}
	return id, true
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

func detailPath(id uuid.UUID) string {
	return fmt.Sprintf("/conversations/%s", id)
}
