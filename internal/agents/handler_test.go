package agents_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/incontext-app/incontext/internal/agents"
	"github.com/incontext-app/incontext/internal/flash"
	"github.com/incontext-app/incontext/internal/identity"
	"github.com/incontext-app/incontext/internal/web"
)

// fakeSystem is an in-memory System mirroring the repository's validation,
// ownership, and vendor derivation behavior. A set failErr is returned from
// every operation.
type fakeSystem struct {
	agents  []agents.AgentWithCreator
	links   []agents.ConversationLink
	linked  map[uuid.UUID]int
	failErr error
}

func (f *fakeSystem) List(ctx context.Context) ([]agents.AgentWithCreator, error) {
	if f.failErr != nil {
		return nil, f.failErr
	}
	return f.agents, nil
}

func (f *fakeSystem) ConversationLinks(ctx context.Context, userID uuid.UUID) ([]agents.ConversationLink, error) {
	if f.failErr != nil {
		return nil, f.failErr
	}
	return f.links, nil
}

func (f *fakeSystem) Get(ctx context.Context, id uuid.UUID) (*agents.AgentWithCreator, error) {
	if f.failErr != nil {
		return nil, f.failErr
	}
	for i := range f.agents {
		if f.agents[i].ID == id {
			return &f.agents[i], nil
		}
	}
	return nil, agents.ErrNotFound
}

func (f *fakeSystem) GetOwned(ctx context.Context, id, userID uuid.UUID) (*agents.AgentWithCreator, error) {
	a, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.CreatorID != userID {
		return nil, agents.ErrForbidden
	}
	return a, nil
}

func (f *fakeSystem) Create(ctx context.Context, creatorID uuid.UUID, cmd agents.Command) (*agents.Agent, error) {
	if f.failErr != nil {
		return nil, f.failErr
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	a := agents.Agent{
		ID:           uuid.New(),
		Model:        cmd.Model,
		Name:         cmd.Name,
		Role:         cmd.Role,
		Instructions: cmd.Instructions,
		Vendor:       agents.VendorFor(cmd.Model),
		CreatorID:    creatorID,
		Created:      time.Now(),
	}
	f.agents = append(f.agents, agents.AgentWithCreator{Agent: a, Username: "tester"})
	return &a, nil
}

func (f *fakeSystem) Update(ctx context.Context, id uuid.UUID, cmd agents.Command) (*agents.Agent, error) {
	if f.failErr != nil {
		return nil, f.failErr
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	for i := range f.agents {
		if f.agents[i].ID == id {
			f.agents[i].Model = cmd.Model
			f.agents[i].Name = cmd.Name
			f.agents[i].Role = cmd.Role
			f.agents[i].Instructions = cmd.Instructions
			f.agents[i].Vendor = agents.VendorFor(cmd.Model)
			return &f.agents[i].Agent, nil
		}
	}
	return nil, agents.ErrNotFound
}

func (f *fakeSystem) Delete(ctx context.Context, id uuid.UUID) error {
	if f.failErr != nil {
		return f.failErr
	}
	if count := f.linked[id]; count > 0 {
		return &agents.LinkedError{Count: count}
	}

	for i := range f.agents {
		if f.agents[i].ID == id {
			f.agents = append(f.agents[:i], f.agents[i+1:]...)
			return nil
		}
	}
	return agents.ErrNotFound
}

func testHandler(t *testing.T, sys agents.System) *agents.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	renderer, err := web.NewRenderer(logger)
	require.NoError(t, err)

	return agents.NewHandler(sys, renderer, logger)
}

func testAgent(name, model string, creatorID uuid.UUID) agents.AgentWithCreator {
	return agents.AgentWithCreator{
		Agent: agents.Agent{
			ID:           uuid.New(),
			Model:        model,
			Name:         name,
			Role:         "assistant",
			Instructions: "Be helpful.",
			Vendor:       agents.VendorFor(model),
			CreatorID:    creatorID,
			Created:      time.Now(),
		},
		Username: "tester",
	}
}

func asUser(r *http.Request, userID uuid.UUID) *http.Request {
	ctx := identity.WithContext(r.Context(), identity.Identity{UserID: userID, Username: "tester"})
	return r.WithContext(ctx)
}

func postForm(path string, form url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

// popFlashes replays the recorder's cookies against a fresh request so the
// pending flash messages can be read back.
func popFlashes(t *testing.T, rec *httptest.ResponseRecorder) []flash.Message {
	t.Helper()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 {
			r.AddCookie(c)
		}
	}
	return flash.Pop(httptest.NewRecorder(), r)
}

func TestIndex(t *testing.T) {
	me := uuid.New()
	other := uuid.New()

	mine := testAgent("Planner", "gpt-4.1", me)
	theirs := testAgent("Critic", "claude-3-7-sonnet-latest", other)

	sys := &fakeSystem{
		agents: []agents.AgentWithCreator{theirs, mine},
		links: []agents.ConversationLink{
			{AgentID: mine.ID, ConversationID: uuid.New(), ConversationName: "Weekly sync"},
		},
	}
	h := testHandler(t, sys)

	rec := httptest.NewRecorder()
	h.Index(rec, asUser(httptest.NewRequest(http.MethodGet, "/agents/", nil), me))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "Planner")
	assert.Contains(t, body, "Critic")
	assert.Contains(t, body, "Weekly sync")

	// only the caller's own agent carries an edit link
	assert.Contains(t, body, "/agents/"+mine.ID.String()+"/update")
	assert.NotContains(t, body, "/agents/"+theirs.ID.String()+"/update")

	// listing order comes from the system untouched
	assert.Less(t, strings.Index(body, "Critic"), strings.Index(body, "Planner"))
}

func TestIndexInternalError(t *testing.T) {
	sys := &fakeSystem{failErr: context.DeadlineExceeded}
	h := testHandler(t, sys)

	rec := httptest.NewRecorder()
	h.Index(rec, asUser(httptest.NewRequest(http.MethodGet, "/agents/", nil), uuid.New()))

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	// internal detail stays in the log, not the response
	assert.Equal(t, http.StatusText(http.StatusInternalServerError)+"\n", rec.Body.String())
	assert.NotContains(t, rec.Body.String(), context.DeadlineExceeded.Error())
}

func TestCreate(t *testing.T) {
	me := uuid.New()
	sys := &fakeSystem{}
	h := testHandler(t, sys)

	form := url.Values{
		"model":        {"claude-3-5-haiku-latest"},
		"name":         {"Researcher"},
		"role":         {"researcher"},
		"instructions": {"Dig into sources."},
	}

	rec := httptest.NewRecorder()
	h.Create(rec, asUser(postForm("/agents/create", form), me))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/agents/", rec.Header().Get("Location"))

	require.Len(t, sys.agents, 1)
	created := sys.agents[0]
	assert.Equal(t, "Researcher", created.Name)
	assert.Equal(t, agents.VendorAnthropic, created.Vendor)
	assert.Equal(t, me, created.CreatorID)
}

func TestCreateMissingFields(t *testing.T) {
	me := uuid.New()
	sys := &fakeSystem{}
	h := testHandler(t, sys)

	form := url.Values{
		"model": {"gpt-4.1"},
		"name":  {"Incomplete"},
	}

	rec := httptest.NewRecorder()
	h.Create(rec, asUser(postForm("/agents/create", form), me))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/agents/create", rec.Header().Get("Location"))
	assert.Empty(t, sys.agents)

	flashes := popFlashes(t, rec)
	require.Len(t, flashes, 1)
	assert.Equal(t, flash.CategoryError, flashes[0].Category)
	assert.Equal(t, "Model, name, role, and instructions are all required.", flashes[0].Message)
}

func TestUpdateForbidden(t *testing.T) {
	me := uuid.New()
	theirs := testAgent("Critic", "gpt-4.1", uuid.New())

	sys := &fakeSystem{agents: []agents.AgentWithCreator{theirs}}
	h := testHandler(t, sys)

	form := url.Values{
		"model":        {"gpt-4.1"},
		"name":         {"Hijacked"},
		"role":         {"assistant"},
		"instructions": {"x"},
	}

	r := asUser(postForm("/agents/"+theirs.ID.String()+"/update", form), me)
	r.SetPathValue("id", theirs.ID.String())

	rec := httptest.NewRecorder()
	h.Update(rec, r)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Critic", sys.agents[0].Name)
}

func TestUpdateUnknownID(t *testing.T) {
	me := uuid.New()
	h := testHandler(t, &fakeSystem{})

	for name, id := range map[string]string{
		"unparseable": "not-a-uuid",
		"unknown":     uuid.NewString(),
	} {
		t.Run(name, func(t *testing.T) {
			r := asUser(httptest.NewRequest(http.MethodGet, "/agents/"+id+"/update", nil), me)
			r.SetPathValue("id", id)

			rec := httptest.NewRecorder()
			h.UpdatePage(rec, r)

			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	}
}

func TestUpdate(t *testing.T) {
	me := uuid.New()
	mine := testAgent("Planner", "gpt-4.1", me)

	sys := &fakeSystem{agents: []agents.AgentWithCreator{mine}}
	h := testHandler(t, sys)

	form := url.Values{
		"model":        {"gemini-2.0-flash"},
		"name":         {"Planner v2"},
		"role":         {"planner"},
		"instructions": {"Plan better."},
	}

	r := asUser(postForm("/agents/"+mine.ID.String()+"/update", form), me)
	r.SetPathValue("id", mine.ID.String())

	rec := httptest.NewRecorder()
	h.Update(rec, r)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/agents/", rec.Header().Get("Location"))

	updated := sys.agents[0]
	assert.Equal(t, "Planner v2", updated.Name)
	assert.Equal(t, agents.VendorGoogle, updated.Vendor)
}

func TestDeleteLinked(t *testing.T) {
	me := uuid.New()
	mine := testAgent("Planner", "gpt-4.1", me)

	sys := &fakeSystem{
		agents: []agents.AgentWithCreator{mine},
		linked: map[uuid.UUID]int{mine.ID: 2},
	}
	h := testHandler(t, sys)

	r := asUser(postForm("/agents/"+mine.ID.String()+"/delete", url.Values{}), me)
	r.SetPathValue("id", mine.ID.String())

	rec := httptest.NewRecorder()
	h.Delete(rec, r)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/agents/"+mine.ID.String()+"/update", rec.Header().Get("Location"))
	require.Len(t, sys.agents, 1)

	flashes := popFlashes(t, rec)
	require.Len(t, flashes, 1)
	assert.Equal(t, "Cannot delete this agent as it is linked to 2 conversation(s).", flashes[0].Message)
}

func TestDelete(t *testing.T) {
	me := uuid.New()
	mine := testAgent("Planner", "gpt-4.1", me)

	sys := &fakeSystem{agents: []agents.AgentWithCreator{mine}}
	h := testHandler(t, sys)

	r := asUser(postForm("/agents/"+mine.ID.String()+"/delete", url.Values{}), me)
	r.SetPathValue("id", mine.ID.String())

	rec := httptest.NewRecorder()
	h.Delete(rec, r)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/agents/", rec.Header().Get("Location"))
	assert.Empty(t, sys.agents)
}
