package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"

	"yatube/internal/auth"
	"yatube/internal/config"
	"yatube/internal/media"
	"yatube/internal/metrics"
	"yatube/internal/models"
	"yatube/internal/store"
)

const apiPrefix = "/api/v1"

type testServer struct {
	t       *testing.T
	store   *store.Store
	metrics *metrics.Metrics
	handler http.Handler
	tokens  map[string]string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	ctx := context.Background()
	st, err := store.Open(ctx, config.Database{
		SQLitePath: "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	issuer := auth.NewJWTIssuer("test-secret", time.Hour, 24*time.Hour)
	authn := auth.NewAuthenticator(st, issuer, "test-secret", time.Hour)
	files := &media.Storage{Root: t.TempDir(), URL: "/media/"}

	a := New(st, authn, files, m, logger, time.Minute)
	return &testServer{
		t:       t,
		store:   st,
		metrics: m,
		handler: a.Routes(apiPrefix, promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
		tokens:  map[string]string{},
	}
}

// user creates username and remembers its API token.
func (s *testServer) user(username string) *models.User {
	s.t.Helper()
	ctx := context.Background()
	u, err := s.store.CreateUser(ctx, username, username+"@example.com", "password123")
	if err != nil {
		s.t.Fatalf("create user %s: %v", username, err)
	}
	key, err := s.store.TokenFor(ctx, u.ID)
	if err != nil {
		s.t.Fatalf("token for %s: %v", username, err)
	}
	s.tokens[username] = key
	return u
}

func (s *testServer) group(title, slug string) *models.Group {
	s.t.Helper()
	g := &models.Group{Title: title, Slug: slug, Description: title + " group"}
	if err := s.store.CreateGroup(context.Background(), g); err != nil {
		s.t.Fatalf("create group: %v", err)
	}
	return g
}

// do sends a request as username; an empty username is anonymous.
func (s *testServer) do(method, path, username, body string) *httptest.ResponseRecorder {
	s.t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, apiPrefix+path, rd)
	r.Header.Set("Content-Type", "application/json")
	if username != "" {
		r.Header.Set("Authorization", "Token "+s.tokens[username])
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, w.Code, w.Body.String())
	}
}

type postBody struct {
	ID      uint    `json:"id"`
	Text    string  `json:"text"`
	Author  string  `json:"author"`
	Group   *uint   `json:"group"`
	Image   *string `json:"image"`
	PubDate string  `json:"pub_date"`
}

type commentBody struct {
	ID     uint   `json:"id"`
	Author string `json:"author"`
	Post   uint   `json:"post"`
	Text   string `json:"text"`
}

type followBody struct {
	ID        uint   `json:"id"`
	User      string `json:"user"`
	Following string `json:"following"`
}

func TestPostOwnership(t *testing.T) {
	s := newTestServer(t)
	s.user("alice")
	s.user("bob")

	w := s.do(http.MethodPost, "/posts/", "alice", `{"text":"hello"}`)
	expectStatus(t, w, http.StatusCreated)
	var post postBody
	decode(t, w, &post)
	if post.Author != "alice" || post.Text != "hello" || post.Group != nil || post.Image != nil {
		t.Fatalf("unexpected post %+v", post)
	}
	path := fmt.Sprintf("/posts/%d/", post.ID)

	w = s.do(http.MethodPatch, path, "bob", `{"text":"x"}`)
	expectStatus(t, w, http.StatusForbidden)
	w = s.do(http.MethodDelete, path, "bob", "")
	expectStatus(t, w, http.StatusForbidden)
	if got := testutil.ToFloat64(s.metrics.PermissionDenied.WithLabelValues("post")); got != 2 {
		t.Errorf("expected 2 denials, got %v", got)
	}

	w = s.do(http.MethodPatch, path, "alice", `{"text":"x"}`)
	expectStatus(t, w, http.StatusOK)
	decode(t, w, &post)
	if post.Text != "x" || post.Author != "alice" {
		t.Fatalf("unexpected post after patch %+v", post)
	}

	w = s.do(http.MethodGet, path, "", "")
	expectStatus(t, w, http.StatusOK)
	decode(t, w, &post)
	if post.Text != "x" {
		t.Fatalf("patch not persisted: %+v", post)
	}

	w = s.do(http.MethodDelete, path, "alice", "")
	expectStatus(t, w, http.StatusNoContent)
	w = s.do(http.MethodGet, path, "", "")
	expectStatus(t, w, http.StatusNotFound)
}

func TestPostServerAssignedFieldsIgnored(t *testing.T) {
	s := newTestServer(t)
	s.user("alice")
	s.user("bob")

	w := s.do(http.MethodPost, "/posts/", "alice", `{"text":"hi","author":"bob","id":999,"pub_date":"2000-01-01T00:00:00Z"}`)
	expectStatus(t, w, http.StatusCreated)
	var post postBody
	decode(t, w, &post)
	if post.Author != "alice" || post.ID == 999 || strings.HasPrefix(post.PubDate, "2000") {
		t.Fatalf("server-assigned fields taken from client: %+v", post)
	}
}

func TestPostValidation(t *testing.T) {
	s := newTestServer(t)
	s.user("alice")
	g := s.group("Cats", "cats")

	w := s.do(http.MethodPost, "/posts/", "alice", `{}`)
	expectStatus(t, w, http.StatusBadRequest)
	var errs map[string][]string
	decode(t, w, &errs)
	if len(errs["text"]) == 0 {
		t.Fatalf("expected text error, got %v", errs)
	}

	w = s.do(http.MethodPost, "/posts/", "alice", `{"text":"hi","group":12345}`)
	expectStatus(t, w, http.StatusBadRequest)

	w = s.do(http.MethodPost, "/posts/", "alice", `{"text":`)
	expectStatus(t, w, http.StatusBadRequest)

	w = s.do(http.MethodPost, "/posts/", "alice", fmt.Sprintf(`{"text":"hi","group":%d}`, g.ID))
	expectStatus(t, w, http.StatusCreated)
	var post postBody
	decode(t, w, &post)
	if post.Group == nil || *post.Group != g.ID {
		t.Fatalf("expected group %d, got %+v", g.ID, post)
	}

	// PUT requires text, PATCH does not.
	path := fmt.Sprintf("/posts/%d/", post.ID)
	w = s.do(http.MethodPut, path, "alice", `{"group":null}`)
	expectStatus(t, w, http.StatusBadRequest)
	w = s.do(http.MethodPatch, path, "alice", `{"group":null}`)
	expectStatus(t, w, http.StatusOK)
	decode(t, w, &post)
	if post.Group != nil || post.Text != "hi" {
		t.Fatalf("unexpected post after clearing group %+v", post)
	}
}

func TestAnonymousWritesRejected(t *testing.T) {
	s := newTestServer(t)
	s.user("alice")
	w := s.do(http.MethodPost, "/posts/", "alice", `{"text":"hello"}`)
	expectStatus(t, w, http.StatusCreated)
	var post postBody
	decode(t, w, &post)

	cases := []struct {
		method, path, body string
	}{
		{http.MethodPost, "/posts/", `{"text":"x"}`},
		{http.MethodPatch, fmt.Sprintf("/posts/%d/", post.ID), `{"text":"x"}`},
		{http.MethodDelete, fmt.Sprintf("/posts/%d/", post.ID), ""},
		{http.MethodPost, fmt.Sprintf("/posts/%d/comments/", post.ID), `{"text":"x"}`},
		{http.MethodPost, "/follow/", `{"following":"alice"}`},
		{http.MethodGet, "/follow/", ""},
		{http.MethodGet, "/users/me/", ""},
	}
	for _, c := range cases {
		t.Run(c.method+" "+c.path, func(t *testing.T) {
			w := s.do(c.method, c.path, "", c.body)
			expectStatus(t, w, http.StatusUnauthorized)
			if w.Header().Get("WWW-Authenticate") == "" {
				t.Error("missing WWW-Authenticate header")
			}
		})
	}
}

func TestInvalidTokenRejectedOnReads(t *testing.T) {
	s := newTestServer(t)
	r := httptest.NewRequest(http.MethodGet, apiPrefix+"/posts/", nil)
	r.Header.Set("Authorization", "Token nope")
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	expectStatus(t, w, http.StatusUnauthorized)
}

func TestFollow(t *testing.T) {
	s := newTestServer(t)
	alice := s.user("alice")
	s.user("bob")
	s.user("carol")

	w := s.do(http.MethodPost, "/follow/", "alice", `{"following":"alice"}`)
	expectStatus(t, w, http.StatusBadRequest)
	var errs map[string][]string
	decode(t, w, &errs)
	if len(errs["following"]) == 0 {
		t.Fatalf("expected error on following, got %v", errs)
	}

	w = s.do(http.MethodPost, "/follow/", "alice", `{"following":"nobody"}`)
	expectStatus(t, w, http.StatusBadRequest)

	w = s.do(http.MethodPost, "/follow/", "alice", `{"following":"bob","user":"carol"}`)
	expectStatus(t, w, http.StatusCreated)
	var f followBody
	decode(t, w, &f)
	if f.User != "alice" || f.Following != "bob" {
		t.Fatalf("unexpected follow %+v", f)
	}

	w = s.do(http.MethodPost, "/follow/", "alice", `{"following":"bob"}`)
	expectStatus(t, w, http.StatusBadRequest)
	follows, err := s.store.ListFollows(context.Background(), alice.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(follows) != 1 {
		t.Fatalf("expected exactly one edge, got %d", len(follows))
	}

	w = s.do(http.MethodPost, "/follow/", "alice", `{"following":"carol"}`)
	expectStatus(t, w, http.StatusCreated)
	w = s.do(http.MethodPost, "/follow/", "bob", `{"following":"carol"}`)
	expectStatus(t, w, http.StatusCreated)

	var list []followBody
	w = s.do(http.MethodGet, "/follow/", "alice", "")
	expectStatus(t, w, http.StatusOK)
	decode(t, w, &list)
	if len(list) != 2 {
		t.Fatalf("expected alice's two edges, got %+v", list)
	}
	for _, f := range list {
		if f.User != "alice" {
			t.Fatalf("foreign edge in alice's list: %+v", f)
		}
	}

	w = s.do(http.MethodGet, "/follow/?search=BO", "alice", "")
	expectStatus(t, w, http.StatusOK)
	decode(t, w, &list)
	if len(list) != 1 || list[0].Following != "bob" {
		t.Fatalf("expected only bob, got %+v", list)
	}

	// "ali" matches the follower side, so every edge stays.
	w = s.do(http.MethodGet, "/follow/?search=ali", "alice", "")
	expectStatus(t, w, http.StatusOK)
	decode(t, w, &list)
	if len(list) != 2 {
		t.Fatalf("expected two edges, got %+v", list)
	}

	w = s.do(http.MethodGet, "/follow/?search=%25", "alice", "")
	expectStatus(t, w, http.StatusOK)
	decode(t, w, &list)
	if len(list) != 0 {
		t.Fatalf("wildcard must match literally, got %+v", list)
	}
}

func TestComments(t *testing.T) {
	s := newTestServer(t)
	s.user("alice")
	s.user("bob")

	var first, second postBody
	w := s.do(http.MethodPost, "/posts/", "alice", `{"text":"first"}`)
	expectStatus(t, w, http.StatusCreated)
	decode(t, w, &first)
	w = s.do(http.MethodPost, "/posts/", "alice", `{"text":"second"}`)
	expectStatus(t, w, http.StatusCreated)
	decode(t, w, &second)

	w = s.do(http.MethodPost, fmt.Sprintf("/posts/%d/comments/", first.ID), "bob",
		fmt.Sprintf(`{"text":"nice","post":%d,"author":"alice"}`, second.ID))
	expectStatus(t, w, http.StatusCreated)
	var c commentBody
	decode(t, w, &c)
	if c.Post != first.ID || c.Author != "bob" {
		t.Fatalf("unexpected comment %+v", c)
	}
	if got := testutil.ToFloat64(s.metrics.CommentsCreated.WithLabelValues("comments")); got != 1 {
		t.Errorf("expected 1 created comment, got %v", got)
	}

	var list []commentBody
	w = s.do(http.MethodGet, fmt.Sprintf("/posts/%d/comments/", second.ID), "", "")
	expectStatus(t, w, http.StatusOK)
	decode(t, w, &list)
	if len(list) != 0 {
		t.Fatalf("comment leaked to another post: %+v", list)
	}
	w = s.do(http.MethodGet, fmt.Sprintf("/posts/%d/comments/", first.ID), "", "")
	expectStatus(t, w, http.StatusOK)
	decode(t, w, &list)
	if len(list) != 1 || list[0].ID != c.ID {
		t.Fatalf("expected the comment, got %+v", list)
	}

	// Addressed through the wrong post the comment does not exist.
	w = s.do(http.MethodGet, fmt.Sprintf("/posts/%d/comments/%d/", second.ID, c.ID), "", "")
	expectStatus(t, w, http.StatusNotFound)

	path := fmt.Sprintf("/posts/%d/comments/%d/", first.ID, c.ID)
	w = s.do(http.MethodPatch, path, "alice", `{"text":"edited"}`)
	expectStatus(t, w, http.StatusForbidden)
	w = s.do(http.MethodPatch, path, "bob", `{"text":"edited"}`)
	expectStatus(t, w, http.StatusOK)
	decode(t, w, &c)
	if c.Text != "edited" {
		t.Fatalf("unexpected comment %+v", c)
	}

	w = s.do(http.MethodPost, "/posts/9999/comments/", "bob", `{"text":"x"}`)
	expectStatus(t, w, http.StatusNotFound)
	w = s.do(http.MethodPost, "/posts/9999/comments/", "", `{"text":"x"}`)
	expectStatus(t, w, http.StatusNotFound)
	w = s.do(http.MethodGet, "/posts/9999/comments/", "", "")
	expectStatus(t, w, http.StatusNotFound)

	// Deleting the post removes its comments.
	w = s.do(http.MethodDelete, fmt.Sprintf("/posts/%d/", first.ID), "alice", "")
	expectStatus(t, w, http.StatusNoContent)
	if _, err := s.store.GetComment(context.Background(), first.ID, c.ID); err != store.ErrNotFound {
		t.Fatalf("expected comment gone, got %v", err)
	}
}

func TestPagination(t *testing.T) {
	s := newTestServer(t)
	s.user("alice")
	for i := 0; i < 5; i++ {
		w := s.do(http.MethodPost, "/posts/", "alice", fmt.Sprintf(`{"text":"post %d"}`, i))
		expectStatus(t, w, http.StatusCreated)
	}

	var all []postBody
	w := s.do(http.MethodGet, "/posts/", "", "")
	expectStatus(t, w, http.StatusOK)
	decode(t, w, &all)
	if len(all) != 5 {
		t.Fatalf("expected 5 posts, got %d", len(all))
	}

	var page struct {
		Count    int64      `json:"count"`
		Next     *string    `json:"next"`
		Previous *string    `json:"previous"`
		Results  []postBody `json:"results"`
	}
	w = s.do(http.MethodGet, "/posts/?limit=2&offset=2", "", "")
	expectStatus(t, w, http.StatusOK)
	decode(t, w, &page)
	if page.Count != 5 || len(page.Results) != 2 || page.Results[0].Text != "post 2" {
		t.Fatalf("unexpected page %+v", page)
	}
	if page.Next == nil || !strings.Contains(*page.Next, "offset=4") {
		t.Errorf("unexpected next %v", page.Next)
	}
	if page.Previous == nil || strings.Contains(*page.Previous, "offset") {
		t.Errorf("unexpected previous %v", page.Previous)
	}

	w = s.do(http.MethodGet, "/posts/?limit=2&offset=4", "", "")
	expectStatus(t, w, http.StatusOK)
	decode(t, w, &page)
	if page.Next != nil || len(page.Results) != 1 {
		t.Fatalf("unexpected last page %+v", page)
	}
}

func TestGroupsReadOnly(t *testing.T) {
	s := newTestServer(t)
	s.user("alice")
	g := s.group("Cats", "cats")

	var groups []struct {
		ID    uint   `json:"id"`
		Title string `json:"title"`
		Slug  string `json:"slug"`
	}
	w := s.do(http.MethodGet, "/groups/", "", "")
	expectStatus(t, w, http.StatusOK)
	decode(t, w, &groups)
	if len(groups) != 1 || groups[0].Slug != "cats" {
		t.Fatalf("unexpected groups %+v", groups)
	}

	w = s.do(http.MethodGet, fmt.Sprintf("/groups/%d/", g.ID), "", "")
	expectStatus(t, w, http.StatusOK)
	w = s.do(http.MethodGet, "/groups/42/", "", "")
	expectStatus(t, w, http.StatusNotFound)

	w = s.do(http.MethodPost, "/groups/", "alice", `{"title":"Dogs","slug":"dogs"}`)
	expectStatus(t, w, http.StatusMethodNotAllowed)
	w = s.do(http.MethodDelete, fmt.Sprintf("/groups/%d/", g.ID), "alice", "")
	expectStatus(t, w, http.StatusMethodNotAllowed)
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/users/", "", `{"username":"dave","email":"dave@example.com","password":"hunter22pw"}`)
	expectStatus(t, w, http.StatusCreated)
	w = s.do(http.MethodPost, "/users/", "", `{"username":"dave","email":"dave@example.com","password":"hunter22pw"}`)
	expectStatus(t, w, http.StatusBadRequest)

	w = s.do(http.MethodPost, "/auth/token/login/", "", `{"username":"dave","password":"wrong"}`)
	expectStatus(t, w, http.StatusBadRequest)

	w = s.do(http.MethodPost, "/auth/token/login/", "", `{"username":"dave","password":"hunter22pw"}`)
	expectStatus(t, w, http.StatusOK)
	var token struct {
		AuthToken string `json:"auth_token"`
	}
	decode(t, w, &token)
	s.tokens["dave"] = token.AuthToken

	w = s.do(http.MethodGet, "/users/me/", "dave", "")
	expectStatus(t, w, http.StatusOK)
	var me struct {
		Username string `json:"username"`
	}
	decode(t, w, &me)
	if me.Username != "dave" {
		t.Fatalf("unexpected me %+v", me)
	}

	w = s.do(http.MethodPost, "/jwt/create/", "", `{"username":"dave","password":"hunter22pw"}`)
	expectStatus(t, w, http.StatusOK)
	var pair auth.TokenPair
	decode(t, w, &pair)

	r := httptest.NewRequest(http.MethodPost, apiPrefix+"/posts/", strings.NewReader(`{"text":"via jwt"}`))
	r.Header.Set("Authorization", "Bearer "+pair.Access)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, r)
	expectStatus(t, rec, http.StatusCreated)

	w = s.do(http.MethodPost, "/jwt/verify/", "", fmt.Sprintf(`{"token":%q}`, pair.Access))
	expectStatus(t, w, http.StatusOK)
	w = s.do(http.MethodPost, "/jwt/refresh/", "", fmt.Sprintf(`{"refresh":%q}`, pair.Refresh))
	expectStatus(t, w, http.StatusOK)
	w = s.do(http.MethodPost, "/jwt/refresh/", "", `{"refresh":"garbage"}`)
	expectStatus(t, w, http.StatusUnauthorized)
	w = s.do(http.MethodPost, "/jwt/create/", "", `{"username":"dave","password":"wrong"}`)
	expectStatus(t, w, http.StatusUnauthorized)

	w = s.do(http.MethodPost, "/auth/token/logout/", "dave", "")
	expectStatus(t, w, http.StatusNoContent)
	w = s.do(http.MethodGet, "/users/me/", "dave", "")
	expectStatus(t, w, http.StatusUnauthorized)
}

func TestSessionLogin(t *testing.T) {
	s := newTestServer(t)
	s.user("alice")

	w := s.do(http.MethodPost, "/auth/session/login/", "", `{"username":"alice","password":"password123"}`)
	expectStatus(t, w, http.StatusOK)
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}

	r := httptest.NewRequest(http.MethodPost, apiPrefix+"/posts/", strings.NewReader(`{"text":"via session"}`))
	for _, c := range cookies {
		r.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, r)
	expectStatus(t, rec, http.StatusCreated)
	var post postBody
	decode(t, rec, &post)
	if post.Author != "alice" {
		t.Fatalf("unexpected author %q", post.Author)
	}
}

func TestRequestMetrics(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodGet, "/posts/", "", "")
	s.do(http.MethodPost, "/posts/", "", `{"text":"x"}`)

	if got := testutil.ToFloat64(s.metrics.SuccessfulRequests.WithLabelValues(apiPrefix + "/posts/")); got != 1 {
		t.Errorf("expected 1 successful request, got %v", got)
	}
	if got := testutil.ToFloat64(s.metrics.BadRequests.WithLabelValues(apiPrefix + "/posts/")); got != 1 {
		t.Errorf("expected 1 unsuccessful request, got %v", got)
	}

	r := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, r)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "successful_request") {
		t.Error("metrics endpoint does not expose request counters")
	}
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/nothing/", "", "")
	expectStatus(t, w, http.StatusNotFound)
	var d detail
	decode(t, w, &d)
	if d.Detail != "Not found." {
		t.Fatalf("unexpected body %+v", d)
	}
}
