package graphql

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/IgorGrieder/shortlink/internal/processing/links"
	"github.com/IgorGrieder/shortlink/internal/processing/taxonomy"
	gql "github.com/IgorGrieder/shortlink/pkg/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend is an in-memory createURL server keyed by alias.
type fakeBackend struct {
	mu       sync.Mutex
	token    string
	urls     map[string]string
	seq      int
	requests []map[string]json.RawMessage
	override string
}

func newFakeBackend(t *testing.T, token string) (*fakeBackend, *httptest.Server) {
	t.Helper()
	b := &fakeBackend{token: token, urls: make(map[string]string)}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	return b, srv
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if b.override != "" {
		_, _ = w.Write([]byte(b.override))
		return
	}

	var req struct {
		Query     string                     `json:"query"`
		Variables map[string]json.RawMessage `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	b.requests = append(b.requests, req.Variables)

	var token string
	_ = json.Unmarshal(req.Variables["authToken"], &token)
	if token != b.token {
		writeErrors(w, "invalidAuthToken")
		return
	}

	var in struct {
		OriginalURL string  `json:"originalURL"`
		CustomAlias *string `json:"customAlias"`
	}
	_ = json.Unmarshal(req.Variables["urlInput"], &in)

	alias := ""
	if in.CustomAlias != nil {
		alias = *in.CustomAlias
		if _, exists := b.urls[alias]; exists {
			writeErrors(w, "aliasAlreadyExist")
			return
		}
	} else {
		b.seq++
		alias = fmt.Sprintf("gen%d", b.seq)
	}
	b.urls[alias] = in.OriginalURL

	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": map[string]any{
			"createURL": map[string]string{"alias": alias, "originalURL": in.OriginalURL},
		},
	})
}

func (b *fakeBackend) recorded() []map[string]json.RawMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]map[string]json.RawMessage(nil), b.requests...)
}

func writeErrors(w http.ResponseWriter, codes ...string) {
	errs := make([]map[string]any, 0, len(codes))
	for _, c := range codes {
		errs = append(errs, map[string]any{"message": c, "extensions": map[string]string{"code": c}})
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"data": nil, "errors": errs})
}

func newURLClient(srv *httptest.Server) *URLClient {
	return NewURLClient(gql.NewClient(Endpoint(srv.URL)))
}

func ptr(s string) *string { return &s }

func TestEndpoint(t *testing.T) {
	assert.Equal(t, "https://api.short.ly/graphql", Endpoint("https://api.short.ly"))
	assert.Equal(t, "https://api.short.ly/graphql", Endpoint("https://api.short.ly/"))
}

func TestCreateURL_AutoAliasSendsNull(t *testing.T) {
	b, srv := newFakeBackend(t, "tok")
	c := newURLClient(srv)

	link, err := c.CreateURL(context.Background(), links.CreateURLInput{
		OriginalURL:     "https://example.com",
		AuthToken:       "tok",
		CaptchaResponse: "null",
	})

	require.NoError(t, err)
	assert.Equal(t, links.CreatedLink{Alias: "gen1", OriginalURL: "https://example.com"}, link)

	reqs := b.recorded()
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `{"originalURL":"https://example.com","customAlias":null}`, string(reqs[0]["urlInput"]))
	assert.JSONEq(t, `"null"`, string(reqs[0]["captchaResponse"]))
	assert.JSONEq(t, `"tok"`, string(reqs[0]["authToken"]))
}

func TestCreateURL_CustomAlias(t *testing.T) {
	b, srv := newFakeBackend(t, "tok")
	c := newURLClient(srv)

	link, err := c.CreateURL(context.Background(), links.CreateURLInput{
		OriginalURL: "https://example.com",
		CustomAlias: ptr("abc"),
		AuthToken:   "tok",
	})

	require.NoError(t, err)
	assert.Equal(t, "abc", link.Alias)
	reqs := b.recorded()
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `{"originalURL":"https://example.com","customAlias":"abc"}`, string(reqs[0]["urlInput"]))
}

func TestCreateURL_AliasConflict(t *testing.T) {
	_, srv := newFakeBackend(t, "tok")
	c := newURLClient(srv)
	in := links.CreateURLInput{OriginalURL: "https://example.com", CustomAlias: ptr("abc"), AuthToken: "tok"}

	_, err := c.CreateURL(context.Background(), in)
	require.NoError(t, err)

	_, err = c.CreateURL(context.Background(), in)
	var remote *links.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, []taxonomy.Code{taxonomy.CodeAliasTaken}, remote.Codes)
}

func TestCreateURL_Unauthorized(t *testing.T) {
	_, srv := newFakeBackend(t, "tok")
	c := newURLClient(srv)

	_, err := c.CreateURL(context.Background(), links.CreateURLInput{OriginalURL: "https://example.com", AuthToken: "wrong"})

	var remote *links.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, []taxonomy.Code{taxonomy.CodeUnauthorized}, remote.Codes)
}

func TestCreateURL_CodesKeepRemoteOrder(t *testing.T) {
	b, srv := newFakeBackend(t, "tok")
	b.override = `{"errors":[
		{"message":"a","extensions":{"code":"requesterNotHuman"}},
		{"message":"b"},
		{"message":"c","extensions":{"code":"invalidAuthToken"}}
	]}`
	c := newURLClient(srv)

	_, err := c.CreateURL(context.Background(), links.CreateURLInput{OriginalURL: "https://example.com", AuthToken: "tok"})

	var remote *links.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, []taxonomy.Code{taxonomy.CodeNotHuman, taxonomy.CodeUnauthorized}, remote.Codes)
}

func TestCreateURL_ErrorsWithoutCodes(t *testing.T) {
	b, srv := newFakeBackend(t, "tok")
	b.override = `{"errors":[{"message":"boom"}]}`
	c := newURLClient(srv)

	_, err := c.CreateURL(context.Background(), links.CreateURLInput{OriginalURL: "https://example.com", AuthToken: "tok"})

	var remote *links.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Empty(t, remote.Codes)
}

func TestCreateURL_MissingDataIsEmptySuccess(t *testing.T) {
	b, srv := newFakeBackend(t, "tok")
	b.override = `{"data":null}`
	c := newURLClient(srv)

	link, err := c.CreateURL(context.Background(), links.CreateURLInput{OriginalURL: "https://example.com", AuthToken: "tok"})

	require.NoError(t, err)
	assert.True(t, link.IsEmpty())
}

func TestCreateURL_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := Endpoint(srv.URL)
	srv.Close()
	c := NewURLClient(gql.NewClient(endpoint))

	_, err := c.CreateURL(context.Background(), links.CreateURLInput{OriginalURL: "https://example.com", AuthToken: "tok"})

	require.ErrorIs(t, err, links.ErrTransport)
}

func TestCreateURL_ThroughService(t *testing.T) {
	_, srv := newFakeBackend(t, "tok")
	svc := links.NewService(links.Deps{
		Creator: newURLClient(srv),
		Auth:    staticToken("tok"),
		Captcha: placeholderCaptcha{},
	}, "https://short.ly")

	link, err := svc.CreateShortLink(context.Background(), links.LinkRequest{OriginalURL: "https://example.com", Alias: "abc"})
	require.NoError(t, err)
	assert.Equal(t, "https://short.ly/r/abc", svc.AliasToLink(link.Alias))

	_, err = svc.CreateShortLink(context.Background(), links.LinkRequest{OriginalURL: "https://example.com", Alias: "abc"})
	f, ok := links.AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, links.KindCreation, f.Kind)
	assert.Equal(t, taxonomy.CodeAliasTaken, f.Code)
}

type staticToken string

func (s staticToken) AuthToken(context.Context) (string, error) { return string(s), nil }

type placeholderCaptcha struct{}

func (placeholderCaptcha) Execute(context.Context, string) (string, error) { return "null", nil }
