package routes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"sitechat/sitechat/controllers"
	"sitechat/sitechat/middlewares"
	"sitechat/sitechat/services/answer"
	"sitechat/sitechat/services/llm"
	"sitechat/sitechat/services/scraper"
	"sitechat/sitechat/sessions"
	"sitechat/sitechat/utils/types"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	res scraper.Result
}

func (f stubFetcher) Fetch(ctx context.Context, targetURL string) scraper.Result {
	res := f.res
	res.URL = targetURL
	return res
}

type testApp struct {
	server *httptest.Server
	client *http.Client
	store  *sessions.MemoryStore
	mock   *llm.MockProvider
}

// --- Helpers ---
func newTestApp(t *testing.T, fetched scraper.Result) *testApp {
	t.Helper()
	store := sessions.NewMemoryStore()
	mock := llm.NewMockProvider("It's a test page.")
	factory, _ := llm.MockFactory(mock)
	chatCtrl := controllers.NewChatController(store, stubFetcher{res: fetched}, answer.NewGenerator(factory))
	handler := NewRouter(chatCtrl, controllers.NewHealthController(store), Options{
		SessionSecret:  []byte("test-secret"),
		SessionTTL:     time.Hour,
		RequestTimeout: 10 * time.Second,
	})
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &testApp{server: server, client: client, store: store, mock: mock}
}

func exampleResult() scraper.Result {
	return scraper.Result{Title: "Example Domain", Text: "Example Domain This domain is for use in illustrative examples."}
}

func (a *testApp) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.Get(a.server.URL + path)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (a *testApp) postForm(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.PostForm(a.server.URL+path, form)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func setupForm() url.Values {
	return url.Values{
		"website_url":  {"https://example.com"},
		"api_key":      {"sk-test"},
		"api_provider": {"openai"},
	}
}

// session returns the stored session behind the client cookie, or nil.
func (a *testApp) session(t *testing.T) *sessions.Session {
	t.Helper()
	u, _ := url.Parse(a.server.URL)
	for _, c := range a.client.Jar.Cookies(u) {
		if c.Name != middlewares.SessionCookieName {
			continue
		}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(c)
		var sid string
		middlewares.SessionMiddleware([]byte("test-secret"), time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid = middlewares.SessionFromContext(r.Context())
		})).ServeHTTP(httptest.NewRecorder(), req)
		s, err := a.store.Get(context.Background(), sid)
		require.NoError(t, err)
		return s
	}
	return nil
}

func TestIndexRendersForm(t *testing.T) {
	app := newTestApp(t, exampleResult())
	resp, body := app.get(t, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, `name="website_url"`)
	assert.Contains(t, body, `name="api_key"`)
	assert.Contains(t, body, `value="anthropic"`)
}

func TestSetupThenAsk(t *testing.T) {
	app := newTestApp(t, exampleResult())

	resp, _ := app.postForm(t, "/", setupForm())
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/chat", resp.Header.Get("Location"))

	resp, body := app.get(t, "/chat")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Example Domain")

	resp, body = app.postForm(t, "/chat", url.Values{"user_query": {"What is this page about?"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "What is this page about?")
	assert.Contains(t, body, "It&#39;s a test page.")

	s := app.session(t)
	require.NotNil(t, s)
	assert.Equal(t, []sessions.Turn{
		{Role: sessions.RoleUser, Content: "What is this page about?"},
		{Role: sessions.RoleAI, Content: "It's a test page."},
	}, s.ChatHistory)
	assert.Equal(t, "https://example.com", s.WebsiteURL)
	assert.Equal(t, "openai", s.APIProvider)
}

func TestSetupMissingFieldsRerenders(t *testing.T) {
	cases := []struct {
		name  string
		drop  string
		value string
		want  string
	}{
		{"url", "website_url", "", controllers.MsgMissingURL},
		{"key", "api_key", "", controllers.MsgMissingAPIKey},
		{"provider", "api_provider", "", controllers.MsgMissingProvider},
		{"bad provider", "api_provider", "gemini", controllers.MsgInvalidProvider},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t, exampleResult())
			form := setupForm()
			form.Set(tc.drop, tc.value)

			resp, body := app.postForm(t, "/", form)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, body, tc.want)
			assert.Nil(t, app.session(t))
		})
	}
}

func TestChatRedirectsWhenUnconfigured(t *testing.T) {
	app := newTestApp(t, exampleResult())

	resp, _ := app.get(t, "/chat")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp, _ = app.postForm(t, "/chat", url.Values{"user_query": {"hello"}})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	assert.Empty(t, app.mock.Prompts())
}

func TestEmptyQueryLeavesHistory(t *testing.T) {
	app := newTestApp(t, exampleResult())
	app.postForm(t, "/", setupForm())
	app.postForm(t, "/chat", url.Values{"user_query": {"first"}})

	resp, _ := app.postForm(t, "/chat", url.Values{"user_query": {""}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, app.session(t).ChatHistory, 2)
}

func TestProviderErrorIsServerError(t *testing.T) {
	app := newTestApp(t, exampleResult())
	app.mock.Err = errors.New("invalid api key")
	app.postForm(t, "/", setupForm())

	resp, _ := app.postForm(t, "/chat", url.Values{"user_query": {"hello"}})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	s := app.session(t)
	require.Len(t, s.ChatHistory, 1)
	assert.Equal(t, sessions.RoleUser, s.ChatHistory[0].Role)
}

func TestFetchFailureStillConfigures(t *testing.T) {
	app := newTestApp(t, scraper.Result{
		Text: scraper.ErrorPrefix + "dial tcp: no such host",
		Err:  errors.New("dial tcp: no such host"),
	})
	resp, _ := app.postForm(t, "/", setupForm())
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	resp, body := app.get(t, "/chat")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Error loading content from the URL: dial tcp: no such host")

	s := app.session(t)
	assert.True(t, s.FetchFailed)
	assert.True(t, strings.HasPrefix(s.WebsiteContent, scraper.ErrorPrefix))
}

func TestHealthRoute(t *testing.T) {
	app := newTestApp(t, exampleResult())
	resp, body := app.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","store":"ok"}`, body)
}

func dialChat(t *testing.T, app *testApp) *websocket.Conn {
	t.Helper()
	u, _ := url.Parse(app.server.URL)
	header := http.Header{}
	for _, c := range app.client.Jar.Cookies(u) {
		header.Add("Cookie", c.String())
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(app.server.URL, "http")+"/chat/ws", &websocket.DialOptions{
		HTTPHeader: header,
	})
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

func TestChatWebsocket(t *testing.T) {
	app := newTestApp(t, exampleResult())
	app.postForm(t, "/", setupForm())
	conn := dialChat(t, app)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for i := 0; i < 2; i++ {
		require.NoError(t, wsjson.Write(ctx, conn, types.ChatSocketRequest{UserQuery: "What is this page about?"}))
		var reply types.ChatSocketReply
		require.NoError(t, wsjson.Read(ctx, conn, &reply))
		assert.Equal(t, "ai", reply.Role)
		assert.Equal(t, "It's a test page.", reply.Content)
		assert.Empty(t, reply.Error)
	}
	conn.Close(websocket.StatusNormalClosure, "")

	assert.Len(t, app.session(t).ChatHistory, 4)
}

func TestChatWebsocketUnconfigured(t *testing.T) {
	for _, query := range []string{"hello", ""} {
		t.Run(fmt.Sprintf("query %q", query), func(t *testing.T) {
			app := newTestApp(t, exampleResult())
			// Any request issues the session cookie.
			app.get(t, "/")
			conn := dialChat(t, app)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			require.NoError(t, wsjson.Write(ctx, conn, types.ChatSocketRequest{UserQuery: query}))
			var reply types.ChatSocketReply
			require.NoError(t, wsjson.Read(ctx, conn, &reply))
			assert.Equal(t, msgNotConfigured, reply.Error)

			_, _, err := conn.Read(ctx)
			assert.Equal(t, websocket.StatusPolicyViolation, websocket.CloseStatus(err))
		})
	}
}

func TestChatWebsocketEmptyQuery(t *testing.T) {
	app := newTestApp(t, exampleResult())
	app.postForm(t, "/", setupForm())
	conn := dialChat(t, app)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, wsjson.Write(ctx, conn, types.ChatSocketRequest{UserQuery: ""}))
	var reply types.ChatSocketReply
	require.NoError(t, wsjson.Read(ctx, conn, &reply))
	assert.Equal(t, msgEmptyQuery, reply.Error)

	require.NoError(t, wsjson.Write(ctx, conn, types.ChatSocketRequest{UserQuery: "still open?"}))
	require.NoError(t, wsjson.Read(ctx, conn, &reply))
	assert.Equal(t, "It's a test page.", reply.Content)
	conn.Close(websocket.StatusNormalClosure, "")

	assert.Len(t, app.session(t).ChatHistory, 2)
	assert.Len(t, app.mock.Prompts(), 1)
}
