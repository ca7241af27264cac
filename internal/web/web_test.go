package web_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/userdata-go/internal/factory"
	"github.com/mcoot/userdata-go/internal/services/link"
	"github.com/mcoot/userdata-go/internal/web"
)

// webTestServer provides a test server for web interface testing
type webTestServer struct {
	t       *testing.T
	handler http.Handler
	app     *factory.TestApp
	cookies *cookieJar
}

func bothServers() link.Config {
	return link.Config{
		GameURL:         "http://game.example/",
		DefaultUserdata: "https://userdata.example",
		LocalUserdata:   "http://game.example/userdata",
		AllowLocal:      true,
		AllowOther:      true,
	}
}

// newWebTestServer creates a new test server with all dependencies wired
func newWebTestServer(t *testing.T, cfg link.Config) *webTestServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app := factory.NewTestApp(cfg)

	router := web.NewRouter(web.RouterConfig{
		Logger:      logger,
		LinkService: app.LinkService,
		Catalogs:    app.Catalogs,
		HubManager:  app.HubManager,
	})

	return &webTestServer{
		t:       t,
		handler: router,
		app:     app,
		cookies: newCookieJar(),
	}
}

// request makes an HTTP request and returns the response
func (ts *webTestServer) request(method, path string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	ts.cookies.addTo(req)

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	ts.cookies.extract(rr)
	return rr
}

func (ts *webTestServer) get(path string) *httptest.ResponseRecorder {
	return ts.request(http.MethodGet, path, nil)
}

func (ts *webTestServer) post(path string, form url.Values) *httptest.ResponseRecorder {
	return ts.request(http.MethodPost, path, form)
}

// followRedirect follows a redirect response
func (ts *webTestServer) followRedirect(rr *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	ts.t.Helper()
	location := rr.Header().Get("Location")
	require.NotEmpty(ts.t, location, "Expected redirect location")
	return ts.get(location)
}

// openPage loads the host page and returns its document and gcid
func (ts *webTestServer) openPage(path string) (*goquery.Document, string) {
	ts.t.Helper()
	rr := ts.get(path)
	require.Equal(ts.t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)
	gcid, ok := doc.Find("#host").Attr("data-gcid")
	require.True(ts.t, ok, "Expected host element with gcid")
	return doc, gcid
}

// parseHTML parses the response body as HTML
func parseHTML(r io.Reader) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		panic(err)
	}
	return doc
}

// frameSrc returns the parsed src of the login iframe
func frameSrc(t *testing.T, doc *goquery.Document) *url.URL {
	t.Helper()
	src, ok := doc.Find("iframe#userdata-login").Attr("src")
	require.True(t, ok, "Expected iframe src")
	u, err := url.Parse(src)
	require.NoError(t, err)
	return u
}

// assertContainsText checks that the selection contains the given text
func assertContainsText(t *testing.T, doc *goquery.Document, selector, text string) {
	t.Helper()
	assert.Contains(t, doc.Find(selector).Text(), text, "Expected %q to contain %q", selector, text)
}

// cookieJar maintains cookies across requests (like a browser would)
type cookieJar struct {
	cookies map[string]*http.Cookie
}

func newCookieJar() *cookieJar {
	return &cookieJar{
		cookies: make(map[string]*http.Cookie),
	}
}

// addTo adds all cookies to the request
func (j *cookieJar) addTo(req *http.Request) {
	for _, cookie := range j.cookies {
		req.AddCookie(cookie)
	}
}

// extract extracts Set-Cookie headers from response
func (j *cookieJar) extract(rr *httptest.ResponseRecorder) {
	for _, cookie := range rr.Result().Cookies() {
		if cookie.MaxAge < 0 {
			delete(j.cookies, cookie.Name)
		} else {
			j.cookies[cookie.Name] = cookie
		}
	}
}
