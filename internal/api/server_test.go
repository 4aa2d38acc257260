package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/trinitydb/impossible-trinity/internal/api"
	"github.com/trinitydb/impossible-trinity/internal/api/handler/v1/response"
	"github.com/trinitydb/impossible-trinity/internal/config"
	"github.com/trinitydb/impossible-trinity/internal/repository/dao"
	"github.com/trinitydb/impossible-trinity/internal/testutil"
)

type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func newTestServer(t *testing.T) (*httptest.Server, *gorm.DB) {
	t.Helper()

	return newTestServerWith(t, nil)
}

func newTestServerWith(t *testing.T, mutate func(*config.AppConfig)) (*httptest.Server, *gorm.DB) {
	t.Helper()

	conf := testutil.GetTestConfig()
	if mutate != nil {
		mutate(conf)
	}

	db := testutil.SetupTestDB(t)
	server := api.NewServer(conf, db)

	ts := httptest.NewServer(server.Router)
	t.Cleanup(ts.Close)

	return ts, db
}

func newClient(t *testing.T, ts *httptest.Server) *client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &client{
		t:    t,
		base: ts.URL,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *client) get(path string) (*http.Response, string) {
	c.t.Helper()

	resp, err := c.http.Get(c.base + path)
	require.NoError(c.t, err)

	return c.read(resp)
}

func (c *client) postForm(path string, form url.Values) (*http.Response, string) {
	c.t.Helper()

	resp, err := c.http.PostForm(c.base+path, form)
	require.NoError(c.t, err)

	return c.read(resp)
}

func (c *client) read(resp *http.Response) (*http.Response, string) {
	c.t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)

	return resp, string(body)
}

func (c *client) upload(path, filename, content string) *http.Response {
	c.t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(c.t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(c.t, err)
	require.NoError(c.t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, c.base+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	resp.Body.Close()

	return resp
}

func (c *client) login(username, password string) {
	c.t.Helper()

	resp, _ := c.postForm("/login", url.Values{"username": {username}, "password": {password}})
	require.Equal(c.t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(c.t, "/", resp.Header.Get("Location"))
}

func findID(t *testing.T, c *client, search string) uint {
	t.Helper()

	resp, body := c.get("/api/its?q=" + url.QueryEscape(search))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list response.TrinityListResponse
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	require.Len(t, list.Items, 1)

	return list.Items[0].ID
}

func TestHealthcheck(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := newClient(t, ts).get("/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}

func TestScenario_OwnershipAndAdminDelete(t *testing.T) {
	ts, db := newTestServer(t)
	testutil.CreateUser(t, db, "bob", false)
	testutil.CreateUser(t, db, "admin", true)

	alice := newClient(t, ts)

	resp, _ := alice.postForm("/register", url.Values{"username": {"alice"}, "password": {"secret123"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp, _ = alice.postForm("/register", url.Values{"username": {"alice"}, "password": {"secret123"}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	alice.login("alice", "secret123")

	resp, _ = alice.postForm("/add", url.Values{
		"name":     {"CAP定理"},
		"field":    {"分布式系统"},
		"element1": {"一致性"},
		"element2": {"可用性"},
		"element3": {"分区容错性"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	id := findID(t, alice, "CAP")
	detail := fmt.Sprintf("/detail/%d", id)

	resp, _ = alice.postForm(fmt.Sprintf("/comment/%d", id), url.Values{"content": {"同意"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, detail, resp.Header.Get("Location"))

	resp, body := alice.get(detail)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "CAP定理")
	assert.Contains(t, body, "同意")

	bob := newClient(t, ts)
	bob.login("bob", testutil.Password)

	resp, _ = bob.postForm(fmt.Sprintf("/delete/%d", id), nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp, _ = bob.postForm(fmt.Sprintf("/edit/%d", id), url.Values{
		"name": {"hijacked"}, "element1": {"a"}, "element2": {"b"}, "element3": {"c"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp, _ = bob.postForm(fmt.Sprintf("/edit/%d", id), url.Values{"name": {""}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp, body = bob.get(detail)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "CAP定理")
	assert.NotContains(t, body, "hijacked")

	admin := newClient(t, ts)
	admin.login("admin", testutil.Password)

	resp, _ = admin.postForm(fmt.Sprintf("/delete/%d", id), nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin", resp.Header.Get("Location"))

	resp, _ = alice.get(detail)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	assert.Zero(t, testutil.CountComments(t, db, id))
}

func TestScenario_OwnerEditsAndDeletes(t *testing.T) {
	ts, db := newTestServer(t)
	user := testutil.CreateUser(t, db, "alice", false)
	trinity := testutil.CreateTrinity(t, db, user.ID, nil)

	alice := newClient(t, ts)
	alice.login("alice", testutil.Password)

	resp, _ := alice.get(fmt.Sprintf("/edit/%d", trinity.ID))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = alice.postForm(fmt.Sprintf("/edit/%d", trinity.ID), url.Values{
		"name": {"renamed"}, "element1": {"a"}, "element2": {"b"}, "element3": {"c"},
		"hyperlink": {"not a url"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = alice.postForm(fmt.Sprintf("/edit/%d", trinity.ID), url.Values{
		"name": {"renamed"}, "element1": {"a"}, "element2": {"b"}, "element3": {"c"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, fmt.Sprintf("/detail/%d", trinity.ID), resp.Header.Get("Location"))

	resp, body := alice.get("/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "renamed")

	resp, _ = alice.postForm(fmt.Sprintf("/delete/%d", trinity.ID), nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

func TestAgree(t *testing.T) {
	ts, db := newTestServer(t)
	user := testutil.CreateUser(t, db, "alice", false)
	trinity := testutil.CreateTrinity(t, db, user.ID, nil)
	path := fmt.Sprintf("/agree/%d", trinity.ID)

	anonymous := newClient(t, ts)
	resp, body := anonymous.postForm(path, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"success":false,"error":"`+response.MsgLoginRequired+`"}`, body)

	alice := newClient(t, ts)
	alice.login("alice", testutil.Password)

	resp, body = alice.postForm(path, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true,"count":1}`, body)

	resp, body = alice.postForm(path, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true,"count":2}`, body)

	resp, body = alice.postForm(fmt.Sprintf("/agree/%d", trinity.ID+100), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, `"success":false`)
}

func TestLoginRedirects(t *testing.T) {
	ts, db := newTestServer(t)
	testutil.CreateUser(t, db, "alice", false)

	c := newClient(t, ts)

	resp, _ := c.get("/add")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login?next=%2Fadd", resp.Header.Get("Location"))

	resp, _ = c.postForm("/login", url.Values{"username": {"alice"}, "password": {"wrong-password1"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = c.postForm("/login?next=%2F%2Fevil.example", url.Values{"username": {"alice"}, "password": {testutil.Password}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp, _ = c.postForm("/login?next=%2Fadd", url.Values{"username": {"alice"}, "password": {testutil.Password}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/add", resp.Header.Get("Location"))

	resp, _ = c.get("/add")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = c.get("/admin")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp, _ = c.get("/logout")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, _ = c.get("/dashboard")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestListAPI(t *testing.T) {
	ts, db := newTestServer(t)
	user := testutil.CreateUser(t, db, "alice", false)
	for i := 0; i < 3; i++ {
		testutil.CreateTrinity(t, db, user.ID, func(tr *dao.Trinity) { tr.Field = "经济学" })
	}
	testutil.CreateTrinity(t, db, user.ID, func(tr *dao.Trinity) { tr.Field = "计算机" })

	c := newClient(t, ts)

	resp, body := c.get("/api/its?per_page=2&field=" + url.QueryEscape("经济学"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list response.TrinityListResponse
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	assert.Len(t, list.Items, 2)
	assert.True(t, list.HasMore)
	require.NotNil(t, list.NextPage)
	assert.Equal(t, 2, *list.NextPage)

	resp, body = c.get("/api/its?per_page=2&page=2&field=" + url.QueryEscape("经济学"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list = response.TrinityListResponse{}
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	assert.Len(t, list.Items, 1)
	assert.False(t, list.HasMore)
	assert.Nil(t, list.NextPage)

	resp, body = c.get("/api/fields")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `["经济学","计算机"]`, body)

	resp, body = c.get("/?view=table&q=alpha")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "经济学")
}

func TestAdminCSV(t *testing.T) {
	ts, db := newTestServer(t)
	user := testutil.CreateUser(t, db, "alice", false)
	testutil.CreateUser(t, db, "admin", true)
	testutil.CreateTrinity(t, db, user.ID, func(tr *dao.Trinity) { tr.Name = "CAP定理" })

	admin := newClient(t, ts)
	admin.login("admin", testutil.Password)

	resp, body := admin.get("/admin/export")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "impossible_trinities_")
	assert.True(t, strings.HasPrefix(body, "\ufeffname,name_en,field"))
	assert.Contains(t, body, "CAP定理")

	resp = admin.upload("/admin/import", "export.csv", body+",,,,,,,,,,,,,,\n")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin", resp.Header.Get("Location"))

	resp = admin.upload("/admin/import", "export.txt", body)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	all, err := dao.NewTrinityDAO(db).FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	alice := newClient(t, ts)
	alice.login("alice", testutil.Password)
	resp, _ = alice.get("/admin/export")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestAdminCSV_MultilineRoundTrip(t *testing.T) {
	ts, db := newTestServer(t)
	testutil.CreateUser(t, db, "alice", false)
	testutil.CreateUser(t, db, "admin", true)

	alice := newClient(t, ts)
	alice.login("alice", testutil.Password)
	resp, _ := alice.postForm("/add", url.Values{
		"name":                           {"CAP定理"},
		"element1":                       {"一致性"},
		"element2":                       {"可用性"},
		"element3":                       {"分区容错性"},
		"description":                    {"line1\r\nline2\rline3"},
		"element1_sacrifice_explanation": {"first\r\nsecond"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	admin := newClient(t, ts)
	admin.login("admin", testutil.Password)
	resp, body := admin.get("/admin/export")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = admin.upload("/admin/import", "export.csv", body)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	all, err := dao.NewTrinityDAO(db).FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, tr := range all {
		assert.Equal(t, "line1\nline2\nline3", tr.Description)
		assert.Equal(t, "first\nsecond", tr.Element1Sacrifice)
	}
}

func TestLoginRateLimit_ForwardedFor(t *testing.T) {
	tests := []struct {
		name        string
		proxies     []string
		wantLimited int
	}{
		{name: "untrusted header is ignored", wantLimited: 4},
		{name: "trusted proxy header is honoured", proxies: []string{"127.0.0.1"}, wantLimited: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, _ := newTestServerWith(t, func(conf *config.AppConfig) {
				conf.API.AuthRateLimit = 0.001
				conf.API.AuthRateBurst = 2
				conf.API.TrustedProxies = tt.proxies
			})
			c := newClient(t, ts)

			limited := 0
			for i := 0; i < 6; i++ {
				form := url.Values{"username": {"nobody"}, "password": {"wrong123"}}
				req, err := http.NewRequest(http.MethodPost, c.base+"/login", strings.NewReader(form.Encode()))
				require.NoError(t, err)
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
				req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))

				resp, err := c.http.Do(req)
				require.NoError(t, err)
				resp.Body.Close()

				if resp.StatusCode == http.StatusSeeOther && resp.Header.Get("Location") == "/login" {
					limited++
				}
			}
			assert.Equal(t, tt.wantLimited, limited)
		})
	}
}
