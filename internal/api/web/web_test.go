package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplates(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	for _, name := range []string{
		"index.html", "detail.html", "form.html", "login.html", "register.html",
		"dashboard.html", "admin.html", "error.html",
	} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "不可能…", truncate("不可能三角", 3))
}

func TestPageURL(t *testing.T) {
	tests := []struct {
		view, field, q string
		page           int
		want           string
	}{
		{want: "/"},
		{page: 1, want: "/"},
		{view: "table", page: 2, want: "/?page=2&view=table"},
		{field: "经济学", q: "a b", page: 3, want: "/?field=%E7%BB%8F%E6%B5%8E%E5%AD%A6&page=3&q=a+b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pageURL(tt.view, tt.field, tt.q, tt.page))
	}
}
