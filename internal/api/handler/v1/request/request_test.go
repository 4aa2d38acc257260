package request

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trinitydb/impossible-trinity/internal/domain"
)

func TestRegisterRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{name: "valid", req: RegisterRequest{Username: "alice", Password: "secret123"}},
		{name: "trimmed username", req: RegisterRequest{Username: "  alice ", Password: "secret123"}},
		{name: "blank username", req: RegisterRequest{Username: "   ", Password: "secret123"}, wantErr: true},
		{name: "long username", req: RegisterRequest{Username: strings.Repeat("a", 81), Password: "secret123"}, wantErr: true},
		{name: "short password", req: RegisterRequest{Username: "alice", Password: "abc123"}, wantErr: true},
		{name: "password without digit", req: RegisterRequest{Username: "alice", Password: "abcdefgh"}, wantErr: true},
		{name: "password without letter", req: RegisterRequest{Username: "alice", Password: "12345678"}, wantErr: true},
		{name: "empty password", req: RegisterRequest{Username: "alice"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, "alice", tt.req.Username)
		})
	}
}

func TestLoginRequest_Validate(t *testing.T) {
	assert.NoError(t, (&LoginRequest{Username: "alice", Password: "x"}).Validate())
	assert.Error(t, (&LoginRequest{Username: " ", Password: "x"}).Validate())
	assert.Error(t, (&LoginRequest{Username: "alice"}).Validate())
}

func validRequest() TrinityRequest {
	return TrinityRequest{
		Name:     "CAP定理",
		Field:    "分布式系统",
		Element1: "一致性",
		Element2: "可用性",
		Element3: "分区容错性",
	}
}

func TestTrinityRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*TrinityRequest)
		wantErr string
	}{
		{name: "valid", mutate: func(*TrinityRequest) {}},
		{name: "missing name", mutate: func(r *TrinityRequest) { r.Name = "  " }, wantErr: "name"},
		{name: "missing element", mutate: func(r *TrinityRequest) { r.Element3 = "" }, wantErr: "Element3"},
		{name: "name too long", mutate: func(r *TrinityRequest) { r.Name = strings.Repeat("名", 201) }, wantErr: "Name"},
		{name: "name at limit", mutate: func(r *TrinityRequest) { r.Name = strings.Repeat("名", 200) }},
		{name: "field too long", mutate: func(r *TrinityRequest) { r.Field = strings.Repeat("f", 101) }, wantErr: "Field"},
		{name: "https link", mutate: func(r *TrinityRequest) { r.Hyperlink = "https://example.com/a?b=c" }},
		{name: "non-http link", mutate: func(r *TrinityRequest) { r.Hyperlink = "javascript:alert(1)" }, wantErr: "Hyperlink"},
		{name: "relative image", mutate: func(r *TrinityRequest) { r.FeatureImageURL = "/img.png" }, wantErr: "FeatureImageURL"},
		{name: "url too long", mutate: func(r *TrinityRequest) {
			r.Element1ImageURL = "https://example.com/" + strings.Repeat("a", 500)
		}, wantErr: "Element1ImageURL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			err := req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, strings.ToLower(err.Error()), strings.ToLower(tt.wantErr))
		})
	}
}

func TestTrinityRequest_ValidateNormalisesLineBreaks(t *testing.T) {
	req := validRequest()
	req.Name = "  CAP\r\n"
	req.Description = "  line1\r\nline2\rline3 "
	req.Element2Sacrifice = "a\r\n\r\nb"
	nameEn := "CAP\rTheorem"
	req.NameEn = &nameEn

	require.NoError(t, req.Validate())
	assert.Equal(t, "CAP", req.Name)
	assert.Equal(t, "  line1\nline2\nline3 ", req.Description)
	assert.Equal(t, "a\n\nb", req.Element2Sacrifice)
	assert.Equal(t, "CAP\nTheorem", *req.NameEn)
}

func TestTrinityRequest_ToDomain(t *testing.T) {
	req := validRequest()
	trinity := req.ToDomain()
	assert.Equal(t, domain.DefaultNameEn, trinity.NameEn)

	empty := ""
	req.NameEn = &empty
	assert.Empty(t, req.ToDomain().NameEn)

	fromValues := NewTrinityRequestFromValues(map[string]string{"name": " x ", "name_en": " CAP "})
	require.Error(t, fromValues.Validate())
	assert.Equal(t, "x", fromValues.Name)
	assert.Equal(t, "CAP", fromValues.ToDomain().NameEn)

	prefilled := NewTrinityRequestFromDomain(domain.Trinity{Name: "n", NameEn: "e", Element2: "b"})
	assert.Equal(t, "e", *prefilled.NameEn)
	assert.Equal(t, "b", prefilled.Element2)
}
