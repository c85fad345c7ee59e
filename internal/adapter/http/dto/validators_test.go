package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- SanitizeStruct tests ---

func TestSanitizeStruct_TrimsWhitespace(t *testing.T) {
	req := RegisterRequest{
		Email:       "  alice@example.com  ",
		Username:    "  alice  ",
		Password:    "  pass1234  ",
		DisplayName: " Alice Shop ",
	}
	SanitizeStruct(&req)

	assert.Equal(t, "alice@example.com", req.Email)
	assert.Equal(t, "alice", req.Username)
	assert.Equal(t, "pass1234", req.Password)
	assert.Equal(t, "Alice Shop", req.DisplayName)
}

func TestSanitizeStruct_EscapesHTML(t *testing.T) {
	req := CreateListingRequest{
		Title:       "Laravel <script>alert('x')</script> CMS",
		Slug:        "laravel-cms",
		Description: "full <b>source</b>",
	}
	SanitizeStruct(&req)

	assert.Contains(t, req.Title, "&lt;script&gt;")
	assert.NotContains(t, req.Title, "<script>")
	assert.Equal(t, "full &lt;b&gt;source&lt;/b&gt;", req.Description)
}

func TestSanitizeStruct_HandlesPointerString(t *testing.T) {
	title := "  Updated title  "
	req := UpdateListingRequest{
		Title: &title,
	}
	SanitizeStruct(&req)

	assert.Equal(t, "Updated title", *req.Title)
}

func TestSanitizeStruct_NilPointerIsNoOp(t *testing.T) {
	req := UpdateListingRequest{}
	SanitizeStruct(&req)
	assert.Nil(t, req.Title)
}

func TestSanitizeStruct_NestedStructPointer(t *testing.T) {
	req := PaymentRequestBody{
		Type:   "withdrawal",
		Amount: 50000,
		BankInfo: &BankInfoBody{
			BankName:      "  Vietcombank  ",
			AccountNumber: " 0123456789 ",
			AccountHolder: " NGUYEN VAN A ",
		},
	}
	SanitizeStruct(&req)

	assert.Equal(t, "Vietcombank", req.BankInfo.BankName)
	assert.Equal(t, "0123456789", req.BankInfo.AccountNumber)
	assert.Equal(t, "NGUYEN VAN A", req.BankInfo.AccountHolder)
}

func TestSanitizeStruct_NonPointerIsNoOp(t *testing.T) {
	s := "hello"
	SanitizeStruct(s) // should not panic
}

// --- Custom Validator tests ---

func TestSafeID_Valid(t *testing.T) {
	cases := []string{
		"laravel-cms",
		"web_theme",
		"a.b.c",
		"simple123",
		"ABC-def_GHI.123",
	}
	for _, tc := range cases {
		assert.True(t, safeStringRe.MatchString(tc), "expected valid: %s", tc)
	}
}

func TestSafeID_Invalid(t *testing.T) {
	cases := []string{
		"laravel cms", // space
		"ref<001>",    // angle brackets
		"ref;DROP",    // semicolon
		"",            // empty
		"hello world", // space
		"ref\n001",    // newline
	}
	for _, tc := range cases {
		assert.False(t, safeStringRe.MatchString(tc), "expected invalid: %s", tc)
	}
}
