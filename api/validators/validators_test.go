package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

type signupBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func postJSON(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	var dest signupBody
	if err := DecodeJSONBody(postJSON(`{"email":"a@b.co","password":"secret1"}`), &dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dest.Email != "a@b.co" {
		t.Fatalf("unexpected email %q", dest.Email)
	}
}

func TestDecodeJSONBodyReportsFieldErrorsByJSONName(t *testing.T) {
	var dest signupBody
	err := DecodeJSONBody(postJSON(`{"email":"nope","password":"123"}`), &dest)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
	details, ok := typed.Details().(types.FieldErrors)
	if !ok {
		t.Fatalf("expected field details got %T", typed.Details())
	}
	if details["email"] != "must be a valid email" {
		t.Fatalf("unexpected email detail %q", details["email"])
	}
	if details["password"] != "must be at least 6 characters" {
		t.Fatalf("unexpected password detail %q", details["password"])
	}
}

func TestDecodeJSONBodyRejectsMalformedInput(t *testing.T) {
	cases := map[string]string{
		"empty":    ``,
		"unknown":  `{"email":"a@b.co","password":"secret1","admin":true}`,
		"trailing": `{"email":"a@b.co","password":"secret1"}{"email":"x@y.z"}`,
		"broken":   `{"email":`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			var dest signupBody
			if err := DecodeJSONBody(postJSON(body), &dest); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error got %v", err)
			}
		})
	}
}

func TestDecodeJSONBodyRejectsOversizedBody(t *testing.T) {
	big := `{"email":"` + strings.Repeat("a", MaxBodyBytes) + `@b.co","password":"secret1"}`
	var dest signupBody
	err := DecodeJSONBody(postJSON(big), &dest)
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&limit=500&bad=x", nil)

	if v, err := ParseQueryInt(req, "page", 1, 1, 100); err != nil || v != 3 {
		t.Fatalf("expected 3 got %d (%v)", v, err)
	}
	if v, err := ParseQueryInt(req, "missing", 12, 1, 100); err != nil || v != 12 {
		t.Fatalf("expected default got %d (%v)", v, err)
	}
	if _, err := ParseQueryInt(req, "limit", 12, 1, 100); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected range error got %v", err)
	}
	if _, err := ParseQueryInt(req, "bad", 12, 1, 100); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected numeric error got %v", err)
	}
}

func TestParseQueryChoice(t *testing.T) {
	allowed := []string{"pending", "shipped"}

	req := httptest.NewRequest(http.MethodGet, "/?status=%20Shipped%20", nil)
	if v, err := ParseQueryChoice(req, "status", allowed); err != nil || v != "shipped" {
		t.Fatalf("expected shipped got %q (%v)", v, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/?status=lost", nil)
	if _, err := ParseQueryChoice(req, "status", allowed); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error got %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	if v, err := ParseQueryChoice(req, "status", allowed); err != nil || v != "" {
		t.Fatalf("expected empty got %q (%v)", v, err)
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  red \t\n wine\x00 ", 0); got != "red wine" {
		t.Fatalf("unexpected %q", got)
	}
	if got := SanitizeString("crème brûlée", 5); got != "crème" {
		t.Fatalf("expected rune-safe truncation got %q", got)
	}
}
