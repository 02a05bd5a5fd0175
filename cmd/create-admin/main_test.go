package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/angelmondragon/storefront-backend/internal/auth"
)

func TestCollectRequestPromptsForMissingFields(t *testing.T) {
	var out bytes.Buffer
	req, err := collectRequest(strings.NewReader("Jane Admin\n s3cret \n"), &out, auth.AdminRegisterRequest{Email: "jane@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Name != "Jane Admin" || req.Email != "jane@example.com" || req.Password != "s3cret" {
		t.Fatalf("unexpected request %+v", req)
	}
	if !strings.Contains(out.String(), "Name: ") || strings.Contains(out.String(), "Email: ") {
		t.Fatalf("unexpected prompts %q", out.String())
	}
}

func TestCollectRequestRequiresAllFields(t *testing.T) {
	_, err := collectRequest(strings.NewReader("\n\n\n"), &bytes.Buffer{}, auth.AdminRegisterRequest{})
	if err == nil {
		t.Fatal("expected error for blank input")
	}
}
