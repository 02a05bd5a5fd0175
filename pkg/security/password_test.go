package security_test

import (
	"strings"
	"testing"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/security"
)

func TestHashAndVerifyPassword(t *testing.T) {
	cfg := config.PasswordConfig{
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}

	hash, err := security.HashPassword("very-secure-password", cfg)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "" {
		t.Fatal("HashPassword returned empty string")
	}

	ok, err := security.VerifyPassword("very-secure-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for valid hash: %v", err)
	}
	if !ok {
		t.Fatal("VerifyPassword failed for the correct password")
	}

	ok, err = security.VerifyPassword("bogus-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for invalid password: %v", err)
	}
	if ok {
		t.Fatal("VerifyPassword returned true for incorrect password")
	}
}

func TestVerifyPasswordBadHash(t *testing.T) {
	if _, err := security.VerifyPassword("irrelevant", "not-a-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}

func TestCheckPassword(t *testing.T) {
	if err := security.CheckPassword("12345"); err != security.ErrPasswordTooShort {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
	if err := security.CheckPassword("123456"); err != nil {
		t.Fatalf("expected six characters to pass, got %v", err)
	}
}

func TestGenerateTempPassword(t *testing.T) {
	pw, err := security.GenerateTempPassword(16)
	if err != nil {
		t.Fatalf("GenerateTempPassword returned error: %v", err)
	}
	if len(pw) != 16 {
		t.Fatalf("expected 16 characters, got %d", len(pw))
	}
	if err := security.CheckPassword(pw); err != nil {
		t.Fatalf("generated password fails policy: %v", err)
	}
	if _, err := security.GenerateTempPassword(0); err == nil {
		t.Fatal("expected error for zero length")
	}
}

func TestVerifyPasswordUsesStoredParameters(t *testing.T) {
	old := config.PasswordConfig{ArgonMemoryKB: 8192, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
	hash, err := security.HashPassword("rotate-me", old)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected hash prefix %q", hash)
	}

	ok, err := security.VerifyPassword("rotate-me", hash)
	if err != nil || !ok {
		t.Fatalf("expected stored parameters to verify, ok=%v err=%v", ok, err)
	}
}

func TestVerifyPasswordRejectsTamperedHash(t *testing.T) {
	hash, err := security.HashPassword("secret1", config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	cases := map[string]string{
		"wrong version": strings.Replace(hash, "v=19", "v=16", 1),
		"zero time":     strings.Replace(hash, ",t=1,", ",t=0,", 1),
		"argon2i":       strings.Replace(hash, "$argon2id$", "$argon2i$", 1),
		"missing key":   hash[:strings.LastIndex(hash, "$")],
	}
	for name, encoded := range cases {
		if _, err := security.VerifyPassword("secret1", encoded); err != security.ErrInvalidHash {
			t.Fatalf("%s: expected ErrInvalidHash, got %v", name, err)
		}
	}
}

func TestGenerateTempPasswordAvoidsLookAlikes(t *testing.T) {
	pw, err := security.GenerateTempPassword(256)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if strings.ContainsAny(pw, "0O1lI") {
		t.Fatalf("password contains look-alike characters: %s", pw)
	}
}
