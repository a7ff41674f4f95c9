package auth

import (
	"strings"
	"testing"
)

func TestHashPassword_Format(t *testing.T) {
	hash, err := HashPassword("abc12345")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=19456,t=2,p=1$") {
		t.Errorf("unexpected hash format: %s", hash)
	}
}

func TestCheckPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("abc12345")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	valid, err := CheckPassword("abc12345", hash)
	if err != nil {
		t.Fatalf("CheckPassword error: %v", err)
	}
	if !valid {
		t.Error("correct password was rejected")
	}

	valid, err = CheckPassword("wrongpass1", hash)
	if err != nil {
		t.Fatalf("CheckPassword error: %v", err)
	}
	if valid {
		t.Error("wrong password was accepted")
	}
}

func TestCheckPassword_Malformed(t *testing.T) {
	for _, h := range []string{"", "plaintext", "$bcrypt$v=19$m=1,t=1,p=1$a$b"} {
		if _, err := CheckPassword("abc12345", h); err == nil {
			t.Errorf("CheckPassword with hash %q should return error", h)
		}
	}
}

func TestHashPassword_UniqueSalt(t *testing.T) {
	h1, err := HashPassword("abc12345")
	if err != nil {
		t.Fatal(err)
	}
	h2, err := HashPassword("abc12345")
	if err != nil {
		t.Fatal(err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password should differ by salt")
	}
}

func TestNeedsRehash(t *testing.T) {
	hash, err := HashPassword("abc12345")
	if err != nil {
		t.Fatal(err)
	}
	if NeedsRehash(hash) {
		t.Error("fresh hash should not need rehash")
	}

	// Old parameters (64MB memory) should trigger a rehash.
	old := "$argon2id$v=19$m=65536,t=1,p=4$mucMvOaS6lZ2LWNS1OEFKw$UYEWv8cvCOO6l2zGeqv3JPVe1nyy0x9GXBfYEuDM544"
	if !NeedsRehash(old) {
		t.Error("hash with old parameters should need rehash")
	}

	if !NeedsRehash("not-a-hash") {
		t.Error("malformed hash should need rehash")
	}
}
