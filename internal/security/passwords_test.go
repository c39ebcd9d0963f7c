package security

import "testing"

func TestSharePasswordRoundTrip(t *testing.T) {
	hash, salt, err := HashSharePassword("open sesame")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "" || salt == "" {
		t.Fatal("expected non-empty hash and salt")
	}
	if hash == "open sesame" {
		t.Fatal("hash must not be the plaintext")
	}
	if !VerifySharePassword("open sesame", hash, salt) {
		t.Fatal("correct password must verify")
	}
	if VerifySharePassword("open says me", hash, salt) {
		t.Fatal("wrong password must not verify")
	}
	if VerifySharePassword("", hash, salt) {
		t.Fatal("empty password must not verify")
	}
}

func TestSharePasswordSaltsAreUnique(t *testing.T) {
	hash1, salt1, err := HashSharePassword("same password")
	if err != nil {
		t.Fatalf("hash 1: %v", err)
	}
	hash2, salt2, err := HashSharePassword("same password")
	if err != nil {
		t.Fatalf("hash 2: %v", err)
	}
	if salt1 == salt2 {
		t.Fatal("two hashes of the same password must use distinct salts")
	}
	if hash1 == hash2 {
		t.Fatal("distinct salts must produce distinct hashes")
	}
}

func TestVerifySharePasswordMalformedStoredValues(t *testing.T) {
	hash, salt, err := HashSharePassword("open sesame")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	cases := []struct {
		name string
		hash string
		salt string
	}{
		{"non-hex hash", "zzzz", salt},
		{"non-hex salt", hash, "zzzz"},
		{"empty hash", "", salt},
		{"empty salt", hash, ""},
	}
	for _, tc := range cases {
		if VerifySharePassword("open sesame", tc.hash, tc.salt) {
			t.Fatalf("%s: malformed stored values must never match", tc.name)
		}
	}
}

func TestSecretsEqual(t *testing.T) {
	if !SecretsEqual("s3cret", "s3cret") {
		t.Fatal("equal secrets must match")
	}
	if SecretsEqual("s3cret", "other") {
		t.Fatal("different secrets must not match")
	}
	if SecretsEqual("", "") {
		t.Fatal("an unset expected secret must never match")
	}
	if SecretsEqual("anything", "") {
		t.Fatal("an unset expected secret must never match")
	}
}
