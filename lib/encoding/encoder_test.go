package encoding

import (
	"errors"
	"strings"
	"testing"
)

// testToken mirrors the shape of a callback token.
type testToken struct {
	Behavior string `msgpack:"b"`
	Event    string `msgpack:"e"`
	Seq      int64  `msgpack:"n"`
	Flag     bool   `msgpack:"f,omitempty"`
}

func TestNewEncoder(t *testing.T) {
	// Should work with any key length (derives 32-byte key)
	if _, err := NewEncoder([]byte("short")); err != nil {
		t.Fatalf("NewEncoder with short key failed: %v", err)
	}

	if _, err := NewEncoder([]byte("this-is-a-32-byte-key-for-aes!!!")); err != nil {
		t.Fatalf("NewEncoder with 32-byte key failed: %v", err)
	}

	if _, err := NewEncoder([]byte(strings.Repeat("k", 64))); err != nil {
		t.Fatalf("NewEncoder with long key failed: %v", err)
	}
}

func TestSignedRoundTrip(t *testing.T) {
	enc, err := NewEncoder([]byte("test-key"))
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}

	original := testToken{Behavior: "calendar-1a2b3c4d", Event: "select", Seq: 12345, Flag: true}

	encoded, err := enc.Encode(original, false)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if !strings.Contains(encoded, ".") {
		t.Fatalf("signed encoding should contain a separator: %q", encoded)
	}

	var decoded testToken
	if err := enc.Decode(encoded, false, &decoded); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if decoded != original {
		t.Errorf("decoded = %+v, want %+v", decoded, original)
	}
}

func TestEncryptedRoundTrip(t *testing.T) {
	enc, err := NewEncoder([]byte("test-key"))
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}

	original := testToken{Behavior: "droppable-00ff00ff", Event: "drop", Seq: 67890}

	encoded, err := enc.Encode(original, true)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if strings.Contains(encoded, "droppable") {
		t.Errorf("encrypted encoding leaks plaintext: %q", encoded)
	}

	var decoded testToken
	if err := enc.Decode(encoded, true, &decoded); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if decoded != original {
		t.Errorf("decoded = %+v, want %+v", decoded, original)
	}
}

func TestSignatureVerificationFailure(t *testing.T) {
	enc, err := NewEncoder([]byte("test-key"))
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}

	encoded, err := enc.Encode(testToken{Behavior: "b", Event: "e"}, false)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// Replace the first signature character with a different valid one.
	body, sig, _ := strings.Cut(encoded, ".")
	swap := "A"
	if sig[0] == 'A' {
		swap = "B"
	}
	tampered := body + "." + swap + sig[1:]

	var decoded testToken
	err = enc.Decode(tampered, false, &decoded)
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("Decode(tampered) error = %v, want ErrSignatureInvalid", err)
	}
}

func TestDecryptionFailure(t *testing.T) {
	enc, err := NewEncoder([]byte("test-key"))
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}

	encoded, err := enc.Encode(testToken{Behavior: "b", Event: "e"}, true)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	swap := "A"
	if encoded[0] == 'A' {
		swap = "B"
	}
	tampered := swap + encoded[1:]

	var decoded testToken
	err = enc.Decode(tampered, true, &decoded)
	if !errors.Is(err, ErrDecryptFailed) {
		t.Errorf("Decode(tampered) error = %v, want ErrDecryptFailed", err)
	}
}

func TestInvalidFormat(t *testing.T) {
	enc, err := NewEncoder([]byte("test-key"))
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}

	tests := []struct {
		name    string
		encoded string
	}{
		{"missing separator", "invalidbase64withoutseparator"},
		{"bad body", "!!!.AAAA"},
		{"bad signature", "AAAA.!!!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var decoded testToken
			err := enc.Decode(tt.encoded, false, &decoded)
			if !errors.Is(err, ErrInvalidFormat) {
				t.Errorf("Decode(%q) error = %v, want ErrInvalidFormat", tt.encoded, err)
			}
		})
	}
}

func TestDifferentKeysCannotDecode(t *testing.T) {
	enc1, _ := NewEncoder([]byte("key-one"))
	enc2, _ := NewEncoder([]byte("key-two"))

	encoded, err := enc1.Encode(testToken{Behavior: "b", Event: "e"}, false)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var decoded testToken
	if err := enc2.Decode(encoded, false, &decoded); err == nil {
		t.Error("Expected error when decoding with different key")
	}

	encrypted, err := enc1.Encode(testToken{Behavior: "b", Event: "e"}, true)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if err := enc2.Decode(encrypted, true, &decoded); err == nil {
		t.Error("Expected error when decrypting with different key")
	}
}

func TestEmptyToken(t *testing.T) {
	enc, err := NewEncoder([]byte("test-key"))
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}

	encoded, err := enc.Encode(testToken{}, false)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var decoded testToken
	if err := enc.Decode(encoded, false, &decoded); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if decoded != (testToken{}) {
		t.Errorf("empty token not decoded correctly: %+v", decoded)
	}
}
