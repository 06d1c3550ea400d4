package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestParseAPIKey(t *testing.T) {
	validSecretID := strings.Repeat("ab", 16)   // 32 hex chars
	validRandom := strings.Repeat("cd", 32)     // 64 hex chars
	validKey := "ap-v1-" + validSecretID + "-" + validRandom

	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"valid", validKey, nil},
		{"empty", "", ErrInvalidKeyFormat},
		{"wrong_prefix", "tk-v1-" + validSecretID + "-" + validRandom, ErrInvalidKeyFormat},
		{"wrong_version", "ap-v2-" + validSecretID + "-" + validRandom, ErrInvalidKeyFormat},
		{"missing_parts", "ap-v1-" + validSecretID, ErrInvalidKeyFormat},
		{"short_secret_id", "ap-v1-abcd-" + validRandom, ErrInvalidKeyFormat},
		{"short_random", "ap-v1-" + validSecretID + "-abcd", ErrInvalidKeyFormat},
		{"uppercase_hex", "ap-v1-" + strings.ToUpper(validSecretID) + "-" + validRandom, ErrInvalidKeyFormat},
		{"non_hex", "ap-v1-" + strings.Repeat("zz", 16) + "-" + validRandom, ErrInvalidKeyFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secretID, randomData, err := ParseAPIKey(tt.key)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseAPIKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr == nil {
				if secretID != validSecretID {
					t.Errorf("secretID = %q, want %q", secretID, validSecretID)
				}
				if randomData != validRandom {
					t.Errorf("randomData = %q, want %q", randomData, validRandom)
				}
			}
		})
	}
}

func TestComputeAndVerifyHMAC(t *testing.T) {
	secret := []byte("test-secret-material-0123456789abcdef")
	key := "ap-v1-" + strings.Repeat("ab", 16) + "-" + strings.Repeat("cd", 32)

	hash1 := ComputeHMAC(secret, key)
	hash2 := ComputeHMAC(secret, key)
	if !VerifyHMAC(hash1, hash2) {
		t.Errorf("VerifyHMAC(same input) = false, want true")
	}

	otherSecret := ComputeHMAC([]byte("different-secret"), key)
	if VerifyHMAC(hash1, otherSecret) {
		t.Errorf("VerifyHMAC(different secret) = true, want false")
	}

	otherKey := ComputeHMAC(secret, key+"x")
	if VerifyHMAC(hash1, otherKey) {
		t.Errorf("VerifyHMAC(different key) = true, want false")
	}
}
