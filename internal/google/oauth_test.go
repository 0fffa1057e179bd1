package google

import (
	"strings"
	"testing"
)

func TestHasTokenForAccount_EmptyAccount(t *testing.T) {
	if HasTokenForAccount("") {
		t.Error("Expected false for empty account name")
	}
}

func TestTokenFileForAccount(t *testing.T) {
	tests := []struct {
		name     string
		account  string
		expected string
	}{
		{
			name:     "default account uses plain file name",
			account:  "default",
			expected: "google.token",
		},
		{
			name:     "empty account uses plain file name",
			account:  "",
			expected: "google.token",
		},
		{
			name:     "named account gets its own file",
			account:  "work",
			expected: "google-work.token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tokenFileForAccount(tt.account)
			if !strings.HasSuffix(path, tt.expected) {
				t.Errorf("tokenFileForAccount(%q) = %v, expected suffix %v", tt.account, path, tt.expected)
			}
			if !strings.Contains(path, "schedbot") {
				t.Errorf("token file %v should live under the schedbot cache directory", path)
			}
		})
	}
}

func TestGetOAuthConfig_Scopes(t *testing.T) {
	conf := GetOAuthConfig()
	if len(conf.Scopes) != 1 {
		t.Fatalf("expected exactly one scope, got %d", len(conf.Scopes))
	}
	if !strings.Contains(conf.Scopes[0], "calendar") {
		t.Errorf("expected calendar scope, got %s", conf.Scopes[0])
	}
}
