package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_formatToken_splitToken_roundTrip(t *testing.T) {
	secret, err := newTokenSecret()
	if err != nil {
		t.Fatalf("newTokenSecret(): %v", err)
	}

	raw := formatToken(42, secret)
	id, gotSecret, err := splitToken(raw)
	if err != nil {
		t.Fatalf("splitToken(): %v", err)
	}
	assert.Equal(t, int64(42), id)
	assert.Equal(t, secret, gotSecret)
}

func Test_splitToken_malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"no separator", "42abcdef"},
		{"empty secret", "42|"},
		{"empty id", "|abcdef"},
		{"non-numeric id", "abc|abcdef"},
		{"zero id", "0|abcdef"},
		{"negative id", "-1|abcdef"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := splitToken(tt.raw); err != ErrInvalidToken {
				t.Errorf("splitToken(%q) err = %v; want ErrInvalidToken", tt.raw, err)
			}
		})
	}
}

func Test_digestSecret(t *testing.T) {
	d1 := digestSecret("secret", "key")
	d2 := digestSecret("secret", "key")
	assert.True(t, digestsEqual(d1, d2), "same secret+key must digest identically")

	assert.False(t, digestsEqual(d1, digestSecret("tampered", "key")), "different secrets must differ")
	assert.False(t, digestsEqual(d1, digestSecret("secret", "other-key")), "different keys must differ")
}

func Test_newTokenSecret_unique(t *testing.T) {
	s1, err := newTokenSecret()
	if err != nil {
		t.Fatalf("newTokenSecret(): %v", err)
	}
	s2, err := newTokenSecret()
	if err != nil {
		t.Fatalf("newTokenSecret(): %v", err)
	}
	assert.NotEqual(t, s1, s2)
}
