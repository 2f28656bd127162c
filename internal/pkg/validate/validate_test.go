package validate

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCharset_EmptyIsInvalid(t *testing.T) {
	for _, set := range []Set{UsernameSet, PasswordSet, SymbolSet, NewSet(), NewSet("")} {
		assert.False(t, Charset("", set))
	}
}

func TestCharset_Username(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"alice", true},
		{"Mary Ann", true},
		{"bob", true},
		{"bob1", false},
		{"bob_smith", false},
		{"élodie", false},
		{"   ", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Charset(tt.in, UsernameSet))
		})
	}
}

func TestCharset_Password(t *testing.T) {
	assert.True(t, Charset("Secret1!", PasswordSet))
	assert.True(t, Charset("pw1", PasswordSet))
	assert.False(t, Charset("has space", PasswordSet))
	assert.False(t, Charset("tab\tbed", PasswordSet))
	assert.False(t, Charset("naïve", PasswordSet))
}

func TestCharset_Symbol(t *testing.T) {
	for _, ok := range []string{"AAPL", "BRK-B", "BF.B", "^GSPC", "EURUSD=X"} {
		assert.True(t, Charset(ok, SymbolSet), ok)
	}
	for _, bad := range []string{"AA PL", "AAPL/../x", "A?B", "A&p=1"} {
		assert.False(t, Charset(bad, SymbolSet), bad)
	}
}

// TestCharset_Membership checks the defining property against random input:
// the result is true exactly when every rune is in the set.
func TestCharset_Membership(t *testing.T) {
	alphabet := []rune("abcXYZ 019!~\t_é")
	allowed := NewSet("abcXYZ ")
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 500; i++ {
		var b strings.Builder
		n := 1 + rng.Intn(12)
		for j := 0; j < n; j++ {
			b.WriteRune(alphabet[rng.Intn(len(alphabet))])
		}
		s := b.String()

		want := true
		for _, r := range s {
			if !strings.ContainsRune("abcXYZ ", r) {
				want = false
				break
			}
		}
		assert.Equal(t, want, Charset(s, allowed), "input %q", s)
	}
}
