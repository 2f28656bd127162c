/*
Package validate provides the character-set checks applied to usernames,
passwords and ticker symbols before they reach the store or the network.
*/
package validate

// Set is a collection of permitted runes.
type Set map[rune]struct{}

// NewSet returns a Set holding every rune of each given string.
func NewSet(parts ...string) Set {
	s := make(Set)
	for _, part := range parts {
		for _, r := range part {
			s[r] = struct{}{}
		}
	}
	return s
}

// Contains reports whether r is a member of s.
func (s Set) Contains(r rune) bool {
	_, ok := s[r]
	return ok
}

const (
	lowerLetters = "abcdefghijklmnopqrstuvwxyz"
	upperLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits       = "0123456789"
)

var (
	// UsernameSet allows ASCII letters and blanks.
	UsernameSet = NewSet(lowerLetters, upperLetters, " \t")

	// PasswordSet allows printable ASCII except whitespace.
	PasswordSet = printableASCII()

	// SymbolSet allows the characters that appear in exchange tickers,
	// such as BRK-B, BF.B, ^GSPC or EURUSD=X.
	SymbolSet = NewSet(lowerLetters, upperLetters, digits, ".-^=")
)

func printableASCII() Set {
	s := make(Set)
	for r := rune('!'); r <= '~'; r++ {
		s[r] = struct{}{}
	}
	return s
}

// Charset reports whether s is non-empty and made only of runes in allowed.
func Charset(s string, allowed Set) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !allowed.Contains(r) {
			return false
		}
	}
	return true
}
