package lexer

// CharGroup is the coarse class of a source character used by the automata.
type CharGroup int

const (
	Other CharGroup = iota
	Lower
	Upper
	Digit
)

// Classify maps ch to its CharGroup. Only ASCII letters and digits are
// recognised; everything else is Other.
func Classify(ch rune) CharGroup {
	switch {
	case ch >= 'a' && ch <= 'z':
		return Lower
	case ch >= 'A' && ch <= 'Z':
		return Upper
	case ch >= '0' && ch <= '9':
		return Digit
	}
	return Other
}

// IsLetter reports whether ch is an ASCII letter.
func IsLetter(ch rune) bool {
	g := Classify(ch)
	return g == Lower || g == Upper
}

// IsDigit reports whether ch is an ASCII decimal digit.
func IsDigit(ch rune) bool {
	return Classify(ch) == Digit
}

// IsSpace reports whether ch separates lexemes.
func IsSpace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}
