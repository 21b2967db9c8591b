// Package codec implements the transport encoding applied to message bodies
// before they are written to the remote log. Every character that the store
// rejects in values is replaced by the token "ASCII" followed by its decimal
// code point, and decoding reverses the substitution in the same order.
//
// Decode inverts Encode for any input that does not already contain an
// "ASCII<digits>" sequence matching one of the reserved code points.
package codec

import (
	"strconv"
	"strings"
)

// Prefix starts every substitution token.
const Prefix = "ASCII"

// Reserved lists the substituted characters in application order.
var Reserved = []rune{
	'\n', '\r', '!', '"', '#', '$', '%', '&', '\'', '.', '/',
	'<', '=', '>', '@', '[', '\\', ']', '{', '}',
}

// Token returns the substitution token for r.
func Token(r rune) string {
	return Prefix + strconv.Itoa(int(r))
}

var (
	encoder *strings.Replacer
	decoder *strings.Replacer
)

func init() {
	enc := make([]string, 0, len(Reserved)*2)
	dec := make([]string, 0, len(Reserved)*2)
	for _, r := range Reserved {
		enc = append(enc, string(r), Token(r))
		dec = append(dec, Token(r), string(r))
	}
	encoder = strings.NewReplacer(enc...)
	decoder = strings.NewReplacer(dec...)
}

// Encode replaces every reserved character in s with its token.
func Encode(s string) string {
	return encoder.Replace(s)
}

// Decode replaces every token in s with the character it stands for.
func Decode(s string) string {
	return decoder.Replace(s)
}
