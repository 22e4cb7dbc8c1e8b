// Package position converts LSP positions into absolute offsets within a
// document's text.
//
// LSP counts characters in UTF-16 code units. Go strings are UTF-8, so every
// lookup walks the target line rune by rune and keeps both counts.
package position

import (
	"strings"
	"unicode/utf16"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Offset is the location of a position expressed in both units the server
// cares about.
type Offset struct {
	Byte  int // UTF-8 bytes, for slicing Go strings
	UTF16 int // UTF-16 code units, for the editor and the provider
}

// OffsetOf returns the absolute offset of pos in text, counted in UTF-16 code
// units.
func OffsetOf(text string, pos protocol.Position) int {
	return Locate(text, pos).UTF16
}

// ByteOffset returns the absolute offset of pos in text, counted in bytes.
func ByteOffset(text string, pos protocol.Position) int {
	return Locate(text, pos).Byte
}

// Locate walks text to pos. Lines are separated by '\n' only; a '\r' counts
// as an ordinary character. A line past the end clamps to the end of the
// document, a character past the end of its line clamps to the end of that
// line. A character inside a surrogate pair rounds down to the start of the
// code point.
func Locate(text string, pos protocol.Position) Offset {
	var off Offset
	rest := text
	for line := protocol.UInteger(0); line < pos.Line; line++ {
		i := strings.IndexByte(rest, '\n')
		if i < 0 {
			// Past the last line.
			off.Byte += len(rest)
			off.UTF16 += unitLen(rest)
			return off
		}
		off.Byte += i + 1
		off.UTF16 += unitLen(rest[:i]) + 1
		rest = rest[i+1:]
	}

	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}

	var units int
	for i, r := range rest {
		n := runeUnits(r)
		if units+n > int(pos.Character) {
			off.Byte += i
			off.UTF16 += units
			return off
		}
		units += n
	}
	off.Byte += len(rest)
	off.UTF16 += units
	return off
}

func unitLen(s string) int {
	var n int
	for _, r := range s {
		n += runeUnits(r)
	}
	return n
}

func runeUnits(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	// Invalid runes decode as U+FFFD, a single unit.
	return 1
}
