package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes a string to NFKD form, drops combining marks, and
// recomposes — the standard x/text recipe for folding accented Latin
// letters to their bare form (é -> e, ű -> u, ö -> o).
var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// asciiFold covers the common Latin letters that don't decompose into a
// base rune plus a combining mark under NFKD, so stripMarks alone can't
// reach them: ligatures, eth/thorn, eszett, and stroke letters.
var asciiFold = map[rune]string{
	'Æ': "AE", 'æ': "ae",
	'Œ': "OE", 'œ': "oe",
	'Ø': "O", 'ø': "o",
	'Þ': "Th", 'þ': "th",
	'Ð': "D", 'ð': "d",
	'ß': "ss",
	'Ł': "L", 'ł': "l",
}

// deasciify best-effort transliterates s to its closest ASCII rendering,
// the way the slugger crate's deunicode-backed slugify does: fold the
// letters in asciiFold, then strip diacritics from the rest. Runes that
// still aren't ASCII afterward are left untouched for the caller to
// handle (normalizeStrict and NewLaxSlug both fall back to '-').
func deasciify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if repl, ok := asciiFold[r]; ok {
			b.WriteString(repl)
			continue
		}
		b.WriteRune(r)
	}

	out, _, err := transform.String(stripMarks, b.String())
	if err != nil {
		return b.String()
	}
	return out
}
