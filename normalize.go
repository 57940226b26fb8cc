package vtcore

import (
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

func normalizationForm(form string) norm.Form {
	switch form {
	case "NFC":
		return norm.NFC
	case "NFD":
		return norm.NFD
	case "NFKC":
		return norm.NFKC
	case "NFKD":
		return norm.NFKD
	default:
		return -1
	}
}

// normalizeRune applies Config.NormalizationForm to a single incoming rune,
// returning the rune sequence it normalizes to. This folds a rune that is
// independently decomposable/composable on its own (e.g. a precomposed
// Latin-1 letter arriving under NFD, or a base+mark pair already combined
// arriving under NFC). Runes that arrive as separate Input calls are not
// composed with each other: a later combining mark is appended to the
// previous cell by Cell.AppendCombining as-is.
func normalizeRune(form string, r rune) []rune {
	f := normalizationForm(form)
	if f < 0 {
		return []rune{r}
	}

	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], r)
	out := f.Bytes(buf[:n])
	if len(out) == 0 {
		return []rune{r}
	}

	runes := make([]rune, 0, len(out))
	for len(out) > 0 {
		rr, size := utf8.DecodeRune(out)
		runes = append(runes, rr)
		out = out[size:]
	}
	return runes
}
