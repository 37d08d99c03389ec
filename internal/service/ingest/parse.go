package ingest

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var (
	// separators split the input into tokens: ASCII and full-width commas,
	// the ideographic comma, and any run of whitespace.
	separators = regexp.MustCompile(`[,，、\s\p{Zs}]+`)

	// delimiters split a token into code and title.
	delimiters = regexp.MustCompile(`[:：=]`)
)

// Entry is one parsed "code[:title]" token.
type Entry struct {
	Code  string  `json:"code"`
	Title *string `json:"title"`
}

// ParseEntries splits free-form text into entries in first-seen order.
//
// A token "1-1:入門" yields code "1-1" and title "入門"; a token without a
// delimiter is a bare code. Everything after the first delimiter is the
// title, with any further delimiters rejoined as ":". Codes are folded to
// narrow width so "１－１" and "1-1" are the same code, and titles are NFC
// normalized. When a code repeats, the first occurrence wins and later ones
// are dropped with their titles. Codes are not validated here.
func ParseEntries(text string) []Entry {
	out := []Entry{}
	seen := make(map[string]bool)

	for _, token := range separators.Split(strings.TrimSpace(text), -1) {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		code, title := token, ""
		if parts := delimiters.Split(token, -1); len(parts) >= 2 {
			code = strings.TrimSpace(parts[0])
			title = strings.TrimSpace(strings.Join(parts[1:], ":"))
		}
		code = foldCode(code)

		if seen[code] {
			continue
		}
		seen[code] = true

		e := Entry{Code: code}
		if title != "" {
			t := norm.NFC.String(title)
			e.Title = &t
		}
		out = append(out, e)
	}
	return out
}

// foldCode maps hyphen-like characters and full-width digits to ASCII.
// Dashes are folded first since narrowing turns 'ー' into 'ｰ'.
func foldCode(code string) string {
	code = strings.Map(func(r rune) rune {
		switch r {
		case '‐', '‑', '‒', '–', '—', '−', 'ー', 'ｰ':
			return '-'
		}
		return r
	}, code)
	return width.Narrow.String(code)
}
