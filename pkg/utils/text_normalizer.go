package utils

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	amountNoise   = strings.NewReplacer("$", "", ",", "", " ", "", " ", "", "USD", "", "usd", "")
)

// DateLayouts are tried in order by ParseDate.
var DateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"2006-01-02",
	"01-02-2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"2 January 2006",
}

// NormalizeWhitespace collapses runs of whitespace into single spaces and trims.
func NormalizeWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

// ParseAmount turns "$1,500.00" into 1500. Thousands separators, currency
// symbols and spaces are stripped; anything else that fails to parse is rejected.
func ParseAmount(raw string) (float64, bool) {
	cleaned := amountNoise.Replace(strings.TrimSpace(raw))
	cleaned = strings.TrimRight(cleaned, ".")
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// ParseDate tries DateLayouts in order.
func ParseDate(raw string) (time.Time, bool) {
	value := NormalizeWhitespace(strings.TrimRight(raw, ".,;"))
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Excerpt returns the sentence around text[start:end], capped at window bytes
// on either side of the match, with whitespace normalized.
func Excerpt(text string, start, end, window int) string {
	if start < 0 {
		start = 0
	}
	if end > len(text) {
		end = len(text)
	}
	if start > end {
		return ""
	}

	lo := start - window
	if lo < 0 {
		lo = 0
	}
	hi := end + window
	if hi > len(text) {
		hi = len(text)
	}
	// Keep the window on rune boundaries.
	for lo > 0 && !utf8.RuneStart(text[lo]) {
		lo--
	}
	for hi < len(text) && !utf8.RuneStart(text[hi]) {
		hi++
	}

	// Shrink to sentence boundaries inside the window.
	if i := strings.LastIndexAny(text[lo:start], ".\n;"); i >= 0 {
		lo += i + 1
	}
	if i := strings.IndexAny(text[end:hi], ".\n;"); i >= 0 {
		hi = end + i
	}

	return NormalizeWhitespace(text[lo:hi])
}

// PrintableRatio is the share of runes that are printable or whitespace.
func PrintableRatio(text string) float64 {
	if text == "" {
		return 0
	}
	total, printable := 0, 0
	for _, r := range text {
		total++
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			printable++
		}
	}
	return float64(printable) / float64(total)
}

// TitleCase upper-cases the first letter of every word.
func TitleCase(text string) string {
	words := strings.Fields(strings.ToLower(text))
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
