package form

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

var (
	whitespaceRuns = regexp.MustCompile(`\s+`)
	illegalInName  = regexp.MustCompile(`[\\/:*?"<>|]+`)
	nonDigits      = regexp.MustCompile(`[^\d]`)
)

// IsBlank reports whether a raw cell holds no usable value. Spreadsheet
// readers render missing numeric cells as the literal "nan", so that counts
// as blank too.
func IsBlank(s string) bool {
	t := strings.TrimSpace(s)
	return t == "" || strings.EqualFold(t, "nan")
}

// NormalizeAmount renders a money cell with thousands separators and exactly
// two decimals. Blank or unparseable input yields "0.00" rather than failing
// the row.
func NormalizeAmount(s string) string {
	if IsBlank(s) {
		return "0.00"
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(s, ",", "")), 64)
	if err != nil {
		return "0.00"
	}
	return humanize.FormatFloat("#,###.##", v)
}

// CleanFilename makes a cell safe to use inside an archive entry name:
// whitespace runs collapse to one space, characters illegal in file names
// are stripped. Blank input or nothing left after stripping yields
// "UNKNOWN".
func CleanFilename(s string) string {
	if IsBlank(s) {
		return "UNKNOWN"
	}
	out := whitespaceRuns.ReplaceAllString(strings.TrimSpace(s), " ")
	out = strings.TrimSpace(illegalInName.ReplaceAllString(out, ""))
	if out == "" {
		return "UNKNOWN"
	}
	return out
}

// SafeYear extracts the digits of a calendar-year cell. A digitless cell
// falls back to its trimmed text, and a blank one to "YEAR".
func SafeYear(s string) string {
	if IsBlank(s) {
		return "YEAR"
	}
	t := strings.TrimSpace(s)
	if digits := nonDigits.ReplaceAllString(t, ""); digits != "" {
		return digits
	}
	return t
}
