package form

import "strings"

// Copy variant segment identifiers in the fixed 1099-NEC template layout.
// Copy A is the primary (regulatory) copy; the others reuse its layout with
// the copy segment swapped and the f1_ field prefix renamed to f2_.
const primaryCopy = "CopyA[0]"

var Copies = []string{"CopyA[0]", "Copy1[0]", "CopyB[0]", "Copy2[0]"}

// Required spreadsheet columns, matched by exact header text including the
// embedded line break.
const (
	ColRecipient = "RECIPIENT’S name"
	ColYear      = "FOR CALENDAR\nYEAR"
)

var RequiredColumns = []string{ColRecipient, ColYear}

// Mapping ties one spreadsheet column to its canonical Copy A field path.
// Amount columns are rendered as #,###.## money strings; everything else is
// trimmed text.
type Mapping struct {
	Column string
	Path   string
	Amount bool
}

var Mappings = []Mapping{
	{Column: ColYear, Path: "topmostSubform[0].CopyA[0].PgHeader[0].CalendarYear[0].f1_1[0]"},
	{Column: "PAYER’S name, street address, city or town, state or province, country, ZIP\nor foreign postal code, and telephone no.", Path: "topmostSubform[0].CopyA[0].LeftCol[0].f1_2[0]"},
	{Column: "PAYER’S TIN", Path: "topmostSubform[0].CopyA[0].LeftCol[0].f1_3[0]"},
	{Column: "RECIPIENT’S TIN", Path: "topmostSubform[0].CopyA[0].LeftCol[0].f1_4[0]"},
	{Column: ColRecipient, Path: "topmostSubform[0].CopyA[0].LeftCol[0].f1_5[0]"},
	{Column: "Street address (including apt. no.)", Path: "topmostSubform[0].CopyA[0].LeftCol[0].f1_6[0]"},
	{Column: "City or town, state or province, country,\nand ZIP or foreign postal code", Path: "topmostSubform[0].CopyA[0].LeftCol[0].f1_7[0]"},
	{Column: "1 Nonemployee\ncompensation", Path: "topmostSubform[0].CopyA[0].RightCol[0].f1_9[0]", Amount: true},
	{Column: "6 State/ \nPayer's State No.", Path: "topmostSubform[0].CopyA[0].RightCol[0].Box6_ReadOrder[0].f1_14[0]"},
	{Column: "7 State\nincome", Path: "topmostSubform[0].CopyA[0].RightCol[0].Box7_ReadOrder[0].f1_16[0]", Amount: true},
}

// copyPaths holds the precompiled field path for every (column, copy) pair.
// The segment and prefix substitutions run once here, never at fill time.
var copyPaths = buildCopyPaths()

func buildCopyPaths() map[string]map[string]string {
	table := make(map[string]map[string]string, len(Mappings))
	for _, m := range Mappings {
		byCopy := make(map[string]string, len(Copies))
		for _, cp := range Copies {
			path := strings.ReplaceAll(m.Path, primaryCopy, cp)
			if cp != primaryCopy {
				path = strings.ReplaceAll(path, ".f1_", ".f2_")
			}
			byCopy[cp] = path
		}
		table[m.Column] = byCopy
	}
	return table
}

// FieldPaths returns the replicated field paths for one mapped column, one
// per copy variant in Copies order. Unknown columns yield nil.
func FieldPaths(column string) []string {
	byCopy, ok := copyPaths[column]
	if !ok {
		return nil
	}
	paths := make([]string, 0, len(Copies))
	for _, cp := range Copies {
		paths = append(paths, byCopy[cp])
	}
	return paths
}
