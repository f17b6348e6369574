package record

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// CountyLabel turns an internal county code into the label shown to users:
//
//	fremont_county_wy -> Fremont County
//	teton_county_id   -> Teton County
//
// Codes that do not follow the <name>_county_<state> layout are title-cased
// with underscores replaced by spaces.
func CountyLabel(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.Index(code, "_county"); i > 0 {
		name := strings.ReplaceAll(code[:i], "_", " ")
		return titleCaser.String(name) + " County"
	}
	return titleCaser.String(strings.ReplaceAll(code, "_", " "))
}

// StateFromCode returns the upper-cased two letter state suffix of a county
// code, or "" when the code has none.
func StateFromCode(code string) string {
	i := strings.LastIndexByte(code, '_')
	if i < 0 || len(code)-i-1 != 2 {
		return ""
	}
	return strings.ToUpper(code[i+1:])
}

// CodeFor is the inverse of CountyLabel/StateFromCode: "Teton County", "WY"
// maps to teton_county_wy. Without a state the code has no suffix.
func CodeFor(label, state string) string {
	code := strings.Join(strings.Fields(strings.ToLower(label)), "_")
	if state = strings.ToLower(strings.TrimSpace(state)); state != "" {
		code += "_" + state
	}
	return code
}
