package metadata

import (
	"strings"

	"github.com/hbollon/go-edlib"

	nmerrors "github.com/standardbeagle/nowmeta/internal/errors"
)

// maxSuggestDistance bounds how far a typo may be from a script type and
// still earn a "did you mean"
const maxSuggestDistance = 4

var scriptTypeAliases = map[string]ScriptType{
	"businessrule":   BusinessRule,
	"businessrules":  BusinessRule,
	"br":             BusinessRule,
	"sysscript":      BusinessRule,
	"scriptinclude":  ScriptInclude,
	"scriptincludes": ScriptInclude,
	"si":             ScriptInclude,
	"include":        ScriptInclude,
	"clientscript":   ClientScript,
	"clientscripts":  ClientScript,
	"cs":             ClientScript,
}

func foldScriptType(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(s)
}

// ResolveScriptTypes maps a caller's script_type to the sources to search.
// Empty input selects every source. Spelling is forgiving about case and
// separators; anything else is a validation error with the closest type as
// a suggestion.
func ResolveScriptTypes(input string) ([]ScriptType, error) {
	if strings.TrimSpace(input) == "" {
		return append([]ScriptType(nil), ScriptTypes...), nil
	}

	folded := foldScriptType(input)
	if t, ok := scriptTypeAliases[folded]; ok {
		return []ScriptType{t}, nil
	}

	err := nmerrors.NewInvalidValueError("script_type", input, "must be one of BusinessRule, ScriptInclude, ClientScript")
	if best, distance := closestScriptType(folded); distance <= maxSuggestDistance {
		err.WithSuggestion(string(best))
	}
	return nil, err
}

func closestScriptType(folded string) (ScriptType, int) {
	var best ScriptType
	bestDistance := 1000
	for _, t := range ScriptTypes {
		distance := edlib.LevenshteinDistance(folded, strings.ToLower(string(t)))
		if distance < bestDistance {
			bestDistance = distance
			best = t
		}
	}
	return best, bestDistance
}
