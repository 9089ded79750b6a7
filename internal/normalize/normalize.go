package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Name folds a player name for case-insensitive lookups.
func Name(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	return cases.Fold().String(norm.NFC.String(name))
}
