package parsecs

import "strings"

// kindPrefixes maps a doc_id's leading letter to the symbol kind it names.
var kindPrefixes = map[string]string{
	"T": "type",
	"M": "method",
	"P": "property",
	"F": "field",
	"E": "event",
	"N": "namespace",
}

// docIDParts is the result of splitting a member name attribute like
// "M:Acme.Foo.Bar(System.String)" into its constituent parts.
type docIDParts struct {
	Kind          string
	QualifiedName string
	Signature     string
}

// parseDocID splits a doc_id of the form "{letter}:{rest}" where rest may
// carry a parenthesized signature suffix.
func parseDocID(docID string) docIDParts {
	prefix, rest, found := strings.Cut(docID, ":")
	if !found {
		return docIDParts{Kind: "unknown", QualifiedName: docID}
	}
	kind, ok := kindPrefixes[prefix]
	if !ok {
		kind = "unknown"
	}
	if idx := strings.Index(rest, "("); idx >= 0 {
		return docIDParts{Kind: kind, QualifiedName: rest[:idx], Signature: rest[idx:]}
	}
	return docIDParts{Kind: kind, QualifiedName: rest}
}

// extractSimpleName returns the final segment of a qualified name, cutting
// on the last '.', '+' (nested type), or '#' (explicit interface member).
func extractSimpleName(qualifiedName string) string {
	best := -1
	for _, sep := range []string{"#", "+", "."} {
		if idx := strings.LastIndex(qualifiedName, sep); idx > best {
			best = idx
		}
	}
	if best < 0 {
		return qualifiedName
	}
	return qualifiedName[best+1:]
}
