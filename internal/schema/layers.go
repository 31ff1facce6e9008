package schema

// AdminLayers lists the administrative hierarchy carried on every document's
// parent object, broadest first.
var AdminLayers = []string{
	"continent",
	"ocean",
	"empire",
	"country",
	"dependency",
	"marinearea",
	"macroregion",
	"region",
	"macrocounty",
	"county",
	"localadmin",
	"locality",
	"borough",
	"macrohood",
	"neighbourhood",
	"postalcode",
}

const (
	parentField   = "parent"
	ngramSubField = "ngram"
	abbrSuffix    = "_a"
	idSuffix      = "_id"
	sourceSuffix  = "_source"
	pathSeparator = "."
)

// AbbreviationField returns the abbreviation field name of an admin layer,
// e.g. "country" -> "country_a".
func AbbreviationField(layer string) string {
	return layer + abbrSuffix
}

// FieldPath returns the exact-match path of a parent field,
// e.g. "country_a" -> "parent.country_a".
func FieldPath(field string) string {
	return parentField + pathSeparator + field
}

// NGramPath returns the partial-match path of a parent field,
// e.g. "country_a" -> "parent.country_a.ngram".
func NGramPath(field string) string {
	return FieldPath(field) + pathSeparator + ngramSubField
}

// IsAbbreviationField reports whether field is the abbreviation field of one
// of layers. An empty layers means AdminLayers.
func IsAbbreviationField(layers []string, field string) bool {
	if len(layers) == 0 {
		layers = AdminLayers
	}
	for _, layer := range layers {
		if AbbreviationField(layer) == field {
			return true
		}
	}
	return false
}
