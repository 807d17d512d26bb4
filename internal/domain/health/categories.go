package health

// Category tokens as used in query strings.
const (
	TokenPhysical   = "physical"
	TokenCognitive  = "cognitive"
	TokenEmotional  = "emotional"
	TokenMedication = "medication"
	TokenAutonomy   = "autonomy"
	TokenAll        = "all"
)

// Category display names as stored.
const (
	CategoryPhysical   = "Salud Física"
	CategoryCognitive  = "Salud Cognitiva"
	CategoryEmotional  = "Estado Emocional"
	CategoryMedication = "Medicación"
	CategoryAutonomy   = "Autonomía"
)

// Subcategories the summary reads.
const (
	SubSymptoms = "Síntomas"
	SubMobility = "Movilidad"
	SubSleep    = "Sueño"
)

// Tokens lists the filter tokens in the order the tabs show them.
var Tokens = []string{TokenAll, TokenPhysical, TokenCognitive, TokenEmotional, TokenMedication, TokenAutonomy}

var tokenNames = map[string]string{
	TokenPhysical:   CategoryPhysical,
	TokenCognitive:  CategoryCognitive,
	TokenEmotional:  CategoryEmotional,
	TokenMedication: CategoryMedication,
	TokenAutonomy:   CategoryAutonomy,
}

// NameForToken returns the display name of a token. ok is false for "all",
// empty and unknown tokens.
func NameForToken(token string) (string, bool) {
	name, ok := tokenNames[token]
	return name, ok
}

// TokenForName maps a display name back to its token. Unknown names map to
// physical.
func TokenForName(name string) string {
	for tok, n := range tokenNames {
		if n == name {
			return tok
		}
	}
	return TokenPhysical
}

// ValidCategory reports whether name is a known display name.
func ValidCategory(name string) bool {
	for _, n := range tokenNames {
		if n == name {
			return true
		}
	}
	return false
}
