package enums

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Opposite returns the gender a viewer is shown in candidate listings.
func (g Gender) Opposite() (Gender, bool) {
	switch g {
	case GenderMale:
		return GenderFemale, true
	case GenderFemale:
		return GenderMale, true
	default:
		return "", false
	}
}
