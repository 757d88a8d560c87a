package rules

var suggestedHobbies = []string{
	"Travel",
	"Photography",
	"Music",
	"Reading",
	"Cooking",
	"Fitness",
	"Gaming",
	"Movies",
	"Art",
	"Dancing",
	"Sports",
	"Hiking",
	"Yoga",
	"Writing",
	"Technology",
	"Fashion",
	"Food",
	"Animals",
	"Volunteering",
	"Learning Languages",
}

func SuggestedHobbies() []string {
	out := make([]string, len(suggestedHobbies))
	copy(out, suggestedHobbies)
	return out
}
