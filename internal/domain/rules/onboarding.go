package rules

import (
	"strings"

	"github.com/wybmv/backend/internal/domain/model"
)

// IsOnboarded reports whether a user may appear in listings and act on other users.
func IsOnboarded(user model.User) bool {
	return strings.TrimSpace(user.Handle) != "" &&
		user.Gender.Valid() &&
		strings.TrimSpace(user.WhatsApp) != ""
}
