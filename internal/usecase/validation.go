package usecase

import (
	"strings"

	"github.com/mizanur-rahman/homemeal/internal/domain/model"
)

// ValidateRating checks a review rating against the accepted bounds.
func ValidateRating(rating int) bool {
	return rating >= model.MinRating && rating <= model.MaxRating
}

// ValidateEmail performs a minimal well-formedness check; real address
// verification is out of scope.
func ValidateEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	return !strings.ContainsAny(email, " \t\n")
}
