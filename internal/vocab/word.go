package vocab

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidWord is returned when a record is missing required fields or
// carries an out-of-range mastery encoding.
var ErrInvalidWord = errors.New("invalid word")

// Word is a single Japanese/English pair and its study state.
type Word struct {
	ID         int    `validate:"gte=0"`
	SourceText string `validate:"required,notblank"`
	TargetText string `validate:"required,notblank"`
	Mastery    int    `validate:"mastery"`
	IsFavorite bool
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func wordValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = validate.RegisterValidation("mastery", func(fl validator.FieldLevel) bool {
			return ValidMastery(int(fl.Field().Int()))
		})
	})
	return validate
}

// ValidMastery reports whether m is a packed pair of levels in 0..2.
func ValidMastery(m int) bool {
	if m < 0 || m > 22 {
		return false
	}
	return m%10 <= 2
}

// Validate checks the record at a storage boundary.
func (w Word) Validate() error {
	if err := wordValidator().Struct(w); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: id %d: field %s failed %q", ErrInvalidWord, w.ID, verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: id %d: %v", ErrInvalidWord, w.ID, err)
	}
	return nil
}

// Hint returns the first letter of the answer as a prompt hint, e.g. "d-".
func Hint(target string) string {
	target = strings.TrimSpace(target)
	if target == "" {
		return ""
	}
	r := []rune(target)
	return string(r[0]) + "-"
}
