package web

import (
	"errors"
	"strconv"
	"strings"

	"opengym/internal/apperr"

	"github.com/go-playground/validator/v10"
)

// check validates a form struct and returns a message per failing field.
func (h *Handler) check(form any) map[string]string {
	err := h.validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"Form": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "Dit veld is verplicht."
	case "email":
		return "Geen geldig e-mailadres."
	case "eqfield":
		return "De wachtwoorden komen niet overeen."
	case "min":
		return "Te kort of te klein (minimum " + fe.Param() + ")."
	case "max":
		return "Te lang of te groot (maximum " + fe.Param() + ")."
	case "datetime":
		return "Ongeldige datum of tijd."
	case "number":
		return "Geef een getal in."
	}
	return "Ongeldige waarde."
}

// validationMessage extracts the message of a save-time validation error.
func validationMessage(err error) (string, bool) {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		return ve.Message, true
	}
	return "", false
}

// optionalInt parses an optional positive number field. Empty means unset.
func optionalInt(v string) *int {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}
