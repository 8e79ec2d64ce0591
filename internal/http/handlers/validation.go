package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	types "github.com/mindmirror/mindmirror-backend/internal/domain"
	"github.com/mindmirror/mindmirror-backend/internal/platform/apierr"
)

var (
	validatorsOnce sync.Once
	validatorsErr  error
)

// RegisterValidators adds the "mood" tag to gin's validator. Safe to call more than once.
func RegisterValidators() error {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			validatorsErr = fmt.Errorf("unexpected binding engine %T", binding.Validator.Engine())
			return
		}
		validatorsErr = v.RegisterValidation("mood", func(fl validator.FieldLevel) bool {
			_, err := types.ParseMood(fl.Field().String())
			return err == nil
		})
	})
	return validatorsErr
}

// bindError turns a gin bind failure into the matching 400, or 413 when the
// body ran past the size cap.
func bindError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apierr.TooLarge(fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Field() {
		case "Text":
			return apierr.BadRequest(apierr.CodeTextRequired, "text is required")
		case "Mood":
			return apierr.BadRequest(apierr.CodeInvalidMood, moodHint())
		default:
			return apierr.BadRequest(apierr.CodeInvalidRequest, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return apierr.BadRequest(apierr.CodeInvalidRequest, "malformed request")
}

func moodHint() string {
	msg := "mood must be one of:"
	for i, m := range types.Moods {
		if i > 0 {
			msg += ","
		}
		msg += " " + string(m)
	}
	return msg
}
