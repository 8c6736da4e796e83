package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	phoneRegex  = regexp.MustCompile(`^(?:\+91[\-\s]?|0)?[6-9]\d{9}$`)
	panRegex    = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	aadharRegex = regexp.MustCompile(`^[2-9][0-9]{11}$`)
	gstinRegex  = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
	postalRegex = regexp.MustCompile(`^[1-9][0-9]{5}$`)
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.SetTagName("binding")
	configure(validate)

	// Handlers bind through gin, so its engine needs the same rules.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		configure(v)
	}
}

func configure(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	_ = v.RegisterValidation("in_phone", regexValidator(phoneRegex, normalizePhone))
	_ = v.RegisterValidation("pan", regexValidator(panRegex, strings.ToUpper))
	_ = v.RegisterValidation("aadhar", regexValidator(aadharRegex, stripSpaces))
	_ = v.RegisterValidation("gstin", regexValidator(gstinRegex, strings.ToUpper))
	_ = v.RegisterValidation("postal_code", regexValidator(postalRegex, strings.TrimSpace))
	_ = v.RegisterValidation("accepted", func(fl validator.FieldLevel) bool {
		return fl.Field().Kind() == reflect.Bool && fl.Field().Bool()
	})
}

func regexValidator(re *regexp.Regexp, normalize func(string) string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.String {
			return false
		}
		return re.MatchString(normalize(fl.Field().String()))
	}
}

// Validate struct fields
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = message(fe)
	}
	return out
}

// FirstMessage turns a binding or validation error into the single message
// returned to the client.
func FirstMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return message(verrs[0])
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Sprintf("%s has an invalid type", typeErr.Field)
	}

	return "Invalid request body"
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s items", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "in_phone":
		return fmt.Sprintf("%s must be a valid 10-digit Indian mobile number", field)
	case "pan":
		return fmt.Sprintf("%s must be a valid PAN (e.g. ABCDE1234F)", field)
	case "aadhar":
		return fmt.Sprintf("%s must be a valid 12-digit Aadhar number", field)
	case "gstin":
		return fmt.Sprintf("%s must be a valid GSTIN", field)
	case "postal_code":
		return fmt.Sprintf("%s must be a valid 6-digit postal code", field)
	case "accepted":
		return "You must agree to the terms and conditions"
	}
	return fmt.Sprintf("%s is invalid", field)
}

func normalizePhone(s string) string {
	return strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(s))
}

func stripSpaces(s string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(s))
}

// NormalizePhone returns the 10-digit national number for a valid Indian
// mobile number, or the trimmed input otherwise.
func NormalizePhone(s string) string {
	p := normalizePhone(s)
	switch {
	case strings.HasPrefix(p, "+91"):
		p = p[3:]
	case len(p) == 11 && strings.HasPrefix(p, "0"):
		p = p[1:]
	}
	return p
}

// MaskAadhar keeps the last four digits.
func MaskAadhar(s string) string {
	d := stripSpaces(s)
	if len(d) <= 4 {
		return d
	}
	return strings.Repeat("X", len(d)-4) + d[len(d)-4:]
}
