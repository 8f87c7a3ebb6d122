package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the calendar-date format accepted by request payloads.
const DateLayout = "2006-01-02"

var (
	upperRe = regexp.MustCompile(`[A-Z]`)
	lowerRe = regexp.MustCompile(`[a-z]`)
	digitRe = regexp.MustCompile(`[0-9]`)
	phoneRe = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)

	PhotographyTypes = []string{
		"Portrait Photography",
		"Wedding Photography",
		"Event Photography",
		"Product Photography",
		"Fashion Photography",
		"Nature Photography",
		"Corporate Photography",
	}
	EventTypes = []string{
		"Weddings",
		"Birthdays",
		"Corporate Events",
		"Family Portraits",
		"Maternity Shoots",
		"Engagement Sessions",
		"Graduation Photos",
		"Anniversary Celebrations",
	}
	BudgetRanges = []string{"5000-15000", "15000-30000", "30000-50000", "50000-100000", "100000+"}
)

// FieldError is one entry of the "errors" array in a 400 response.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is returned when a payload fails validation.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, ", ")
}

// NewFieldError builds a single-field validation error for checks that happen
// outside struct tags (e.g. remote email reputation).
func NewFieldError(field, message string) *Error {
	return &Error{Fields: []FieldError{{Field: field, Message: message}}}
}

// Validator wraps go-playground/validator with the payload rules of the API.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

func New() *Validator {
	v := &Validator{validate: validator.New(validator.WithRequiredStructEnabled()), now: time.Now}

	// report JSON field names, not Go names
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.register()
	return v
}

// Validate implements echo.Validator.
func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &Error{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fieldPath(fe), Message: message(fe)})
	}
	sort.SliceStable(out.Fields, func(i, j int) bool { return out.Fields[i].Field < out.Fields[j].Field })
	return out
}

func (v *Validator) register() {
	_ = v.validate.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		pw := fl.Field().String()
		return upperRe.MatchString(pw) && lowerRe.MatchString(pw) && digitRe.MatchString(pw)
	})
	_ = v.validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	})
	_ = v.validate.RegisterValidation("photography_type", func(fl validator.FieldLevel) bool {
		return slices.Contains(PhotographyTypes, fl.Field().String())
	})
	_ = v.validate.RegisterValidation("event_type", func(fl validator.FieldLevel) bool {
		return slices.Contains(EventTypes, fl.Field().String())
	})
	_ = v.validate.RegisterValidation("budget_range", func(fl validator.FieldLevel) bool {
		return slices.Contains(BudgetRanges, fl.Field().String())
	})
	_ = v.validate.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	})
	// min_age=13: a calendar date at least N years in the past
	_ = v.validate.RegisterValidation("min_age", func(fl validator.FieldLevel) bool {
		d, err := ParseDate(fl.Field().String())
		if err != nil {
			return false
		}
		var years int
		if _, err := fmt.Sscanf(fl.Param(), "%d", &years); err != nil {
			return false
		}
		return v.now().Year()-d.Year() >= years
	})
	_ = v.validate.RegisterValidation("not_past", func(fl validator.FieldLevel) bool {
		d, err := ParseDate(fl.Field().String())
		if err != nil {
			return false
		}
		y, m, day := v.now().Date()
		today := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
		return !d.Before(today)
	})
}

// ParseDate accepts a calendar date or a full RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func fieldPath(fe validator.FieldError) string {
	// Namespace is "structName.field[0]"; drop the struct name
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "Invalid email format"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s cannot exceed %s", field, fe.Param())
	case "strongpassword":
		return fmt.Sprintf("%s must contain at least one uppercase letter, one lowercase letter, and one number", field)
	case "phone":
		return "Invalid phone number format"
	case "photography_type":
		return "Invalid photography type"
	case "event_type":
		return "Invalid event type"
	case "budget_range":
		return "Invalid budget range"
	case "date":
		return fmt.Sprintf("%s must be a valid date", field)
	case "min_age":
		return fmt.Sprintf("You must be at least %s years old", fe.Param())
	case "not_past":
		return fmt.Sprintf("%s must be in the future", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
