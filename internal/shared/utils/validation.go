package utils

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/orris-inc/warden/internal/shared/biztime"
	"github.com/orris-inc/warden/internal/shared/errors"
)

var (
	validate = newValidator()

	groupNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]*$`)
)

func newValidator() *validator.Validate {
	v := validator.New()
	if err := RegisterValidators(v); err != nil {
		panic(err)
	}
	return v
}

// RegisterValidators installs the JSON tag name func and the custom tags on
// v. It is applied to both our validator and gin's binding engine.
func RegisterValidators(v *validator.Validate) error {
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
	if err := v.RegisterValidation("group_name", validateGroupName); err != nil {
		return fmt.Errorf("register group_name: %w", err)
	}
	if err := v.RegisterValidation("future_date", validateFutureDate); err != nil {
		return fmt.Errorf("register future_date: %w", err)
	}
	return nil
}

// RegisterGinValidators wires the custom tags into gin's default binding engine.
func RegisterGinValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return stderrors.New("gin binding engine is not validator/v10")
	}
	return RegisterValidators(v)
}

func validateGroupName(fl validator.FieldLevel) bool {
	return groupNamePattern.MatchString(fl.Field().String())
}

// validateFutureDate accepts a date strictly after today in the business
// timezone. Strings may be YYYY-MM-DD or RFC3339; an empty string means
// no date.
func validateFutureDate(fl validator.FieldLevel) bool {
	now := biztime.NowUTC()
	switch v := fl.Field().Interface().(type) {
	case time.Time:
		return biztime.IsAfterToday(v, now)
	case string:
		if v == "" {
			return true
		}
		t, err := biztime.ParseDateOrTime(v)
		return err == nil && biztime.IsAfterToday(t, now)
	default:
		return false
	}
}

// ValidateStruct validates s and returns a field-keyed validation AppError.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	return ValidationErrorFrom(err)
}

// ValidationErrorFrom converts validator or gin binding failures into an
// AppError. Malformed bodies become a bad request.
func ValidationErrorFrom(err error) error {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.NewBadRequestError("Invalid request body", err.Error())
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		key := fieldPath(fe)
		if _, seen := fields[key]; !seen {
			fields[key] = getFieldErrorMessage(fe)
		}
	}

	appErr := errors.NewFieldValidationError(fields)
	appErr.Details = joinFieldMessages(fields)
	return appErr
}

// fieldPath drops the top-level struct name: "CreateGroupRequest.user_ids[0]" -> "user_ids.0".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	ns = strings.NewReplacer("[", ".", "]", "").Replace(ns)
	return ns
}

func joinFieldMessages(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, len(keys))
	for i, k := range keys {
		msgs[i] = fields[k]
	}
	return strings.Join(msgs, "; ")
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := fe.Field()
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", field, param)
		}
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map {
			return fmt.Sprintf("%s must contain at least %s items", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, param)
	case "eqfield":
		return fmt.Sprintf("%s must match %s", field, param)
	case "nefield":
		return fmt.Sprintf("%s must differ from %s", field, param)
	case "group_name":
		return fmt.Sprintf("%s may only contain lowercase letters, digits, dashes, underscores and dots", field)
	case "future_date":
		return fmt.Sprintf("%s must be a date after today", field)
	default:
		return fmt.Sprintf("%s failed validation for '%s'", field, fe.Tag())
	}
}
