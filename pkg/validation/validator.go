package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// MaxPrefixLength bounds partition file prefixes
	MaxPrefixLength = 100

	// Regular expressions
	prefixPattern = regexp.MustCompile(`^[a-zA-Z0-9_\-]+$`)
	// Freebase machine ids, e.g. /m/0346l4
	freebaseIDPattern = regexp.MustCompile(`^/m/[0-9a-z_]+$`)
)

func init() {
	validate = validator.New()
	// Struct tag names double as field names in messages
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = validate.RegisterValidation("fraction", func(fl validator.FieldLevel) bool {
		v := fl.Field().Float()
		return v > 0 && v <= 1
	})
	_ = validate.RegisterValidation("prefix", func(fl validator.FieldLevel) bool {
		return ValidatePartitionPrefix(fl.Field().String()) == nil
	})
}

// Struct validates v against its `validate` struct tags and reports the
// first failure by its yaml key.
func Struct(v any) error {
	if v == nil {
		return errors.New("value cannot be nil")
	}
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidatePartitionPrefix validates a partition file prefix. Prefixes become
// part of file names and object keys.
func ValidatePartitionPrefix(prefix string) error {
	if prefix == "" {
		return errors.New("partition prefix cannot be empty")
	}
	if len(prefix) > MaxPrefixLength {
		return fmt.Errorf("partition prefix '%s' exceeds maximum length of %d characters", prefix, MaxPrefixLength)
	}
	if !prefixPattern.MatchString(prefix) {
		return fmt.Errorf("partition prefix '%s' contains invalid characters (only alphanumeric, dash and underscore allowed)", prefix)
	}
	return nil
}

// ValidateActorID validates a Freebase actor id
func ValidateActorID(id string) error {
	if !freebaseIDPattern.MatchString(id) {
		return fmt.Errorf("actor id '%s' is not a Freebase machine id", id)
	}
	return nil
}

// ValidateSeeds checks that a seed list is non-empty and free of duplicates
func ValidateSeeds(seeds []int64) error {
	if len(seeds) == 0 {
		return errors.New("at least one seed is required")
	}
	seen := make(map[int64]bool, len(seeds))
	for _, s := range seeds {
		if seen[s] {
			return fmt.Errorf("seed %d is listed twice", s)
		}
		seen[s] = true
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		param := e.Param()

		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min", "gte":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max", "lte":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "gt":
			return fmt.Errorf("%s: must be greater than %s", field, param)
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s]", field, param)
		case "fraction":
			return fmt.Errorf("%s: must be in (0, 1]", field)
		case "prefix":
			return fmt.Errorf("%s: %v", field, ValidatePartitionPrefix(fmt.Sprint(e.Value())))
		case "dive", "unique":
			return fmt.Errorf("%s: invalid element in list", field)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}

	return err
}
