package application

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-scoresheet/internal/domain"
)

// storeDrivers lists the persistence backends an EngineConfig may name.
var storeDrivers = []string{"memory", "sqlite", "postgres"}

// metricNamePattern matches a Prometheus metric name component.
var metricNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// registerCustomValidators registers domain-specific validation functions
// with the validator instance, including semantic version validation
// and engine-specific validation rules.
// registerCustomValidators returns an error if any validator registration fails.
func registerCustomValidators(v *validator.Validate) error {
	// Report yaml names rather than Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	validators := map[string]validator.Func{
		"semver":      validateSemver,
		"storedriver": validateStoreDriver,
		"confidence":  validateConfidence,
		"metricname":  validateMetricName,
	}
	for tag, fn := range validators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %s validator: %w", tag, err)
		}
	}
	return nil
}

// validateSemver validates that a string follows semantic versioning
// format (X.Y.Z where X, Y, Z are non-negative integers).
// validateSemver is a validator.Func that can be registered with
// the validator instance for use in struct tags.
func validateSemver(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	// Basic pattern: X.Y.Z where X, Y, Z are numbers.
	var major, minor, patch int
	n, err := fmt.Sscanf(value, "%d.%d.%d", &major, &minor, &patch)
	return err == nil && n == 3 && major >= 0 && minor >= 0 && patch >= 0
}

// validateStoreDriver checks that the field names a supported store backend.
func validateStoreDriver(fl validator.FieldLevel) bool {
	return slices.Contains(storeDrivers, fl.Field().String())
}

// validateConfidence checks that the field selects a built-in Dixon
// critical value table.
func validateConfidence(fl validator.FieldLevel) bool {
	_, err := domain.DixonPolicy(int(fl.Field().Int()))
	return err == nil
}

func validateMetricName(fl validator.FieldLevel) bool {
	return metricNamePattern.MatchString(fl.Field().String())
}

// toValidationError converts validator field errors into a domain
// ValidationError for entity so that callers see one error type for every
// rejected input, whichever layer rejected it.
func toValidationError(entity string, err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	verr := domain.NewValidationError(entity)
	for _, fe := range fieldErrs {
		verr.AddFieldError(fe.Field(), describeTag(fe))
	}
	return verr
}

// describeTag renders a failed validation tag as a short sentence.
func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "uuid":
		return "must be a UUID"
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

// decodeStrict unmarshals YAML into out, failing on unknown fields so that
// configuration typos are never silently ignored.
func decodeStrict(data []byte, out any) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Strict mode - fail on unknown fields.

	if err := decoder.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("YAML decode failed: %w", err)
	}
	return nil
}
