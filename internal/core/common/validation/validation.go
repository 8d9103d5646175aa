package validation

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	errors "github.com/frahmantamala/karyawan-management/internal"
)

const (
	MinGaji int64 = 1_000_000
	MaxGaji int64 = 100_000_000
)

type ValidatorFunc func(interface{}) *errors.AppError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []*FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{
		fields: make([]*FieldValidator, 0),
	}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := &FieldValidator{
		FieldName:  name,
		Value:      value,
		Validators: make([]ValidatorFunc, 0),
	}
	v.fields = append(v.fields, fv)
	return fv
}

func (fv *FieldValidator) fail(message string, code errors.ErrorCode) *errors.AppError {
	return errors.NewValidationFieldError(fv.FieldName, message, code)
}

func (fv *FieldValidator) Required(message string) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		switch v := value.(type) {
		case string:
			if strings.TrimSpace(v) == "" {
				return fv.fail(message, errors.ErrCodeValidationFailed)
			}
		case *string:
			if v == nil || strings.TrimSpace(*v) == "" {
				return fv.fail(message, errors.ErrCodeValidationFailed)
			}
		case *float64:
			if v == nil {
				return fv.fail(message, errors.ErrCodeValidationFailed)
			}
		case nil:
			return fv.fail(message, errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

// Length bounds the character count of a string; nil optional strings pass.
func (fv *FieldValidator) Length(min, max int, message string) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		var s string
		switch v := value.(type) {
		case string:
			s = v
		case *string:
			if v == nil {
				return nil
			}
			s = *v
		default:
			return nil
		}
		n := utf8.RuneCountInString(s)
		if n < min || (max > 0 && n > max) {
			return fv.fail(message, errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) FloatRange(min, max float64, message string, code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		var f float64
		switch v := value.(type) {
		case float64:
			f = v
		case *float64:
			if v == nil {
				return nil
			}
			f = *v
		default:
			return nil
		}
		if f < min || f > max {
			return fv.fail(message, code)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Email(message string) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok && !IsValidEmail(v) {
			return fv.fail(message, errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Custom(validator func(interface{}) *errors.AppError) *FieldValidator {
	fv.Validators = append(fv.Validators, validator)
	return fv
}

// Validate runs every field and reports the first failure per field.
func (v *ValidationBuilder) Validate() *errors.AppError {
	var validationErrors []errors.ValidationError

	for _, field := range v.fields {
		for _, validator := range field.Validators {
			err := validator(field.Value)
			if err == nil {
				continue
			}
			if details, ok := err.Details.(errors.ValidationErrors); ok {
				validationErrors = append(validationErrors, details.Errors...)
			} else {
				validationErrors = append(validationErrors, errors.ValidationError{
					Field:   field.FieldName,
					Message: err.Message,
					Code:    string(err.Code),
				})
			}
			break
		}
	}

	if len(validationErrors) > 0 {
		return errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).
			WithDetails(errors.ValidationErrors{Errors: validationErrors})
	}

	return nil
}

// ParseGaji parses a salary transmitted as a string and checks the
// accepted band [MinGaji, MaxGaji].
func ParseGaji(raw string) (int64, *errors.AppError) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, errors.NewValidationFieldError("gaji", "Gaji harus berupa angka yang valid", errors.ErrCodeInvalidSalary)
	}
	if value < MinGaji || value > MaxGaji {
		return 0, errors.NewValidationFieldError("gaji", "Gaji harus antara 1,000,000 - 100,000,000", errors.ErrCodeInvalidSalary)
	}
	return value, nil
}

// ParsePositiveID parses an identifier transmitted as a string.
func ParsePositiveID(field, raw string) (int64, *errors.AppError) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || value <= 0 {
		return 0, errors.NewValidationFieldError(field, fmt.Sprintf("%s harus berupa angka positif yang valid", field), errors.ErrCodeInvalidReference)
	}
	return value, nil
}

// Gaji adapts ParseGaji to the fluent builder.
func (fv *FieldValidator) Gaji() *FieldValidator {
	return fv.Custom(func(value interface{}) *errors.AppError {
		s, _ := value.(string)
		_, err := ParseGaji(s)
		return err
	})
}

// PositiveID adapts ParsePositiveID to the fluent builder.
func (fv *FieldValidator) PositiveID() *FieldValidator {
	return fv.Custom(func(value interface{}) *errors.AppError {
		s, _ := value.(string)
		_, err := ParsePositiveID(fv.FieldName, s)
		return err
	})
}

// Merge folds several validation results into one.
func Merge(errs ...*errors.AppError) *errors.AppError {
	var all []errors.ValidationError
	for _, err := range errs {
		if err == nil {
			continue
		}
		if details, ok := err.Details.(errors.ValidationErrors); ok {
			all = append(all, details.Errors...)
			continue
		}
		all = append(all, errors.ValidationError{Field: "request", Message: err.Message, Code: string(err.Code)})
	}
	if len(all) == 0 {
		return nil
	}
	return errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).
		WithDetails(errors.ValidationErrors{Errors: all})
}
