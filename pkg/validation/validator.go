package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Validation constants
	MaxDatasetName    = 64
	MaxFilesPerUpload = 200
	MaxFexThreshold   = 96

	// Regular expressions
	namePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)
)

func init() {
	validate = validator.New()
}

// DatasetRequest represents a request to create a named dataset.
type DatasetRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=64"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

// UploadRequest represents a request to load export files into a dataset.
type UploadRequest struct {
	DatasetID string   `json:"datasetId" validate:"required,uuid4"`
	Paths     []string `json:"paths" validate:"required,min=1,max=200,dive,required"`
}

// AssessmentRequest represents a request to run analyzers over a dataset.
type AssessmentRequest struct {
	DatasetID        string `json:"datasetId" validate:"required,uuid4"`
	FexLeafThreshold int    `json:"fexLeafThreshold" validate:"omitempty,min=1,max=96"`
}

// ValidateDatasetRequest validates a dataset creation request.
func ValidateDatasetRequest(req *DatasetRequest) error {
	if req == nil {
		return errors.New("dataset request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	if !namePattern.MatchString(req.Name) {
		return fmt.Errorf("Name: '%s' contains invalid characters (alphanumeric, dot, dash, underscore allowed)", req.Name)
	}
	return nil
}

// ValidateUploadRequest validates an export upload request.
func ValidateUploadRequest(req *UploadRequest) error {
	if req == nil {
		return errors.New("upload request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	if len(req.Paths) > MaxFilesPerUpload {
		return fmt.Errorf("Paths: maximum %d files allowed, got %d", MaxFilesPerUpload, len(req.Paths))
	}
	return nil
}

// ValidateAssessmentRequest validates an assessment request.
func ValidateAssessmentRequest(req *AssessmentRequest) error {
	if req == nil {
		return errors.New("assessment request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Field()
		tag := e.Tag()
		param := e.Param()

		switch tag {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "uuid4":
			return fmt.Errorf("%s: must be a valid UUID", field)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, tag)
		}
	}

	return err
}
