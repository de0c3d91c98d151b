package llm

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/report.schema.json
var reportSchema string

// ErrInvalidReport is returned when the model output is not a usable report
var ErrInvalidReport = errors.New("invalid intelligence report")

var reportSchemaLoader = gojsonschema.NewStringLoader(reportSchema)

// FieldError is one schema violation at a JSON path
type FieldError struct {
	Field   string
	Message string
}

// ReportValidationError lists every schema violation in a report
type ReportValidationError struct {
	Errors []FieldError
}

func (e *ReportValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("report validation failed:")
	for i, fe := range e.Errors {
		fmt.Fprintf(&sb, "\n  %d. %s: %s", i+1, fe.Field, fe.Message)
	}
	return sb.String()
}

func (e *ReportValidationError) Unwrap() error {
	return ErrInvalidReport
}

// ValidateReport checks raw JSON against the report schema
func ValidateReport(raw string) error {
	result, err := gojsonschema.Validate(reportSchemaLoader, gojsonschema.NewStringLoader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}
	if result.Valid() {
		return nil
	}

	verr := &ReportValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		verr.Errors = append(verr.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return verr
}

// cleanJSONBlock strips markdown code fences some models wrap JSON in
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
