package rulebody

import "fmt"

// IncompleteFilterError is returned when a filter is rendered before any
// operation has been selected for it.
type IncompleteFilterError struct {
	Match string
}

func (e *IncompleteFilterError) Error() string {
	return fmt.Sprintf("filter on %q has no operation selected", e.Match)
}

// OperandCardinalityError is returned when a text-set operation is given an
// operand list outside the allowed bounds.
type OperandCardinalityError struct {
	Operation string
	Length    int
	Min       int
	Max       int
}

func (e *OperandCardinalityError) Error() string {
	return fmt.Sprintf("operation %s requires between %d and %d values, got %d",
		e.Operation, e.Min, e.Max, e.Length)
}

// SchemaValidationError is returned when a rule body violates a structural
// constraint of the log-rule schema.
type SchemaValidationError struct {
	Field   string
	Message string
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("invalid rule body: %s: %s", e.Field, e.Message)
}
