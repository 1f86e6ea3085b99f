package parser

import (
	"fmt"
	"strings"
)

// ArgumentError is returned when a value falls outside the set a field accepts.
// Its message is shown to chat users verbatim.
type ArgumentError struct {
	Field    string
	Value    string
	Expected []string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("Invalid argument \"%s\" for \"%s\"!\nExpected \"%s\".", e.Value, e.Field, strings.Join(e.Expected, ", "))
}

// NewArgumentError creates a new ArgumentError.
func NewArgumentError(field, value string, expected []string) *ArgumentError {
	return &ArgumentError{Field: field, Value: value, Expected: expected}
}

// OptionError is returned when a flag is not accepted by the active command.
type OptionError struct {
	Command  string
	Option   string
	Expected []string
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("Invalid option \"%s\" for \"%s\"!\nExpected \"%s\".", e.Option, e.Command, strings.Join(e.Expected, ", "))
}

// CommandError describes malformed command grammar: a bad target, a misplaced
// resolver or an unreadable location list.
type CommandError struct {
	Message string
}

func (e *CommandError) Error() string {
	return e.Message
}

// NewCommandError creates a CommandError from a format string.
func NewCommandError(format string, args ...interface{}) *CommandError {
	return newCommandError(format, args...)
}

func newCommandError(format string, args ...interface{}) *CommandError {
	return &CommandError{Message: fmt.Sprintf(format, args...)}
}
