package parser

import "slices"

// ValidateCommand rejects verbs that are not measurement types.
func ValidateCommand(cmd string) error {
	if !IsTestCommand(cmd) {
		return NewArgumentError("command", cmd, Commands)
	}
	return nil
}

// ValidateFlags rejects the first flag, in order of appearance, that the
// command does not accept.
func ValidateFlags(cmd string, t Tokens) error {
	allowed := AllowedFlags(cmd)
	for _, name := range t.Order {
		if !slices.Contains(allowed, name) {
			return &OptionError{Command: cmd, Option: name, Expected: allowed}
		}
	}
	return nil
}
