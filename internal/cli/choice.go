package cli

import (
	"fmt"
	"strings"
)

// choiceValue is a string flag that only accepts a fixed set of values.
// Unknown values are rejected while the command line is parsed.
type choiceValue struct {
	target  *string
	choices []string
}

func newChoiceValue(target *string, choices []string) *choiceValue {
	return &choiceValue{target: target, choices: choices}
}

func (c *choiceValue) String() string {
	if c.target == nil {
		return ""
	}
	return *c.target
}

func (c *choiceValue) Set(value string) error {
	if !contains(c.choices, value) {
		return fmt.Errorf("must be one of: %s", strings.Join(c.choices, ", "))
	}
	*c.target = value
	return nil
}

func (c *choiceValue) Type() string {
	return "string"
}

func contains(choices []string, value string) bool {
	for _, choice := range choices {
		if choice == value {
			return true
		}
	}
	return false
}
