package actions

import (
	"github.com/Songmu/prompter"
)

// Asker asks the operator for input.
type Asker interface {
	Prompt(message, defaultAnswer string) string
	YN(message string, defaultToYes bool) bool
	Password(message string) string
	Choose(message string, choices []string, defaultChoice string) string
}

// TerminalAsker asks on the controlling terminal.
type TerminalAsker struct{}

func (TerminalAsker) Prompt(message, defaultAnswer string) string {
	return prompter.Prompt(message, defaultAnswer)
}

func (TerminalAsker) YN(message string, defaultToYes bool) bool {
	return prompter.YN(message, defaultToYes)
}

func (TerminalAsker) Password(message string) string {
	return prompter.Password(message)
}

func (TerminalAsker) Choose(message string, choices []string, defaultChoice string) string {
	return prompter.Choose(message, choices, defaultChoice)
}
