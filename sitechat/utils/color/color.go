// sitechat/utils/color/color.go
package color

import (
	"github.com/fatih/color"
)

var (
	promptColor  = color.New(color.FgCyan, color.Bold)
	infoColor    = color.New(color.FgGreen)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	answerColor  = color.New(color.FgHiYellow)
)

func ColorPrompt(s string) string {
	return promptColor.Sprint(s)
}

func ColorInfo(s string) string {
	return infoColor.Sprint(s)
}

func ColorWarning(s string) string {
	return warningColor.Sprint(s)
}

func ColorError(s string) string {
	return errorColor.Sprint(s)
}

// ColorAnswer is used for ai turns in the REPL.
func ColorAnswer(s string) string {
	return answerColor.Sprint(s)
}

// Disable turns colouring off, e.g. when stdout is not a terminal.
func Disable() {
	color.NoColor = true
}
