// Package ui holds the terminal helpers shared by the CLI commands.
package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	domainErrors "github.com/thomas-vilte/contextclue/internal/errors"
	"github.com/thomas-vilte/contextclue/internal/i18n"
)

var (
	Success = color.New(color.FgGreen, color.Bold)
	Error   = color.New(color.FgRed, color.Bold)
	Warning = color.New(color.FgYellow, color.Bold)
	Info    = color.New(color.FgCyan, color.Bold)
	Accent  = color.New(color.FgMagenta, color.Bold)
	Dim     = color.New(color.FgHiBlack)

	ClueEmoji    = "🔍"
	SuccessEmoji = Success.Sprint("✅")
	WarningEmoji = Warning.Sprint("⚠️")
	InfoEmoji    = Info.Sprint("ℹ️")
	StatsEmoji   = Accent.Sprint("📊")
)

const separator = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// SmartSpinner wraps a terminal spinner bound to one writer.
type SmartSpinner struct {
	spinner *spinner.Spinner
}

func NewSmartSpinner(w io.Writer, message string) *SmartSpinner {
	s := spinner.New(
		spinner.CharSets[14],
		100*time.Millisecond,
		spinner.WithColor("cyan"),
		spinner.WithSuffix(" "+ClueEmoji+" "+message),
		spinner.WithWriter(w),
	)
	return &SmartSpinner{spinner: s}
}

func (s *SmartSpinner) Start() {
	s.spinner.Start()
}

func (s *SmartSpinner) Stop() {
	s.spinner.Stop()
}

func (s *SmartSpinner) UpdateMessage(msg string) {
	s.spinner.Suffix = " " + msg
}

// WithSpinner runs fn while a spinner writes to w.
func WithSpinner(w io.Writer, message string, fn func() error) error {
	s := NewSmartSpinner(w, message)
	s.Start()
	defer s.Stop()
	return fn()
}

func PrintSuccess(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", SuccessEmoji, Success.Sprint(msg))
}

func PrintError(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", Error.Sprint("❌"), Error.Sprint(msg))
}

func PrintWarning(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", WarningEmoji, Warning.Sprint(msg))
}

func PrintInfo(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", InfoEmoji, Info.Sprint(msg))
}

func PrintSectionBanner(w io.Writer, emoji, title string) {
	_, _ = fmt.Fprintf(w, "\n%s %s\n", emoji, Info.Sprint(title))
	_, _ = fmt.Fprintln(w, separator)
}

func PrintSeparator(w io.Writer) {
	_, _ = fmt.Fprintln(w, separator)
}

func PrintKeyValue(w io.Writer, key, value string) {
	keyColored := Dim.Sprint(key + ":")
	valueColored := color.New(color.FgWhite, color.Bold).Sprint(value)
	_, _ = fmt.Fprintf(w, "   %s %s\n", keyColored, valueColored)
}

// PrintBlock prints a titled multi-line value indented under its label.
func PrintBlock(w io.Writer, title, body string) {
	_, _ = fmt.Fprintf(w, "   %s\n", Dim.Sprint(title+":"))
	for _, line := range strings.Split(body, "\n") {
		_, _ = fmt.Fprintf(w, "      %s\n", line)
	}
}

// HandleAppError prints err in a friendly way. AppErrors show their type,
// cause and suggestion. t may be nil.
func HandleAppError(w io.Writer, err error, t *i18n.Translations) {
	if err == nil {
		return
	}

	var appErr *domainErrors.AppError
	if !errors.As(err, &appErr) {
		PrintError(w, err.Error())
		return
	}

	_, _ = fmt.Fprintln(w)
	_, _ = Error.Fprintf(w, "❌ %s: %s\n", appErr.Type, appErr.Message)

	if reason, ok := appErr.Context["reason"]; ok {
		_, _ = Dim.Fprintf(w, "   %v\n", reason)
	}
	if appErr.Err != nil {
		_, _ = Dim.Fprintf(w, "   %v\n", appErr.Err)
	}

	if appErr.Suggestion != "" {
		msg := "Suggestion: " + appErr.Suggestion
		if t != nil {
			msg = t.GetMessage("error_suggestion", 0, map[string]interface{}{
				"Suggestion": appErr.Suggestion,
			})
		}
		_, _ = fmt.Fprintln(w)
		_, _ = color.New(color.FgCyan).Fprintf(w, "💡 %s\n", msg)
	}
	_, _ = fmt.Fprintln(w)
}
