// Package prompt asks the operator for values on the terminal.
package prompt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// ErrAborted is returned when the operator interrupts a prompt.
var ErrAborted = errors.New("aborted")

// IsAborted reports whether err ends a prompt without an answer.
func IsAborted(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) || errors.Is(err, ErrAborted)
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if IsAborted(err) {
		return ErrAborted
	}
	return err
}

// Confirm asks a yes/no question. An empty answer is "no".
func Confirm(label string) (bool, error) {
	p := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}

	result, err := p.Run()
	if err != nil {
		// promptui reports a "n" answer as ErrAbort.
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, wrapError(err)
	}
	result = strings.ToLower(result)
	return result == "y" || result == "yes", nil
}

// ConfirmWithForce skips the question when force is set.
func ConfirmWithForce(label string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	return Confirm(label)
}

// Input asks for text. validate may be nil.
func Input(label, defaultValue string, validate func(string) error) (string, error) {
	p := promptui.Prompt{
		Label:    label,
		Default:  defaultValue,
		Validate: validate,
	}

	result, err := p.Run()
	return strings.TrimSpace(result), wrapError(err)
}

// InputUint asks for a non-negative integer no larger than max.
func InputUint(label string, defaultValue, max uint64) (uint64, error) {
	result, err := Input(label, strconv.FormatUint(defaultValue, 10), ValidateUint(max))
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(result, 10, 64)
}

// ValidateUint returns a validator accepting integers in [0, max].
func ValidateUint(max uint64) func(string) error {
	return func(input string) error {
		v, err := strconv.ParseUint(strings.TrimSpace(input), 10, 64)
		if err != nil {
			return errors.New("must be a non-negative integer")
		}
		if v > max {
			return fmt.Errorf("must be at most %d", max)
		}
		return nil
	}
}

// Option is one entry of a Select list.
type Option struct {
	Label       string
	Value       string
	Description string
}

// Select asks the operator to pick one option and returns its value.
// The cursor starts on the option whose value is current.
func Select(label string, options []Option, current string) (string, error) {
	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Label | cyan }}",
		Inactive: "  {{ .Label }}",
		Selected: "* {{ .Label | green }}",
		Details:  `{{ if .Description }}{{ .Description | faint }}{{ end }}`,
	}

	p := promptui.Select{
		Label:     label,
		Items:     options,
		Templates: templates,
		Size:      len(options),
		CursorPos: indexOf(options, current),
	}

	idx, _, err := p.Run()
	if err != nil {
		return "", wrapError(err)
	}
	return options[idx].Value, nil
}

func indexOf(options []Option, value string) int {
	for i, opt := range options {
		if opt.Value == value {
			return i
		}
	}
	return 0
}
