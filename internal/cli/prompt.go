package cli

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/AlecAivazis/survey/v2"

	"github.com/tacogips/forge/internal/config"
)

// surveyPrompter asks prompts on the terminal. When not interactive every
// prompt takes its default; a select prompt without a default stays
// unanswered.
type surveyPrompter struct {
	interactive bool
	opts        []survey.AskOpt
}

func newSurveyPrompter(interactive bool, opts ...survey.AskOpt) *surveyPrompter {
	return &surveyPrompter{interactive: interactive, opts: opts}
}

// Ask implements scaffold.PromptProvider.
func (p *surveyPrompter) Ask(ctx context.Context, prompts []config.Prompt) (map[string]any, error) {
	answers := make(map[string]any, len(prompts))
	for _, prompt := range prompts {
		if err := ctx.Err(); err != nil {
			return answers, err
		}

		if !p.interactive {
			if value, ok := defaultAnswer(prompt); ok {
				answers[prompt.Name] = value
			}
			continue
		}

		value, err := p.askOne(prompt)
		if err != nil {
			return answers, fmt.Errorf("failed to prompt for %q: %w", prompt.Name, err)
		}
		answers[prompt.Name] = value
	}
	return answers, nil
}

func (p *surveyPrompter) askOne(prompt config.Prompt) (any, error) {
	switch prompt.Type {
	case config.PromptConfirm:
		def, _ := confirmDefault(prompt.Default)
		var result bool
		err := survey.AskOne(&survey.Confirm{Message: prompt.Label(), Default: def}, &result, p.opts...)
		return result, err

	case config.PromptSelect:
		sel := &survey.Select{Message: prompt.Label(), Options: prompt.Choices}
		if def, ok := selectDefault(prompt); ok {
			sel.Default = def
		}
		var result string
		err := survey.AskOne(sel, &result, p.opts...)
		return result, err

	default:
		var result string
		err := survey.AskOne(&survey.Input{Message: prompt.Label(), Default: inputDefault(prompt.Default)}, &result, p.opts...)
		return result, err
	}
}

// defaultAnswer returns the value a prompt takes without a terminal.
func defaultAnswer(prompt config.Prompt) (any, bool) {
	switch prompt.Type {
	case config.PromptConfirm:
		def, _ := confirmDefault(prompt.Default)
		return def, true
	case config.PromptSelect:
		return selectDefault(prompt)
	default:
		return inputDefault(prompt.Default), true
	}
}

func confirmDefault(v any) (bool, bool) {
	switch d := v.(type) {
	case bool:
		return d, true
	case string:
		b, err := strconv.ParseBool(d)
		return b, err == nil
	default:
		return false, false
	}
}

func selectDefault(prompt config.Prompt) (string, bool) {
	def, ok := prompt.Default.(string)
	if !ok || !slices.Contains(prompt.Choices, def) {
		return "", false
	}
	return def, true
}

func inputDefault(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
