// Package prompt collects post attributes interactively.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-posts/pkg/model"
)

var (
	// ErrAborted signals the user aborted input (Ctrl+C or a declined
	// confirmation).
	ErrAborted = errors.New("prompt: aborted")
)

// FieldValidator checks a single attribute value before it is accepted.
type FieldValidator func(field, value string) error

// AskOption configures AskPost.
type AskOption func(*askConfig)

type askConfig struct {
	validate FieldValidator
	confirm  bool
}

// WithFieldValidator re-prompts a single-line field until fn accepts it.
func WithFieldValidator(fn FieldValidator) AskOption {
	return func(cfg *askConfig) {
		cfg.validate = fn
	}
}

// WithConfirmation asks for confirmation after all fields are collected.
// Declining returns ErrAborted.
func WithConfirmation() AskOption {
	return func(cfg *askConfig) {
		cfg.confirm = true
	}
}

// AskPost prompts for name, title and content, offering defaults as the
// pre-filled answers.
func AskPost(ctx context.Context, driver PromptDriver, defaults model.Attributes, options ...AskOption) (model.Attributes, error) {
	if driver == nil {
		return model.Attributes{}, errors.New("prompt: driver is nil")
	}
	cfg := askConfig{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	name, err := driver.Input(ctx, InputConfig{
		Message:   "Name",
		Default:   defaults.Name,
		Validator: cfg.fieldValidator(model.FieldName),
	})
	if err != nil {
		return model.Attributes{}, fmt.Errorf("prompt: name: %w", err)
	}

	title, err := driver.Input(ctx, InputConfig{
		Message:   "Title",
		Default:   defaults.Title,
		Validator: cfg.fieldValidator(model.FieldTitle),
	})
	if err != nil {
		return model.Attributes{}, fmt.Errorf("prompt: title: %w", err)
	}

	content, err := driver.TextArea(ctx, TextAreaConfig{
		Message: "Content",
		Default: defaults.Content,
		Help:    "Finish with an empty line.",
	})
	if err != nil {
		return model.Attributes{}, fmt.Errorf("prompt: content: %w", err)
	}

	attrs := model.Attributes{
		Name:    strings.TrimSpace(name),
		Title:   strings.TrimSpace(title),
		Content: strings.TrimSpace(content),
	}

	if cfg.confirm {
		ok, err := driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("Save post %q?", attrs.Title),
			Default: true,
		})
		if err != nil {
			return model.Attributes{}, fmt.Errorf("prompt: confirm: %w", err)
		}
		if !ok {
			return model.Attributes{}, ErrAborted
		}
	}
	return attrs, nil
}

func (cfg askConfig) fieldValidator(field string) func(string) error {
	if cfg.validate == nil {
		return nil
	}
	return func(value string) error {
		return cfg.validate(field, strings.TrimSpace(value))
	}
}
