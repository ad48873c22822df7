package main

import (
	"context"
	"errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/mergefields"
)

var errAborted = errors.New("aborted by user")

// asker collects a value for one merge token.
type asker interface {
	Ask(ctx context.Context, mf mergefields.MergeField) (string, error)
}

type surveyAsker struct{}

func (surveyAsker) Ask(ctx context.Context, mf mergefields.MergeField) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Input{
		Message: mf.Label + ":",
		Help:    mf.Description,
	}
	if err := survey.AskOne(prompt, &out, survey.WithValidator(survey.Required)); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return "", errAborted
		}
		return "", err
	}
	return out, nil
}
