package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/export"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/mergefields"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/models"
	"github.com/tschickel22/PLATFORM-DMS-CRM-7-11-25-sub001/internal/substitute"
)

type options struct {
	TemplatePath string
	ValuesPath   string
	OutputPath   string
	FieldsPath   string
	Prompt       bool
}

// run finalizes a stored template. Values come from the YAML file first; any
// required token still missing is asked for when prompting is enabled.
func run(ctx context.Context, opts options, ask asker, stdout io.Writer) error {
	tpl, err := readTemplate(opts.TemplatePath)
	if err != nil {
		return err
	}
	values, err := readValues(opts.ValuesPath)
	if err != nil {
		return err
	}
	reg := mergefields.NewRegistry()

	if opts.FieldsPath != "" {
		data, err := export.FieldsWorkbook(tpl, reg)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.FieldsPath, data, 0o644); err != nil {
			return fmt.Errorf("write fields workbook: %w", err)
		}
	}

	if opts.Prompt {
		for _, key := range substitute.Validate(tpl, values).Missing {
			mf, ok := reg.Resolve(key)
			if !ok {
				mf = mergefields.MergeField{Key: key, Label: reg.Label(key)}
			}
			v, err := ask.Ask(ctx, mf)
			if err != nil {
				return err
			}
			values[key] = v
		}
	}

	text, err := substitute.Finalize(tpl, values, reg)
	if err != nil {
		return err
	}
	if opts.OutputPath == "" {
		_, err := fmt.Fprintln(stdout, text)
		return err
	}
	if err := os.WriteFile(opts.OutputPath, []byte(text+"\n"), 0o644); err != nil {
		return fmt.Errorf("write agreement: %w", err)
	}
	return nil
}

func readTemplate(path string) (*models.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	var tpl models.Template
	if err := json.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("parse template %s: %w", path, err)
	}
	return &tpl, nil
}

func readValues(path string) (map[string]string, error) {
	values := make(map[string]string)
	if path == "" {
		return values, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read values: %w", err)
	}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse values %s: %w", path, err)
	}
	return values, nil
}
