// Command agreement-cli fills a saved template's merge tokens and prints the
// finalized agreement text.
package main

import (
	"context"
	"flag"
	"log"
	"os"
)

func main() {
	templatePath := flag.String("template", "", "template JSON file (as written by the json store)")
	valuesPath := flag.String("values", "", "YAML file of merge values")
	output := flag.String("output", "", "output file (stdout if empty)")
	fields := flag.String("fields-xlsx", "", "also write the field layout workbook to this path")
	noPrompt := flag.Bool("no-prompt", false, "fail instead of asking for missing values")
	flag.Parse()

	if *templatePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	opts := options{
		TemplatePath: *templatePath,
		ValuesPath:   *valuesPath,
		OutputPath:   *output,
		FieldsPath:   *fields,
		Prompt:       !*noPrompt,
	}
	if err := run(context.Background(), opts, surveyAsker{}, os.Stdout); err != nil {
		log.Fatalf("agreement-cli: %v", err)
	}
}
