package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alnah/go-mdconv"
)

// optionList is one group of supported values.
type optionList struct {
	Name   string   `json:"name"`
	Flag   string   `json:"flag"`
	Values []string `json:"values"`
}

// supportedOptions lists every enumerated option in display order.
func supportedOptions() []optionList {
	return []optionList{
		{Name: "Formats", Flag: "--to", Values: []string{string(mdconv.FormatDOCX), string(mdconv.FormatPDF)}},
		{Name: "Highlight styles", Flag: "--highlight-style", Values: mdconv.HighlightStyles()},
		{Name: "PDF engines", Flag: "--pdf-engine", Values: mdconv.PDFEngines()},
		{Name: "Paper sizes", Flag: "--paper-size", Values: mdconv.PaperSizes()},
		{Name: "Font sizes", Flag: "--font-size", Values: mdconv.FontSizes()},
		{Name: "Document classes", Flag: "--document-class", Values: mdconv.DocumentClasses()},
		{Name: "Font families", Flag: "--font-family", Values: mdconv.FontFamilies()},
	}
}

// runOptions prints the supported option values.
func runOptions(args []string, env *Environment) error {
	var jsonOutput bool
	fs := newFlagSet("options", env.Stdout, printOptionsUsage)
	fs.BoolVar(&jsonOutput, "json", false, "output as JSON")
	if _, err := parseWith(fs, args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: options takes no arguments", ErrUsage)
	}

	lists := supportedOptions()

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(lists)
	}

	for _, l := range lists {
		fmt.Fprintf(env.Stdout, "%-18s %s\n", l.Name+":", strings.Join(l.Values, ", "))
	}
	fmt.Fprintln(env.Stdout)
	fmt.Fprintln(env.Stdout, "Font families are suggestions; any installed font works with xelatex and lualatex.")
	return nil
}
