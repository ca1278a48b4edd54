package main

import (
	"fmt"
	"os"

	"github.com/tailored-agentic-units/concierge/catalog"
	"github.com/tailored-agentic-units/concierge/sheet"
)

// buildPayload parses the menu spreadsheet and optional notes file.
func buildPayload(menuPath, notesPath string) (catalog.Payload, error) {
	data, err := os.ReadFile(menuPath)
	if err != nil {
		return catalog.Payload{}, fmt.Errorf("failed to read menu: %w", err)
	}

	records, err := sheet.Parse(menuPath, data)
	if err != nil {
		return catalog.Payload{}, err
	}

	var notes string
	if notesPath != "" {
		raw, err := os.ReadFile(notesPath)
		if err != nil {
			return catalog.Payload{}, fmt.Errorf("failed to read notes: %w", err)
		}
		notes = sheet.ParseText(raw)
	}

	return catalog.BuildContext(catalog.FromSlice(records), notes)
}
