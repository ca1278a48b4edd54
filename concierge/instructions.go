package concierge

import (
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/concierge/catalog"
)

// Instructions assembles the agent's instruction set: the persona, the menu
// items as JSON, the currency, the free-text notes, and the fixed behavioral
// rules.
func Instructions(cfg Config, payload catalog.Payload) (string, error) {
	items, err := payload.ItemsJSON()
	if err != nil {
		return "", fmt.Errorf("failed to encode menu items: %w", err)
	}

	persona := cfg.Persona
	if persona == "" {
		persona = defaultPersona
	}
	language := cfg.Language
	if language == "" {
		language = defaultLanguage
	}

	var b strings.Builder
	b.WriteString(persona)
	b.WriteString(" Use the following menu data to answer questions:\n")
	b.WriteString(items)
	b.WriteString("\n")

	if cfg.Currency != "" {
		fmt.Fprintf(&b, "\nAll prices are in %s.\n", cfg.Currency)
	}

	if notes := strings.TrimSpace(payload.Supplement()); notes != "" {
		b.WriteString("\nAdditional information about the restaurant:\n")
		b.WriteString(notes)
		b.WriteString("\n")
	}

	b.WriteString("\nRules:\n")
	b.WriteString("- Only answer questions related to the menu data and the additional information above. Politely decline anything else.\n")
	b.WriteString("- Reply in the language the guest uses, as long as it is intelligible.\n")
	fmt.Fprintf(&b, "- If the guest's language cannot be determined, reply in %s.\n", language)
	b.WriteString("- If a request is unclear, ask a short clarifying question instead of guessing.\n")
	b.WriteString("- Do not repeat an earlier answer word for word; rephrase it.\n")

	return b.String(), nil
}
