package prompt

import (
	"fmt"
	"strings"

	"github.com/hammaddar1993/restaurant-chatbot/internal/store"
)

// FormatMenu renders the catalog as text for the model, grouped by category.
// Synonyms are included so the model recognizes item name variations.
func FormatMenu(items []store.MenuItem) string {
	if len(items) == 0 {
		return "Menu not available"
	}

	categories := make(map[string][]store.MenuItem)
	var order []string
	for _, item := range items {
		if _, ok := categories[item.Category]; !ok {
			order = append(order, item.Category)
		}
		categories[item.Category] = append(categories[item.Category], item)
	}

	var b strings.Builder
	for _, category := range order {
		fmt.Fprintf(&b, "\n**%s**\n", strings.ToUpper(category))
		b.WriteString(strings.Repeat("-", 40) + "\n")

		for _, item := range categories[category] {
			fmt.Fprintf(&b, "• %s: Rs. %d", item.ItemName, int(item.PriceWithTax))
			if item.Description != "" {
				fmt.Fprintf(&b, "\n  Description: %s", item.Description)
			}
			if item.Options != "" {
				fmt.Fprintf(&b, "\n  Options: %s", item.Options)
			}
			if item.Synonyms != "" {
				fmt.Fprintf(&b, "\n  Also known as: %s", item.Synonyms)
			}
			b.WriteString("\n\n")
		}
	}
	return b.String()
}
