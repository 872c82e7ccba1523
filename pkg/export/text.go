// Package export turns a basket version into a shopping list, either as
// plain text for the clipboard or as a paginated printable document.
package export

import (
	"fmt"
	"strings"

	"github.com/cesta-app/cesta/pkg/aisle"
	"github.com/cesta-app/cesta/pkg/basket"
)

// Text renders the clipboard shopping list of a version. The line layout is
// fixed: header, one block per aisle, trailer.
func Text(v basket.Version) string {
	var b strings.Builder
	agg := v.Aggregate

	fmt.Fprintf(&b, "🛒 Lista de la compra · %s · %s€\n", label(v), basket.FormatPrice(agg.TotalPrice))
	for _, g := range aisle.ByAisle(v.Sections) {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s %s\n", g.Emoji, strings.ToUpper(g.DisplayName))
		for _, p := range g.Items {
			fmt.Fprintf(&b, "☐ %s — %s€\n", p.Name, basket.FormatPrice(p.Price))
		}
	}
	b.WriteString("\n")
	b.WriteString(totalLine(agg) + "\n")
	b.WriteString(macrosLine(agg.Macros) + "\n")
	return b.String()
}

func label(v basket.Version) string {
	if v.Label != "" {
		return v.Label
	}
	return v.Key.Label()
}

func totalLine(agg basket.Aggregate) string {
	return fmt.Sprintf("Total: %s€ · %d productos", basket.FormatPrice(agg.TotalPrice), agg.ItemCount)
}

func macrosLine(m basket.Macros) string {
	return fmt.Sprintf("🔥 %.0f kcal · 💪 %.1fg proteínas · 🍞 %.1fg carbohidratos · 🧈 %.1fg grasas",
		m.Kcal, m.Protein, m.Carbs, m.Fat)
}
