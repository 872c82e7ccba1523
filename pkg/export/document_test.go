package export

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cesta-app/cesta/pkg/basket"
)

// testLayout leaves 240px of content between the title and the bottom margin.
var testLayout = Layout{
	Width:        400,
	Height:       300,
	Margin:       10,
	TitleHeight:  40,
	HeaderHeight: 20,
	RowHeight:    10,
	FooterHeight: 30,
}

func items(prefix, category string, n int) []basket.Product {
	out := make([]basket.Product, n)
	for i := range out {
		out[i] = product(fmt.Sprintf("%s %02d", prefix, i+1), "1.00", category, 100, 1, 1, 1)
	}
	return out
}

func kinds(p Page) []ElementKind {
	out := make([]ElementKind, len(p.Elements))
	for i, e := range p.Elements {
		out[i] = e.Kind
	}
	return out
}

func count(p Page, k ElementKind) int {
	n := 0
	for _, e := range p.Elements {
		if e.Kind == k {
			n++
		}
	}
	return n
}

func TestPaginateMovesGroupThatDoesNotFit(t *testing.T) {
	v := version(basket.VersionA, basket.Sections{
		basket.Lunch:  items("Pollo", "carne", 15),
		basket.Dinner: items("Yogur", "lacteo", 6),
	})

	doc := Paginate(v, testLayout)
	require.Len(t, doc.Pages, 2)

	first, second := doc.Pages[0], doc.Pages[1]
	assert.Equal(t, 1, count(first, KindHeader))
	assert.Equal(t, 15, count(first, KindRow))
	assert.Zero(t, count(first, KindFooter))

	assert.Equal(t, KindHeader, second.Elements[1].Kind)
	assert.Equal(t, "LÁCTEOS", second.Elements[1].Text)
	assert.Equal(t, testLayout.top(), second.Elements[1].Y)
	assert.Equal(t, 6, count(second, KindRow))
	assert.Equal(t, KindFooter, second.Elements[len(second.Elements)-1].Kind)
}

func TestPaginateBreaksOversizedGroupBetweenRows(t *testing.T) {
	v := version(basket.VersionA, basket.Sections{
		basket.Lunch: items("Arroz", "cereal", 30),
	})

	doc := Paginate(v, testLayout)
	require.Len(t, doc.Pages, 2)

	first, second := doc.Pages[0], doc.Pages[1]
	assert.Equal(t, 22, count(first, KindRow))
	assert.Equal(t, 8, count(second, KindRow))
	assert.Zero(t, count(second, KindHeader), "the header is not repeated")

	for _, page := range doc.Pages {
		for _, e := range page.Elements {
			assert.LessOrEqual(t, e.Y+e.Height, testLayout.bottom(), "%q overflows page %d", e.Text, page.Number)
		}
	}

	cont := second.Elements[1]
	assert.Equal(t, "Arroz 23", cont.Text)
	assert.False(t, cont.Tinted, "tint follows the position inside the group")
	assert.True(t, second.Elements[2].Tinted)
}

func TestPaginateFooterBreaks(t *testing.T) {
	v := version(basket.VersionA, basket.Sections{
		basket.Lunch: items("Atún", "conserva", 21),
	})

	doc := Paginate(v, testLayout)
	require.Len(t, doc.Pages, 2)
	assert.Zero(t, count(doc.Pages[0], KindFooter))
	assert.Equal(t, []ElementKind{KindTitle, KindFooter}, kinds(doc.Pages[1]))

	footer := doc.Pages[1].Elements[1]
	assert.Equal(t, "Total: 21.00€ · 21 productos", footer.Text)
	assert.Equal(t, "2100 kcal · 21.0g proteínas · 21.0g carbohidratos · 21.0g grasas", footer.Detail)
}

func TestPaginateTitlesAndTint(t *testing.T) {
	v := version(basket.VersionB, basket.Sections{
		basket.Breakfast: items("Leche", "lacteo", 3),
		basket.Lunch:     items("Pollo", "carne", 2),
	})

	doc := Paginate(v, testLayout)
	require.Len(t, doc.Pages, 1)
	assert.Equal(t, "Lista de la compra · Versión B", doc.Title)

	page := doc.Pages[0]
	assert.Equal(t, []ElementKind{
		KindTitle,
		KindHeader, KindRow, KindRow,
		KindHeader, KindRow, KindRow, KindRow,
		KindFooter,
	}, kinds(page))
	assert.Equal(t, "Página 1", page.Elements[0].Detail)
	assert.Equal(t, "CARNES", page.Elements[1].Text)
	assert.Equal(t, "2.00€", page.Elements[1].Detail)

	var tint []bool
	for _, e := range page.Elements {
		if e.Kind == KindRow {
			tint = append(tint, e.Tinted)
		}
	}
	assert.Equal(t, []bool{false, true, false, true, false}, tint)
}

func TestPaginateEmptyVersion(t *testing.T) {
	doc := Paginate(version(basket.VersionC, nil), DefaultLayout())
	require.Len(t, doc.Pages, 1)
	assert.Equal(t, []ElementKind{KindTitle, KindFooter}, kinds(doc.Pages[0]))
}
