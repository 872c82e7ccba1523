package export

import (
	"fmt"
	"strings"

	"github.com/cesta-app/cesta/pkg/aisle"
	"github.com/cesta-app/cesta/pkg/basket"
)

// Layout holds the page geometry used by Paginate, in pixels.
type Layout struct {
	Width        float64
	Height       float64
	Margin       float64
	TitleHeight  float64
	HeaderHeight float64
	RowHeight    float64
	FooterHeight float64
}

// DefaultLayout is an A4 page at 96 DPI.
func DefaultLayout() Layout {
	return Layout{
		Width:        794,
		Height:       1123,
		Margin:       48,
		TitleHeight:  64,
		HeaderHeight: 34,
		RowHeight:    24,
		FooterHeight: 76,
	}
}

func (l Layout) top() float64    { return l.Margin + l.TitleHeight }
func (l Layout) bottom() float64 { return l.Height - l.Margin }

// ElementKind tells the renderer how to draw an element.
type ElementKind int

const (
	KindTitle ElementKind = iota
	KindHeader
	KindRow
	KindFooter
)

// Element is a positioned block of a page.
type Element struct {
	Kind   ElementKind
	Y      float64
	Height float64
	Text   string
	// Detail is the right-aligned text: the price of a row, the subtotal of a
	// header, the macros line of the footer.
	Detail string
	Emoji  string
	Tinted bool
}

// Page is one page of the document.
type Page struct {
	Number   int
	Elements []Element
}

// Document is the paginated form of a version.
type Document struct {
	Title string
	Pages []Page
}

type paginator struct {
	layout Layout
	title  string
	pages  []Page
	y      float64
}

func (p *paginator) newPage() {
	n := len(p.pages) + 1
	p.pages = append(p.pages, Page{Number: n})
	p.y = p.layout.Margin
	p.place(Element{Kind: KindTitle, Height: p.layout.TitleHeight, Text: p.title, Detail: fmt.Sprintf("Página %d", n)})
}

func (p *paginator) place(e Element) {
	e.Y = p.y
	cur := &p.pages[len(p.pages)-1]
	cur.Elements = append(cur.Elements, e)
	p.y += e.Height
}

func (p *paginator) fits(h float64) bool { return p.y+h <= p.layout.bottom() }

// fresh reports whether nothing but the title is on the current page.
func (p *paginator) fresh() bool { return p.y <= p.layout.top() }

// breakUnless starts a new page when h does not fit, unless the current page
// is still empty.
func (p *paginator) breakUnless(h float64) {
	if !p.fits(h) && !p.fresh() {
		p.newPage()
	}
}

// Paginate lays out the aisle groups of a version onto pages. An aisle that
// does not fit entirely starts on a new page; rows that still overflow break
// between rows. The total footer closes the last page.
func Paginate(v basket.Version, l Layout) Document {
	title := "Lista de la compra · " + label(v)
	p := &paginator{layout: l, title: title}
	p.newPage()

	for _, g := range aisle.ByAisle(v.Sections) {
		p.breakUnless(l.HeaderHeight + float64(len(g.Items))*l.RowHeight)
		p.place(Element{
			Kind:   KindHeader,
			Height: l.HeaderHeight,
			Text:   strings.ToUpper(g.DisplayName),
			Detail: basket.FormatPrice(g.Subtotal) + "€",
			Emoji:  g.Emoji,
		})
		for i, item := range g.Items {
			p.breakUnless(l.RowHeight)
			p.place(Element{
				Kind:   KindRow,
				Height: l.RowHeight,
				Text:   item.Name,
				Detail: basket.FormatPrice(item.Price) + "€",
				Emoji:  item.Emoji,
				Tinted: i%2 == 1,
			})
		}
	}

	p.breakUnless(l.FooterHeight)
	p.place(Element{
		Kind:   KindFooter,
		Height: l.FooterHeight,
		Text:   totalLine(v.Aggregate),
		Detail: footerMacros(v.Aggregate.Macros),
	})

	return Document{Title: title, Pages: p.pages}
}

func footerMacros(m basket.Macros) string {
	return fmt.Sprintf("%.0f kcal · %.1fg proteínas · %.1fg carbohidratos · %.1fg grasas", m.Kcal, m.Protein, m.Carbs, m.Fat)
}
