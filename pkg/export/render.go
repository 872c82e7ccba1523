package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Renderer draws document pages as PNG images.
type Renderer struct {
	layout Layout
	body   font.Face
	bold   font.Face
	title  font.Face
}

// NewRenderer loads the Go fonts at the given body size.
func NewRenderer(l Layout, fontSize float64) (*Renderer, error) {
	if fontSize <= 0 {
		fontSize = 13
	}
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("could not parse regular font: %w", err)
	}
	boldFont, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("could not parse bold font: %w", err)
	}
	return &Renderer{
		layout: l,
		body:   truetype.NewFace(regular, &truetype.Options{Size: fontSize}),
		bold:   truetype.NewFace(boldFont, &truetype.Options{Size: fontSize}),
		title:  truetype.NewFace(boldFont, &truetype.Options{Size: fontSize * 1.6}),
	}, nil
}

// RenderPage draws a single page and encodes it as PNG into w.
func (r *Renderer) RenderPage(page Page, w io.Writer) error {
	l := r.layout
	dc := gg.NewContext(int(l.Width), int(l.Height))
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	left, right := l.Margin, l.Width-l.Margin
	for _, e := range page.Elements {
		mid := e.Y + e.Height/2
		switch e.Kind {
		case KindTitle:
			dc.SetFontFace(r.title)
			dc.SetRGB255(33, 37, 41)
			dc.DrawStringAnchored(e.Text, left, mid, 0, 0.5)
			dc.SetFontFace(r.body)
			dc.SetRGB255(134, 142, 150)
			dc.DrawStringAnchored(e.Detail, right, mid, 1, 0.5)
			dc.SetRGB255(222, 226, 230)
			dc.SetLineWidth(1)
			dc.DrawLine(left, e.Y+e.Height-4, right, e.Y+e.Height-4)
			dc.Stroke()
		case KindHeader:
			dc.SetRGB255(0, 133, 80)
			dc.DrawRoundedRectangle(left, e.Y+4, right-left, e.Height-8, 4)
			dc.Fill()
			dc.SetFontFace(r.bold)
			dc.SetRGB(1, 1, 1)
			dc.DrawStringAnchored(e.Text, left+10, mid, 0, 0.5)
			dc.DrawStringAnchored(e.Detail, right-10, mid, 1, 0.5)
		case KindRow:
			if e.Tinted {
				dc.SetRGB255(241, 243, 245)
				dc.DrawRectangle(left, e.Y, right-left, e.Height)
				dc.Fill()
			}
			dc.SetRGB255(73, 80, 87)
			dc.SetLineWidth(1)
			dc.DrawRectangle(left+10, mid-5, 10, 10)
			dc.Stroke()
			dc.SetFontFace(r.body)
			dc.SetRGB255(33, 37, 41)
			dc.DrawStringAnchored(e.Detail, right-10, mid, 1, 0.5)
			priceWidth, _ := dc.MeasureString(e.Detail)
			name := truncate(dc, e.Text, right-left-60-priceWidth)
			dc.DrawStringAnchored(name, left+30, mid, 0, 0.5)
		case KindFooter:
			dc.SetRGB255(33, 37, 41)
			dc.SetLineWidth(2)
			dc.DrawLine(left, e.Y+8, right, e.Y+8)
			dc.Stroke()
			dc.SetFontFace(r.bold)
			dc.DrawStringAnchored(e.Text, left, e.Y+e.Height*0.45, 0, 0.5)
			dc.SetFontFace(r.body)
			dc.SetRGB255(73, 80, 87)
			dc.DrawStringAnchored(e.Detail, left, e.Y+e.Height*0.75, 0, 0.5)
		}
	}
	return dc.EncodePNG(w)
}

// RenderFiles writes every page of doc as page-NNN.png under dir and returns
// the written paths.
func (r *Renderer) RenderFiles(doc Document, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(doc.Pages))
	for _, page := range doc.Pages {
		path := filepath.Join(dir, fmt.Sprintf("page-%03d.png", page.Number))
		f, err := os.Create(path)
		if err != nil {
			return paths, err
		}
		err = r.RenderPage(page, f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return paths, fmt.Errorf("could not render page %d: %w", page.Number, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func truncate(dc *gg.Context, s string, max float64) string {
	if w, _ := dc.MeasureString(s); w <= max {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "…"
		if w, _ := dc.MeasureString(candidate); w <= max {
			return candidate
		}
	}
	return ""
}
