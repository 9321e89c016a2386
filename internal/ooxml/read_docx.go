package ooxml

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// ParseDocx extracts the paragraph structure from a DOCX package. Tables are
// flattened to Markdown pipe rows; content outside the main document part is
// ignored.
func ParseDocx(b []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	docXML, err := readZipFile(zr, "word/document.xml")
	if err != nil {
		return nil, fmt.Errorf("read document.xml: %w", err)
	}
	if docXML == nil {
		return nil, fmt.Errorf("not a DOCX package: word/document.xml missing")
	}
	rels, err := readRels(zr, "word/_rels/document.xml.rels")
	if err != nil {
		return nil, err
	}
	numKinds, err := readNumbering(zr)
	if err != nil {
		return nil, err
	}

	var doc xmlWordDocument
	if err := xml.Unmarshal(docXML, &doc); err != nil {
		return nil, fmt.Errorf("parse document.xml: %w", err)
	}
	out := &Document{}
	for _, blk := range doc.Body.Blocks {
		switch {
		case blk.Para != nil:
			out.Paragraphs = append(out.Paragraphs, blk.Para.toParagraph(rels, numKinds))
		case blk.Table != nil:
			out.Paragraphs = append(out.Paragraphs, blk.Table.toParagraphs(rels, numKinds)...)
		}
	}
	return out, nil
}

type xmlWordDocument struct {
	Body xmlBody `xml:"body"`
}

type xmlBody struct {
	Blocks []xmlBlock
}

type xmlBlock struct {
	Para  *xmlParagraph
	Table *xmlTable
}

func (b *xmlBody) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				var p xmlParagraph
				if err := p.UnmarshalXML(d, t); err != nil {
					return err
				}
				b.Blocks = append(b.Blocks, xmlBlock{Para: &p})
			case "tbl":
				var tb xmlTable
				if err := d.DecodeElement(&tb, &t); err != nil {
					return err
				}
				b.Blocks = append(b.Blocks, xmlBlock{Table: &tb})
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if t.Name == start.Name {
				return nil
			}
		}
	}
}

type xmlParagraph struct {
	Props xmlParaProps
	Runs  []xmlRun
}

func (p *xmlParagraph) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pPr":
				if err := d.DecodeElement(&p.Props, &t); err != nil {
					return err
				}
			case "r":
				var r xmlRun
				if err := r.UnmarshalXML(d, t); err != nil {
					return err
				}
				p.Runs = append(p.Runs, r)
			case "hyperlink":
				var link string
				for _, a := range t.Attr {
					if a.Name.Local == "id" {
						link = a.Value
					}
				}
				var inner xmlParagraph
				if err := inner.UnmarshalXML(d, t); err != nil {
					return err
				}
				for _, r := range inner.Runs {
					r.LinkID = link
					p.Runs = append(p.Runs, r)
				}
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if t.Name == start.Name {
				return nil
			}
		}
	}
}

type xmlParaProps struct {
	Style *xmlVal `xml:"pStyle"`
	NumPr *struct {
		Ilvl  *xmlVal `xml:"ilvl"`
		NumID *xmlVal `xml:"numId"`
	} `xml:"numPr"`
	PBdr *struct{} `xml:"pBdr"`
}

type xmlRun struct {
	Props  xmlRunProps
	Text   string
	LinkID string
}

func (r *xmlRun) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var text strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "rPr":
				if err := d.DecodeElement(&r.Props, &t); err != nil {
					return err
				}
			case "t":
				var s string
				if err := d.DecodeElement(&s, &t); err != nil {
					return err
				}
				text.WriteString(s)
			case "br":
				text.WriteString("\n")
				if err := d.Skip(); err != nil {
					return err
				}
			case "tab":
				text.WriteString("\t")
				if err := d.Skip(); err != nil {
					return err
				}
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if t.Name == start.Name {
				r.Text = text.String()
				return nil
			}
		}
	}
}

type xmlRunProps struct {
	Bold   *xmlOnOff `xml:"b"`
	Italic *xmlOnOff `xml:"i"`
	Style  *xmlVal   `xml:"rStyle"`
	Fonts  *struct {
		ASCII string `xml:"ascii,attr"`
	} `xml:"rFonts"`
}

type xmlOnOff struct {
	Val string `xml:"val,attr"`
}

func (o *xmlOnOff) on() bool {
	return o != nil && o.Val != "false" && o.Val != "0"
}

type xmlVal struct {
	Val string `xml:"val,attr"`
}

type xmlTable struct {
	Rows []struct {
		Cells []struct {
			Paras []xmlParagraph `xml:"p"`
		} `xml:"tc"`
	} `xml:"tr"`
}

func (t *xmlTable) toParagraphs(rels map[string]string, numKinds map[string]ListKind) []Paragraph {
	var out []Paragraph
	for i, row := range t.Rows {
		cells := make([]string, 0, len(row.Cells))
		for _, c := range row.Cells {
			var texts []string
			for _, p := range c.Paras {
				if s := p.toParagraph(rels, numKinds).Text(); s != "" {
					texts = append(texts, s)
				}
			}
			cells = append(cells, strings.Join(texts, " "))
		}
		out = append(out, pipeRow(cells))
		if i == 0 {
			seps := make([]string, len(cells))
			for j := range seps {
				seps[j] = "---"
			}
			out = append(out, pipeRow(seps))
		}
	}
	return out
}

func pipeRow(cells []string) Paragraph {
	return Paragraph{Runs: []Run{{Text: "| " + strings.Join(cells, " | ") + " |"}}}
}

func (p *xmlParagraph) toParagraph(rels map[string]string, numKinds map[string]ListKind) Paragraph {
	var out Paragraph
	style := ""
	if p.Props.Style != nil {
		style = p.Props.Style.Val
	}
	switch {
	case strings.HasPrefix(style, "Heading"):
		if n := style[len("Heading"):]; len(n) == 1 && n[0] >= '1' && n[0] <= '6' {
			out.Heading = int(n[0] - '0')
		}
	case style == "Title":
		out.Heading = 1
	case style == "Quote" || style == "IntenseQuote" || style == "BlockQuote":
		out.Quote = true
	case style == "Code" || style == "HTMLPreformatted":
		out.Code = true
	case strings.HasPrefix(style, "ListBullet"):
		out.List = ListBullet
	case strings.HasPrefix(style, "ListNumber"):
		out.List = ListNumber
	}
	// Word draws a horizontal rule as an empty paragraph with a bottom border.
	if p.Props.PBdr != nil && len(p.Runs) == 0 {
		out.Rule = true
	}
	if p.Props.NumPr != nil && p.Props.NumPr.NumID != nil {
		kind, ok := numKinds[p.Props.NumPr.NumID.Val]
		if !ok {
			kind = ListBullet
		}
		if out.List == ListNone {
			out.List = kind
		}
		if p.Props.NumPr.Ilvl != nil {
			var lvl int
			_, _ = fmt.Sscanf(p.Props.NumPr.Ilvl.Val, "%d", &lvl)
			out.Level = lvl
		}
	}
	for _, r := range p.Runs {
		if r.Text == "" {
			continue
		}
		run := Run{
			Text:   r.Text,
			Bold:   r.Props.Bold.on(),
			Italic: r.Props.Italic.on(),
		}
		if r.Props.Fonts != nil && strings.Contains(r.Props.Fonts.ASCII, "Courier") {
			run.Code = true
		}
		if r.LinkID != "" {
			run.Link = rels[r.LinkID]
		}
		out.Runs = append(out.Runs, run)
	}
	return out
}

func readRels(zr *zip.Reader, name string) (map[string]string, error) {
	b, err := readZipFile(zr, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	rels := map[string]string{}
	if b == nil {
		return rels, nil
	}
	var v struct {
		Rels []struct {
			ID     string `xml:"Id,attr"`
			Target string `xml:"Target,attr"`
		} `xml:"Relationship"`
	}
	if err := xml.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	for _, r := range v.Rels {
		rels[r.ID] = r.Target
	}
	return rels, nil
}

func readNumbering(zr *zip.Reader) (map[string]ListKind, error) {
	b, err := readZipFile(zr, "word/numbering.xml")
	if err != nil {
		return nil, fmt.Errorf("read numbering.xml: %w", err)
	}
	kinds := map[string]ListKind{}
	if b == nil {
		return kinds, nil
	}
	var v struct {
		AbstractNums []struct {
			ID   string `xml:"abstractNumId,attr"`
			Lvls []struct {
				Ilvl   string `xml:"ilvl,attr"`
				NumFmt xmlVal `xml:"numFmt"`
			} `xml:"lvl"`
		} `xml:"abstractNum"`
		Nums []struct {
			ID  string `xml:"numId,attr"`
			Abs xmlVal `xml:"abstractNumId"`
		} `xml:"num"`
	}
	if err := xml.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("parse numbering.xml: %w", err)
	}
	absKinds := map[string]ListKind{}
	for _, a := range v.AbstractNums {
		kind := ListNumber
		for _, l := range a.Lvls {
			if l.Ilvl == "0" && l.NumFmt.Val == "bullet" {
				kind = ListBullet
			}
		}
		absKinds[a.ID] = kind
	}
	for _, n := range v.Nums {
		if k, ok := absKinds[n.Abs.Val]; ok {
			kinds[n.ID] = k
		}
	}
	return kinds, nil
}
