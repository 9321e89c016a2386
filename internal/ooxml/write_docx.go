package ooxml

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
<Override PartName="/word/numbering.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"/>
</Types>`

const rootRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

// Styles mirror the Word built-ins the reader recognizes, so a document
// written here survives a round trip through ParseDocx.
const stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:rPr><w:sz w:val="22"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/><w:rPr><w:b/><w:sz w:val="32"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/><w:basedOn w:val="Normal"/><w:rPr><w:b/><w:sz w:val="26"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Heading3"><w:name w:val="heading 3"/><w:basedOn w:val="Normal"/><w:rPr><w:b/><w:sz w:val="24"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Heading4"><w:name w:val="heading 4"/><w:basedOn w:val="Normal"/><w:rPr><w:b/><w:sz w:val="22"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Heading5"><w:name w:val="heading 5"/><w:basedOn w:val="Normal"/><w:rPr><w:b/><w:sz w:val="21"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Heading6"><w:name w:val="heading 6"/><w:basedOn w:val="Normal"/><w:rPr><w:b/><w:sz w:val="20"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Quote"><w:name w:val="Quote"/><w:basedOn w:val="Normal"/><w:pPr><w:ind w:left="720"/></w:pPr><w:rPr><w:i/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Code"><w:name w:val="Code"/><w:basedOn w:val="Normal"/><w:rPr><w:rFonts w:ascii="Courier New" w:hAnsi="Courier New"/><w:sz w:val="20"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="ListBullet"><w:name w:val="List Bullet"/><w:basedOn w:val="Normal"/></w:style>
<w:style w:type="paragraph" w:styleId="ListNumber"><w:name w:val="List Number"/><w:basedOn w:val="Normal"/></w:style>
<w:style w:type="character" w:styleId="Hyperlink"><w:name w:val="Hyperlink"/><w:rPr><w:color w:val="0563C1"/><w:u w:val="single"/></w:rPr></w:style>
</w:styles>`

const numberingXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:numbering xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:abstractNum w:abstractNumId="0">
<w:lvl w:ilvl="0"><w:numFmt w:val="bullet"/><w:lvlText w:val="&#8226;"/><w:pPr><w:ind w:left="720" w:hanging="360"/></w:pPr></w:lvl>
<w:lvl w:ilvl="1"><w:numFmt w:val="bullet"/><w:lvlText w:val="&#9702;"/><w:pPr><w:ind w:left="1440" w:hanging="360"/></w:pPr></w:lvl>
<w:lvl w:ilvl="2"><w:numFmt w:val="bullet"/><w:lvlText w:val="&#9642;"/><w:pPr><w:ind w:left="2160" w:hanging="360"/></w:pPr></w:lvl>
</w:abstractNum>
<w:abstractNum w:abstractNumId="1">
<w:lvl w:ilvl="0"><w:start w:val="1"/><w:numFmt w:val="decimal"/><w:lvlText w:val="%1."/><w:pPr><w:ind w:left="720" w:hanging="360"/></w:pPr></w:lvl>
<w:lvl w:ilvl="1"><w:start w:val="1"/><w:numFmt w:val="decimal"/><w:lvlText w:val="%2."/><w:pPr><w:ind w:left="1440" w:hanging="360"/></w:pPr></w:lvl>
<w:lvl w:ilvl="2"><w:start w:val="1"/><w:numFmt w:val="decimal"/><w:lvlText w:val="%3."/><w:pPr><w:ind w:left="2160" w:hanging="360"/></w:pPr></w:lvl>
</w:abstractNum>
<w:num w:numId="1"><w:abstractNumId w:val="0"/></w:num>
<w:num w:numId="2"><w:abstractNumId w:val="1"/></w:num>
</w:numbering>`

type wDocument struct {
	XMLName xml.Name `xml:"w:document"`
	XMLNSW  string   `xml:"xmlns:w,attr"`
	XMLNSR  string   `xml:"xmlns:r,attr"`
	Body    wBody    `xml:"w:body"`
}

type wBody struct {
	Paras  []wPara
	SectPr wSectPr `xml:"w:sectPr"`
}

type wPara struct {
	XMLName xml.Name    `xml:"w:p"`
	Props   *wParaProps `xml:"w:pPr"`
	Items   []any
}

type wParaProps struct {
	Style *wVal   `xml:"w:pStyle"`
	NumPr *wNumPr `xml:"w:numPr"`
	PBdr  *wPBdr  `xml:"w:pBdr"`
}

type wVal struct {
	Val string `xml:"w:val,attr"`
}

type wNumPr struct {
	Ilvl  wVal `xml:"w:ilvl"`
	NumID wVal `xml:"w:numId"`
}

type wPBdr struct {
	Bottom wBorder `xml:"w:bottom"`
}

type wBorder struct {
	Val   string `xml:"w:val,attr"`
	Sz    string `xml:"w:sz,attr"`
	Space string `xml:"w:space,attr"`
	Color string `xml:"w:color,attr"`
}

type wRun struct {
	XMLName xml.Name   `xml:"w:r"`
	Props   *wRunProps `xml:"w:rPr"`
	Items   []any
}

type wRunProps struct {
	Style  *wVal   `xml:"w:rStyle"`
	Fonts  *wFonts `xml:"w:rFonts"`
	Bold   *wFlag  `xml:"w:b"`
	Italic *wFlag  `xml:"w:i"`
	Sz     *wVal   `xml:"w:sz"`
}

type wFonts struct {
	ASCII string `xml:"w:ascii,attr"`
	HAnsi string `xml:"w:hAnsi,attr"`
}

type wFlag struct{}

type wText struct {
	XMLName xml.Name `xml:"w:t"`
	Space   string   `xml:"xml:space,attr"`
	Value   string   `xml:",chardata"`
}

type wBreak struct {
	XMLName xml.Name `xml:"w:br"`
}

type wHyperlink struct {
	XMLName xml.Name `xml:"w:hyperlink"`
	ID      string   `xml:"r:id,attr"`
	Runs    []wRun
}

type wSectPr struct {
	PgSz  wPgSz  `xml:"w:pgSz"`
	PgMar wPgMar `xml:"w:pgMar"`
}

type wPgSz struct {
	W string `xml:"w:w,attr"`
	H string `xml:"w:h,attr"`
}

type wPgMar struct {
	Top    string `xml:"w:top,attr"`
	Right  string `xml:"w:right,attr"`
	Bottom string `xml:"w:bottom,attr"`
	Left   string `xml:"w:left,attr"`
}

// WriteDocx renders the document as a minimal DOCX package.
func WriteDocx(doc *Document) ([]byte, error) {
	body := wBody{
		SectPr: wSectPr{
			PgSz:  wPgSz{W: "11906", H: "16838"},
			PgMar: wPgMar{Top: "1440", Right: "1440", Bottom: "1440", Left: "1440"},
		},
	}
	links := map[string]string{}
	var linkOrder []string
	for _, p := range doc.Paragraphs {
		body.Paras = append(body.Paras, buildPara(p, links, &linkOrder))
	}
	wdoc := wDocument{
		XMLNSW: "http://schemas.openxmlformats.org/wordprocessingml/2006/main",
		XMLNSR: "http://schemas.openxmlformats.org/officeDocument/2006/relationships",
		Body:   body,
	}
	docXML, err := xml.Marshal(wdoc)
	if err != nil {
		return nil, fmt.Errorf("marshal document.xml: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := []struct {
		name string
		data string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", rootRelsXML},
		{"word/document.xml", xml.Header + string(docXML)},
		{"word/_rels/document.xml.rels", documentRelsXML(links, linkOrder)},
		{"word/styles.xml", stylesXML},
		{"word/numbering.xml", numberingXML},
	}
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", part.name, err)
		}
		if _, err := w.Write([]byte(part.data)); err != nil {
			return nil, fmt.Errorf("write %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close docx package: %w", err)
	}
	return buf.Bytes(), nil
}

func buildPara(p Paragraph, links map[string]string, linkOrder *[]string) wPara {
	out := wPara{}
	props := &wParaProps{}
	switch {
	case p.Heading >= 1 && p.Heading <= 6:
		props.Style = &wVal{Val: fmt.Sprintf("Heading%d", p.Heading)}
	case p.Quote:
		props.Style = &wVal{Val: "Quote"}
	case p.Code:
		props.Style = &wVal{Val: "Code"}
	case p.List == ListBullet:
		props.Style = &wVal{Val: "ListBullet"}
		props.NumPr = &wNumPr{Ilvl: wVal{Val: fmt.Sprintf("%d", p.Level)}, NumID: wVal{Val: "1"}}
	case p.List == ListNumber:
		props.Style = &wVal{Val: "ListNumber"}
		props.NumPr = &wNumPr{Ilvl: wVal{Val: fmt.Sprintf("%d", p.Level)}, NumID: wVal{Val: "2"}}
	case p.Rule:
		props.PBdr = &wPBdr{Bottom: wBorder{Val: "single", Sz: "6", Space: "1", Color: "auto"}}
	}
	if props.Style != nil || props.NumPr != nil || props.PBdr != nil {
		out.Props = props
	}
	for _, r := range p.Runs {
		if r.Link != "" {
			id, ok := links[r.Link]
			if !ok {
				id = fmt.Sprintf("rId%d", 100+len(links))
				links[r.Link] = id
				*linkOrder = append(*linkOrder, r.Link)
			}
			out.Items = append(out.Items, wHyperlink{ID: id, Runs: []wRun{buildRun(r, true)}})
			continue
		}
		out.Items = append(out.Items, buildRun(r, false))
	}
	return out
}

func buildRun(r Run, hyperlink bool) wRun {
	props := &wRunProps{}
	used := false
	if hyperlink {
		props.Style = &wVal{Val: "Hyperlink"}
		used = true
	}
	if r.Bold {
		props.Bold = &wFlag{}
		used = true
	}
	if r.Italic {
		props.Italic = &wFlag{}
		used = true
	}
	if r.Code {
		props.Fonts = &wFonts{ASCII: "Courier New", HAnsi: "Courier New"}
		props.Sz = &wVal{Val: "20"}
		used = true
	}
	run := wRun{}
	if used {
		run.Props = props
	}
	for i, part := range strings.Split(r.Text, "\n") {
		if i > 0 {
			run.Items = append(run.Items, wBreak{})
		}
		run.Items = append(run.Items, wText{Space: "preserve", Value: part})
	}
	return run
}

func documentRelsXML(links map[string]string, order []string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` + "\n")
	b.WriteString(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>` + "\n")
	b.WriteString(`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering" Target="numbering.xml"/>` + "\n")
	for _, url := range order {
		var esc bytes.Buffer
		_ = xml.EscapeText(&esc, []byte(url))
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="%s" TargetMode="External"/>`+"\n", links[url], esc.String())
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}
