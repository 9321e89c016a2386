package ooxml

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParsePptx extracts slide text from a PPTX package. Slide titles become
// level-2 headings, body paragraphs become bullet items at their outline
// level, and slides are separated by horizontal rules.
func ParsePptx(b []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("open pptx: %w", err)
	}
	if p, _ := readZipFile(zr, "ppt/presentation.xml"); p == nil {
		return nil, fmt.Errorf("not a PPTX package: ppt/presentation.xml missing")
	}

	type slideFile struct {
		n    int
		name string
	}
	var slides []slideFile
	for _, f := range zr.File {
		name := f.Name
		if !strings.HasPrefix(name, "ppt/slides/slide") || !strings.HasSuffix(name, ".xml") {
			continue
		}
		num := strings.TrimSuffix(strings.TrimPrefix(name, "ppt/slides/slide"), ".xml")
		n, err := strconv.Atoi(num)
		if err != nil {
			continue
		}
		slides = append(slides, slideFile{n: n, name: name})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].n < slides[j].n })

	out := &Document{}
	for i, sf := range slides {
		if i > 0 {
			out.Paragraphs = append(out.Paragraphs, Paragraph{Rule: true})
		}
		data, err := readZipFile(zr, sf.name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", sf.name, err)
		}
		var slide xmlSlide
		if err := xml.Unmarshal(data, &slide); err != nil {
			return nil, fmt.Errorf("parse %s: %w", sf.name, err)
		}
		out.Paragraphs = append(out.Paragraphs, slideParagraphs(slide)...)
	}
	return out, nil
}

type xmlSlide struct {
	CSld struct {
		SpTree struct {
			Shapes []xmlShape `xml:"sp"`
		} `xml:"spTree"`
	} `xml:"cSld"`
}

type xmlShape struct {
	NvSpPr struct {
		NvPr struct {
			Ph *struct {
				Type string `xml:"type,attr"`
			} `xml:"ph"`
		} `xml:"nvPr"`
	} `xml:"nvSpPr"`
	TxBody *struct {
		Paras []xmlSlidePara `xml:"p"`
	} `xml:"txBody"`
}

type xmlSlidePara struct {
	Props *struct {
		Lvl int `xml:"lvl,attr"`
	} `xml:"pPr"`
	Runs []struct {
		Props *struct {
			B string `xml:"b,attr"`
			I string `xml:"i,attr"`
		} `xml:"rPr"`
		Text string `xml:"t"`
	} `xml:"r"`
}

func (s xmlShape) isTitle() bool {
	ph := s.NvSpPr.NvPr.Ph
	return ph != nil && (ph.Type == "title" || ph.Type == "ctrTitle")
}

func slideParagraphs(slide xmlSlide) []Paragraph {
	var out []Paragraph
	for _, shape := range slide.CSld.SpTree.Shapes {
		if shape.TxBody == nil {
			continue
		}
		title := shape.isTitle()
		for _, para := range shape.TxBody.Paras {
			p := Paragraph{}
			for _, r := range para.Runs {
				if r.Text == "" {
					continue
				}
				run := Run{Text: r.Text}
				if r.Props != nil {
					run.Bold = r.Props.B == "1" || r.Props.B == "true"
					run.Italic = r.Props.I == "1" || r.Props.I == "true"
				}
				p.Runs = append(p.Runs, run)
			}
			if len(p.Runs) == 0 {
				continue
			}
			if title {
				p.Heading = 2
			} else {
				p.List = ListBullet
				if para.Props != nil {
					p.Level = para.Props.Lvl
				}
			}
			out = append(out, p)
		}
	}
	return out
}
