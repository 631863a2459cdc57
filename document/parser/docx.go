//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/netvexa/rag-go/document"
)

// docxDocumentPath is the main document body inside a .docx package.
const docxDocumentPath = "word/document.xml"

// docxCorePath holds title/author properties.
const docxCorePath = "docProps/core.xml"

// parseDOCX extracts text and heading structure from a DOCX package.
// DOCX is a zip containing WordprocessingML; we walk the XML token
// stream directly so paragraph and run attributes cannot hide text.
// Paragraphs styled HeadingN open a new section; table rows are
// flattened to "cell | cell" lines.
func parseDOCX(data []byte, o *Options) (*document.Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: docx: not a zip: %v", ErrMalformedInput, err)
	}

	docXML, err := readZipFile(zr, docxDocumentPath)
	if err != nil {
		return nil, fmt.Errorf("%w: docx: %v", ErrMalformedInput, err)
	}

	body, sections, err := walkDocumentXML(docXML)
	if err != nil {
		return nil, fmt.Errorf("%w: docx: %v", ErrMalformedInput, err)
	}

	md := baseMetadata(FormatDOCX, o)
	md["sections_count"] = len(sections)
	if coreXML, err := readZipFile(zr, docxCorePath); err == nil {
		addDOCXCoreProperties(md, coreXML)
	}

	return &document.Document{
		Text:     body,
		Metadata: md,
		Sections: sections,
	}, nil
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%s not found", name)
}

// docxSection accumulates one heading-delimited region.
type docxSection struct {
	title string
	level int
	paras []string
}

// walkDocumentXML streams WordprocessingML tokens and rebuilds
// paragraph text, heading sections and flattened tables.
func walkDocumentXML(docXML []byte) (string, []document.Section, error) {
	dec := xml.NewDecoder(bytes.NewReader(docXML))

	var (
		fullText []string
		sections []document.Section
		current  *docxSection

		para      strings.Builder
		paraStyle string
		inPara    bool

		tableRows []string
		rowCells  []string
		cell      strings.Builder
		tableDep  int
		inCell    bool
	)

	flushSection := func() {
		if current == nil || len(current.paras) == 0 {
			return
		}
		sections = append(sections, document.Section{
			Title:   current.title,
			Level:   current.level,
			Content: strings.Join(current.paras, "\n\n"),
		})
		current = nil
	}

	appendParagraph := func(text, style string) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		if level, ok := headingLevel(style); ok {
			flushSection()
			current = &docxSection{title: text, level: level}
			return
		}
		fullText = append(fullText, text)
		// Paragraphs before the first heading open an untitled section.
		if current == nil {
			current = &docxSection{}
		}
		current.paras = append(current.paras, text)
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDep++
			case "tr":
				if tableDep > 0 {
					rowCells = rowCells[:0]
				}
			case "tc":
				if tableDep > 0 {
					inCell = true
					cell.Reset()
				}
			case "p":
				inPara = true
				para.Reset()
				paraStyle = ""
			case "pStyle":
				for _, attr := range t.Attr {
					if attr.Name.Local == "val" {
						paraStyle = attr.Value
					}
				}
			case "tab":
				writeRun(&para, &cell, inPara, inCell, "\t")
			case "br":
				writeRun(&para, &cell, inPara, inCell, "\n")
			}
		case xml.CharData:
			writeRun(&para, &cell, inPara, inCell, string(t))
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				inPara = false
				if tableDep == 0 {
					appendParagraph(para.String(), paraStyle)
				}
			case "tc":
				if tableDep > 0 {
					inCell = false
					if c := strings.TrimSpace(cell.String()); c != "" {
						rowCells = append(rowCells, c)
					}
				}
			case "tr":
				if tableDep > 0 && len(rowCells) > 0 {
					tableRows = append(tableRows, strings.Join(rowCells, " | "))
					rowCells = rowCells[:0]
				}
			case "tbl":
				tableDep--
				if tableDep == 0 && len(tableRows) > 0 {
					table := strings.Join(tableRows, "\n")
					fullText = append(fullText, table)
					if current == nil {
						current = &docxSection{}
					}
					current.paras = append(current.paras, table)
					tableRows = tableRows[:0]
				}
			}
		}
	}
	flushSection()

	return strings.Join(fullText, "\n\n"), sections, nil
}

// writeRun routes character data into the active cell or paragraph.
// Inside a table the cell buffer wins so nested paragraphs collapse
// into the cell text.
func writeRun(para, cell *strings.Builder, inPara, inCell bool, s string) {
	if inCell {
		cell.WriteString(s)
		return
	}
	if inPara {
		para.WriteString(s)
	}
}

// headingLevel extracts the level from styles like "Heading1" or
// "heading 2". Unleveled heading styles default to level 1.
func headingLevel(style string) (int, bool) {
	ls := strings.ToLower(style)
	if !strings.Contains(ls, "heading") {
		return 0, false
	}
	last := ls[len(ls)-1]
	if last >= '1' && last <= '9' {
		return int(last - '0'), true
	}
	return 1, true
}

// addDOCXCoreProperties pulls title/creator/subject out of
// docProps/core.xml.
func addDOCXCoreProperties(md map[string]any, coreXML []byte) {
	var props struct {
		Title    string `xml:"title"`
		Creator  string `xml:"creator"`
		Subject  string `xml:"subject"`
		Created  string `xml:"created"`
		Modified string `xml:"modified"`
	}
	if err := xml.Unmarshal(coreXML, &props); err != nil {
		return
	}
	if props.Title != "" {
		md[document.MetaTitle] = props.Title
	}
	if props.Creator != "" {
		md[document.MetaAuthor] = props.Creator
	}
	if props.Subject != "" {
		md[document.MetaSubject] = props.Subject
	}
	if props.Created != "" {
		md[document.MetaCreatedAt] = props.Created
	}
	if props.Modified != "" {
		md[document.MetaModifiedAt] = props.Modified
	}
}
