package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Body-text assembly limits.
const (
	maxTextChars    = 20000
	minParagraphLen = 30
	minHeadingLen   = 3
	maxHeadings     = 10
	maxParagraphs   = 20
	minListItemLen  = 10
	maxListItemLen  = 500
	maxListItems    = 15
	listItemCeiling = 50
	maxTables       = 3
	maxTableRows    = 15
	maxCellChars    = 50
	maxRowCells     = 6
	minDivLen       = 50
	maxDivLen       = 1000
	maxDivBlocks    = 10
)

// Keywords that mark a div block as navigation chrome rather than content.
var chromeKeywords = []string{"menu", "navigation", "cookie"}

// extractText assembles the page's substantive text from layered sources:
// structured paragraphs, remaining body paragraphs, headings, tables, list
// items, and a div fallback when no paragraphs were found. Single-strategy
// extraction is unreliable across real-world page structures; the layers
// maximize content capture while suppressing navigation noise.
func extractText(doc *goquery.Document, maxChars int) string {
	texts := collectParagraphs(doc)
	headings := collectHeadings(doc)
	listItems := collectListItems(doc)
	tableInfo := collectTables(doc)

	var divTexts []string
	if len(texts) == 0 {
		divTexts = collectDivBlocks(doc)
	}

	var parts []string
	if len(headings) > 0 {
		parts = append(parts, "Page Headings: "+strings.Join(capSlice(headings, maxHeadings), " | "))
	}
	if len(texts) > 0 {
		parts = append(parts, "\n\nMain Content:\n"+strings.Join(capSlice(texts, maxParagraphs), "\n\n"))
	}
	if len(tableInfo) > 0 {
		parts = append(parts, "\n\nTable Data:\n"+strings.Join(tableInfo, "\n"))
	}
	if len(listItems) > 0 && len(listItems) < listItemCeiling {
		parts = append(parts, "\n\nKey Points:\n- "+strings.Join(capSlice(listItems, maxListItems), "\n- "))
	}
	if len(divTexts) > 0 && len(texts) == 0 {
		parts = append(parts, "\n\nPage Content:\n"+strings.Join(capSlice(divTexts, maxDivBlocks), "\n"))
	}

	result := strings.Join(parts, "")
	if strings.TrimSpace(result) == "" {
		result = cleanText(doc.Find("body").Text())
	}
	return truncate(result, maxChars)
}

// collectParagraphs gathers paragraphs nested under article/main/section
// containers first, then remaining body paragraphs not already captured.
func collectParagraphs(doc *goquery.Document) []string {
	var texts []string
	for _, container := range []string{"article", "main", "section"} {
		doc.Find(container).Each(func(_ int, c *goquery.Selection) {
			c.Find("p").Each(func(_ int, p *goquery.Selection) {
				if t := cleanText(p.Text()); len(t) > minParagraphLen {
					texts = append(texts, t)
				}
			})
		})
	}

	seen := make(map[string]struct{}, len(texts))
	for _, t := range texts {
		seen[t] = struct{}{}
	}
	doc.Find("body p").Each(func(_ int, p *goquery.Selection) {
		t := cleanText(p.Text())
		if len(t) <= minParagraphLen {
			return
		}
		if _, dup := seen[t]; dup {
			return
		}
		seen[t] = struct{}{}
		texts = append(texts, t)
	})
	return texts
}

func collectHeadings(doc *goquery.Document) []string {
	var headings []string
	for _, tag := range []string{"h1", "h2", "h3"} {
		doc.Find(tag).Each(func(_ int, h *goquery.Selection) {
			if t := cleanText(h.Text()); len(t) > minHeadingLen {
				headings = append(headings, t)
			}
		})
	}
	return headings
}

func collectListItems(doc *goquery.Document) []string {
	var items []string
	doc.Find("li").Each(func(_ int, li *goquery.Selection) {
		if t := cleanText(li.Text()); len(t) > minListItemLen && len(t) < maxListItemLen {
			items = append(items, t)
		}
	})
	return items
}

// collectTables emits, per table, a column-header line, a sample of rows
// (first 10 plus last 5 when the table exceeds 15 rows) and a total-row
// count line. Cells are truncated and rows capped to keep lines readable.
func collectTables(doc *goquery.Document) []string {
	var info []string
	doc.Find("table").Each(func(tableIdx int, table *goquery.Selection) {
		if tableIdx >= maxTables {
			return
		}
		rows := table.Find("tr")
		n := rows.Length()
		if n == 0 {
			return
		}

		headers := cellTexts(rows.Eq(0), 0)
		if len(headers) > 0 {
			info = append(info, "Table columns: "+strings.Join(capSlice(headers, 10), ", "))
		}

		for _, i := range sampleRowIndices(n) {
			cells := cellTexts(rows.Eq(i), maxCellChars)
			line := rowLine(cells)
			if line != "" {
				info = append(info, line)
			}
		}

		info = append(info, fmt.Sprintf("(Total rows: %d)", n-1))
	})
	return info
}

// sampleRowIndices picks the data row indices to render: rows 1-10 plus the
// last 5 for long tables, every data row otherwise, capped at 15.
func sampleRowIndices(rowCount int) []int {
	var indices []int
	if rowCount > maxTableRows {
		for i := 1; i <= 10; i++ {
			indices = append(indices, i)
		}
		for i := rowCount - 5; i < rowCount; i++ {
			indices = append(indices, i)
		}
	} else {
		for i := 1; i < rowCount; i++ {
			indices = append(indices, i)
		}
	}
	return capSlice(indices, maxTableRows)
}

// cellTexts returns the row's cell texts in document order. A positive
// maxLen truncates each cell; header rows pass 0 to keep full text.
func cellTexts(row *goquery.Selection, maxLen int) []string {
	var cells []string
	row.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		t := cleanText(cell.Text())
		if maxLen > 0 {
			t = truncate(t, maxLen)
		}
		cells = append(cells, t)
	})
	return cells
}

func rowLine(cells []string) string {
	any := false
	for _, c := range cells {
		if c != "" {
			any = true
			break
		}
	}
	if !any {
		return ""
	}
	return strings.Join(capSlice(cells, maxRowCells), " | ")
}

// collectDivBlocks is the last-resort content source: medium-length div
// text blocks, skipping anything that smells like navigation or cookie
// banners, deduplicated.
func collectDivBlocks(doc *goquery.Document) []string {
	var blocks []string
	seen := make(map[string]struct{})
	doc.Find("div").Each(func(_ int, div *goquery.Selection) {
		t := cleanText(div.Text())
		if len(t) <= minDivLen || len(t) >= maxDivLen {
			return
		}
		lower := strings.ToLower(t)
		for _, kw := range chromeKeywords {
			if strings.Contains(lower, kw) {
				return
			}
		}
		if _, dup := seen[t]; dup {
			return
		}
		seen[t] = struct{}{}
		blocks = append(blocks, t)
	})
	return blocks
}

func capSlice[T any](s []T, max int) []T {
	if len(s) > max {
		return s[:max]
	}
	return s
}
