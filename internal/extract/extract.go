// Package extract derives page signals from raw markup using goquery.
//
// Every signal is produced by a prioritized fallback chain: strategies are
// tried in order and the first hit wins. A signal the markup lacks is an
// absent field, never an error.
package extract

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pagesift/pagesift/internal/scrape"
)

// Maximum number of representative images collected per page.
const imageLimit = 5

var priceRe = regexp.MustCompile(`[$€£]\s?[0-9]+(?:[.,][0-9]{2})?`)

// Extractor implements scrape.Extractor over a goquery document.
type Extractor struct{}

// New constructs an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract parses the markup and derives all five signals. The document tree
// is ephemeral; it is discarded when this call returns.
func (e *Extractor) Extract(markup []byte, baseURL string) scrape.ExtractionResult {
	result := scrape.ExtractionResult{URL: baseURL}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return result
	}

	result.Title = extractTitle(doc)
	result.Description = extractDescription(doc)
	result.Price = extractPrice(doc)
	result.Images = extractImages(doc, baseURL, imageLimit)
	result.Text = extractText(doc, maxTextChars)
	return result
}

// extractTitle: <title> text, then og:title, then the first <h1>.
func extractTitle(doc *goquery.Document) string {
	if t := cleanText(doc.Find("title").First().Text()); t != "" {
		return t
	}
	if c, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	return cleanText(doc.Find("h1").First().Text())
}

// extractDescription: meta description, then og:description.
func extractDescription(doc *goquery.Document) string {
	if c, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	if c, ok := doc.Find(`meta[property="og:description"]`).First().Attr("content"); ok {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	return ""
}

// extractPrice: structured price markers, then price-classed span/div text,
// then a currency-token scan over the visible text. The regex fallback can
// match unrelated currency-like tokens elsewhere on the page; that is an
// accepted heuristic trade-off.
func extractPrice(doc *goquery.Document) string {
	if c, ok := doc.Find(`meta[itemprop="price"]`).First().Attr("content"); ok {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	if c, ok := doc.Find(`meta[property="product:price:amount"]`).First().Attr("content"); ok {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	for _, tag := range []string{"span", "div"} {
		if p := firstPriceClassed(doc, tag); p != "" {
			return p
		}
	}
	if m := priceRe.FindString(cleanText(doc.Text())); m != "" {
		return m
	}
	return ""
}

// firstPriceClassed returns the text of the first element of the given tag
// whose class attribute contains a case-insensitive "price" token.
func firstPriceClassed(doc *goquery.Document, tag string) string {
	var found string
	doc.Find(tag).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, ok := s.Attr("class")
		if !ok || !strings.Contains(strings.ToLower(class), "price") {
			return true
		}
		if t := cleanText(s.Text()); t != "" {
			found = t
			return false
		}
		return true
	})
	return found
}

// extractImages collects og:image contents first, then <img> src/data-src
// values, all in document order. Relative URLs are resolved against the
// page URL, duplicates skipped, and the scan stops at the cap.
func extractImages(doc *goquery.Document, baseURL string, limit int) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	var urls []string
	seen := make(map[string]struct{})
	add := func(raw string) bool {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return len(urls) >= limit
		}
		abs := raw
		if base != nil {
			if resolved, err := base.Parse(raw); err == nil {
				abs = resolved.String()
			}
		}
		if _, dup := seen[abs]; !dup {
			seen[abs] = struct{}{}
			urls = append(urls, abs)
		}
		return len(urls) >= limit
	}

	full := false
	doc.Find(`meta[property="og:image"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		c, _ := s.Attr("content")
		full = add(c)
		return !full
	})
	if !full {
		doc.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			src, ok := s.Attr("src")
			if !ok || strings.TrimSpace(src) == "" {
				src, _ = s.Attr("data-src")
			}
			full = add(src)
			return !full
		})
	}
	return urls
}

// cleanText collapses all whitespace runs to single spaces and trims.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate caps a string at max characters (runes, not bytes).
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
