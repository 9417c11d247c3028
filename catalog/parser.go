// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package catalog

import (
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/poiesic/declass/core"
)

// recordTableHeader identifies the records table on the catalog page.
const recordTableHeader = "Record Number"

// documentExtensions are the link suffixes the fallback scan accepts.
var documentExtensions = []string{".pdf", ".mp3"}

// ParsePage extracts catalog records from one HTML page.
//
// The primary strategy looks for the records table (the one whose headers
// include "Record Number") and reads one record per row: the first cell's
// link gives the identifier and URL, the second cell gives the release
// date. When no such table exists the page is scanned for document links
// (.pdf, .mp3) instead, mirroring how the upstream catalog has been
// published over time.
//
// Relative links are resolved against base. A page with no records returns
// an empty slice and no error.
func ParsePage(r io.Reader, base *url.URL) ([]core.Record, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPage, err)
	}

	now := time.Now().UTC()

	if table := findRecordTable(doc); table != nil {
		return recordsFromTable(table, base, now), nil
	}

	return recordsFromLinks(doc, base, now), nil
}

// findRecordTable returns the first table whose header cells include the
// record-number column, or nil.
func findRecordTable(doc *html.Node) *html.Node {
	for table := range descendants(doc, atom.Table) {
		for th := range descendants(table, atom.Th) {
			if strings.Contains(textContent(th), recordTableHeader) {
				return table
			}
		}
	}
	return nil
}

// recordsFromTable reads one record per data row.
func recordsFromTable(table *html.Node, base *url.URL, now time.Time) []core.Record {
	var records []core.Record

	for tr := range descendants(table, atom.Tr) {
		cells := childCells(tr)
		if len(cells) < 2 {
			continue
		}

		link := firstLink(cells[0])
		if link == nil {
			continue // header row or a row without a document link
		}

		href := resolveHref(attrVal(link, "href"), base)
		if href == "" {
			continue
		}

		identifier := strings.TrimSpace(textContent(link))
		if identifier == "" {
			identifier = path.Base(href)
		}

		records = append(records, core.Record{
			Id:          core.IDFromURL(href),
			Identifier:  identifier,
			URL:         href,
			ReleaseDate: strings.TrimSpace(textContent(cells[1])),
			ListedAt:    now,
		})
	}

	return records
}

// recordsFromLinks is the fallback: every document link on the page becomes
// a record with an unknown release date.
func recordsFromLinks(doc *html.Node, base *url.URL, now time.Time) []core.Record {
	var records []core.Record

	for a := range descendants(doc, atom.A) {
		rawHref := attrVal(a, "href")
		if !isDocumentLink(rawHref) {
			continue
		}

		href := resolveHref(rawHref, base)
		if href == "" {
			continue
		}

		identifier := strings.TrimSpace(textContent(a))
		if identifier == "" {
			identifier = path.Base(href)
		}

		records = append(records, core.Record{
			Id:          core.IDFromURL(href),
			Identifier:  identifier,
			URL:         href,
			ReleaseDate: "Unknown",
			ListedAt:    now,
		})
	}

	return records
}

func isDocumentLink(href string) bool {
	lower := strings.ToLower(href)
	// Strip query and fragment before matching the extension.
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}
	for _, ext := range documentExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// resolveHref makes href absolute against base and drops anything that does
// not come out as a valid http(s) URL.
func resolveHref(href string, base *url.URL) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	resolved := ref.String()
	if !core.IsValidURL(resolved) {
		return ""
	}
	return resolved
}

// descendants yields every descendant element of n with the given tag.
func descendants(n *html.Node, tag atom.Atom) func(yield func(*html.Node) bool) {
	return func(yield func(*html.Node) bool) {
		var walk func(*html.Node) bool
		walk = func(node *html.Node) bool {
			if node.Type == html.ElementNode && node.DataAtom == tag {
				if !yield(node) {
					return false
				}
			}
			for c := node.FirstChild; c != nil; c = c.NextSibling {
				if !walk(c) {
					return false
				}
			}
			return true
		}
		walk(n)
	}
}

// childCells returns the td/th children of a table row in document order.
func childCells(tr *html.Node) []*html.Node {
	var cells []*html.Node
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
			cells = append(cells, c)
		}
	}
	return cells
}

// firstLink returns the first anchor with an href under n, or nil.
func firstLink(n *html.Node) *html.Node {
	for a := range descendants(n, atom.A) {
		if attrVal(a, "href") != "" {
			return a
		}
	}
	return nil
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textContent concatenates all text nodes under n.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
