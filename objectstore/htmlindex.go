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


package objectstore

import (
	"fmt"
	"html"
	"io"
	"path"
	"strings"
)

// IndexPage describes the browsable HTML listing generated for a mirrored
// bucket.
type IndexPage struct {
	// Title heads the file listing section. Defaults to
	// "Mirrored Documents".
	Title string
	// BaseURL is the public URL prefix joined with each object key to form
	// a download link.
	BaseURL string
	// DatasetURL, when set, adds a section at the top linking the processed
	// dataset exported from the mirrored documents.
	DatasetURL string
}

// WriteHTMLIndex writes an HTML page linking every stored object by its
// display filename, so a bucket can be browsed from a single static page.
// Keys ending in "/" are folder markers and are skipped.
func WriteHTMLIndex(w io.Writer, page IndexPage, keys []string) error {
	title := page.Title
	if title == "" {
		title = "Mirrored Documents"
	}
	base := strings.TrimSuffix(page.BaseURL, "/")

	lines := []string{"<html><body>"}
	if page.DatasetURL != "" {
		lines = append(lines,
			"<h1>Processed Dataset</h1>",
			fmt.Sprintf(`<p><a href="%s">Download %s</a></p>`,
				html.EscapeString(page.DatasetURL),
				html.EscapeString(path.Base(page.DatasetURL))))
	}

	lines = append(lines, "<h1>"+html.EscapeString(title)+"</h1><ul>")
	for _, key := range keys {
		if strings.HasSuffix(key, "/") {
			continue
		}
		lines = append(lines, fmt.Sprintf(`<li><a href="%s">%s</a></li>`,
			html.EscapeString(base+"/"+key),
			html.EscapeString(path.Base(key))))
	}
	lines = append(lines, "</ul></body></html>")

	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}
