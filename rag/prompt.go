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


package rag

import (
	"fmt"
	"strings"

	"github.com/poiesic/declass/core"
)

const promptHeader = `You are a research assistant answering questions about declassified archive documents. Answer using only the excerpts below. Cite the source document for every claim. If the excerpts do not contain the answer, say so.`

// BuildPrompt assembles the completion prompt from retrieved elements.
// Every element contributes its text and its provenance (document filename
// and source URL), so the model can cite where a claim came from.
func BuildPrompt(question string, elements []core.ProcessedElement) string {
	var b strings.Builder
	b.WriteString(promptHeader)
	b.WriteString("\n\n")

	for n, e := range elements {
		fmt.Fprintf(&b, "Excerpt %d:\n%s\n", n+1, strings.TrimSpace(e.Text))
		fmt.Fprintf(&b, "Source: %s (%s)\n", e.Filename, e.SourceURL)
		if len(e.Entities) > 0 {
			fmt.Fprintf(&b, "Entities: %s\n", strings.Join(e.Entities, ", "))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Question: %s\n", strings.TrimSpace(question))
	return b.String()
}
