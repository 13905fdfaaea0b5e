// Package prompt renders the grounding prompt sent to the chat model.
package prompt

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"docqa/internal/domain"
)

// groundingTemplate frames the model as a document analyst and pins the
// answer to the retrieved excerpts. The last instruction gives the model an
// explicit out so it does not invent content missing from the document.
const groundingTemplate = `You are an expert document analyst. Answer with a professional tone, using only the document excerpts below.

Document excerpts:
{{- range $i, $s := .Sources }}

[Excerpt {{ add $i 1 }}{{ if $s.Page }}, page {{ $s.Page }}{{ end }}]
{{ $s.Text }}
{{- end }}

Question: {{ .Question }}

Instructions:
- Format the answer with Markdown
- Use **bold** for key points and ` + "`code`" + ` for article or section references
- Answer using only the excerpts above
- If the answer is not in the document, say "Not found in the document"
`

var tmpl = template.Must(
	template.New("grounding").Funcs(sprig.TxtFuncMap()).Parse(groundingTemplate),
)

// Build renders the grounding prompt for one question round.
func Build(question string, sources []domain.SourceChunk) (string, error) {
	var sb strings.Builder
	data := map[string]any{
		"Question": question,
		"Sources":  sources,
	}
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("prompt: render: %w", err)
	}
	return sb.String(), nil
}
