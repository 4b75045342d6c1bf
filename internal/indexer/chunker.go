package indexer

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

const (
	// chunkSize targets roughly one semantic unit per embedding.
	chunkSize = 1000
	// chunkOverlap keeps neighboring chunks overlapping so sentences that
	// straddle a boundary stay retrievable.
	chunkOverlap = 200
	// boundaryWindow is how far back from the cut point a sentence end is
	// still preferred over a hard split.
	boundaryWindow = 100
)

// Chunker splits extracted document text into overlapping chunks.
type Chunker struct {
	markdown goldmark.Markdown
}

// NewChunker creates a chunker. Markdown input is flattened to plain text
// before splitting so headings and tables don't leak syntax into chunks.
func NewChunker() *Chunker {
	return &Chunker{
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
	}
}

// ChunkDocument splits all pages of a document into chunks with a global
// sequence index. Overlap never crosses a page boundary.
func (c *Chunker) ChunkDocument(doc Document) []Chunk {
	var chunks []Chunk
	index := 0
	for _, page := range doc.Pages {
		pageText := page.Text
		if strings.HasSuffix(strings.ToLower(doc.Filename), ".md") {
			pageText = c.FlattenMarkdown([]byte(pageText))
		}
		for _, text := range splitText(pageText, chunkSize, chunkOverlap) {
			chunks = append(chunks, Chunk{
				Index: index,
				Page:  page.Number,
				Text:  text,
			})
			index++
		}
	}
	return chunks
}

// splitText splits text into overlapping chunks of at most size runes,
// preferring to cut at a sentence boundary within boundaryWindow runes of
// the limit.
func splitText(text string, size, overlap int) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	runes := []rune(trimmed)
	if len(runes) <= size {
		return []string{trimmed}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + size
		if end >= len(runes) {
			chunk := strings.TrimSpace(string(runes[start:]))
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		window := string(runes[start:end])
		if cut := strings.LastIndex(window, ". "); cut != -1 {
			cutRunes := len([]rune(window[:cut]))
			if cutRunes > size-boundaryWindow {
				end = start + cutRunes + 1
			}
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := end - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return chunks
}

// FlattenMarkdown renders markdown to plain text by walking the AST and
// collecting text content, with table cells joined by pipes.
func (c *Chunker) FlattenMarkdown(content []byte) string {
	reader := text.NewReader(content)
	doc := c.markdown.Parser().Parse(reader)

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading, *ast.Paragraph, *ast.ListItem:
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
				b.WriteString("\n")
			}
			return ast.WalkContinue, nil
		case *ast.Text:
			b.Write(node.Segment.Value(content))
			return ast.WalkContinue, nil
		case *ast.String:
			b.Write(node.Value)
			return ast.WalkContinue, nil
		case *ast.CodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				b.Write(line.Value(content))
			}
			return ast.WalkContinue, nil
		case *ast.FencedCodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				b.Write(line.Value(content))
			}
			return ast.WalkContinue, nil
		default:
			kindName := n.Kind().String()
			if strings.Contains(kindName, "TableCell") {
				if !strings.HasSuffix(b.String(), "\n") && b.Len() > 0 {
					b.WriteString(" | ")
				}
				return ast.WalkContinue, nil
			}
			if strings.Contains(kindName, "TableRow") || strings.Contains(kindName, "TableHeader") {
				if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
					b.WriteString("\n")
				}
			}
			return ast.WalkContinue, nil
		}
	})

	return strings.TrimSpace(b.String())
}
