// Package render converts Discourse markdown into the Telegram MarkdownV2
// dialect. Parsing is done with goldmark extended by two Discourse rules
// (emoji shortcodes and quote blocks); rendering walks the tree with an
// exhaustive kind switch. Rendering is pure apart from one side effect:
// the mention scanner runs over the raw source before structural rendering.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"cow-notifier/pkg/news"
)

// MentionScanner reports alias mentions found in a raw post body.
type MentionScanner interface {
	Scan(ctx context.Context, body, category string) []news.MentionEvent
}

// Renderer converts Discourse markdown into Telegram MarkdownV2.
type Renderer struct {
	parser  parser.Parser
	scanner MentionScanner
	baseURL string // forum base URL, for quote permalinks and upload rewriting
	logger  *slog.Logger
}

// New creates a renderer. baseURL is the public forum root, without a
// trailing slash.
func New(scanner MentionScanner, baseURL string, logger *slog.Logger) *Renderer {
	return &Renderer{
		parser:  newMarkdownParser(),
		scanner: scanner,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// RenderArticle scans the raw body for mentions, then renders the metadata
// header block, the body, and any attachment links.
func (r *Renderer) RenderArticle(ctx context.Context, a *news.Article) (string, []news.MentionEvent, error) {
	mentions := r.scanner.Scan(ctx, a.Raw, a.Category)

	body, err := r.Render(a.Raw)
	if err != nil {
		return "", nil, err
	}

	var b strings.Builder
	b.WriteString(r.header(a))
	b.WriteString(body)
	for _, u := range a.Attachments {
		name := u
		if i := strings.LastIndexByte(u, '/'); i >= 0 {
			name = u[i+1:]
		}
		fmt.Fprintf(&b, "\n[%s](%s)", Escape(name), u)
	}
	return b.String(), mentions, nil
}

// header builds the monospace metadata block prefixed to every article.
// It is wrapped in a fenced code block, so only the code escape set applies.
func (r *Renderer) header(a *news.Article) string {
	hdr := fmt.Sprintf("From: %s(%s)\nNewsgroup: %s\nSubject: %s\nDate: %s\nis_plus_one: %t",
		a.Author.Username, a.Author.DisplayName, a.Category, a.Subject, a.HumanDate(), a.IsPlusOne())
	return "```\n" + EscapeCode(hdr) + "\n```\n"
}

// Render converts a raw markdown body into MarkdownV2. A failure here is a
// value, not a crash: panics from the parser or walker are recovered into
// the returned error so the caller can mark the article broken.
func (r *Renderer) Render(source string) (out string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("render panic: %v", p)
		}
	}()

	src := []byte(source)
	doc := r.parser.Parse(text.NewReader(src))

	var blocks []string
	for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
		rendered, berr := r.block(c, src, 0)
		if berr != nil {
			return "", berr
		}
		if rendered == "" {
			continue
		}
		blocks = append(blocks, rendered)
	}
	return strings.Join(blocks, "\n\n"), nil
}

// block renders one block-level node. depth tracks list nesting.
func (r *Renderer) block(n ast.Node, src []byte, depth int) (string, error) {
	switch b := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return r.inlines(n, src)
	case *ast.Heading:
		// Telegram has no heading syntax; the text stands on its own line.
		return r.inlines(n, src)
	case *ast.Blockquote:
		return r.blockquote(b, src, depth)
	case *ast.FencedCodeBlock:
		return r.codeBlock(codeLines(b.Lines(), src), string(b.Language(src))), nil
	case *ast.CodeBlock:
		return r.codeBlock(codeLines(b.Lines(), src), ""), nil
	case *ast.List:
		return r.list(b, src, depth)
	case *ast.ThematicBreak:
		return `\-\-\-`, nil
	case *quoteNode:
		return r.quote(b, src)
	default:
		r.logger.Error("unhandled markdown block", "kind", n.Kind().String())
		return "", nil
	}
}

func (r *Renderer) blockquote(n *ast.Blockquote, src []byte, depth int) (string, error) {
	var parts []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		s, err := r.block(c, src, depth)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	lines := strings.Split(strings.Join(parts, "\n"), "\n")
	for i := range lines {
		lines[i] = `\> ` + lines[i]
	}
	return strings.Join(lines, "\n"), nil
}

func (r *Renderer) codeBlock(code, info string) string {
	var b strings.Builder
	b.WriteString("```")
	if info != "" {
		b.WriteString(EscapeCode(info))
	}
	b.WriteString("\n")
	b.WriteString(EscapeCode(strings.TrimSuffix(code, "\n")))
	b.WriteString("\n```")
	return b.String()
}

func codeLines(lines *text.Segments, src []byte) string {
	var b strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	return b.String()
}

func (r *Renderer) list(n *ast.List, src []byte, depth int) (string, error) {
	ordered := n.IsOrdered()
	num := n.Start
	if num == 0 {
		num = 1
	}
	pad := strings.Repeat("  ", depth)

	var lines []string
	for item := n.FirstChild(); item != nil; item = item.NextSibling() {
		var content []string
		var nested []string
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			if sub, ok := c.(*ast.List); ok {
				s, err := r.list(sub, src, depth+1)
				if err != nil {
					return "", err
				}
				nested = append(nested, s)
				continue
			}
			s, err := r.block(c, src, depth)
			if err != nil {
				return "", err
			}
			content = append(content, s)
		}
		bullet := `\-`
		if ordered {
			bullet = fmt.Sprintf(`%d\.`, num)
			num++
		}
		lines = append(lines, pad+bullet+" "+strings.Join(content, " "))
		lines = append(lines, nested...)
	}
	return strings.Join(lines, "\n"), nil
}

// quote renders a Discourse quote block: every line carries an escaped
// quote marker and the attribution links back to the quoted post.
func (r *Renderer) quote(n *quoteNode, src []byte) (string, error) {
	var parts []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		s, err := r.block(c, src, 0)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	body := strings.ReplaceAll(strings.Join(parts, "\n"), "\n", "\n\\> ")
	return fmt.Sprintf("\\> [@%s](%s/u/%s) in [post](%s/t/%d/%d):\n\\> _%s_",
		n.User, r.baseURL, n.User, r.baseURL, n.TopicID, n.PostID, body), nil
}

// inlines renders the inline children of a block node.
func (r *Renderer) inlines(n ast.Node, src []byte) (string, error) {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		s, err := r.inline(c, src)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

func (r *Renderer) inline(n ast.Node, src []byte) (string, error) {
	switch i := n.(type) {
	case *ast.Text:
		s := Escape(string(i.Segment.Value(src)))
		if i.SoftLineBreak() || i.HardLineBreak() {
			s += "\n"
		}
		return s, nil
	case *ast.String:
		return Escape(string(i.Value)), nil
	case *ast.Emphasis:
		inner, err := r.inlines(i, src)
		if err != nil {
			return "", err
		}
		if i.Level == 2 {
			return "*" + inner + "*", nil
		}
		return "_" + inner + "_", nil
	case *ast.CodeSpan:
		var raw strings.Builder
		for c := i.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				raw.Write(t.Segment.Value(src))
			}
		}
		return "`" + EscapeCode(raw.String()) + "`", nil
	case *ast.Link:
		label, err := r.inlines(i, src)
		if err != nil {
			return "", err
		}
		dest, err := r.rewriteUpload(string(i.Destination))
		if err != nil {
			return "", err
		}
		if label == "" {
			if len(i.Title) > 0 {
				label = Escape(string(i.Title))
			} else {
				label = Escape(dest)
			}
		}
		return fmt.Sprintf("[%s](%s)", label, dest), nil
	case *ast.AutoLink:
		url := string(i.URL(src))
		return fmt.Sprintf("[%s](%s)", Escape(string(i.Label(src))), url), nil
	case *ast.Image:
		title := string(i.Title)
		if title == "" {
			title = textOf(i, src)
		}
		if title == "" {
			title = "Image"
		}
		dest, err := r.rewriteUpload(string(i.Destination))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("[%s](%s)", Escape(title), dest), nil
	case *emojiNode:
		if cp, ok := emoji[i.Name]; ok {
			return cp, nil
		}
		return ":" + Escape(i.Name) + ":", nil
	default:
		r.logger.Error("unhandled markdown inline", "kind", n.Kind().String())
		return "", nil
	}
}

// textOf collects the literal text content beneath a node, unescaped.
func textOf(n ast.Node, src []byte) string {
	var b strings.Builder
	var walk func(ast.Node)
	walk = func(c ast.Node) {
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
		case *ast.String:
			b.Write(t.Value)
		}
		for cc := c.FirstChild(); cc != nil; cc = cc.NextSibling() {
			walk(cc)
		}
	}
	walk(n)
	return b.String()
}
