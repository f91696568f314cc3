package render

import (
	"regexp"
	"strconv"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// emojiNode is an inline node for a :name: shortcode.
type emojiNode struct {
	ast.BaseInline
	Name string
}

var kindEmoji = ast.NewNodeKind("Emoji")

func (n *emojiNode) Kind() ast.NodeKind { return kindEmoji }

func (n *emojiNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Name": n.Name}, nil)
}

var emojiPattern = regexp.MustCompile(`^:(\w+):`)

type emojiParser struct{}

func (p *emojiParser) Trigger() []byte { return []byte{':'} }

func (p *emojiParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	m := emojiPattern.FindSubmatch(line)
	if m == nil {
		return nil
	}
	block.Advance(len(m[0]))
	return &emojiNode{Name: string(m[1])}
}

// quoteNode is a block node for the Discourse quote construct:
//
//	[quote="user, post:N, topic:M"]
//	body
//	[/quote]
type quoteNode struct {
	ast.BaseBlock
	User    string
	PostID  int
	TopicID int
}

var kindQuote = ast.NewNodeKind("DiscourseQuote")

func (n *quoteNode) Kind() ast.NodeKind { return kindQuote }

func (n *quoteNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"User":    n.User,
		"PostID":  strconv.Itoa(n.PostID),
		"TopicID": strconv.Itoa(n.TopicID),
	}, nil)
}

var (
	quoteOpenPattern  = regexp.MustCompile(`^\[quote="([^"]*), post:(\d+), topic:(\d+)"\]\s*$`)
	quoteClosePattern = regexp.MustCompile(`^\s*\[/quote\]\s*$`)
)

type quoteParser struct{}

func (p *quoteParser) Trigger() []byte { return []byte{'['} }

func (p *quoteParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	m := quoteOpenPattern.FindSubmatch(line)
	if m == nil {
		return nil, parser.NoChildren
	}
	postID, _ := strconv.Atoi(string(m[2]))
	topicID, _ := strconv.Atoi(string(m[3]))
	// Consume the full tag line; a final line has no trailing newline.
	reader.Advance(segment.Len())
	return &quoteNode{User: string(m[1]), PostID: postID, TopicID: topicID}, parser.HasChildren
}

func (p *quoteParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	line, segment := reader.PeekLine()
	if quoteClosePattern.Match(line) {
		reader.Advance(segment.Len())
		return parser.Close
	}
	return parser.Continue | parser.HasChildren
}

func (p *quoteParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (p *quoteParser) CanInterruptParagraph() bool { return true }

func (p *quoteParser) CanAcceptIndentedLine() bool { return false }

// newMarkdownParser builds a goldmark parser with the default grammar plus
// the two Discourse extensions.
func newMarkdownParser() parser.Parser {
	p := parser.NewParser(
		parser.WithBlockParsers(parser.DefaultBlockParsers()...),
		parser.WithInlineParsers(parser.DefaultInlineParsers()...),
		parser.WithParagraphTransformers(parser.DefaultParagraphTransformers()...),
	)
	p.AddOptions(
		parser.WithBlockParsers(util.Prioritized(&quoteParser{}, 850)),
		parser.WithInlineParsers(util.Prioritized(&emojiParser{}, 999)),
	)
	return p
}
