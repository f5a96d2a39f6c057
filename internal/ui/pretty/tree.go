package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/xmlsyntax/pkg/syntax"
)

// TreeOptions controls FormatTree.
type TreeOptions struct {
	// ShowTrivia lists the trivia of each token below it.
	ShowTrivia bool

	// Width is the output width in columns. Token text is shortened to
	// fit half of it. Zero means defaultTermWidth.
	Width int
}

// FormatTree renders a syntax tree, one node, token or trivia per line:
//
//	Element [0..4)
//	├─ LessThanToken "<" [0..1)
//	└─ NameToken (missing) [1..1) ! XML0013
func (s *Styles) FormatTree(root *syntax.Node, opts TreeOptions) string {
	if root == nil {
		return ""
	}
	if opts.Width <= 0 {
		opts.Width = defaultTermWidth
	}

	tw := treeWriter{styles: s, opts: opts, maxText: max(opts.Width/2, 12)}
	tw.builder.WriteString(tw.label(root) + "\n")
	tw.children(root, "")
	return tw.builder.String()
}

type treeWriter struct {
	styles  *Styles
	opts    TreeOptions
	maxText int
	builder strings.Builder
}

type treeItem struct {
	node   *syntax.Node
	trivia *syntax.Trivia
	side   string
}

func (w *treeWriter) children(n *syntax.Node, prefix string) {
	var items []treeItem
	if n.IsToken() {
		if !w.opts.ShowTrivia {
			return
		}
		for _, t := range n.LeadingTrivia() {
			items = append(items, treeItem{trivia: &t, side: "leading"})
		}
		for _, t := range n.TrailingTrivia() {
			items = append(items, treeItem{trivia: &t, side: "trailing"})
		}
	} else {
		for c := range n.ChildNodes() {
			items = append(items, treeItem{node: c})
		}
	}

	for i, item := range items {
		branch, indent := "├─ ", "│  "
		if i == len(items)-1 {
			branch, indent = "└─ ", "   "
		}
		w.builder.WriteString(w.styles.TreeGuide.Render(prefix+branch))

		if item.trivia != nil {
			w.builder.WriteString(w.triviaLabel(*item.trivia, item.side) + "\n")
			if structure := item.trivia.Structure(); structure != nil {
				w.children(structure, prefix+indent)
			}
			continue
		}

		w.builder.WriteString(w.label(item.node) + "\n")
		w.children(item.node, prefix+indent)
	}
}

func (w *treeWriter) label(n *syntax.Node) string {
	var parts []string

	if n.IsToken() {
		parts = append(parts, w.styles.TreeToken.Render(n.Kind().String()))
		if n.IsMissing() {
			parts = append(parts, w.styles.TreeMissing.Render("(missing)"))
		} else {
			parts = append(parts, w.styles.TreeText.Render(w.quote(n.Text())))
		}
	} else {
		parts = append(parts, w.styles.TreeKind.Render(n.Kind().String()))
	}

	parts = append(parts, w.styles.TreeSpan.Render(formatSpan(n.Start(), n.End())))

	for _, d := range n.Diagnostics() {
		parts = append(parts, w.styles.Error.Render("! "+d.ID.Code()))
	}

	return strings.Join(parts, " ")
}

func (w *treeWriter) triviaLabel(t syntax.Trivia, side string) string {
	span := t.Span()
	return strings.Join([]string{
		w.styles.TreeTrivia.Render(side + " " + t.Kind().String()),
		w.styles.TreeText.Render(w.quote(t.Text())),
		w.styles.TreeSpan.Render(formatSpan(span.Start, span.End())),
	}, " ")
}

func (w *treeWriter) quote(s string) string {
	return truncateString(strconv.Quote(s), w.maxText)
}

func formatSpan(start, end int) string {
	return fmt.Sprintf("[%d..%d)", start, end)
}
