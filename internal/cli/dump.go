package cli

import "github.com/yaklabco/xmlsyntax/pkg/syntax"

// treeDump is the JSON and YAML shape of a node or token.
type treeDump struct {
	Kind        string           `json:"kind"                  yaml:"kind"`
	Start       int              `json:"start"                 yaml:"start"`
	End         int              `json:"end"                   yaml:"end"`
	Text        *string          `json:"text,omitempty"        yaml:"text,omitempty"`
	Missing     bool             `json:"missing,omitempty"     yaml:"missing,omitempty"`
	Diagnostics []diagnosticDump `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	Leading     []triviaDump     `json:"leading,omitempty"     yaml:"leading,omitempty"`
	Trailing    []triviaDump     `json:"trailing,omitempty"    yaml:"trailing,omitempty"`
	Children    []*treeDump      `json:"children,omitempty"    yaml:"children,omitempty"`
}

type diagnosticDump struct {
	Code    string `json:"code"    yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

type triviaDump struct {
	Kind    string      `json:"kind"              yaml:"kind"`
	Start   int         `json:"start"             yaml:"start"`
	End     int         `json:"end"               yaml:"end"`
	Text    string      `json:"text"              yaml:"text"`
	Skipped []*treeDump `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// dumpTree converts n and its descendants. Token trivia is included only
// when trivia is set.
func dumpTree(n *syntax.Node, trivia bool) *treeDump {
	if n == nil {
		return nil
	}

	d := &treeDump{
		Kind:    n.Kind().String(),
		Start:   n.Start(),
		End:     n.End(),
		Missing: n.IsMissing(),
	}
	for _, diag := range n.Diagnostics() {
		d.Diagnostics = append(d.Diagnostics, diagnosticDump{Code: diag.ID.Code(), Message: diag.Description()})
	}

	if n.IsToken() {
		if !n.IsMissing() {
			s := n.Text()
			d.Text = &s
		}
		if trivia {
			d.Leading = dumpTrivia(n.LeadingTrivia())
			d.Trailing = dumpTrivia(n.TrailingTrivia())
		}
		return d
	}

	for c := range n.ChildNodes() {
		d.Children = append(d.Children, dumpTree(c, trivia))
	}
	return d
}

func dumpTrivia(list []syntax.Trivia) []triviaDump {
	out := make([]triviaDump, 0, len(list))
	for _, t := range list {
		span := t.Span()
		td := triviaDump{
			Kind:  t.Kind().String(),
			Start: span.Start,
			End:   span.End(),
			Text:  t.Text(),
		}
		if structure := t.Structure(); structure != nil {
			for c := range structure.ChildNodes() {
				td.Skipped = append(td.Skipped, dumpTree(c, true))
			}
		}
		out = append(out, td)
	}
	return out
}
