package mermaid

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/agentflow/pkg/flow"
)

var (
	// Directed connectors end in '>'; "---" is undirected.
	connectorRe = regexp.MustCompile(`-{2,}>|={2,}>|-\.+->|-{3,}`)

	quotedLabelRe = regexp.MustCompile(`\|"([^"]*)"\|`)
	bareLabelRe   = regexp.MustCompile(`\|([^|\n]*)\|`)
	placeholderRe = regexp.MustCompile(`^\x00(\d+)\x00`)

	// Text on the link itself: "a -- yes --> b", "a == yes ==> b",
	// "a -. yes .-> b". The opener must not continue a longer connector.
	linkTextRe = regexp.MustCompile(`(^|[^-=.])(?:--|==|-\.)\s+([^\s\x00|][^\x00|]*?)\s+(-{2,}>|={2,}>|\.-+>|-{3,})`)

	endpointRe     = regexp.MustCompile(`^(\w+)(?::::[\w-]+)?;?$`)
	inlineNodeIDRe = regexp.MustCompile(`^(\w+)\s*[\[({>]`)
)

// collapseLabels joins quoted edge labels that span lines.
func collapseLabels(text string) string {
	return quotedLabelRe.ReplaceAllStringFunc(text, func(s string) string {
		return strings.ReplaceAll(s, "\n", " ")
	})
}

// hideLabels swaps every edge label on line for a numbered placeholder so
// that label text can never be mistaken for a connector or a separator.
func hideLabels(line string) (string, []string) {
	var labels []string
	stash := func(re *regexp.Regexp) {
		line = re.ReplaceAllStringFunc(line, func(s string) string {
			labels = append(labels, re.FindStringSubmatch(s)[1])
			return fmt.Sprintf("\x00%d\x00", len(labels)-1)
		})
	}
	stash(quotedLabelRe)
	stash(bareLabelRe)

	line = linkTextRe.ReplaceAllStringFunc(line, func(s string) string {
		m := linkTextRe.FindStringSubmatch(s)
		labels = append(labels, strings.Trim(m[2], `"`))
		conn := "---"
		if strings.HasSuffix(m[3], ">") {
			conn = "-->"
		}
		return fmt.Sprintf("%s%s\x00%d\x00", m[1], conn, len(labels)-1)
	})
	return line, labels
}

// segment is the text between two connectors: an optional label that
// belongs to the connector on its left, followed by a list of endpoints.
type segment struct {
	label    string
	hasLabel bool
	ids      []string
}

func parseSegment(s string, labels []string) segment {
	var seg segment
	s = strings.TrimSpace(s)
	if m := placeholderRe.FindStringSubmatch(s); m != nil {
		if i, err := strconv.Atoi(m[1]); err == nil && i < len(labels) {
			seg.label, seg.hasLabel = labels[i], true
		}
		s = s[len(m[0]):]
	}
	for _, part := range strings.Split(s, "&") {
		if id, ok := endpointID(strings.TrimSpace(part)); ok {
			seg.ids = append(seg.ids, id)
		}
	}
	return seg
}

func endpointID(s string) (string, bool) {
	if m := endpointRe.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	if m := inlineNodeIDRe.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	return "", false
}

// scanEdges reads edge text line by line and adds every connector pair to
// the graph, registering unknown endpoints on the way.
func (p *parser) scanEdges(text string) {
	for _, line := range strings.Split(collapseLabels(text), "\n") {
		line, labels := hideLabels(line)
		conns := connectorRe.FindAllStringIndex(line, -1)
		if len(conns) == 0 {
			continue
		}

		segs := make([]segment, 0, len(conns)+1)
		prev := 0
		for _, c := range conns {
			segs = append(segs, parseSegment(line[prev:c[0]], labels))
			prev = c[1]
		}
		segs = append(segs, parseSegment(line[prev:], labels))

		for i, c := range conns {
			undirected := !strings.HasSuffix(line[c[0]:c[1]], ">")
			p.connect(segs[i].ids, segs[i+1], undirected)
		}
	}
}

// connect adds the cross product of sources and the targets of right.
func (p *parser) connect(sources []string, right segment, undirected bool) {
	if len(sources) == 0 || len(right.ids) == 0 {
		return
	}
	for _, id := range sources {
		p.ensure(id)
	}
	for _, id := range right.ids {
		p.ensure(id)
	}

	proto := flow.Edge{Undirected: undirected}
	if right.hasLabel {
		proto.Label = right.label
		for _, a := range scanEdgeAnnotations(right.label) {
			applyToEdge(&proto, a)
		}
	}
	for _, from := range sources {
		for _, to := range right.ids {
			e := proto
			e.From, e.To = from, to
			_ = p.g.AddEdge(e)
		}
	}
}
