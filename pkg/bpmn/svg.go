package bpmn

import (
	"fmt"
	"html"
	"strings"
)

// SVG draws the imported diagram under the current zoom and scroll.
func (c *Canvas) SVG() (string, error) {
	c.viewer.mu.Lock()
	defer c.viewer.mu.Unlock()

	m := c.viewer.model
	if m == nil {
		return "", ErrNoModel
	}

	vb := c.visible()
	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="%s %s %s %s" class="bpmn-canvas">`+"\n",
		num(c.viewport.Width), num(c.viewport.Height), num(vb.X), num(vb.Y), num(vb.Width), num(vb.Height))
	sb.WriteString(`  <defs><marker id="arrow" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="8" markerHeight="8" orient="auto"><path d="M 0 0 L 10 5 L 0 10 z"/></marker></defs>` + "\n")

	kinds := make(map[string]FlowNode)
	for _, p := range m.Processes {
		for _, n := range p.Nodes {
			kinds[n.ID] = n
		}
	}
	labels := make(map[string]string)
	for _, p := range m.Participants {
		labels[p.ID] = p.Name
	}
	for _, p := range m.Processes {
		for _, l := range p.Lanes {
			labels[l.ID] = l.Name
		}
		for _, f := range p.Flows {
			labels[f.ID] = f.Name
		}
	}

	// Containers first so that nodes and edges are drawn on top of them.
	for _, s := range m.Shapes {
		if _, isNode := kinds[s.ElementID]; isNode {
			continue
		}
		b := s.Bounds
		fmt.Fprintf(&sb, `  <g data-element-id="%s" class="container"><rect x="%s" y="%s" width="%s" height="%s" fill="none" stroke="#444"/>`,
			attr(s.ElementID), num(b.X), num(b.Y), num(b.Width), num(b.Height))
		if name := labels[s.ElementID]; name != "" {
			fmt.Fprintf(&sb, `<text x="%s" y="%s" font-size="12">%s</text>`, num(b.X+6), num(b.Y+16), html.EscapeString(name))
		}
		sb.WriteString("</g>\n")
	}

	for _, s := range m.Shapes {
		n, isNode := kinds[s.ElementID]
		if !isNode {
			continue
		}
		fmt.Fprintf(&sb, `  <g data-element-id="%s" class="%s">`, attr(n.ID), n.Kind)
		sb.WriteString(nodeShape(n, s.Bounds))
		if n.Name != "" {
			b := s.Bounds
			fmt.Fprintf(&sb, `<text x="%s" y="%s" font-size="12" text-anchor="middle">%s</text>`,
				num(b.X+b.Width/2), num(b.Y+b.Height/2+4), html.EscapeString(n.Name))
		}
		sb.WriteString("</g>\n")
	}

	for _, e := range m.Edges {
		if len(e.Waypoints) < 2 {
			continue
		}
		pts := make([]string, 0, len(e.Waypoints))
		for _, p := range e.Waypoints {
			pts = append(pts, num(p.X)+","+num(p.Y))
		}
		fmt.Fprintf(&sb, `  <g data-element-id="%s" class="sequenceFlow"><polyline points="%s" fill="none" stroke="#000" marker-end="url(#arrow)"/>`,
			attr(e.ElementID), strings.Join(pts, " "))
		if name := labels[e.ElementID]; name != "" {
			mid := e.Waypoints[len(e.Waypoints)/2]
			fmt.Fprintf(&sb, `<text x="%s" y="%s" font-size="11">%s</text>`, num(mid.X), num(mid.Y-4), html.EscapeString(name))
		}
		sb.WriteString("</g>\n")
	}

	sb.WriteString("</svg>")
	return sb.String(), nil
}

func nodeShape(n FlowNode, b Rect) string {
	cx, cy := b.X+b.Width/2, b.Y+b.Height/2
	switch n.Category {
	case CategoryEvent:
		r := min(b.Width, b.Height) / 2
		stroke := "2"
		if n.Kind == "endEvent" {
			stroke = "4"
		}
		return fmt.Sprintf(`<circle cx="%s" cy="%s" r="%s" fill="#fff" stroke="#000" stroke-width="%s"/>`, num(cx), num(cy), num(r), stroke)
	case CategoryGateway:
		return fmt.Sprintf(`<polygon points="%s,%s %s,%s %s,%s %s,%s" fill="#fff" stroke="#000" stroke-width="2"/>`,
			num(cx), num(b.Y), num(b.X+b.Width), num(cy), num(cx), num(b.Y+b.Height), num(b.X), num(cy))
	default:
		return fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s" rx="10" fill="#fff" stroke="#000" stroke-width="2"/>`,
			num(b.X), num(b.Y), num(b.Width), num(b.Height))
	}
}

func num(f float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", f), "0"), ".")
}

func attr(s string) string {
	return html.EscapeString(s)
}
