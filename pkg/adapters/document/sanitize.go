package document

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	diagramPolicyOnce sync.Once
	diagramPolicy     *bluemonday.Policy
)

// sanitizeDiagram keeps only the SVG vocabulary the canvas draws with.
// Element names and labels come from compiled markup and are not trusted.
func sanitizeDiagram(svg string) string {
	return strings.TrimSpace(diagramSanitizer().Sanitize(svg))
}

func diagramSanitizer() *bluemonday.Policy {
	diagramPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("svg", "defs", "marker", "g", "path", "circle", "rect", "polygon", "polyline", "text")
		policy.AllowDataAttributes()

		policy.AllowAttrs("xmlns", "width", "height", "viewBox", "class").OnElements("svg")
		policy.AllowAttrs("id", "viewBox", "refX", "refY", "markerWidth", "markerHeight", "orient").OnElements("marker")
		policy.AllowAttrs("class").OnElements("g")
		policy.AllowAttrs("x", "y", "font-size", "text-anchor").OnElements("text")
		for _, el := range []string{"path", "circle", "rect", "polygon", "polyline"} {
			policy.AllowAttrs(
				"d", "cx", "cy", "r", "x", "y", "rx", "width", "height", "points",
				"fill", "stroke", "stroke-width", "marker-end",
			).OnElements(el)
		}

		diagramPolicy = policy
	})
	return diagramPolicy
}
