/*
Package bpmn is a small BPMN 2.0 viewer: it imports diagram XML, keeps a canvas
with zoom and scroll state, and draws the result as SVG.

Import distinguishes two kinds of findings. Warnings (unresolved references,
unsupported elements, nodes without a shape) leave the diagram displayable.
Rejections (malformed XML, a root that is not BPMN <definitions>, no process or
no diagram) are returned as *ImportError and clear the canvas.

# Usage

	v, _ := bpmn.NewViewer(bpmn.DefaultViewport)
	res, err := v.ImportXML(ctx, markup)
	if err != nil {
		return err
	}
	_ = v.Canvas().Zoom(bpmn.ZoomFitViewport)
	_ = v.Canvas().Scroll(0, 0)
	svg, _ := v.Canvas().SVG()
*/
package bpmn
