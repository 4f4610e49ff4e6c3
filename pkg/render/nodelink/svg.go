package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"
)

// RenderSVG renders DOT produced by [ToDOT] to SVG. Nodes keep their pinned
// positions; neato only routes the edges.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := runGraphviz(ctx, graphviz.NEATO, graphviz.SVG, dot)
	if err != nil {
		return nil, fmt.Errorf("render svg: %w", err)
	}
	return normalizeViewBox(out), nil
}

// runGraphviz lays out src with prog and returns it in format. Each call
// gets its own Graphviz instance, so calls may run concurrently.
func runGraphviz(ctx context.Context, prog graphviz.Layout, format graphviz.Format, src string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(prog)

	g, err := graphviz.ParseBytes([]byte(src))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgOpenRe = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the root element with one whose viewBox starts
// at the origin and whose pixel size matches it, so the drawing scales to
// its container.
func normalizeViewBox(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, errW := strconv.ParseFloat(string(m[3]), 64)
	h, errH := strconv.ParseFloat(string(m[4]), 64)
	if errW != nil || errH != nil || w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgOpenRe.ReplaceAll(svg, []byte(root))
}
