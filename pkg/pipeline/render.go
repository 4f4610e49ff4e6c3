package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	graphio "github.com/matzehuels/claimgraph/pkg/io"
	"github.com/matzehuels/claimgraph/pkg/render/nodelink"
)

// render produces one artifact from a finished run.
func (r *Runner) render(ctx context.Context, format string, res *Result, opts Options) ([]byte, error) {
	switch format {
	case FormatDOT:
		return []byte(r.dot(res, opts)), nil
	case FormatSVG:
		if r.SVG == nil {
			return nil, fmt.Errorf("no SVG renderer configured")
		}
		return r.SVG(ctx, r.dot(res, opts))
	case FormatJSON:
		return json.MarshalIndent(res.Scene, "", "  ")
	case FormatGraph:
		var buf bytes.Buffer
		if err := graphio.WriteJSON(res.Graph, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, ValidateFormat(format)
}

func (r *Runner) dot(res *Result, opts Options) string {
	return nodelink.ToDOT(res.Scene.Diagram(), nodelink.Options{EdgeLabels: opts.EdgeLabels})
}
