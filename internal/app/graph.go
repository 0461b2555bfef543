package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/vk/sosgridgo/internal/ctxlog"
	"github.com/vk/sosgridgo/internal/dag"
	"github.com/vk/sosgridgo/internal/sos"
)

// Graph writes the named sos_model's dependency graph to w in DOT format.
func (a *App) Graph(ctx context.Context, w io.Writer, name string) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	composite, err := a.builder.BuildComposite(ctx, name)
	if err != nil {
		return err
	}
	dot, err := RenderDOT(composite)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, dot)
	return err
}

// RenderDOT renders a composite's models and dependencies as Graphviz DOT.
// Models that form a convergence group are drawn inside one cluster.
func RenderDOT(s *sos.SosModel) (string, error) {
	order, err := s.ExecutionOrder()
	if err != nil {
		return "", err
	}
	graph, err := s.DependencyGraph()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "digraph %q {\n", s.Name())
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, fontname=\"Helvetica\"];\n")
	b.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n\n")

	groups := 0
	for _, comp := range order {
		if len(comp) == 1 && !graph.HasSelfLoop(comp[0]) {
			fmt.Fprintf(&b, "  %q;\n", comp[0])
			continue
		}
		fmt.Fprintf(&b, "  subgraph \"cluster_%d\" {\n", groups)
		b.WriteString("    label=\"convergence group\";\n    style=dashed;\n")
		for _, m := range comp {
			fmt.Fprintf(&b, "    %q;\n", m)
		}
		b.WriteString("  }\n")
		groups++
	}
	b.WriteString("\n")

	labels := make(map[dag.Edge][]string)
	for _, d := range s.Dependencies() {
		label := d.Output
		if d.Input != d.Output {
			label = d.Output + " -> " + d.Input
		}
		key := dag.Edge{From: d.Source, To: d.Sink}
		labels[key] = append(labels[key], label)
	}
	// One arrow per pair of models, listing every port binding.
	for _, e := range graph.Edges() {
		fmt.Fprintf(&b, "  %q -> %q [label=%q];\n", e.From, e.To, strings.Join(labels[e], "\n"))
	}
	b.WriteString("}\n")
	return b.String(), nil
}
