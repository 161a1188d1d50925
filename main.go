package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"proofcanvas/collab"
	"proofcanvas/config"
	"proofcanvas/editor"
	"proofcanvas/export"
	"proofcanvas/graph"
	"proofcanvas/store"
	"proofcanvas/terminal"
	"proofcanvas/viewport"
)

func main() {
	var (
		configPath = flag.String("config", config.DefaultPath(), "Config file (YAML)")
		logPath    = flag.String("log", "", "Write structured logs to this file (default: discard)")

		// Export flags
		format     = flag.String("format", "", "Export format: json, dot, png (skips the TUI)")
		outputFile = flag.String("o", "", "Output file (default: stdout; required for png)")

		// Collaboration flags
		serveHub = flag.String("serve-hub", "", "Run a cursor broadcast hub on this address instead of the editor")
		hubURL   = flag.String("hub", "", "Cursor hub websocket URL (overrides config)")

		autoLayout = flag.Bool("layout", false, "Run the layered auto-layout before opening or exporting")
		watch      = flag.Bool("watch", false, "Reload when the graph file changes on disk")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] [graph.json]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "An interactive canvas editor for proof dependency graphs.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s proof.json                   # Edit a graph in the TUI\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -format dot proof.json       # Export Graphviz to stdout\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -format png -o proof.png proof.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -serve-hub :8787             # Run a shared cursor hub\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -hub ws://host:8787/cursors proof.json\n", os.Args[0])
	}
	flag.Parse()

	if err := run(*configPath, *logPath, *format, *outputFile, *serveHub, *hubURL, *autoLayout, *watch, flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, logPath, format, outputFile, serveHub, hubURL string, autoLayout, watch bool, graphPath string) error {
	log, closeLog, err := newLogger(logPath)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := context.Background()

	if serveHub != "" {
		log = slog.New(slog.NewTextHandler(os.Stderr, nil))
		return collab.ListenAndServe(ctx, serveHub, log)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if hubURL != "" {
		cfg.CursorHub = hubURL
	}

	if graphPath == "" {
		graphPath = "proof.json"
	}
	st, err := store.OpenFileStore(graphPath, log)
	if err != nil {
		return err
	}
	defer st.Close()

	g := st.Snapshot()

	if autoLayout {
		if err := applyLayout(ctx, cfg, st, g); err != nil {
			return err
		}
	}

	if format != "" {
		return exportGraph(g, format, outputFile)
	}

	view := viewport.New(120, 40)
	ed := editor.New(g, view, st, nil, log)
	ed.History().SetMax(cfg.HistoryDepth)
	if bounds, ok := g.Extents(); ok {
		view.FitBounds(bounds)
	}

	if watch {
		st.OnReload = func(fresh *graph.Graph) {
			*g = *fresh
			ed.Sess.ClearSelection()
		}
		if err := st.Watch(); err != nil {
			return err
		}
	}

	ui, err := terminal.New(ed, cfg, log)
	if err != nil {
		return err
	}
	return ui.Run(ctx)
}

func applyLayout(ctx context.Context, cfg *config.Config, st graph.Store, g *graph.Graph) error {
	engine := cfg.NewLayout()
	positions, err := engine.Layout(g.Nodes, g.Edges)
	if err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	if len(positions) == 0 {
		return nil
	}
	if err := st.BulkMoveNodes(ctx, positions); err != nil {
		return fmt.Errorf("layout commit: %w", err)
	}
	for i := range g.Nodes {
		if pos, ok := positions[g.Nodes[i].ID]; ok {
			g.Nodes[i].X, g.Nodes[i].Y = pos.X, pos.Y
		}
	}
	return nil
}

func exportGraph(g *graph.Graph, format, outputFile string) error {
	if format == "png" {
		if outputFile == "" {
			return fmt.Errorf("png export requires -o")
		}
		return export.RenderPNG(g, outputFile)
	}

	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	exporter, err := export.NewExporter(f)
	if err != nil {
		return err
	}
	out, err := exporter.Export(g)
	if err != nil {
		return fmt.Errorf("export %s: %w", exporter.FormatName(), err)
	}
	if outputFile == "" {
		fmt.Println(out)
		return nil
	}
	return os.WriteFile(outputFile, []byte(out), 0644)
}

// newLogger writes structured logs to a file, since stderr belongs to the
// TUI. With no file, logs are discarded.
func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(slog.NewTextHandler(f, nil)), func() { f.Close() }, nil
}
