package flamegraph

import (
	"fmt"
	"html"
	"io"
	"os"
	"sort"

	"github.com/foldprof/foldprof/pkg/trace"
)

// node is a call-tree vertex keyed by frame name, weighted by sample count.
type node struct {
	name     string
	value    int64
	children map[string]*node
}

func newNode(name string) *node {
	return &node{name: name, children: make(map[string]*node)}
}

func buildTree(samples []trace.Sample) (*node, int64) {
	root := newNode("root")
	var total int64
	for i := range samples {
		s := &samples[i]
		total += s.Count
		root.value += s.Count
		n := root
		for _, frame := range s.Frames {
			child, ok := n.children[frame]
			if !ok {
				child = newNode(frame)
				n.children[frame] = child
			}
			child.value += s.Count
			n = child
		}
	}
	return root, total
}

func maxDepth(n *node, depth int) int {
	deepest := depth
	for _, c := range n.children {
		if d := maxDepth(c, depth+1); d > deepest {
			deepest = d
		}
	}
	return deepest
}

// renderBuiltin is the fallback renderer used when flamegraph.pl is not
// available. It honors title, subtitle and width; the script-only options
// (palette names, reverse/icicle) are ignored.
func renderBuiltin(input, output string, cfg Config) error {
	samples, err := trace.ReadFile(input)
	if err != nil {
		return err
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("cannot write flame graph: %w", err)
	}
	defer f.Close()
	return RenderSVG(f, samples, cfg)
}

// RenderSVG writes a flame graph for the parsed samples.
func RenderSVG(w io.Writer, samples []trace.Sample, cfg Config) error {
	root, total := buildTree(samples)
	if total <= 0 {
		return trace.ErrEmptyTrace
	}

	if cfg.Width == 0 {
		cfg.Width = 1200
	}
	frameHeight := cfg.Height
	if frameHeight == 0 {
		frameHeight = 16
	}

	headerHeight := 40
	chartHeight := (maxDepth(root, 0) + 2) * frameHeight
	totalHeight := chartHeight + headerHeight + 20

	title := cfg.Title
	if cfg.Subtitle != "" {
		title = title + " - " + cfg.Subtitle
	}

	fmt.Fprintf(w, `<?xml version="1.0" standalone="no"?>
<svg version="1.1" width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">
<style>
  .func:hover { stroke:black; stroke-width:0.5; cursor:pointer; }
  text { font-family: monospace; font-size: 12px; }
</style>
<rect x="0" y="0" width="%d" height="%d" fill="white"/>
<text x="%d" y="20" text-anchor="middle" style="font-size:16px; font-weight:bold;">%s</text>
<text x="%d" y="35" text-anchor="middle" style="font-size:12px; fill:#666;">(%d samples)</text>
`,
		cfg.Width, totalHeight,
		cfg.Width, totalHeight,
		cfg.Width/2, html.EscapeString(title),
		cfg.Width/2, total)

	margin := 10
	renderNode(w, root, margin, totalHeight-20, cfg.Width-2*margin, frameHeight, total, 0)

	fmt.Fprintln(w, "</svg>")
	return nil
}

func renderNode(w io.Writer, n *node, x, baseY, width, frameHeight int, total int64, depth int) {
	if width < 1 || n.value == 0 {
		return
	}

	y := baseY - depth*frameHeight
	r, g, b := frameColor(depth)

	fmt.Fprintf(w, `<g class="func">
<rect x="%d" y="%d" width="%d" height="%d" fill="rgb(%d,%d,%d)" rx="1"/>
`, x, y-frameHeight, width, frameHeight-1, r, g, b)

	if width > 40 {
		label := n.name
		maxChars := (width - 4) / 7
		if len(label) > maxChars {
			if maxChars > 3 {
				label = label[:maxChars-2] + ".."
			} else {
				label = ""
			}
		}
		if label != "" {
			fmt.Fprintf(w, `<text x="%d" y="%d" fill="black">%s</text>
`, x+2, y-4, html.EscapeString(label))
		}
	}

	pct := float64(n.value) / float64(total) * 100
	fmt.Fprintf(w, `<title>%s (%d samples, %.1f%%)</title>
</g>
`, html.EscapeString(n.name), n.value, pct)

	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)

	childX := x
	for _, name := range names {
		child := n.children[name]
		childWidth := int(float64(width) * float64(child.value) / float64(n.value))
		if childWidth < 1 {
			childWidth = 1
		}
		renderNode(w, child, childX, baseY, childWidth, frameHeight, total, depth+1)
		childX += childWidth
	}
}

// frameColor cycles warm flame colors by depth.
func frameColor(depth int) (int, int, int) {
	palette := [][3]int{
		{235, 98, 54},
		{240, 129, 52},
		{245, 156, 50},
		{250, 183, 48},
	}
	c := palette[depth%len(palette)]
	return c[0], c[1], c[2]
}
