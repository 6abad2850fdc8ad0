package chart

import (
	"context"
	"fmt"
	"html/template"
	"math"
	"strings"
)

const svgMIME = "image/svg+xml"

// Defaults match the size of the report's chart slots.
const (
	DefaultWidth   = 500
	DefaultHeight  = 250
	DefaultPadding = 40.0
	DefaultTicks   = 4
)

// SVGOpts customises the bar chart renderer.
type SVGOpts struct {
	Width      int
	Height     int
	Padding    float64
	TickCount  int
	BarColor   string
	AxisColor  string
	GridColor  string
	TickPrefix string
}

type SVGRenderer struct {
	opts SVGOpts
}

func NewSVGRenderer(opts SVGOpts) *SVGRenderer {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Padding <= 0 {
		opts.Padding = DefaultPadding
	}
	if opts.TickCount <= 0 {
		opts.TickCount = DefaultTicks
	}
	opts.BarColor = fallback(opts.BarColor, "#3b82f6")
	opts.AxisColor = fallback(opts.AxisColor, "#475569")
	opts.GridColor = fallback(opts.GridColor, "#cbd5e1")
	if opts.TickPrefix == "" {
		opts.TickPrefix = "R$ "
	}
	return &SVGRenderer{opts: opts}
}

// WithColor returns a copy of r drawing bars in color.
func (r *SVGRenderer) WithColor(color string) *SVGRenderer {
	opts := r.opts
	opts.BarColor = fallback(color, opts.BarColor)
	return &SVGRenderer{opts: opts}
}

func (r *SVGRenderer) Available() bool { return true }

func (r *SVGRenderer) BarChart(ctx context.Context, labels []string, values []float64, title string) (Image, error) {
	if err := ctx.Err(); err != nil {
		return Image{}, err
	}
	markup, err := r.bars(labels, values, title)
	if err != nil {
		return Image{}, err
	}
	return Image{MIME: svgMIME, Data: []byte(markup)}, nil
}

func (r *SVGRenderer) bars(labels []string, values []float64, title string) (string, error) {
	if len(values) == 0 {
		return "", fmt.Errorf("svg: at least one value required")
	}
	if len(values) != len(labels) {
		return "", fmt.Errorf("svg: values length must match labels")
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", fmt.Errorf("svg: non-finite value")
		}
	}

	o := r.opts
	width, height, padding := float64(o.Width), float64(o.Height), o.Padding
	top := padding + 8 // room for the title
	chartWidth := width - 2*padding
	chartHeight := height - top - padding
	if chartWidth <= 0 || chartHeight <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}

	maxVal := 0.0
	for _, v := range values {
		maxVal = math.Max(maxVal, v)
	}
	if almostEqual(maxVal, 0) {
		maxVal = 1
	}
	scale := chartHeight / maxVal
	bottom := top + chartHeight

	slot := chartWidth / float64(len(labels))
	barWidth := slot * 0.6
	titleID := makeID(title, "title")

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d" role="img" aria-labelledby="%s">`, o.Width, o.Height, o.Width, o.Height, titleID)
	fmt.Fprintf(&b, `<title id="%s">%s</title>`, titleID, template.HTMLEscapeString(fallback(title, "Bar chart")))
	fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="14" font-weight="600" text-anchor="middle">%s</text>`, width/2, padding/2+6, o.AxisColor, template.HTMLEscapeString(title))

	for i := 0; i <= o.TickCount; i++ {
		ratio := float64(i) / float64(o.TickCount)
		y := bottom - ratio*chartHeight
		fmt.Fprintf(&b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="0.5" stroke-dasharray="2,4"></line>`, padding, y, padding+chartWidth, y, o.GridColor)
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="end">%s</text>`, padding-4, y+3, o.AxisColor, template.HTMLEscapeString(o.TickPrefix+formatTick(maxVal*ratio)))
	}

	fmt.Fprintf(&b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1"></line>`, padding, bottom, padding+chartWidth, bottom, o.AxisColor)

	for i, label := range labels {
		x := padding + float64(i)*slot + (slot-barWidth)/2
		h := math.Max(values[i], 0) * scale
		fmt.Fprintf(&b, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" aria-label="%s"></rect>`, x, bottom-h, barWidth, h, o.BarColor, template.HTMLEscapeString(label))
		center := x + barWidth/2
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="middle">%s</text>`, center, bottom-h-4, o.AxisColor, template.HTMLEscapeString(formatTick(values[i])))
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="middle">%s</text>`, center, bottom+14, o.AxisColor, template.HTMLEscapeString(label))
	}

	b.WriteString("</svg>")
	return b.String(), nil
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func makeID(base, suffix string) string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, strings.ToLower(strings.TrimSpace(base)))
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "chart"
	}
	return cleaned + "-" + suffix
}

// formatTick abbreviates v with two significant digits ("1.2M", "350k").
func formatTick(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000_000:
		return trimZero(fmt.Sprintf("%.1f", v/1_000_000_000)) + "B"
	case abs >= 1_000_000:
		return trimZero(fmt.Sprintf("%.1f", v/1_000_000)) + "M"
	case abs >= 1_000:
		return trimZero(fmt.Sprintf("%.1f", v/1_000)) + "k"
	case almostEqual(v, math.Round(v)):
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

func trimZero(s string) string {
	return strings.TrimSuffix(s, ".0")
}
