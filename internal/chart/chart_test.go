package chart

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarChartProducesSVG(t *testing.T) {
	r := NewSVGRenderer(SVGOpts{})

	img, err := r.BarChart(context.Background(), []string{"JAN", "FEV", "MAR"}, []float64{1500, 0, 2_500_000}, "Faturamento Mensal YTD")
	require.NoError(t, err)

	out := string(img.Data)
	assert.Equal(t, "image/svg+xml", img.MIME)
	assert.True(t, strings.HasPrefix(out, "<svg"), out)
	assert.True(t, strings.HasSuffix(out, "</svg>"))
	assert.Equal(t, 3, strings.Count(out, "<rect"))
	assert.Contains(t, out, "<title id=\"faturamento-mensal-ytd-title\">Faturamento Mensal YTD</title>")
	assert.Contains(t, out, ">FEV</text>")
	assert.Contains(t, out, ">2.5M</text>")
	assert.Contains(t, out, ">1.5k</text>")
	assert.Contains(t, out, "R$ 0")
}

func TestBarChartColor(t *testing.T) {
	base := NewSVGRenderer(SVGOpts{})
	green := base.WithColor("rgba(22, 163, 74, 0.8)")

	img, err := green.BarChart(context.Background(), []string{"JAN"}, []float64{10}, "Vendas Mensais YTD")
	require.NoError(t, err)
	assert.Contains(t, string(img.Data), `fill="rgba(22, 163, 74, 0.8)"`)

	img, err = base.BarChart(context.Background(), []string{"JAN"}, []float64{10}, "x")
	require.NoError(t, err)
	assert.Contains(t, string(img.Data), `fill="#3b82f6"`)
}

func TestBarChartRejectsBadInput(t *testing.T) {
	r := NewSVGRenderer(SVGOpts{})
	ctx := context.Background()

	_, err := r.BarChart(ctx, nil, nil, "t")
	assert.Error(t, err)
	_, err = r.BarChart(ctx, []string{"JAN", "FEV"}, []float64{1}, "t")
	assert.Error(t, err)

	_, err = NewSVGRenderer(SVGOpts{Width: 40, Height: 40}).BarChart(ctx, []string{"JAN"}, []float64{1}, "t")
	assert.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = r.BarChart(cancelled, []string{"JAN"}, []float64{1}, "t")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDataURI(t *testing.T) {
	assert.Equal(t, "data:image/svg+xml;base64,PHN2Zy8+", string(Image{MIME: svgMIME, Data: []byte("<svg/>")}.DataURI()))
	assert.Empty(t, Image{}.DataURI())
}

func TestUnavailable(t *testing.T) {
	var r Renderer = Unavailable{}

	assert.False(t, r.Available())
	_, err := r.BarChart(context.Background(), []string{"JAN"}, []float64{1}, "t")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFormatTick(t *testing.T) {
	assert.Equal(t, "12", formatTick(12))
	assert.Equal(t, "12.50", formatTick(12.5))
	assert.Equal(t, "350k", formatTick(350_000))
	assert.Equal(t, "1.2M", formatTick(1_234_567))
	assert.Equal(t, "3B", formatTick(3_000_000_000))
}
