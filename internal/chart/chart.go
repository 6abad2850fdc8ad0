// Package chart renders the report's monthly bar charts as embeddable images.
package chart

import (
	"context"
	"encoding/base64"
	"errors"
	"html/template"
)

var ErrUnavailable = errors.New("chart renderer unavailable")

// Image is an encoded chart ready to embed in HTML.
type Image struct {
	MIME string
	Data []byte
}

// DataURI returns the image as a data: URL. The zero Image yields "".
func (i Image) DataURI() template.URL {
	if len(i.Data) == 0 {
		return ""
	}
	return template.URL("data:" + i.MIME + ";base64," + base64.StdEncoding.EncodeToString(i.Data))
}

// Renderer draws a single-series bar chart.
type Renderer interface {
	BarChart(ctx context.Context, labels []string, values []float64, title string) (Image, error)
	Available() bool
}

// Unavailable is the renderer used when charts are switched off.
type Unavailable struct{}

func (Unavailable) BarChart(ctx context.Context, labels []string, values []float64, title string) (Image, error) {
	return Image{}, ErrUnavailable
}

func (Unavailable) Available() bool { return false }
