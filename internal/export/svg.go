package export

import (
	"fmt"
	"image/color"
	"strings"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
)

// TrajectoryToSVG creates an SVG from trajectory data
func TrajectoryToSVG(points []struct{ X, Y float64 }, width, height int, strokeColor string) string {
	xys := make(plotter.XYs, len(points))
	for i, p := range points {
		xys[i].X, xys[i].Y = p.X, p.Y
	}
	return WalksToSVG([]plotter.XYs{xys}, width, height, []string{strokeColor})
}

// WalksToSVG draws one path per projected walk over a shared bounding box.
// Colors cycle through strokes, or the plotutil palette when strokes is empty.
func WalksToSVG(walks []plotter.XYs, width, height int, strokes []string) string {
	drawn := make([]plotter.XYs, 0, len(walks))
	for _, w := range walks {
		if len(w) >= 2 {
			drawn = append(drawn, w)
		}
	}
	if len(drawn) == 0 {
		return ""
	}

	// Find bounds
	minX, maxX := drawn[0][0].X, drawn[0][0].X
	minY, maxY := drawn[0][0].Y, drawn[0][0].Y
	for _, walk := range drawn {
		for _, p := range walk {
			minX, maxX = min(minX, p.X), max(maxX, p.X)
			minY, maxY = min(minY, p.Y), max(maxY, p.Y)
		}
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for n, walk := range drawn {
		var stroke string
		if len(strokes) > 0 {
			stroke = strokes[n%len(strokes)]
		} else {
			stroke = hexColor(plotutil.Color(n))
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke))

		for i, p := range walk {
			x := (p.X - minX) / rangeX * float64(width)
			y := float64(height) - (p.Y-minY)/rangeY*float64(height)

			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString(`</svg>`)
	return sb.String()
}

func hexColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
