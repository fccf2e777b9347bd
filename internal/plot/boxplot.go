package plot

import (
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/serranolab/clinstat/internal/model"
)

// Canvas dimensions. Wide enough for a dozen evaluation rounds without
// crowding the paired boxes.
const (
	plotWidth  = 10 * vg.Inch
	plotHeight = 6 * vg.Inch

	// boxOffset shifts each cohort's box off the round tick so the pair
	// sits side by side.
	boxOffset = 0.18

	boxWidth = 0.25 * vg.Inch
)

// Cohort plot colors: blue for the first group, orange for the second.
var (
	colorA = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	colorB = color.RGBA{R: 255, G: 127, B: 14, A: 255}
)

// Renderer draws comparison box plots for the two-cohort analysis.
type Renderer struct {
	// OutDir is the directory receiving one image per variable.
	OutDir string

	// DPI is the raster resolution. Ignored by vector formats.
	DPI int

	// Format is the image format: png, jpg, jpeg, tif, tiff (raster) or
	// pdf, svg, eps (vector).
	Format string

	// GroupNames label the two cohorts in the legend.
	GroupNames [2]string

	logger *slog.Logger
}

// NewRenderer creates a plot renderer. A nil logger disables logging.
func NewRenderer(outDir string, dpi int, format string, groupNames [2]string, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Renderer{
		OutDir:     outDir,
		DPI:        dpi,
		Format:     format,
		GroupNames: groupNames,
		logger:     logger,
	}
}

// Render draws one comparison plot per variable of the run. A variable that
// fails to render is logged and skipped; rendering failures never abort.
// It returns the paths of the images actually written.
func (r *Renderer) Render(run *model.AnalysisRun) ([]string, error) {
	if len(run.Datasets) != 2 {
		return nil, fmt.Errorf("plot: comparison plots need exactly two datasets, got %d", len(run.Datasets))
	}
	if err := os.MkdirAll(r.OutDir, 0750); err != nil {
		return nil, fmt.Errorf("plot: create output directory: %w", err)
	}

	var written []string
	for _, variable := range run.Variables {
		path, err := r.renderVariable(run, variable)
		if err != nil {
			r.logger.Warn("plot skipped",
				slog.String("variable", variable),
				slog.String("error", err.Error()))
			continue
		}
		written = append(written, path)
		r.logger.Info("plot written",
			slog.String("variable", variable),
			slog.String("path", path))
	}
	return written, nil
}

// renderVariable draws one variable's paired box plots across all rounds.
func (r *Renderer) renderVariable(run *model.AnalysisRun, variable string) (string, error) {
	rounds := run.Rounds()
	if len(rounds) == 0 {
		return "", fmt.Errorf("no evaluation rounds")
	}

	p := plot.New()
	p.Title.Text = variable
	p.X.Label.Text = run.Datasets[0].RoundColumn
	p.Y.Label.Text = variable
	p.Add(plotter.NewGrid())

	cohorts := []struct {
		ds     *model.Dataset
		name   string
		offset float64
		color  color.Color
	}{
		{run.Datasets[0], r.GroupNames[0], -boxOffset, colorA},
		{run.Datasets[1], r.GroupNames[1], +boxOffset, colorB},
	}

	var drewAny bool
	for _, c := range cohorts {
		medians := make(plotter.XYs, 0, len(rounds))
		for i, round := range rounds {
			values := c.ds.RoundValues(variable, round)
			if len(values) == 0 {
				continue
			}
			box, err := plotter.NewBoxPlot(boxWidth, float64(i)+c.offset, plotter.Values(values))
			if err != nil {
				return "", fmt.Errorf("box for round %s: %w", round, err)
			}
			box.FillColor = c.color
			p.Add(box)
			drewAny = true

			_, median, _ := quartileMedian(values)
			medians = append(medians, plotter.XY{X: float64(i) + c.offset, Y: median})
		}
		if len(medians) == 0 {
			continue
		}

		// Median trend connecting the boxes.
		line, points, err := plotter.NewLinePoints(medians)
		if err != nil {
			return "", fmt.Errorf("median trend: %w", err)
		}
		line.Color = c.color
		points.Color = c.color
		p.Add(line, points)
		p.Legend.Add(c.name, line, points)

		// Linear trend across rounds, dashed to stay distinguishable.
		if trend := linearTrend(medians, c.color); trend != nil {
			p.Add(trend)
		}
	}
	if !drewAny {
		return "", fmt.Errorf("no plottable measurements")
	}

	p.NominalX(rounds...)
	p.Legend.Top = true

	path := filepath.Join(r.OutDir, sanitizeFilename(variable)+"."+r.Format)
	if err := r.save(p, path); err != nil {
		return "", err
	}
	return path, nil
}

// quartileMedian returns the quartiles of one cell's values, matching the
// quartiles the box plot itself displays.
func quartileMedian(values []float64) (q1, median, q3 float64) {
	vs := plotter.Values(values)
	b, err := plotter.NewBoxPlot(boxWidth, 0, vs)
	if err != nil {
		return 0, 0, 0
	}
	return b.Quartile1, b.Median, b.Quartile3
}

// linearTrend fits a least-squares line through the median points and returns
// it as a dashed plot line, or nil when a fit is not possible.
func linearTrend(medians plotter.XYs, c color.Color) *plotter.Line {
	if len(medians) < 2 {
		return nil
	}
	xs := make([]float64, len(medians))
	ys := make([]float64, len(medians))
	for i, m := range medians {
		xs[i] = m.X
		ys[i] = m.Y
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)

	pts := plotter.XYs{
		{X: xs[0], Y: alpha + beta*xs[0]},
		{X: xs[len(xs)-1], Y: alpha + beta*xs[len(xs)-1]},
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil
	}
	line.Color = c
	line.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	return line
}

// save writes the plot to disk. Raster formats go through vgimg so the
// configured DPI is honored; vector formats use the canvas the extension
// selects.
func (r *Renderer) save(p *plot.Plot, path string) error {
	switch strings.ToLower(r.Format) {
	case "png", "jpg", "jpeg", "tif", "tiff":
		return r.saveRaster(p, path)
	default:
		return p.Save(plotWidth, plotHeight, path)
	}
}

// saveRaster renders through a vgimg canvas at the configured DPI.
func (r *Renderer) saveRaster(p *plot.Plot, path string) error {
	img := vgimg.NewWith(
		vgimg.UseWH(plotWidth, plotHeight),
		vgimg.UseDPI(r.DPI),
	)
	p.Draw(draw.New(img))

	f, err := os.Create(path) //nolint:gosec // Path is built from the sanitized variable name
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck // Best-effort close after the write error below

	var writeErr error
	switch strings.ToLower(r.Format) {
	case "jpg", "jpeg":
		_, writeErr = vgimg.JpegCanvas{Canvas: img}.WriteTo(f)
	case "tif", "tiff":
		_, writeErr = vgimg.TiffCanvas{Canvas: img}.WriteTo(f)
	default:
		_, writeErr = vgimg.PngCanvas{Canvas: img}.WriteTo(f)
	}
	if writeErr != nil {
		return writeErr
	}
	return f.Close()
}

// sanitizeFilename maps a variable name to a safe file stem.
func sanitizeFilename(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if mapped == "" {
		return "variable"
	}
	return mapped
}
