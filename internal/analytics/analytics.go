// Package analytics computes demographic and climate summaries from
// CSV datasets shipped with the deployment.
package analytics

import (
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"
)

// projectionHorizon is the last year the population projection
// extends to.
const projectionHorizon = 2050

// PopulationPoint is the total population observed or projected for a
// year.
type PopulationPoint struct {
	Year       int     `json:"year"`
	Population float64 `json:"population"`
	Projected  bool    `json:"projected"`
}

// PrecipitationMonth is the average rainfall for a calendar month.
type PrecipitationMonth struct {
	Month     int     `json:"month"`
	AverageMM float64 `json:"average_mm"`
}

// Service reads datasets from a filesystem root. Files are parsed on
// demand; datasets are small enough that caching buys nothing.
type Service struct {
	data fs.FS
}

// NewService creates an analytics service over a dataset filesystem.
func NewService(data fs.FS) *Service {
	if data == nil {
		panic("analytics: dataset filesystem required")
	}
	return &Service{data: data}
}

// PopulationGrowth aggregates the population CSV by year across sexes
// and appends a least-squares linear projection through 2050.
//
// The CSV is expected to have a header and columns year, sex,
// population.
func (s *Service) PopulationGrowth() ([]PopulationPoint, error) {
	rows, err := s.readCSV("population.csv")
	if err != nil {
		return nil, err
	}

	totals := make(map[int]float64)
	for i, row := range rows {
		if len(row) < 3 {
			return nil, fmt.Errorf("analytics: population row %d: expected 3 columns, got %d", i+2, len(row))
		}
		year, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("analytics: population row %d: bad year %q", i+2, row[0])
		}
		count, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("analytics: population row %d: bad count %q", i+2, row[2])
		}
		totals[year] += count
	}
	if len(totals) == 0 {
		return nil, fmt.Errorf("analytics: population dataset is empty")
	}

	years := make([]int, 0, len(totals))
	for year := range totals {
		years = append(years, year)
	}
	sort.Ints(years)

	series := make([]PopulationPoint, 0, len(years))
	for _, year := range years {
		series = append(series, PopulationPoint{Year: year, Population: totals[year]})
	}

	slope, intercept := linearFit(series)
	for year := years[len(years)-1] + 1; year <= projectionHorizon; year++ {
		projected := slope*float64(year) + intercept
		if projected < 0 {
			projected = 0
		}
		series = append(series, PopulationPoint{Year: year, Population: projected, Projected: true})
	}
	return series, nil
}

// linearFit computes an ordinary least-squares line over the observed
// points. A single observation yields a flat projection.
func linearFit(points []PopulationPoint) (slope, intercept float64) {
	n := float64(len(points))
	if n == 1 {
		return 0, points[0].Population
	}
	var sumX, sumY, sumXY, sumXX float64
	for _, p := range points {
		x := float64(p.Year)
		sumX += x
		sumY += p.Population
		sumXY += x * p.Population
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// PrecipitationAverages computes the mean rainfall per calendar month,
// optionally restricted to one municipality.
//
// The CSV is expected to have a header and columns municipality,
// month, precipitation_mm.
func (s *Service) PrecipitationAverages(municipality string) ([]PrecipitationMonth, error) {
	rows, err := s.readCSV("precipitation.csv")
	if err != nil {
		return nil, err
	}

	sums := make(map[int]float64)
	counts := make(map[int]int)
	municipality = strings.TrimSpace(municipality)
	for i, row := range rows {
		if len(row) < 3 {
			return nil, fmt.Errorf("analytics: precipitation row %d: expected 3 columns, got %d", i+2, len(row))
		}
		if municipality != "" && !strings.EqualFold(strings.TrimSpace(row[0]), municipality) {
			continue
		}
		month, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil || month < 1 || month > 12 {
			return nil, fmt.Errorf("analytics: precipitation row %d: bad month %q", i+2, row[1])
		}
		mm, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("analytics: precipitation row %d: bad value %q", i+2, row[2])
		}
		sums[month] += mm
		counts[month]++
	}

	out := make([]PrecipitationMonth, 0, len(sums))
	for month := 1; month <= 12; month++ {
		if counts[month] == 0 {
			continue
		}
		out = append(out, PrecipitationMonth{
			Month:     month,
			AverageMM: sums[month] / float64(counts[month]),
		})
	}
	return out, nil
}

// FileDataset adapts configured CSV paths to the filesystem layout the
// service expects.
func FileDataset(populationPath, precipitationPath string) fs.FS {
	return pathFS{
		"population.csv":    populationPath,
		"precipitation.csv": precipitationPath,
	}
}

type pathFS map[string]string

func (p pathFS) Open(name string) (fs.File, error) {
	path, ok := p[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return os.Open(path)
}

// readCSV opens a dataset, skips its header row, and returns the data
// rows.
func (s *Service) readCSV(name string) ([][]string, error) {
	f, err := s.data.Open(name)
	if err != nil {
		return nil, fmt.Errorf("analytics: open %s: %w", name, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("analytics: %s is empty", name)
		}
		return nil, fmt.Errorf("analytics: read %s header: %w", name, err)
	}
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("analytics: read %s: %w", name, err)
	}
	return rows, nil
}
