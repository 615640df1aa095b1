package analytics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func datasetFS(population, precipitation string) fstest.MapFS {
	return fstest.MapFS{
		"population.csv":    {Data: []byte(population)},
		"precipitation.csv": {Data: []byte(precipitation)},
	}
}

const samplePopulation = `year,sex,population
2018,female,1000
2018,male,980
2019,female,1020
2019,male,1000
2020,female,1040
2020,male,1020
`

const samplePrecipitation = `municipality,month,precipitation_mm
Coban,1,80
Coban,1,120
Coban,2,60
Solola,1,200
Solola,2,180
`

func TestPopulationGrowthAggregatesAndProjects(t *testing.T) {
	svc := NewService(datasetFS(samplePopulation, samplePrecipitation))

	series, err := svc.PopulationGrowth()
	require.NoError(t, err)

	// Observed totals per year, then projections through 2050.
	require.Equal(t, 3+(2050-2020), len(series))
	assert.Equal(t, PopulationPoint{Year: 2018, Population: 1980}, series[0])
	assert.Equal(t, PopulationPoint{Year: 2020, Population: 2060}, series[2])

	// The sample grows by exactly 40/year, so the fit is exact.
	first := series[3]
	assert.Equal(t, 2021, first.Year)
	assert.True(t, first.Projected)
	assert.InDelta(t, 2100, first.Population, 0.01)

	last := series[len(series)-1]
	assert.Equal(t, 2050, last.Year)
	assert.InDelta(t, 2060+40*30, last.Population, 0.01)
}

func TestPopulationGrowthRejectsMalformedRows(t *testing.T) {
	svc := NewService(datasetFS("year,sex,population\nnope,female,10\n", samplePrecipitation))
	_, err := svc.PopulationGrowth()
	assert.Error(t, err)
}

func TestPrecipitationAveragesAllMunicipalities(t *testing.T) {
	svc := NewService(datasetFS(samplePopulation, samplePrecipitation))

	months, err := svc.PrecipitationAverages("")
	require.NoError(t, err)
	require.Len(t, months, 2)
	assert.Equal(t, 1, months[0].Month)
	assert.InDelta(t, (80.0+120+200)/3, months[0].AverageMM, 0.01)
	assert.InDelta(t, (60.0+180)/2, months[1].AverageMM, 0.01)
}

func TestPrecipitationAveragesFiltersMunicipality(t *testing.T) {
	svc := NewService(datasetFS(samplePopulation, samplePrecipitation))

	months, err := svc.PrecipitationAverages("coban")
	require.NoError(t, err)
	require.Len(t, months, 2)
	assert.InDelta(t, 100, months[0].AverageMM, 0.01)
	assert.InDelta(t, 60, months[1].AverageMM, 0.01)
}

func TestDashboardHandler(t *testing.T) {
	svc := NewService(datasetFS(samplePopulation, samplePrecipitation))
	h := NewHandler(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/analytics/dashboard?municipality=Solola", nil)
	rec := httptest.NewRecorder()
	h.Dashboard(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Population    []PopulationPoint    `json:"population"`
		Precipitation []PrecipitationMonth `json:"precipitation"`
		Municipality  string               `json:"municipality"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Solola", body.Municipality)
	assert.NotEmpty(t, body.Population)
	require.Len(t, body.Precipitation, 2)
	assert.InDelta(t, 200, body.Precipitation[0].AverageMM, 0.01)
}

func TestDashboardHandlerMissingDataset(t *testing.T) {
	svc := NewService(fstest.MapFS{})
	h := NewHandler(svc, nil)

	rec := httptest.NewRecorder()
	h.Dashboard(rec, httptest.NewRequest(http.MethodGet, "/admin/analytics/dashboard", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
