package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cattus-org/cattus-api/models"
	"github.com/cattus-org/cattus-api/pkg/metrics"
)

func sampleInput() Input {
	now := time.Date(2025, 4, 29, 12, 0, 0, 0, time.UTC)
	birth := now.AddDate(-3, 0, 0)
	weight := 4.2
	ended := now.Add(-30 * time.Minute)
	zeroStart := now.Add(-5 * time.Minute)
	return Input{
		Cat: &models.Cat{
			ID: 1, Name: "Mia", Sex: "female", BirthDate: &birth,
			Weight: &weight, Status: models.CatStatusOK,
			Observations: "Recovering well.",
		},
		WindowDays: 7,
		Results: map[models.ActivityTitle]metrics.Result{
			models.ActivityEat: {Count: 14, TotalDuration: 7 * time.Hour, AvgPerDay: 2},
		},
		Activities: []models.Activity{
			{ID: 2, Title: models.ActivityEat, StartedAt: now.Add(-time.Hour), EndedAt: &ended},
			{ID: 3, Title: models.ActivitySleep, StartedAt: now.Add(-10 * time.Minute)},
			{ID: 4, Title: models.ActivityDrink, StartedAt: zeroStart, EndedAt: &zeroStart},
		},
		Now: now,
	}
}

func TestBuildProducesPDF(t *testing.T) {
	data, err := Build(sampleInput())
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestBuildSelectedSectionsOnly(t *testing.T) {
	in := sampleInput()
	in.Sections = []string{SectionProfile}
	data, err := Build(in)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestBuildRequiresCat(t *testing.T) {
	in := sampleInput()
	in.Cat = nil
	_, err := Build(in)
	assert.Error(t, err)
}

func TestDurationLabel(t *testing.T) {
	start := time.Date(2025, 4, 29, 12, 0, 0, 0, time.UTC)

	open := models.Activity{Title: models.ActivitySleep, StartedAt: start}
	assert.Equal(t, "in progress", durationLabel(&open))

	// endedAt equal to startedAt means the event is still open.
	zero := models.Activity{Title: models.ActivitySleep, StartedAt: start, EndedAt: &start}
	assert.Equal(t, "in progress", durationLabel(&zero))

	ended := start.Add(90 * time.Minute)
	closed := models.Activity{Title: models.ActivitySleep, StartedAt: start, EndedAt: &ended}
	assert.Equal(t, "01:30:00", durationLabel(&closed))
}

func TestValidSection(t *testing.T) {
	assert.True(t, ValidSection(SectionProfile))
	assert.True(t, ValidSection(SectionStatus))
	assert.True(t, ValidSection(SectionActivities))
	assert.False(t, ValidSection("finances"))
}
