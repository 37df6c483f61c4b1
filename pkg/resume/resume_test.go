package resume

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"tuniscraper/pkg/logger"
	"tuniscraper/pkg/models"
)

type fakeFiles struct {
	dirs  map[string]bool
	files map[string]bool
}

func (f fakeFiles) CategoryExists(category string) bool   { return f.dirs[category] }
func (f fakeFiles) CategoryHasFiles(category string) bool { return f.files[category] }

type fakeRows map[string]int

func (f fakeRows) CategoryRows(category string) int { return f[category] }

func TestState(t *testing.T) {
	files := fakeFiles{
		dirs:  map[string]bool{"Audi": true, "BMW": true, "Seat": true},
		files: map[string]bool{"Audi": true, "BMW": true},
	}
	rows := fakeRows{"Audi": 12, "Kia": 3}
	c := NewController(files, rows, logger.NewNopLogger())

	tests := []struct {
		category string
		want     State
	}{
		{"Audi", Done},
		{"BMW", InProgress},
		{"Seat", InProgress},
		{"Opel", NotStarted},
		{"Kia", Done},
	}
	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			assert.Equal(t, tt.want, c.State(tt.category))
		})
	}
}

func TestStateWarnsAboutMissingImages(t *testing.T) {
	tl := logger.NewTestLogger()
	c := NewController(fakeFiles{}, fakeRows{"Kia": 3}, tl)

	assert.Equal(t, Done, c.State("Kia"))
	warnings := tl.GetMessagesByLevel("WARN")
	assert.Len(t, warnings, 1)
	assert.Equal(t, "Kia", warnings[0].Fields["category"])
}

func TestPlan(t *testing.T) {
	files := fakeFiles{
		dirs:  map[string]bool{"Audi": true, "BMW": true},
		files: map[string]bool{"Audi": true, "BMW": true},
	}
	rows := fakeRows{"Audi": 4}
	tl := logger.NewTestLogger()
	c := NewController(files, rows, tl)

	categories := []models.Category{
		{Name: "Audi", URL: "u/audi"},
		{Name: "BMW", URL: "u/bmw"},
		{Name: "Citroen", URL: "u/citroen"},
	}
	plan := c.Plan(categories)

	assert.Equal(t, []Decision{
		{Category: categories[0], State: Done},
		{Category: categories[1], State: InProgress},
		{Category: categories[2], State: NotStarted},
	}, plan)
	assert.Equal(t, categories[1:], Pending(plan))

	assert.True(t, tl.HasMessage("Resuming interrupted category"))
	summary := tl.GetMessagesByLevel("INFO")
	last := summary[len(summary)-1]
	assert.Equal(t, "Resume plan", last.Message)
	assert.Equal(t, 1, last.Fields["done"])
	assert.Equal(t, 1, last.Fields["in_progress"])
	assert.Equal(t, 1, last.Fields["not_started"])
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "not_started", NotStarted.String())
	assert.Equal(t, "in_progress", InProgress.String())
	assert.Equal(t, "done", Done.String())
	assert.Equal(t, "unknown", State(9).String())
}
