package resume

import (
	"tuniscraper/pkg/logger"
	"tuniscraper/pkg/models"
)

// State is how far a category got in earlier runs
type State int

const (
	// NotStarted categories have neither files nor saved rows
	NotStarted State = iota
	// InProgress categories have a folder but no saved rows: a run stopped
	// inside them
	InProgress
	// Done categories have saved rows
	Done
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case InProgress:
		return "in_progress"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// FileState reports what exists on disk for a category
type FileState interface {
	CategoryExists(category string) bool
	CategoryHasFiles(category string) bool
}

// RowState reports saved workbook rows per category
type RowState interface {
	CategoryRows(category string) int
}

// Decision is the state of one category at startup
type Decision struct {
	Category models.Category
	State    State
}

// Controller infers category states from the output directory and the
// workbook. There is no checkpoint file; the workbook is only saved after a
// category completes, so saved rows mark completion.
type Controller struct {
	files  FileState
	rows   RowState
	logger logger.Logger
}

// NewController creates a resume controller
func NewController(files FileState, rows RowState, log logger.Logger) *Controller {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Controller{files: files, rows: rows, logger: log}
}

// State returns the state of one category
func (c *Controller) State(category string) State {
	if c.rows.CategoryRows(category) > 0 {
		if !c.files.CategoryHasFiles(category) {
			c.logger.WarnWithFields("Category has rows but no images on disk", map[string]interface{}{
				"category": category,
			})
		}
		return Done
	}
	if c.files.CategoryExists(category) {
		return InProgress
	}
	return NotStarted
}

// Plan returns the state of every category, in order, and logs a summary
func (c *Controller) Plan(categories []models.Category) []Decision {
	decisions := make([]Decision, 0, len(categories))
	counts := make(map[State]int)

	for _, category := range categories {
		state := c.State(category.Name)
		counts[state]++
		decisions = append(decisions, Decision{Category: category, State: state})

		if state == InProgress {
			c.logger.InfoWithFields("Resuming interrupted category", map[string]interface{}{
				"category": category.Name,
			})
		}
	}

	c.logger.InfoWithFields("Resume plan", map[string]interface{}{
		"total":       len(categories),
		"done":        counts[Done],
		"in_progress": counts[InProgress],
		"not_started": counts[NotStarted],
	})

	return decisions
}

// Pending filters a plan down to the categories that still need work
func Pending(decisions []Decision) []models.Category {
	var pending []models.Category
	for _, d := range decisions {
		if d.State != Done {
			pending = append(pending, d.Category)
		}
	}
	return pending
}
