package workbook

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	errs "tuniscraper/pkg/errors"
	"tuniscraper/pkg/logger"
	"tuniscraper/pkg/models"
)

// SheetName is the worksheet holding the catalog rows
const SheetName = "Catalog"

// Fixed leading columns; attribute columns follow them in order of appearance
const (
	colCategory = iota + 1
	colItem
	colURL
	colImage
	colImageFile
	fixedColumns = colImageFile
)

var fixedHeaders = []string{"Category", "Item", "URL", "Image", "Image file"}

const (
	// Excel caps row height at 409 points
	maxRowHeight = 409.0
	// pixels to points
	pixelPoints = 0.75
	// approximate pixels per character of column width
	charPixels = 7.0
)

// Options control how rows are rendered
type Options struct {
	// EmbedImages inserts each image into the Image column
	EmbedImages bool
	// ImageMaxHeight scales embedded images down to this many pixels; 0 keeps the original size
	ImageMaxHeight int
	Logger         logger.Logger
}

// Workbook is the single output spreadsheet of a run
type Workbook struct {
	path    string
	file    *excelize.File
	opts    Options
	logger  logger.Logger
	headers []string
	columns map[string]int
	nextRow int

	boldStyle     int
	linkStyle     int
	maxImageWidth float64

	saved   map[string]int
	pending map[string]int
}

// Open loads the workbook at path or starts a new one when none exists yet
func Open(path string, opts Options) (*Workbook, error) {
	if opts.Logger == nil {
		opts.Logger = logger.GetLogger()
	}

	w := &Workbook{
		path:    path,
		opts:    opts,
		logger:  opts.Logger,
		columns: make(map[string]int),
		saved:   make(map[string]int),
		pending: make(map[string]int),
	}

	if _, err := os.Stat(path); err == nil {
		if err := w.load(); err != nil {
			return nil, err
		}
	} else if os.IsNotExist(err) {
		if err := w.create(); err != nil {
			return nil, err
		}
	} else {
		return nil, errs.FileIO(path, err)
	}

	linkStyle, err := w.file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "1265BE", Underline: "single"},
	})
	if err != nil {
		w.file.Close()
		return nil, fmt.Errorf("failed to create hyperlink style: %w", err)
	}
	w.linkStyle = linkStyle

	return w, nil
}

func (w *Workbook) create() error {
	w.file = excelize.NewFile()
	if err := w.file.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name worksheet: %w", err)
	}

	for _, header := range fixedHeaders {
		if err := w.addHeader(header); err != nil {
			return err
		}
	}
	w.nextRow = 2

	if err := w.file.SetColWidth(SheetName, "A", "C", 24); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	if err := w.file.SetColWidth(SheetName, "E", "E", 32); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	return nil
}

func (w *Workbook) load() error {
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return errs.FileIO(w.path, fmt.Errorf("failed to open workbook: %w", err))
	}
	w.file = f

	if idx, err := f.GetSheetIndex(SheetName); err != nil || idx == -1 {
		f.Close()
		return fmt.Errorf("workbook %s has no %q sheet", w.path, SheetName)
	}

	rows, err := f.GetRows(SheetName)
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to read workbook rows: %w", err)
	}
	if len(rows) == 0 || len(rows[0]) < fixedColumns {
		f.Close()
		return fmt.Errorf("workbook %s has no header row", w.path)
	}
	for i, header := range fixedHeaders {
		if rows[0][i] != header {
			f.Close()
			return fmt.Errorf("workbook %s: column %d is %q, expected %q", w.path, i+1, rows[0][i], header)
		}
	}

	for i, header := range rows[0] {
		w.headers = append(w.headers, header)
		w.columns[header] = i + 1
	}
	for _, row := range rows[1:] {
		if len(row) >= colCategory && row[colCategory-1] != "" {
			w.saved[row[colCategory-1]]++
		}
	}
	w.nextRow = len(rows) + 1

	w.logger.InfoWithFields("Workbook loaded", map[string]interface{}{
		"path": w.path,
		"rows": len(rows) - 1,
	})
	return nil
}

// addHeader appends a bold header cell unless the column exists already
func (w *Workbook) addHeader(name string) error {
	if _, ok := w.columns[name]; ok {
		return nil
	}

	if w.boldStyle == 0 {
		bold, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return fmt.Errorf("failed to create header style: %w", err)
		}
		w.boldStyle = bold
	}

	col := len(w.headers) + 1
	cell, err := excelize.CoordinatesToCellName(col, 1)
	if err != nil {
		return err
	}
	if err := w.file.SetCellValue(SheetName, cell, name); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := w.file.SetCellStyle(SheetName, cell, cell, w.boldStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	w.headers = append(w.headers, name)
	w.columns[name] = col
	return nil
}

// attributeHeader keeps attributes out of the fixed columns
func attributeHeader(name string) string {
	for _, fixed := range fixedHeaders {
		if strings.EqualFold(name, fixed) {
			return name + " (attribute)"
		}
	}
	return name
}

func (w *Workbook) setCell(col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return w.file.SetCellValue(SheetName, cell, value)
}

// Append writes one row. The item name links to the item page and the image
// is embedded when enabled; a picture that cannot be embedded is logged and
// the row is still written.
func (w *Workbook) Append(row models.OutputRow) error {
	r := w.nextRow

	if err := w.setCell(colCategory, r, row.Category); err != nil {
		return fmt.Errorf("failed to write row %d: %w", r, err)
	}
	if err := w.setCell(colItem, r, row.ItemName); err != nil {
		return fmt.Errorf("failed to write row %d: %w", r, err)
	}
	if row.ItemURL != "" {
		itemCell, _ := excelize.CoordinatesToCellName(colItem, r)
		if err := w.file.SetCellHyperLink(SheetName, itemCell, row.ItemURL, "External"); err != nil {
			return fmt.Errorf("failed to link row %d: %w", r, err)
		}
		if err := w.file.SetCellStyle(SheetName, itemCell, itemCell, w.linkStyle); err != nil {
			return fmt.Errorf("failed to style row %d: %w", r, err)
		}
	}
	if err := w.setCell(colURL, r, row.ItemURL); err != nil {
		return fmt.Errorf("failed to write row %d: %w", r, err)
	}
	if err := w.setCell(colImageFile, r, filepath.ToSlash(row.Image.RelPath)); err != nil {
		return fmt.Errorf("failed to write row %d: %w", r, err)
	}

	for _, attr := range row.Attributes {
		header := attributeHeader(attr.Name)
		if err := w.addHeader(header); err != nil {
			return err
		}
		if err := w.setCell(w.columns[header], r, attr.Value); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r, err)
		}
	}

	if w.opts.EmbedImages && row.Image.Path != "" {
		w.embed(r, row)
	}

	w.nextRow++
	w.pending[row.Category]++
	return nil
}

func (w *Workbook) embed(r int, row models.OutputRow) {
	scale := 1.0
	if w.opts.ImageMaxHeight > 0 && row.Image.Height > w.opts.ImageMaxHeight {
		scale = float64(w.opts.ImageMaxHeight) / float64(row.Image.Height)
	}

	cell, _ := excelize.CoordinatesToCellName(colImage, r)
	err := w.file.AddPicture(SheetName, cell, row.Image.Path, &excelize.GraphicOptions{
		AltText:         row.ItemName,
		ScaleX:          scale,
		ScaleY:          scale,
		LockAspectRatio: true,
		Positioning:     "oneCell",
	})
	if err != nil {
		w.logger.WarnWithFields("Image not embedded", map[string]interface{}{
			"path":  row.Image.RelPath,
			"error": err.Error(),
		})
		return
	}

	if row.Image.Height > 0 {
		height := float64(row.Image.Height) * scale * pixelPoints
		if height > maxRowHeight {
			height = maxRowHeight
		}
		if err := w.file.SetRowHeight(SheetName, r, height); err != nil {
			w.logger.WarnWithFields("Row height not set", map[string]interface{}{"row": r, "error": err.Error()})
		}
	}

	if width := float64(row.Image.Width) * scale; width > w.maxImageWidth {
		w.maxImageWidth = width
		col, _ := excelize.ColumnNumberToName(colImage)
		if err := w.file.SetColWidth(SheetName, col, col, width/charPixels+1); err != nil {
			w.logger.WarnWithFields("Column width not set", map[string]interface{}{"error": err.Error()})
		}
	}
}

// Save writes the workbook to disk through a temporary file so an interrupted
// save keeps the previous version intact.
func (w *Workbook) Save() error {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errs.FileIO(w.path, err)
	}

	tmp := filepath.Join(dir, "."+strings.TrimSuffix(filepath.Base(w.path), filepath.Ext(w.path))+".tmp.xlsx")
	if err := w.file.SaveAs(tmp); err != nil {
		os.Remove(tmp)
		return errs.FileIO(w.path, fmt.Errorf("failed to save workbook: %w", err))
	}
	if err := os.Rename(tmp, w.path); err != nil {
		os.Remove(tmp)
		return errs.FileIO(w.path, fmt.Errorf("failed to replace workbook: %w", err))
	}

	for category, n := range w.pending {
		w.saved[category] += n
	}
	w.pending = make(map[string]int)

	w.logger.DebugWithFields("Workbook saved", map[string]interface{}{
		"path": w.path,
		"rows": w.nextRow - 2,
	})
	return nil
}

// Close releases the workbook without saving
func (w *Workbook) Close() error {
	return w.file.Close()
}

// CategoryRows returns how many rows of category are on disk as of the last save
func (w *Workbook) CategoryRows(category string) int {
	return w.saved[category]
}

// Len returns the number of data rows, saved or not
func (w *Workbook) Len() int {
	return w.nextRow - 2
}

// Path returns where the workbook is saved
func (w *Workbook) Path() string {
	return w.path
}

// Rows reads back every data row. Image paths are resolved against the
// workbook's directory; pixel sizes are not stored and come back as zero.
func (w *Workbook) Rows() ([]models.OutputRow, error) {
	rows, err := w.file.GetRows(SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	headers := rows[0]
	out := make([]models.OutputRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		get := func(col int) string {
			if col-1 < len(row) {
				return row[col-1]
			}
			return ""
		}

		rel := filepath.FromSlash(get(colImageFile))
		record := models.OutputRow{
			Category: get(colCategory),
			ItemName: get(colItem),
			ItemURL:  get(colURL),
			Image: models.ImageFile{
				RelPath: rel,
			},
		}
		if rel != "" {
			record.Image.Path = filepath.Join(filepath.Dir(w.path), rel)
		}
		for col := fixedColumns + 1; col <= len(headers); col++ {
			if value := get(col); value != "" {
				record.Attributes = append(record.Attributes, models.Attribute{Name: headers[col-1], Value: value})
			}
		}
		out = append(out, record)
	}
	return out, nil
}
