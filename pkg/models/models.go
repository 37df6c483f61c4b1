package models

// Category is a top-level grouping from the site navigation
type Category struct {
	Name string
	URL  string
}

// Item is a link discovered on a category listing
type Item struct {
	Category     string
	Name         string
	URL          string
	ThumbnailURL string
}

// Attribute is one labelled value from a detail page
type Attribute struct {
	Name  string
	Value string
}

// Detail is what the extractor could read from an item page. Any field may be
// empty when the page does not carry it.
type Detail struct {
	Title      string
	Breadcrumb []string
	// Parent is the last breadcrumb link, Current the active crumb
	Parent     string
	Current    string
	Attributes []Attribute
	ImageURL   string
	// Variants are the grid entries of a page that lists sub-items instead
	// of showing a single product. Their Category is left empty.
	Variants []Item
}

// ImageFile is a downloaded image on disk
type ImageFile struct {
	// Path is the absolute or working-directory relative location
	Path string
	// RelPath is relative to the output directory: <category>/<file>
	RelPath string
	Width   int
	Height  int
	Size    int64
}

// OutputRow is one workbook row
type OutputRow struct {
	Category   string
	ItemName   string
	ItemURL    string
	Attributes []Attribute
	Image      ImageFile
}
