// Package storage manages the image tree of a scrape run.
//
// Images live at <output>/<category>/<item>.<ext>. Category and item captions
// are turned into file names by SafeName: characters that are not allowed in
// file names and runs of whitespace become single dashes, a trailing "-..."
// is dropped, dots become dashes and accents are transliterated. Categories
// whose names end up as the same folder get numbered folders once
// AssignFolders has seen the run's category list.
//
// Save writes through a temporary file and an atomic rename, so an
// interrupted or failed download never leaves a truncated image behind. The
// resume logic relies on that: a file at an image path is always complete.
//
// Usage:
//
//	manager, err := storage.NewManager("output")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	rel := manager.ImagePath("Audi", "A4 2.0 TDI", imageURL)
//	if !manager.Exists(rel) {
//	    _, err = manager.Save(bytes.NewReader(data), rel)
//	}
package storage
