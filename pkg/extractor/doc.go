// Package extractor turns fetched catalog pages into typed records.
//
// The catalog uses the same grid markup for the category index, for each
// category listing and for the variant list of a model page: anchors whose caption sits in a child element and whose
// thumbnail is an inline background-image style. Selectors come from
// config.SelectorsConfig so a markup change on the site is a config edit.
//
// Structure that is missing entirely is reported as a parsing error from
// pkg/errors; optional fields are simply left empty.
package extractor
