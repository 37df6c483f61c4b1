// Package workbook writes the run's single xlsx output with excelize.
//
// Layout of the Catalog sheet:
//
//	Category | Item | URL | Image | Image file | <attribute columns...>
//
// The header row is bold. Item cells link to the item page, the Image column
// holds the embedded picture and Image file its path relative to the output
// directory. Attribute columns are added the first time a name is seen.
//
// Rows accumulate in memory and reach the disk on Save, which the driver
// calls after every category. CategoryRows only counts saved rows, so an
// interrupted category never looks complete on the next start.
package workbook
