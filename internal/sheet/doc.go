// Package sheet reads and writes the question spreadsheets. The file
// format is chosen by extension: comma separated (.csv), tab separated
// (.tsv) or an Excel workbook (.xlsx).
package sheet
