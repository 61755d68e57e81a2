// Package report records what a run did to each file and renders the result
// as console lines, a one-line or tabular summary, JSON, or an XLSX
// workbook.
package report
