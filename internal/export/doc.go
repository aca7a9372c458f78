// Package export writes analysis summaries to spreadsheet workbooks.
//
// A workbook carries one sheet per view of the summary: global statistics,
// the day/night split, label rankings, family distributions, the per-segment
// grade histogram, the hourly profile, and detected events. When an
// interpretation is supplied, a recommendations sheet with cost totals is
// appended.
package export
