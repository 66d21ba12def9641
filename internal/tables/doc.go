// Package tables post-processes the per-subject strain tables exported
// alongside the imaging data. The cleaner normalizes missing-value spellings
// and drops incomplete rows; the merger reduces each relevant table to its
// peak values and assembles one row per subject, joined with study metadata,
// into a single analysis workbook.
package tables
