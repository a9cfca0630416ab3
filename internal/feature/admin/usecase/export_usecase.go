package usecase

import (
	"context"
	"strings"
	"time"
)

// csvHeader is the fixed export header row.
const csvHeader = `"Timestamp","Name","Email","Disciplines","Reason"`

// csvTimeFormat is the timestamp rendering used in the export.
const csvTimeFormat = time.RFC3339

// csvField encloses a value in double quotes, doubling internal quotes
// (standard CSV quoting). Every field is quoted, whether it needs it or not.
func csvField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// ExportCSV renders the filtered, joined visit log as delimited text:
// one row per visit, newest first, disciplines joined with "; ".
func (u *adminUsecase) ExportCSV(ctx context.Context, f ExportFilter) (string, error) {
	records, err := u.repo.FilteredVisits(ctx, f)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(csvHeader)
	b.WriteString("\n")
	for _, rec := range records {
		fields := []string{
			csvField(rec.VisitedAt.Format(csvTimeFormat)),
			csvField(rec.Name),
			csvField(rec.Email),
			csvField(rec.Disciplines.Join("; ")),
			csvField(rec.Reason),
		}
		b.WriteString(strings.Join(fields, ","))
		b.WriteString("\n")
	}
	return b.String(), nil
}
