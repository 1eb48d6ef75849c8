package metadata

import (
	"context"
	"sort"

	nmerrors "github.com/standardbeagle/nowmeta/internal/errors"
	"github.com/standardbeagle/nowmeta/internal/normalize"
	"github.com/standardbeagle/nowmeta/internal/query"
	"github.com/standardbeagle/nowmeta/internal/remote"
)

const choiceList = "sys_choice"

var (
	choiceValue    = normalize.Text("value", normalize.ValueFirst)
	choiceLabel    = normalize.Text("label", normalize.DisplayFirst)
	choiceInactive = normalize.Flag("inactive")
)

// GetFieldChoices lists the active options of a choice field sorted by label.
// Options missing a value or a label are dropped.
func (s *Service) GetFieldChoices(ctx context.Context, tableName, fieldName string) ([]Choice, error) {
	if tableName == "" {
		return nil, nmerrors.NewMissingFieldError("table_name")
	}
	if fieldName == "" {
		return nil, nmerrors.NewMissingFieldError("field_name")
	}

	q, _ := query.New().
		Where(
			query.Equals("name", tableName),
			query.Equals("element", fieldName),
			query.BoolEquals("inactive", false),
		).
		Build()

	records, err := s.fetch(ctx, remote.Request{
		Table:   choiceList,
		Query:   q,
		Fields:  normalize.Names(choiceValue, choiceLabel, choiceInactive),
		Limit:   s.limits.Choices,
		Display: remote.DisplayRaw,
	})
	if err != nil {
		return nil, err
	}

	choices := make([]Choice, 0, len(records))
	for _, rec := range records {
		if choiceInactive.Read(rec) {
			continue
		}
		c := Choice{Value: choiceValue.Read(rec), Label: choiceLabel.Read(rec)}
		if c.Value == "" || c.Label == "" {
			continue
		}
		choices = append(choices, c)
	}

	sort.SliceStable(choices, func(i, j int) bool { return choices[i].Label < choices[j].Label })
	return choices, nil
}
