package metadata

import (
	"context"
	"sort"

	nmerrors "github.com/standardbeagle/nowmeta/internal/errors"
	"github.com/standardbeagle/nowmeta/internal/normalize"
	"github.com/standardbeagle/nowmeta/internal/query"
	"github.com/standardbeagle/nowmeta/internal/remote"
)

const (
	tableRegistry = "sys_db_object"
	dictionary    = "sys_dictionary"

	referenceType = "reference"
)

var (
	tblSysID      = normalize.Text("sys_id", normalize.ValueOnly)
	tblName       = normalize.Text("name", normalize.ValueFirst)
	tblLabel      = normalize.Text("label", normalize.DisplayFirst)
	tblSuperClass = normalize.Reference("super_class")

	dictElement   = normalize.Text("element", normalize.ValueFirst)
	dictLabel     = normalize.Text("column_label", normalize.DisplayFirst)
	dictType      = normalize.Text("internal_type", normalize.ValueFirst)
	dictReference = normalize.Text("reference", normalize.ValueFirst)
	dictMaxLength = normalize.Number("max_length")
	dictMandatory = normalize.Flag("mandatory")
	dictReadOnly  = normalize.Flag("read_only")
	dictComments  = normalize.Text("comments", normalize.DisplayFirst)
)

type tableRow struct {
	sysID      string
	name       string
	label      string
	superClass string
}

// GetTableSchema describes a table by technical name or label. A table that
// does not exist yields (nil, nil). With includeInherited the super_class
// chain is walked and parent columns are merged in; a child's definition
// wins when both declare the same column.
func (s *Service) GetTableSchema(ctx context.Context, tableName string, includeInherited bool) (*TableSchema, error) {
	if tableName == "" {
		return nil, nmerrors.NewMissingFieldError("table_name")
	}

	table, err := s.findTable(ctx, tableName)
	if err != nil || table == nil {
		return nil, err
	}

	chain := []tableRow{*table}
	if includeInherited {
		parents, err := s.ancestors(ctx, *table)
		if err != nil {
			return nil, err
		}
		chain = append(chain, parents...)
	}

	schema := &TableSchema{
		Name:   table.name,
		Label:  table.label,
		Fields: []FieldSpec{},
	}
	if schema.Label == "" {
		schema.Label = schema.Name
	}

	seen := make(map[string]bool)
	for i, t := range chain {
		fields, err := s.dictionaryFields(ctx, t.name)
		if err != nil {
			return nil, err
		}
		for _, f := range fields {
			if seen[f.Name] {
				continue
			}
			seen[f.Name] = true
			if i > 0 {
				f.InheritedFrom = t.name
			}
			schema.Fields = append(schema.Fields, f)
		}
		if includeInherited {
			schema.Hierarchy = append(schema.Hierarchy, t.name)
		}
	}

	sort.Slice(schema.Fields, func(i, j int) bool { return schema.Fields[i].Name < schema.Fields[j].Name })
	return schema, nil
}

// findTable resolves a technical name first and a label second
func (s *Service) findTable(ctx context.Context, token string) (*tableRow, error) {
	for _, clause := range []query.Clause{query.Equals("name", token), query.Equals("label", token)} {
		row, err := s.tableBy(ctx, clause)
		if err != nil || row != nil {
			return row, err
		}
	}
	return nil, nil
}

func (s *Service) tableBy(ctx context.Context, clause query.Clause) (*tableRow, error) {
	q, ok := query.New().Where(clause).Build()
	if !ok {
		return nil, nil
	}
	records, err := s.fetch(ctx, remote.Request{
		Table:   tableRegistry,
		Query:   q,
		Fields:  normalize.Names(tblSysID, tblName, tblLabel, tblSuperClass),
		Limit:   1,
		Display: remote.DisplayBoth,
	})
	if err != nil || len(records) == 0 {
		return nil, err
	}
	rec := records[0]
	return &tableRow{
		sysID:      tblSysID.Read(rec),
		name:       tblName.Read(rec),
		label:      tblLabel.Read(rec),
		superClass: tblSuperClass.Read(rec).ID,
	}, nil
}

// ancestors follows super_class up to the configured depth, stopping at a
// cycle or a dangling reference
func (s *Service) ancestors(ctx context.Context, child tableRow) ([]tableRow, error) {
	var out []tableRow
	visited := map[string]bool{child.sysID: true}
	next := child.superClass

	for depth := 0; next != "" && depth < s.limits.InheritanceDepth; depth++ {
		if visited[next] {
			s.logger.Printf("super_class cycle at %s while walking %s", next, child.name)
			break
		}
		visited[next] = true

		parent, err := s.tableBy(ctx, query.Equals("sys_id", next))
		if err != nil {
			return nil, err
		}
		if parent == nil {
			break
		}
		out = append(out, *parent)
		next = parent.superClass
	}
	return out, nil
}

func (s *Service) dictionaryFields(ctx context.Context, table string) ([]FieldSpec, error) {
	q, ok := query.New().
		Where(
			query.Equals("name", table),
			query.NotEmpty("element"),
			query.BoolEquals("active", true),
		).
		OrderBy("element").
		Build()
	if !ok {
		return nil, nil
	}

	records, err := s.fetch(ctx, remote.Request{
		Table: dictionary,
		Query: q,
		Fields: normalize.Names(dictElement, dictLabel, dictType, dictReference,
			dictMaxLength, dictMandatory, dictReadOnly, dictComments),
		Limit:   s.limits.Dictionary,
		Display: remote.DisplayBoth,
	})
	if err != nil {
		return nil, err
	}

	fields := make([]FieldSpec, 0, len(records))
	for _, rec := range records {
		name := dictElement.Read(rec)
		if name == "" {
			continue
		}
		f := FieldSpec{
			Name:        name,
			Label:       dictLabel.Or(name).Read(rec),
			Type:        dictType.Read(rec),
			Description: dictComments.Read(rec),
			MaxLength:   dictMaxLength.Read(rec),
			Mandatory:   dictMandatory.Read(rec),
			ReadOnly:    dictReadOnly.Read(rec),
		}
		if f.Type == referenceType {
			f.ReferenceTable = dictReference.Read(rec)
		}
		fields = append(fields, f)
	}
	return fields, nil
}
