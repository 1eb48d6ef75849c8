package metadata

import (
	"context"

	nmerrors "github.com/standardbeagle/nowmeta/internal/errors"
	"github.com/standardbeagle/nowmeta/internal/normalize"
	"github.com/standardbeagle/nowmeta/internal/query"
	"github.com/standardbeagle/nowmeta/internal/remote"
)

var (
	siName           = normalize.Text("name", normalize.ValueFirst)
	siAPIName        = normalize.Text("api_name", normalize.ValueFirst)
	siDescription    = normalize.Text("description", normalize.DisplayFirst)
	siClientCallable = normalize.Flag("client_callable")
	siActive         = normalize.Flag("active")
	siScope          = normalize.Scope("sys_scope")
	siUpdatedOn      = normalize.Text("sys_updated_on", normalize.ValueFirst)
	siSysID          = normalize.Text("sys_id", normalize.ValueOnly)
	siScript         = normalize.Text("script", normalize.ValueOnly)
)

// GetScriptIncludeAPI fetches a script include by name or scoped API name
// and lists the functions its body defines. An unknown name yields
// (nil, nil).
func (s *Service) GetScriptIncludeAPI(ctx context.Context, name string) (*ScriptIncludeAPI, error) {
	if name == "" {
		return nil, nmerrors.NewMissingFieldError("script_include_name")
	}

	var rec normalize.Record
	for _, clause := range []query.Clause{query.Equals("name", name), query.Equals("api_name", name)} {
		q, _ := query.New().Where(clause).Build()
		records, err := s.fetch(ctx, remote.Request{
			Table: SourceTable(ScriptInclude),
			Query: q,
			Fields: normalize.Names(siName, siAPIName, siDescription, siClientCallable, siActive,
				siScope, siUpdatedOn, siSysID, siScript),
			Limit:   1,
			Display: remote.DisplayBoth,
		})
		if err != nil {
			return nil, err
		}
		if len(records) > 0 {
			rec = records[0]
			break
		}
	}
	if rec == nil {
		return nil, nil
	}

	extracted, err := s.extractor.Extract(siScript.Read(rec))
	if err != nil {
		return nil, err
	}

	return &ScriptIncludeAPI{
		Name:           siName.Read(rec),
		APIName:        siAPIName.Read(rec),
		Description:    siDescription.Read(rec),
		ClientCallable: siClientCallable.Read(rec),
		Active:         siActive.Read(rec),
		Scope:          siScope.Read(rec),
		UpdatedOn:      siUpdatedOn.Read(rec),
		SysID:          siSysID.Read(rec),
		Functions:      extracted.Functions,
		Message:        extracted.Message,
	}, nil
}
