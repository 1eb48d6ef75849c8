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
	acls     = "sys_security_acl"
	aclRoles = "sys_security_acl_role"

	rolesPerAcl  = 20
	maxRoleLimit = 1000
)

var (
	aclName           = normalize.Text("name", normalize.ValueFirst)
	aclType           = normalize.Text("type", normalize.ValueFirst)
	aclOperation      = normalize.Text("operation", normalize.DisplayFirst)
	aclAdminOverrides = normalize.Flag("admin_overrides")
	aclActive         = normalize.Flag("active")
	aclDescription    = normalize.Text("description", normalize.DisplayFirst)
	aclScript         = normalize.Text("script", normalize.ValueFirst)
	aclScope          = normalize.Scope("sys_scope")
	aclUpdatedOn      = normalize.Text("sys_updated_on", normalize.ValueFirst)
	aclSysID          = normalize.Text("sys_id", normalize.ValueOnly)

	roleAcl  = normalize.Reference("sys_security_acl")
	roleName = normalize.Text("sys_user_role", normalize.DisplayFirst)
)

// FindAcls lists the access controls on a table with the roles each one
// requires. FieldName narrows to field-level rules (and the table's "*"
// rule); Operation narrows to read, write, create, delete and so on.
func (s *Service) FindAcls(ctx context.Context, search AclSearch) ([]AclDetail, error) {
	if search.TableName == "" {
		return nil, nmerrors.NewMissingFieldError("table_name")
	}
	s.warnSeparators(search.TableName, search.FieldName, search.Operation)

	b := query.New()
	if search.FieldName != "" {
		b.Where(query.Or(
			query.Equals("name", search.TableName+"."+search.FieldName),
			query.Equals("name", search.TableName+".*"),
		))
	} else {
		b.Where(query.Or(
			query.Equals("name", search.TableName),
			query.StartsWith("name", search.TableName+"."),
		))
	}
	b.Where(query.Equals("operation.name", search.Operation))
	q, _ := b.OrderBy("name").Build()

	records, err := s.fetch(ctx, remote.Request{
		Table: acls,
		Query: q,
		Fields: normalize.Names(aclName, aclType, aclOperation, aclAdminOverrides, aclActive,
			aclDescription, aclScript, aclScope, aclUpdatedOn, aclSysID),
		Limit:   clampLimit(search.Limit, s.limits.Acls),
		Display: remote.DisplayBoth,
	})
	if err != nil {
		return nil, err
	}

	out := make([]AclDetail, 0, len(records))
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		acl := AclDetail{
			Name:            aclName.Read(rec),
			Type:            aclType.Read(rec),
			Operation:       aclOperation.Read(rec),
			AdminOverrides:  aclAdminOverrides.Read(rec),
			Active:          aclActive.Read(rec),
			Description:     aclDescription.Read(rec),
			ConditionScript: aclScript.Read(rec),
			Roles:           []string{},
			Scope:           aclScope.Read(rec),
			UpdatedOn:       aclUpdatedOn.Read(rec),
			SysID:           aclSysID.Read(rec),
		}
		out = append(out, acl)
		if acl.SysID != "" {
			ids = append(ids, acl.SysID)
		}
	}

	if len(ids) == 0 {
		return out, nil
	}
	roles, err := s.rolesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if r, ok := roles[out[i].SysID]; ok {
			out[i].Roles = r
		}
	}
	return out, nil
}

// rolesFor returns sorted, de-duplicated role names per ACL sys_id
func (s *Service) rolesFor(ctx context.Context, aclIDs []string) (map[string][]string, error) {
	q, ok := query.New().Where(query.In("sys_security_acl", aclIDs...)).Build()
	if !ok {
		return nil, nil
	}

	limit := len(aclIDs) * rolesPerAcl
	if limit > maxRoleLimit {
		limit = maxRoleLimit
	}
	records, err := s.fetch(ctx, remote.Request{
		Table:   aclRoles,
		Query:   q,
		Fields:  normalize.Names(roleAcl, roleName),
		Limit:   limit,
		Display: remote.DisplayBoth,
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]map[string]bool)
	out := make(map[string][]string)
	for _, rec := range records {
		id := roleAcl.Read(rec).ID
		role := roleName.Read(rec)
		if id == "" || role == "" {
			continue
		}
		if seen[id] == nil {
			seen[id] = make(map[string]bool)
		}
		if seen[id][role] {
			continue
		}
		seen[id][role] = true
		out[id] = append(out[id], role)
	}
	for id := range out {
		sort.Strings(out[id])
	}
	return out, nil
}
