package metadata

import (
	"context"
	"fmt"
	"sort"
	"strings"

	nmerrors "github.com/standardbeagle/nowmeta/internal/errors"
	"github.com/standardbeagle/nowmeta/internal/normalize"
	"github.com/standardbeagle/nowmeta/internal/query"
	"github.com/standardbeagle/nowmeta/internal/remote"
)

const (
	businessRules = "sys_script"

	// nameProbeLimit fetches one more row than needed so a duplicate name is
	// visible
	nameProbeLimit = 2
	tableRuleLimit = 50
)

var (
	brName      = normalize.Text("name", normalize.ValueFirst)
	brTable     = normalize.Text("collection", normalize.ValueFirst)
	brWhen      = normalize.Text("when", normalize.ValueFirst)
	brOrder     = normalize.Number("order")
	brActive    = normalize.Flag("active")
	brInsert    = normalize.Flag("action_insert")
	brUpdate    = normalize.Flag("action_update")
	brDelete    = normalize.Flag("action_delete")
	brQuery     = normalize.Flag("action_query")
	brCondition = normalize.Text("condition", normalize.ValueFirst)
	brScope     = normalize.Scope("sys_scope")
	brUpdatedOn = normalize.Text("sys_updated_on", normalize.ValueFirst)
	brSysID     = normalize.Text("sys_id", normalize.ValueOnly)

	brColumns = []normalize.Column{brName, brTable, brWhen, brOrder, brActive, brInsert,
		brUpdate, brDelete, brQuery, brCondition, brScope, brUpdatedOn, brSysID}
)

// FindBusinessRules looks rules up by name, by table, or both.
//
// A name alone must identify one rule: two matches are an AmbiguityError.
// Name plus table returns at most one rule and warns when the data holds a
// duplicate. A table alone returns up to 50 rules in execution order.
func (s *Service) FindBusinessRules(ctx context.Context, search BusinessRuleSearch) (*BusinessRuleResult, error) {
	switch {
	case search.Name != "" && search.TableName == "":
		return s.rulesByName(ctx, search.Name)
	case search.Name != "":
		return s.ruleByNameAndTable(ctx, search.Name, search.TableName)
	case search.TableName != "":
		return s.rulesByTable(ctx, search.TableName)
	default:
		return nil, nmerrors.NewMissingFieldError("business_rule_name or table_name")
	}
}

func (s *Service) rulesByName(ctx context.Context, name string) (*BusinessRuleResult, error) {
	rules, err := s.queryRules(ctx, query.New().Where(query.Equals("name", name)), nameProbeLimit)
	if err != nil {
		return nil, err
	}
	if len(rules) >= nameProbeLimit {
		tables := make([]string, 0, len(rules))
		for _, r := range rules {
			tables = append(tables, r.Table)
		}
		hint := fmt.Sprintf("rules exist on tables %s; add table_name to pick one", strings.Join(tables, ", "))
		return nil, nmerrors.NewAmbiguityError(name, len(rules), hint)
	}
	return &BusinessRuleResult{Rules: rules}, nil
}

func (s *Service) ruleByNameAndTable(ctx context.Context, name, table string) (*BusinessRuleResult, error) {
	b := query.New().Where(query.Equals("name", name), query.Equals("collection", table))
	rules, err := s.queryRules(ctx, b, nameProbeLimit)
	if err != nil {
		return nil, err
	}

	result := &BusinessRuleResult{Rules: rules}
	if len(rules) > 1 {
		result.Rules = rules[:1]
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("more than one business rule named %q exists on %s; returning the first (sys_id %s)",
				name, table, rules[0].SysID))
	}
	return result, nil
}

func (s *Service) rulesByTable(ctx context.Context, table string) (*BusinessRuleResult, error) {
	b := query.New().Where(query.Equals("collection", table)).OrderBy("order")
	rules, err := s.queryRules(ctx, b, tableRuleLimit)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].Order < rules[j].Order })
	return &BusinessRuleResult{Rules: rules}, nil
}

func (s *Service) queryRules(ctx context.Context, b *query.Builder, limit int) ([]BusinessRuleDetail, error) {
	q, ok := b.Build()
	if !ok {
		return []BusinessRuleDetail{}, nil
	}

	records, err := s.fetch(ctx, remote.Request{
		Table:   businessRules,
		Query:   q,
		Fields:  normalize.Names(brColumns...),
		Limit:   limit,
		Display: remote.DisplayBoth,
	})
	if err != nil {
		return nil, err
	}

	rules := make([]BusinessRuleDetail, 0, len(records))
	for _, rec := range records {
		rules = append(rules, BusinessRuleDetail{
			Name:      brName.Read(rec),
			Table:     brTable.Read(rec),
			When:      brWhen.Read(rec),
			Order:     brOrder.ReadOr(rec, 0),
			Active:    brActive.Read(rec),
			Insert:    brInsert.Read(rec),
			Update:    brUpdate.Read(rec),
			Delete:    brDelete.Read(rec),
			Query:     brQuery.Read(rec),
			Condition: brCondition.Read(rec),
			Scope:     brScope.Read(rec),
			UpdatedOn: brUpdatedOn.Read(rec),
			SysID:     brSysID.Read(rec),
		})
	}
	return rules, nil
}
