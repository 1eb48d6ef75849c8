package normalize

// Column is a named remote column with a fixed reading rule
type Column interface {
	ColumnName() string
}

// Names lists the column names for a sysparm_fields projection
func Names(cols ...Column) []string {
	names := make([]string, 0, len(cols))
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		n := c.ColumnName()
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		names = append(names, n)
	}
	return names
}

// TextColumn reads a string column with a fixed preference and default
type TextColumn struct {
	Name     string
	Pref     Preference
	Fallback string
}

// Text declares a string column
func Text(name string, pref Preference) TextColumn {
	return TextColumn{Name: name, Pref: pref}
}

// Or returns a copy of the column that yields def when empty
func (c TextColumn) Or(def string) TextColumn {
	c.Fallback = def
	return c
}

func (c TextColumn) ColumnName() string { return c.Name }

func (c TextColumn) Read(r Record) string {
	if s := r.Get(c.Name).Text(c.Pref); s != "" {
		return s
	}
	return c.Fallback
}

// FlagColumn reads a boolean-as-string column
type FlagColumn struct {
	Name string
}

func Flag(name string) FlagColumn { return FlagColumn{Name: name} }

func (c FlagColumn) ColumnName() string { return c.Name }

func (c FlagColumn) Read(r Record) bool { return r.Get(c.Name).Flag() }

// NumberColumn reads a numeric-as-string column
type NumberColumn struct {
	Name string
}

func Number(name string) NumberColumn { return NumberColumn{Name: name} }

func (c NumberColumn) ColumnName() string { return c.Name }

// Read returns nil when the column is absent or unparseable
func (c NumberColumn) Read(r Record) *int { return r.Get(c.Name).Number() }

// ReadOr returns def when the column is absent or unparseable
func (c NumberColumn) ReadOr(r Record, def int) int {
	if n := c.Read(r); n != nil {
		return *n
	}
	return def
}

// ReferenceColumn reads a reference column
type ReferenceColumn struct {
	Name string
}

func Reference(name string) ReferenceColumn { return ReferenceColumn{Name: name} }

func (c ReferenceColumn) ColumnName() string { return c.Name }

func (c ReferenceColumn) Read(r Record) Ref { return r.Get(c.Name).Reference() }

// ScopeColumn reads an application scope reference as a display name
type ScopeColumn struct {
	Name string
}

func Scope(name string) ScopeColumn { return ScopeColumn{Name: name} }

func (c ScopeColumn) ColumnName() string { return c.Name }

func (c ScopeColumn) Read(r Record) string { return r.Get(c.Name).ScopeName() }
