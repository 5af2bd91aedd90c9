package tenant

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"
)

// fakeConn simulates one dedicated database connection with an
// information_schema catalog behind it. Statements mutate the catalog, the
// catalog answers the verification queries.
type fakeConn struct {
	schemas map[string]bool
	tables  map[string]bool
	current string

	// failure injection
	failExec          string // Exec calls containing this substring fail
	ghostTables       bool   // DDL succeeds but the catalog never shows the table
	reportedSchema    string // current_schema() lies with this value when set
	failCatalogAfter  int    // catalog queries fail after this many calls (0 = never)
	catalogQueryCount int
	countOffset       int64 // skews the schema-wide table count

	execs []string
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		schemas: map[string]bool{"public": true},
		tables:  map[string]bool{},
		current: "public",
	}
}

func (f *fakeConn) Exec(sql string) error {
	f.execs = append(f.execs, sql)
	if f.failExec != "" && strings.Contains(sql, f.failExec) {
		return errors.New("statement failed")
	}

	switch {
	case strings.HasPrefix(sql, "CREATE SCHEMA IF NOT EXISTS "):
		f.schemas[strings.TrimPrefix(sql, "CREATE SCHEMA IF NOT EXISTS ")] = true
	case strings.HasPrefix(sql, "SET search_path TO "):
		f.current = strings.TrimPrefix(sql, "SET search_path TO ")
	case strings.HasPrefix(sql, "CREATE TABLE IF NOT EXISTS "):
		if f.ghostTables {
			return nil
		}
		rest := strings.TrimPrefix(sql, "CREATE TABLE IF NOT EXISTS ")
		name := strings.Fields(rest)[0]
		f.tables[name] = true
	}
	return nil
}

func (f *fakeConn) QueryString(sql string, args ...interface{}) (string, error) {
	if strings.Contains(sql, "current_schema") {
		if f.reportedSchema != "" {
			return f.reportedSchema, nil
		}
		return f.current, nil
	}
	return "", errors.New("unexpected query: " + sql)
}

func (f *fakeConn) QueryInt(sql string, args ...interface{}) (int64, error) {
	f.catalogQueryCount++
	if f.failCatalogAfter > 0 && f.catalogQueryCount > f.failCatalogAfter {
		return 0, errors.New("catalog unavailable")
	}

	switch {
	case strings.Contains(sql, "information_schema.schemata"):
		if f.schemas[args[0].(string)] {
			return 1, nil
		}
		return 0, nil
	case strings.Contains(sql, "table_name ="):
		// tables are keyed by name only; the fake holds a single tenant schema
		if f.tables[args[1].(string)] {
			return 1, nil
		}
		return 0, nil
	case strings.Contains(sql, "information_schema.tables"):
		return int64(len(f.tables)) + f.countOffset, nil
	}
	return 0, errors.New("unexpected query: " + sql)
}

func (f *fakeConn) execCount(substring string) int {
	n := 0
	for _, s := range f.execs {
		if strings.Contains(s, substring) {
			n++
		}
	}
	return n
}

func newTestProvisioner() *Provisioner {
	return NewProvisioner(nil, zap.NewNop())
}

func TestRunCreatesFullTableSet(t *testing.T) {
	p := newTestProvisioner()
	c := newFakeConn()

	err := p.run(c, "tenant_42")
	require.NoError(t, err)

	assert.True(t, c.schemas["tenant_42"])
	assert.Equal(t, len(tenantTables), len(c.tables))
	for _, tbl := range tenantTables {
		assert.True(t, c.tables[tbl.Name], "table %s should exist", tbl.Name)
	}
}

func TestRunRestoresDefaultSchema(t *testing.T) {
	p := newTestProvisioner()
	c := newFakeConn()

	require.NoError(t, p.run(c, "tenant_1"))
	assert.Equal(t, "public", c.current, "connection must end on the default schema")
}

func TestRunIsIdempotent(t *testing.T) {
	p := newTestProvisioner()
	c := newFakeConn()

	require.NoError(t, p.run(c, "tenant_7"))
	firstDDL := c.execCount("CREATE TABLE")

	require.NoError(t, p.run(c, "tenant_7"))

	assert.Equal(t, firstDDL, c.execCount("CREATE TABLE"),
		"second run must not re-issue table DDL")
	assert.Equal(t, 1, c.execCount("CREATE SCHEMA"),
		"second run must not re-issue schema DDL")
	assert.Equal(t, len(tenantTables), len(c.tables))
}

func TestRunResumesAfterPartialFailure(t *testing.T) {
	p := newTestProvisioner()
	c := newFakeConn()

	// first attempt dies on the students table
	c.failExec = "students"
	err := p.run(c, "tenant_3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "students")
	assert.Equal(t, "public", c.current, "failed run must still restore the default schema")
	created := len(c.tables)
	assert.Less(t, created, len(tenantTables))

	ddlBefore := make(map[string]int, created)
	for name := range c.tables {
		ddlBefore[name] = c.execCount("EXISTS " + name)
	}

	// retry completes the set without touching what already exists
	c.failExec = ""
	require.NoError(t, p.run(c, "tenant_3"))
	assert.Equal(t, len(tenantTables), len(c.tables))

	for name, n := range ddlBefore {
		assert.Equal(t, n, c.execCount("EXISTS "+name),
			"table %s must not be re-created on retry", name)
	}
}

func TestRunFailsWhenTableNotVisibleAfterCreate(t *testing.T) {
	p := newTestProvisioner()
	c := newFakeConn()
	c.ghostTables = true

	err := p.run(c, "tenant_5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not visible after creation")
	assert.Equal(t, "public", c.current)
}

func TestRunFailsWhenSchemaSwitchDoesNotVerify(t *testing.T) {
	p := newTestProvisioner()
	c := newFakeConn()
	c.reportedSchema = "public" // search_path set succeeds but never takes effect

	err := p.run(c, "tenant_9")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrContextMismatch)
	assert.Empty(t, c.tables, "no DDL may run on an unverified context")
}

func TestRunFailsOnFinalCountMismatch(t *testing.T) {
	p := newTestProvisioner()
	c := newFakeConn()

	// an extra table appeared in the schema behind the provisioner's back
	c.countOffset = 1
	err := p.run(c, "tenant_2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected")
}

func TestRunPropagatesCatalogErrors(t *testing.T) {
	p := newTestProvisioner()
	c := newFakeConn()
	c.failCatalogAfter = 1

	err := p.run(c, "tenant_4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog")
}

func TestSwitchSchemaRejectsArbitraryNames(t *testing.T) {
	p := newTestProvisioner()
	c := newFakeConn()

	err := p.switchSchema(c, "tenant_1; DROP SCHEMA public")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSchemaName)
	assert.Empty(t, c.execs, "nothing may execute for an invalid name")
}
