package tenant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"registration-service/prometheus"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultSchema = "public"

var (
	// ErrInvalidSchemaName is returned when a schema name falls outside the
	// tenant_{id} derivation. It should never happen for server-derived names.
	ErrInvalidSchemaName = errors.New("invalid tenant schema name")

	// ErrContextMismatch is returned when a search_path switch does not
	// verify. Queries must never run against an unverified context.
	ErrContextMismatch = errors.New("schema context did not verify")
)

// conn is the single dedicated connection the provisioner drives. Abstracted
// so the step sequence can be exercised without a live database.
type conn interface {
	Exec(sql string) error
	QueryString(sql string, args ...interface{}) (string, error)
	QueryInt(sql string, args ...interface{}) (int64, error)
}

// gormConn adapts one pinned gorm connection to the conn interface
type gormConn struct {
	db *gorm.DB
}

func (g *gormConn) Exec(sql string) error {
	return g.db.Exec(sql).Error
}

func (g *gormConn) QueryString(sql string, args ...interface{}) (string, error) {
	var s string
	err := g.db.Raw(sql, args...).Row().Scan(&s)
	return s, err
}

func (g *gormConn) QueryInt(sql string, args ...interface{}) (int64, error) {
	var n int64
	err := g.db.Raw(sql, args...).Row().Scan(&n)
	return n, err
}

// Provisioner creates tenant schemas and populates the canonical table set.
//
// DDL is not transaction-rollback-safe on every engine, so the provisioner
// does not trust statement success: every action is re-verified by querying
// the catalog, each statement commits on its own, and recovery from partial
// failure is re-invocation (IF NOT EXISTS makes every step skippable).
type Provisioner struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewProvisioner creates a Provisioner on the shared database handle
func NewProvisioner(db *gorm.DB, log *zap.Logger) *Provisioner {
	return &Provisioner{db: db, log: log}
}

// Provision creates and populates the schema for the given tenant id. It is
// idempotent: re-invoking after success or after a partial failure creates
// only what is missing. The whole sequence runs on one dedicated connection
// so the search_path switches can never be observed by interleaved requests,
// and the connection returns to the pool only after the switch back to the
// default schema has been verified.
func (p *Provisioner) Provision(ctx context.Context, tenantID uint) error {
	schema := SchemaName(tenantID)
	if !ValidSchemaName(schema) {
		return fmt.Errorf("%w: %q", ErrInvalidSchemaName, schema)
	}

	defer prometheus.TrackProvisioning(tenantID)(time.Now())
	prometheus.RecordTenantOperation("provision")

	return p.db.WithContext(ctx).Connection(func(tx *gorm.DB) error {
		return p.run(&gormConn{db: tx}, schema)
	})
}

// run executes the ordered (action, verification) sequence on one connection
func (p *Provisioner) run(c conn, schema string) error {
	log := p.log.With(zap.String("schema", schema))

	// Step 1: create the schema, or resume into an existing one
	exists, err := p.schemaExists(c, schema)
	if err != nil {
		return fmt.Errorf("query schema catalog: %w", err)
	}
	if exists {
		log.Info("Schema already exists, resuming provisioning")
		prometheus.RecordProvisionStep("create_schema", "skipped")
	} else {
		if err := c.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)); err != nil {
			prometheus.RecordProvisionStep("create_schema", "failed")
			return fmt.Errorf("create schema %s: %w", schema, err)
		}
		// Re-query the catalog rather than trusting statement success
		exists, err = p.schemaExists(c, schema)
		if err != nil {
			return fmt.Errorf("verify schema catalog: %w", err)
		}
		if !exists {
			prometheus.RecordProvisionStep("create_schema", "failed")
			return fmt.Errorf("schema %s not visible after creation", schema)
		}
		prometheus.RecordProvisionStep("create_schema", "ok")
		log.Info("Schema created")
	}

	// Step 2: switch the connection's context to the new schema, verified
	if err := p.switchSchema(c, schema); err != nil {
		prometheus.RecordProvisionStep("switch_schema", "failed")
		return err
	}
	prometheus.RecordProvisionStep("switch_schema", "ok")

	// Step 3: create the canonical table set, each step verified. The
	// connection's context is restored whether or not this succeeds.
	tablesErr := p.createTables(c, schema, log)

	// Step 4: switch back to the default schema, verified. A dirty
	// search_path on a pooled connection would poison later requests, so a
	// failed restore overrides table-creation success.
	restoreErr := p.switchSchema(c, defaultSchema)
	if restoreErr != nil {
		prometheus.RecordProvisionStep("restore_schema", "failed")
	} else {
		prometheus.RecordProvisionStep("restore_schema", "ok")
	}

	if tablesErr != nil {
		return tablesErr
	}
	if restoreErr != nil {
		return restoreErr
	}

	// Step 5: final count check. Defends against a concurrent or manual drop
	// slipping between individually verified steps.
	count, err := p.countTables(c, schema)
	if err != nil {
		return fmt.Errorf("count tables in %s: %w", schema, err)
	}
	if count != int64(len(tenantTables)) {
		prometheus.RecordProvisionStep("final_check", "failed")
		return fmt.Errorf("schema %s holds %d tables, expected %d", schema, count, len(tenantTables))
	}
	prometheus.RecordProvisionStep("final_check", "ok")

	log.Info("Tenant schema provisioned", zap.Int64("tables", count))
	return nil
}

// createTables creates every missing table in the canonical set, in order,
// verifying each against the catalog before moving on
func (p *Provisioner) createTables(c conn, schema string, log *zap.Logger) error {
	for _, t := range tenantTables {
		exists, err := p.tableExists(c, schema, t.Name)
		if err != nil {
			return fmt.Errorf("query table catalog for %s: %w", t.Name, err)
		}
		if exists {
			log.Debug("Table already exists, skipping", zap.String("table", t.Name))
			prometheus.RecordProvisionStep("create_"+t.Name, "skipped")
			continue
		}

		if err := c.Exec(t.DDL); err != nil {
			prometheus.RecordProvisionStep("create_"+t.Name, "failed")
			return fmt.Errorf("create table %s: %w", t.Name, err)
		}

		exists, err = p.tableExists(c, schema, t.Name)
		if err != nil {
			return fmt.Errorf("verify table catalog for %s: %w", t.Name, err)
		}
		if !exists {
			prometheus.RecordProvisionStep("create_"+t.Name, "failed")
			return fmt.Errorf("table %s not visible after creation", t.Name)
		}
		prometheus.RecordProvisionStep("create_"+t.Name, "ok")
		log.Debug("Table created", zap.String("table", t.Name))
	}
	return nil
}

// switchSchema sets the connection's search_path and confirms the switch
// actually took effect before anything else runs on the connection
func (p *Provisioner) switchSchema(c conn, schema string) error {
	if !ValidSchemaName(schema) && schema != defaultSchema {
		return fmt.Errorf("%w: %q", ErrInvalidSchemaName, schema)
	}
	if err := c.Exec(fmt.Sprintf("SET search_path TO %s", schema)); err != nil {
		return fmt.Errorf("set search_path to %s: %w", schema, err)
	}
	current, err := c.QueryString("SELECT current_schema()")
	if err != nil {
		return fmt.Errorf("query current schema: %w", err)
	}
	if current != schema {
		return fmt.Errorf("%w: active schema is %q, wanted %q", ErrContextMismatch, current, schema)
	}
	return nil
}

func (p *Provisioner) schemaExists(c conn, schema string) (bool, error) {
	n, err := c.QueryInt("SELECT count(*) FROM information_schema.schemata WHERE schema_name = ?", schema)
	return n > 0, err
}

func (p *Provisioner) tableExists(c conn, schema, table string) (bool, error) {
	n, err := c.QueryInt(
		"SELECT count(*) FROM information_schema.tables WHERE table_schema = ? AND table_name = ?",
		schema, table)
	return n > 0, err
}

func (p *Provisioner) countTables(c conn, schema string) (int64, error) {
	return c.QueryInt("SELECT count(*) FROM information_schema.tables WHERE table_schema = ?", schema)
}
