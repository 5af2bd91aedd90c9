package tenant

import (
	"context"
	"errors"
	"fmt"

	"registration-service/internal/model"
	"registration-service/pkg/config"
	"registration-service/prometheus"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// ErrTenantNotFound is returned when the tenant id has no live registry row
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrTenantNotUsable is returned for tenants that exist but must not serve
	// requests (inactive, suspended, or expired)
	ErrTenantNotUsable = errors.New("tenant is not usable")
)

// Router produces tenant-scoped database handles. A missing or unusable
// tenant is an error, never a silent fallback to the shared schema.
type Router struct {
	registry *gorm.DB
	cfg      *config.Config
	log      *zap.Logger
}

// NewRouter creates a Router over the shared registry handle
func NewRouter(registry *gorm.DB, cfg *config.Config, log *zap.Logger) *Router {
	return &Router{registry: registry, cfg: cfg, log: log}
}

// Scope is a data-access handle bound to exactly one tenant schema for its
// lifetime. Callers must Close it on every exit path.
type Scope struct {
	DB     *gorm.DB
	Tenant *model.Tenant
	Schema string
	closed bool
}

// Close releases the scope's dedicated connection
func (s *Scope) Close() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true
	prometheus.OpenTenantScopesGauge.Dec()
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Acquire opens a handle scoped to the given tenant's schema.
//
// The schema binding is fixed at connect time through the DSN search_path
// parameter and is never mutated afterwards, so a scope can never observe
// another request's context switch. The handle owns its own single
// connection and must be closed at the end of the request.
func (r *Router) Acquire(ctx context.Context, tenantID uint) (*Scope, error) {
	prometheus.RecordTenantOperation("scope")

	var t model.Tenant
	err := r.registry.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", tenantID, false).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrTenantNotFound, tenantID)
	}
	if err != nil {
		return nil, fmt.Errorf("look up tenant %d: %w", tenantID, err)
	}
	if !t.Usable() {
		return nil, fmt.Errorf("%w: id %d status %s", ErrTenantNotUsable, tenantID, t.Status)
	}

	schema := SchemaName(tenantID)
	if t.SchemaName != schema {
		// Registry integrity violation: the stored name must always equal the
		// derivation. Refuse the scope rather than trusting either value.
		return nil, fmt.Errorf("tenant %d registry schema %q does not match derived %q",
			tenantID, t.SchemaName, schema)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  r.cfg.DB.GetTenantDSN(schema),
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(r.cfg.DB.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open tenant handle for %s: %w", schema, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get tenant connection for %s: %w", schema, err)
	}
	// One dedicated connection per scope. Scoped queries never share a
	// connection with another request, which is what makes DSN-pinned
	// search_path safe under interleaving.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	// Confirm the handle actually landed in the tenant schema before any
	// scoped query runs on it.
	var current string
	if err := db.WithContext(ctx).Raw("SELECT current_schema()").Row().Scan(&current); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("verify tenant context for %s: %w", schema, err)
	}
	if current != schema {
		sqlDB.Close()
		prometheus.RecordTenantError(tenantID, "context_mismatch")
		return nil, fmt.Errorf("%w: active schema is %q, wanted %q", ErrContextMismatch, current, schema)
	}

	prometheus.OpenTenantScopesGauge.Inc()
	r.log.Debug("Tenant scope acquired",
		zap.Uint("tenant_id", tenantID),
		zap.String("schema", schema))

	return &Scope{DB: db, Tenant: &t, Schema: schema}, nil
}
