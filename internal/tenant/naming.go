package tenant

import (
	"fmt"
	"regexp"
)

// Schema names are always derived from the tenant id, never taken from the
// client. The closed tenant_{integer} form is the only thing the provisioner
// and the session router will ever interpolate into SQL text.
var schemaNamePattern = regexp.MustCompile(`^tenant_[0-9]+$`)

// SchemaName derives the schema name for a tenant id
func SchemaName(tenantID uint) string {
	return fmt.Sprintf("tenant_%d", tenantID)
}

// ValidSchemaName reports whether name matches the tenant_{id} derivation
func ValidSchemaName(name string) bool {
	return schemaNamePattern.MatchString(name)
}
