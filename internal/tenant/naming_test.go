package tenant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaName(t *testing.T) {
	assert.Equal(t, "tenant_1", SchemaName(1))
	assert.Equal(t, "tenant_42", SchemaName(42))
	assert.Equal(t, "tenant_0", SchemaName(0))
}

func TestValidSchemaName(t *testing.T) {
	valid := []string{"tenant_1", "tenant_0", "tenant_99999"}
	for _, name := range valid {
		assert.True(t, ValidSchemaName(name), name)
	}

	invalid := []string{
		"",
		"public",
		"tenant_",
		"tenant_abc",
		"tenant_1x",
		"Tenant_1",
		"tenant_1; DROP SCHEMA public",
		"tenant_1 --",
		" tenant_1",
	}
	for _, name := range invalid {
		assert.False(t, ValidSchemaName(name), name)
	}
}
