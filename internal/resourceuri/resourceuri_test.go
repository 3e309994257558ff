package resourceuri

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeReplacesUnsafeChars(t *testing.T) {
	assert.Equal(t, "prod_orders", Sanitize("prod orders"))
	assert.Equal(t, "prod-orders.v1", Sanitize("prod-orders.v1"))
	assert.Equal(t, "a_b_c", Sanitize("a/b:c"))
}

func TestVersionURI(t *testing.T) {
	uri := Version("prod-us", "billing", "orders-created", 3)
	assert.Equal(t, "registry://prod-us/contexts/billing/subjects/orders-created/versions/3", uri)
}

func TestSubjectConfigURI(t *testing.T) {
	uri := SubjectConfig("prod us", ".", "orders")
	assert.Equal(t, "registry://prod_us/contexts/./subjects/orders/config", uri)
}

func TestMigrationAndTaskURIs(t *testing.T) {
	assert.Equal(t, "registry://prod-us/migrations/mig-1", Migration("prod-us", "mig-1"))
	assert.Equal(t, "registry://prod-us/tasks/task-1", Task("prod-us", "task-1"))
}
