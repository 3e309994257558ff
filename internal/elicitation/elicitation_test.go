package elicitation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srcp/schema-registry-controlplane/internal/srerr"
)

func TestCreateAndSubmit(t *testing.T) {
	m := NewManager()
	req := m.Create([]Field{
		{Name: "compatibility", Kind: KindChoice, Required: true, Options: []string{"BACKWARD", "FULL", "NONE"}},
	}, 30, "")

	err := m.Submit(Response{RequestID: req.ID, Values: map[string]any{"compatibility": "FULL"}})
	require.NoError(t, err)

	resp, err := m.WaitFor(req.ID, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "FULL", resp.Values["compatibility"])
}

func TestSubmitMissingRequired(t *testing.T) {
	m := NewManager()
	req := m.Create([]Field{{Name: "subject", Kind: KindString, Required: true}}, 30, "")

	err := m.Submit(Response{RequestID: req.ID, Values: map[string]any{}})
	require.Error(t, err)
	assert.True(t, srerr.As(err, srerr.ElicitationInvalid))
}

func TestSubmitChoiceNotInOptions(t *testing.T) {
	m := NewManager()
	req := m.Create([]Field{{Name: "level", Kind: KindChoice, Required: true, Options: []string{"FULL", "NONE"}}}, 30, "")

	err := m.Submit(Response{RequestID: req.ID, Values: map[string]any{"level": "BOGUS"}})
	require.Error(t, err)
	assert.True(t, srerr.As(err, srerr.ElicitationInvalid))
}

func TestSubmitDuplicateRejected(t *testing.T) {
	m := NewManager()
	req := m.Create([]Field{{Name: "subject", Kind: KindString, Required: true}}, 30, "")

	require.NoError(t, m.Submit(Response{RequestID: req.ID, Values: map[string]any{"subject": "orders"}}))
	err := m.Submit(Response{RequestID: req.ID, Values: map[string]any{"subject": "orders-v2"}})
	require.Error(t, err)
	assert.True(t, srerr.As(err, srerr.ElicitationDuplicate))
}

func TestSubmitUnknownID(t *testing.T) {
	m := NewManager()
	err := m.Submit(Response{RequestID: "does-not-exist", Values: map[string]any{}})
	require.Error(t, err)
	assert.True(t, srerr.As(err, srerr.ElicitationInvalid))
}

func TestExpiry(t *testing.T) {
	m := NewManager()
	req := m.Create([]Field{{Name: "subject", Kind: KindString, Required: true}}, 1, "")

	_, err := m.WaitFor(req.ID, 2*time.Second)
	require.Error(t, err)
	assert.True(t, srerr.As(err, srerr.ElicitationExpired))

	err = m.Submit(Response{RequestID: req.ID, Values: map[string]any{"subject": "late"}})
	require.Error(t, err)
	assert.True(t, srerr.As(err, srerr.ElicitationExpired))
}

func TestOptionalEmptyFieldSkipsChecks(t *testing.T) {
	m := NewManager()
	req := m.Create([]Field{
		{Name: "email", Kind: KindEmail, Required: false},
	}, 30, "")

	err := m.Submit(Response{RequestID: req.ID, Values: map[string]any{"email": ""}})
	require.NoError(t, err)
}

func TestEmailValidation(t *testing.T) {
	m := NewManager()
	req := m.Create([]Field{{Name: "email", Kind: KindEmail, Required: true}}, 30, "")
	err := m.Submit(Response{RequestID: req.ID, Values: map[string]any{"email": "not-an-email"}})
	require.Error(t, err)
}

func TestValidationRulePattern(t *testing.T) {
	minLen := 3
	fields := []Field{
		{Name: "subject", Kind: KindString, Required: true, Validation: &ValidationRule{Pattern: `^[a-z0-9\-]+$`, MinLength: &minLen}},
	}
	assert.NoError(t, Validate(fields, map[string]any{"subject": "orders-v2"}))
	assert.Error(t, Validate(fields, map[string]any{"subject": "Orders"}))
	assert.Error(t, Validate(fields, map[string]any{"subject": "ab"}))
}

func TestValidationRuleValueRange(t *testing.T) {
	minV := 1.0
	maxV := 10.0
	fields := []Field{
		{Name: "retries", Kind: KindNumber, Required: true, Validation: &ValidationRule{MinValue: &minV, MaxValue: &maxV}},
	}
	assert.NoError(t, Validate(fields, map[string]any{"retries": 5.0}))
	assert.Error(t, Validate(fields, map[string]any{"retries": 0.0}))
	assert.Error(t, Validate(fields, map[string]any{"retries": 11.0}))
}

func TestCancelAndList(t *testing.T) {
	m := NewManager()
	req := m.Create([]Field{{Name: "subject", Kind: KindString, Required: true}}, 30, "")
	assert.Len(t, m.List(), 1)
	assert.True(t, m.Cancel(req.ID))
	assert.Len(t, m.List(), 0)
	assert.False(t, m.Cancel(req.ID))
}
