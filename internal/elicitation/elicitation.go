// Package elicitation implements the single-shot timed information
// request manager (C5): a tool that needs more input than it was given
// opens a request, a caller submits a response that passes validation,
// and the request is never open to a second submission.
package elicitation

import (
	"net/mail"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/srcp/schema-registry-controlplane/internal/metrics"
	"github.com/srcp/schema-registry-controlplane/internal/srerr"
)

// FieldKind constrains the shape validation applies to one field.
type FieldKind string

const (
	KindString FieldKind = "string"
	KindNumber FieldKind = "number"
	KindChoice FieldKind = "choice"
	KindEmail  FieldKind = "email"
	KindBool   FieldKind = "boolean"
)

// ValidationRule is the optional constraint set attached to a Field:
// pattern, min/max length, min/max value.
type ValidationRule struct {
	Pattern   string   `json:"pattern,omitempty"`
	MinLength *int     `json:"min_length,omitempty"`
	MaxLength *int     `json:"max_length,omitempty"`
	MinValue  *float64 `json:"min_value,omitempty"`
	MaxValue  *float64 `json:"max_value,omitempty"`
}

// Field describes one requested input.
type Field struct {
	Name        string          `json:"name"`
	Kind        FieldKind       `json:"kind"`
	Description string          `json:"description,omitempty"`
	Required    bool            `json:"required"`
	Options     []string        `json:"options,omitempty"` // for KindChoice
	Default     any             `json:"default,omitempty"`
	Validation  *ValidationRule `json:"validation,omitempty"`
}

// Request is a pending elicitation.
type Request struct {
	ID              string    `json:"id"`
	Fields          []Field   `json:"fields"`
	CreatedAt       time.Time `json:"createdAt"`
	TimeoutSeconds  int       `json:"timeoutSeconds"`
	WorkflowContext string    `json:"workflowContext,omitempty"` // bound workflow instance, if any
}

// Response is one submission against a Request.
type Response struct {
	RequestID string         `json:"requestId"`
	Values    map[string]any `json:"values"`
}

type pending struct {
	req   Request
	timer *time.Timer
}

// Manager holds pendingRequests and responses and arms a timeout timer per
// request.
type Manager struct {
	mu        sync.Mutex
	pending   map[string]*pending
	responses map[string]Response
	expired   map[string]time.Time
	metrics   *metrics.Metrics
}

// SetMetrics attaches the process metrics so request lifecycle events are
// recorded. A nil field disables recording.
func (m *Manager) SetMetrics(mx *metrics.Metrics) { m.metrics = mx }

func (m *Manager) recordResolved(outcome string) {
	if m.metrics != nil {
		m.metrics.RecordElicitationResolved(outcome)
	}
}

// NewManager builds an empty elicitation Manager.
func NewManager() *Manager {
	return &Manager{
		pending:   make(map[string]*pending),
		responses: make(map[string]Response),
		expired:   make(map[string]time.Time),
	}
}

// Create stores a new request and arms its timeout timer. On fire, if the
// request is still pending, it is dropped and marked expired.
func (m *Manager) Create(fields []Field, timeoutSeconds int, workflowContext string) Request {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 300
	}
	req := Request{
		ID:              uuid.NewString(),
		Fields:          fields,
		CreatedAt:       time.Now(),
		TimeoutSeconds:  timeoutSeconds,
		WorkflowContext: workflowContext,
	}

	m.mu.Lock()
	p := &pending{req: req}
	p.timer = time.AfterFunc(time.Duration(timeoutSeconds)*time.Second, func() {
		m.expire(req.ID)
	})
	m.pending[req.ID] = p
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.RecordElicitationOpened()
	}
	return req
}

func (m *Manager) expire(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pending[id]; ok {
		delete(m.pending, id)
		m.expired[id] = time.Now()
		m.recordResolved("expired")
	}
}

// Submit validates and stores a response. It rejects unknown, expired, or
// already-answered requests.
func (m *Manager) Submit(resp Response) error {
	m.mu.Lock()
	if _, answered := m.responses[resp.RequestID]; answered {
		m.mu.Unlock()
		return srerr.New(srerr.ElicitationDuplicate, "elicitation %q already has a response", resp.RequestID)
	}
	p, ok := m.pending[resp.RequestID]
	if !ok {
		_, wasExpired := m.expired[resp.RequestID]
		m.mu.Unlock()
		if wasExpired {
			return srerr.New(srerr.ElicitationExpired, "elicitation %q expired", resp.RequestID)
		}
		return srerr.New(srerr.ElicitationInvalid, "unknown elicitation %q", resp.RequestID)
	}
	fields := p.req.Fields
	m.mu.Unlock()

	if err := Validate(fields, resp.Values); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Re-check under lock: another submission or the timer may have landed
	// while validation ran outside it.
	if _, answered := m.responses[resp.RequestID]; answered {
		return srerr.New(srerr.ElicitationDuplicate, "elicitation %q already has a response", resp.RequestID)
	}
	p, ok = m.pending[resp.RequestID]
	if !ok {
		return srerr.New(srerr.ElicitationExpired, "elicitation %q expired", resp.RequestID)
	}
	p.timer.Stop()
	delete(m.pending, resp.RequestID)
	m.responses[resp.RequestID] = resp
	m.recordResolved("answered")
	return nil
}

// WaitFor polls until a response arrives or the timeout elapses, whichever
// comes first.
func (m *Manager) WaitFor(id string, timeout time.Duration) (Response, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	deadline := time.Now().Add(timeout)
	for {
		m.mu.Lock()
		if resp, ok := m.responses[id]; ok {
			m.mu.Unlock()
			return resp, nil
		}
		_, stillPending := m.pending[id]
		_, wasExpired := m.expired[id]
		m.mu.Unlock()

		if wasExpired {
			return Response{}, srerr.New(srerr.ElicitationExpired, "elicitation %q expired", id)
		}
		if !stillPending {
			return Response{}, srerr.New(srerr.ElicitationInvalid, "unknown elicitation %q", id)
		}
		if time.Now().After(deadline) {
			return Response{}, srerr.New(srerr.ElicitationExpired, "timed out waiting for elicitation %q", id)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// Cancel drops a pending request without recording a response.
func (m *Manager) Cancel(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pending[id]
	if !ok {
		return false
	}
	p.timer.Stop()
	delete(m.pending, id)
	m.recordResolved("cancelled")
	return true
}

// List returns every currently pending request.
func (m *Manager) List() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, 0, len(m.pending))
	for _, p := range m.pending {
		out = append(out, p.req)
	}
	return out
}

// CleanupExpired drops expired-request bookkeeping older than maxAge and
// returns the count removed.
func (m *Manager) CleanupExpired(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, at := range m.expired {
		if at.Before(cutoff) {
			delete(m.expired, id)
			removed++
		}
	}
	return removed
}

var emailLike = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Validate checks a response's values against the field set: missing required is invalid; a choice value
// outside its options is invalid; optional empty values skip all type
// checks.
func Validate(fields []Field, values map[string]any) error {
	for _, f := range fields {
		v, present := values[f.Name]
		empty := !present || v == nil || v == ""

		if f.Required && empty {
			return srerr.New(srerr.ElicitationInvalid, "field %q is required", f.Name)
		}
		if !f.Required && empty {
			continue
		}

		switch f.Kind {
		case KindChoice:
			s, ok := v.(string)
			if !ok || !contains(f.Options, s) {
				return srerr.New(srerr.ElicitationInvalid, "field %q must be one of %v", f.Name, f.Options)
			}
		case KindEmail:
			s, ok := v.(string)
			if !ok || !isEmail(s) {
				return srerr.New(srerr.ElicitationInvalid, "field %q is not a valid email", f.Name)
			}
		}

		if f.Validation != nil {
			if err := applyValidationRule(f.Name, v, f.Validation); err != nil {
				return err
			}
		}
	}
	return nil
}

func applyValidationRule(name string, v any, rule *ValidationRule) error {
	if rule.Pattern != "" {
		s, ok := v.(string)
		if !ok {
			return srerr.New(srerr.ElicitationInvalid, "field %q must be a string to match a pattern", name)
		}
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return srerr.New(srerr.ElicitationInvalid, "field %q has an invalid pattern rule: %v", name, err)
		}
		if !re.MatchString(s) {
			return srerr.New(srerr.ElicitationInvalid, "field %q does not match required pattern", name)
		}
	}
	if rule.MinLength != nil || rule.MaxLength != nil {
		s, ok := v.(string)
		if !ok {
			return srerr.New(srerr.ElicitationInvalid, "field %q must be a string to check length", name)
		}
		if rule.MinLength != nil && len(s) < *rule.MinLength {
			return srerr.New(srerr.ElicitationInvalid, "field %q is shorter than %d characters", name, *rule.MinLength)
		}
		if rule.MaxLength != nil && len(s) > *rule.MaxLength {
			return srerr.New(srerr.ElicitationInvalid, "field %q is longer than %d characters", name, *rule.MaxLength)
		}
	}
	if rule.MinValue != nil || rule.MaxValue != nil {
		n, ok := toFloat(v)
		if !ok {
			return srerr.New(srerr.ElicitationInvalid, "field %q must be numeric to check range", name)
		}
		if rule.MinValue != nil && n < *rule.MinValue {
			return srerr.New(srerr.ElicitationInvalid, "field %q is below minimum %v", name, *rule.MinValue)
		}
		if rule.MaxValue != nil && n > *rule.MaxValue {
			return srerr.New(srerr.ElicitationInvalid, "field %q is above maximum %v", name, *rule.MaxValue)
		}
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func contains(options []string, s string) bool {
	for _, o := range options {
		if o == s {
			return true
		}
	}
	return false
}

func isEmail(s string) bool {
	if _, err := mail.ParseAddress(s); err != nil {
		return emailLike.MatchString(s)
	}
	return true
}
