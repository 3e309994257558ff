// Package statstools implements the counting tool group: countContexts,
// countSchemas, countSchemaVersions, getRegistryStatistics. Statistics
// fan out one listing call per context, bounded by an errgroup limit so a
// large fleet cannot flood the upstream registry.
package statstools

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/srcp/schema-registry-controlplane/internal/mcp"
	"github.com/srcp/schema-registry-controlplane/internal/registry"
	"github.com/srcp/schema-registry-controlplane/internal/tools"
)

// statsParallelism bounds concurrent listing calls per statistics run.
const statsParallelism = 10

// --- countContexts ---

type CountContexts struct{ manager *registry.Manager }

func NewCountContexts(manager *registry.Manager) *CountContexts {
	return &CountContexts{manager: manager}
}

func (t *CountContexts) Name() string        { return "countContexts" }
func (t *CountContexts) Description() string { return "Count the contexts in one registry." }
func (t *CountContexts) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "registry": {"type": "string", "description": "Registry name; omit for the default registry"}
  }
}`)
}

type registryParams struct {
	Registry string `json:"registry,omitempty"`
}

func (t *CountContexts) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p registryParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	client, err := t.manager.Get(p.Registry)
	if err != nil {
		return tools.ErrorResult(err)
	}
	contexts, err := client.ListContexts(ctx)
	if err != nil {
		return tools.ErrorResult(err)
	}
	return mcp.JSONResult(map[string]any{
		"registry": client.Config().Name,
		"contexts": contexts,
		"count":    len(contexts),
	})
}

// --- countSchemas ---

type CountSchemas struct{ manager *registry.Manager }

func NewCountSchemas(manager *registry.Manager) *CountSchemas {
	return &CountSchemas{manager: manager}
}

func (t *CountSchemas) Name() string { return "countSchemas" }
func (t *CountSchemas) Description() string {
	return "Count the subjects in one context, or across every context of a registry."
}
func (t *CountSchemas) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "registry": {"type": "string"},
    "context": {"type": "string", "description": "Count one context; omit to count the default context"},
    "allContexts": {"type": "boolean", "description": "Count every context, grouped by context name"}
  }
}`)
}

type countSchemasParams struct {
	Registry    string `json:"registry,omitempty"`
	Context     string `json:"context,omitempty"`
	AllContexts bool   `json:"allContexts,omitempty"`
}

func (t *CountSchemas) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p countSchemasParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	client, err := t.manager.Get(p.Registry)
	if err != nil {
		return tools.ErrorResult(err)
	}

	if !p.AllContexts {
		subjects, err := client.ListSubjects(ctx, p.Context)
		if err != nil {
			return tools.ErrorResult(err)
		}
		return mcp.JSONResult(map[string]any{
			"registry": client.Config().Name,
			"context":  p.Context,
			"subjects": subjects,
			"count":    len(subjects),
		})
	}

	contexts, err := client.ListContexts(ctx)
	if err != nil {
		return tools.ErrorResult(err)
	}
	perContext, total, err := countSubjectsByContext(ctx, client, contexts)
	if err != nil {
		return tools.ErrorResult(err)
	}
	return mcp.JSONResult(map[string]any{
		"registry":   client.Config().Name,
		"perContext": perContext,
		"total":      total,
	})
}

func countSubjectsByContext(ctx context.Context, client *registry.Client, contexts []string) (map[string]int, int, error) {
	var mu sync.Mutex
	perContext := make(map[string]int, len(contexts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statsParallelism)
	for _, c := range contexts {
		g.Go(func() error {
			subjects, err := client.ListSubjects(gctx, c)
			if err != nil {
				return err
			}
			mu.Lock()
			perContext[c] = len(subjects)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	total := 0
	for _, n := range perContext {
		total += n
	}
	return perContext, total, nil
}

// --- countSchemaVersions ---

type CountSchemaVersions struct{ manager *registry.Manager }

func NewCountSchemaVersions(manager *registry.Manager) *CountSchemaVersions {
	return &CountSchemaVersions{manager: manager}
}

func (t *CountSchemaVersions) Name() string { return "countSchemaVersions" }
func (t *CountSchemaVersions) Description() string {
	return "Count the registered versions of one subject."
}
func (t *CountSchemaVersions) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "registry": {"type": "string"},
    "subject": {"type": "string"},
    "context": {"type": "string"}
  },
  "required": ["subject"]
}`)
}

type countVersionsParams struct {
	Registry string `json:"registry,omitempty"`
	Subject  string `json:"subject"`
	Context  string `json:"context,omitempty"`
}

func (t *CountSchemaVersions) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p countVersionsParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	if p.Subject == "" {
		return tools.ErrorResult(errors.New("subject is required"))
	}
	client, err := t.manager.Get(p.Registry)
	if err != nil {
		return tools.ErrorResult(err)
	}
	versions, err := client.ListVersions(ctx, p.Subject, p.Context)
	if err != nil {
		return tools.ErrorResult(err)
	}
	return mcp.JSONResult(map[string]any{
		"registry": client.Config().Name,
		"subject":  p.Subject,
		"context":  p.Context,
		"versions": versions,
		"count":    len(versions),
	})
}

// --- getRegistryStatistics ---

type GetRegistryStatistics struct{ manager *registry.Manager }

func NewGetRegistryStatistics(manager *registry.Manager) *GetRegistryStatistics {
	return &GetRegistryStatistics{manager: manager}
}

func (t *GetRegistryStatistics) Name() string { return "getRegistryStatistics" }
func (t *GetRegistryStatistics) Description() string {
	return "Summarize one registry: context count, subjects per context, and optionally total schema versions."
}
func (t *GetRegistryStatistics) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "registry": {"type": "string"},
    "includeVersionCounts": {"type": "boolean", "description": "Also count every subject's versions. One listing call per subject"}
  }
}`)
}

type statisticsParams struct {
	Registry             string `json:"registry,omitempty"`
	IncludeVersionCounts bool   `json:"includeVersionCounts,omitempty"`
}

func (t *GetRegistryStatistics) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p statisticsParams
	if err := json.Unmarshal(params, &p); err != nil {
		return tools.InvalidParams(err)
	}
	client, err := t.manager.Get(p.Registry)
	if err != nil {
		return tools.ErrorResult(err)
	}

	contexts, err := client.ListContexts(ctx)
	if err != nil {
		return tools.ErrorResult(err)
	}
	// The default context is always present even when the registry reports
	// no named contexts.
	scan := contexts
	if len(scan) == 0 {
		scan = []string{"."}
	}

	var mu sync.Mutex
	subjectsByContext := make(map[string][]string, len(scan))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statsParallelism)
	for _, c := range scan {
		g.Go(func() error {
			subjects, err := client.ListSubjects(gctx, c)
			if err != nil {
				return err
			}
			mu.Lock()
			subjectsByContext[c] = subjects
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return tools.ErrorResult(err)
	}

	perContext := make(map[string]int, len(subjectsByContext))
	totalSubjects := 0
	for c, subjects := range subjectsByContext {
		perContext[c] = len(subjects)
		totalSubjects += len(subjects)
	}

	out := map[string]any{
		"registry":          client.Config().Name,
		"contextCount":      len(contexts),
		"contexts":          contexts,
		"subjectsByContext": perContext,
		"totalSubjects":     totalSubjects,
	}

	if p.IncludeVersionCounts {
		totalVersions, err := t.countAllVersions(ctx, client, subjectsByContext)
		if err != nil {
			return tools.ErrorResult(err)
		}
		out["totalVersions"] = totalVersions
	}
	return mcp.JSONResult(out)
}

func (t *GetRegistryStatistics) countAllVersions(ctx context.Context, client *registry.Client, subjectsByContext map[string][]string) (int, error) {
	var mu sync.Mutex
	total := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statsParallelism)
	for c, subjects := range subjectsByContext {
		for _, s := range subjects {
			g.Go(func() error {
				versions, err := client.ListVersions(gctx, s, c)
				if err != nil {
					return err
				}
				mu.Lock()
				total += len(versions)
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return total, nil
}
