// Command srcp runs the schema-registry control plane MCP server.
//
// It communicates over stdio using JSON-RPC 2.0 (MCP protocol) by default,
// or over Streamable HTTP when configured, and mediates between tool-driven
// clients and a fleet of Confluent-compatible Schema Registry instances.
//
// Registry fleet environment variables (multi mode, i in 1..8):
//
//	SCHEMA_REGISTRY_NAME_i, SCHEMA_REGISTRY_URL_i,
//	SCHEMA_REGISTRY_USER_i, SCHEMA_REGISTRY_PASSWORD_i, READONLY_i
//
// Single mode (used when no numbered slot is present):
//
//	SCHEMA_REGISTRY_URL, SCHEMA_REGISTRY_USER,
//	SCHEMA_REGISTRY_PASSWORD, READONLY
//
// Service settings come from srcp.toml / SRCP_* variables; see "srcp info".
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/srcp/schema-registry-controlplane/internal/config"
	"github.com/srcp/schema-registry-controlplane/internal/content"
	"github.com/srcp/schema-registry-controlplane/internal/elicitation"
	"github.com/srcp/schema-registry-controlplane/internal/mcp"
	"github.com/srcp/schema-registry-controlplane/internal/metrics"
	"github.com/srcp/schema-registry-controlplane/internal/migration"
	"github.com/srcp/schema-registry-controlplane/internal/registry"
	"github.com/srcp/schema-registry-controlplane/internal/scheduler"
	"github.com/srcp/schema-registry-controlplane/internal/smartdefaults"
	"github.com/srcp/schema-registry-controlplane/internal/task"
	"github.com/srcp/schema-registry-controlplane/internal/tools/configtools"
	"github.com/srcp/schema-registry-controlplane/internal/tools/contexttools"
	"github.com/srcp/schema-registry-controlplane/internal/tools/interactive"
	"github.com/srcp/schema-registry-controlplane/internal/tools/migrationtools"
	"github.com/srcp/schema-registry-controlplane/internal/tools/modetools"
	"github.com/srcp/schema-registry-controlplane/internal/tools/registrytools"
	"github.com/srcp/schema-registry-controlplane/internal/tools/schematools"
	"github.com/srcp/schema-registry-controlplane/internal/tools/statstools"
	"github.com/srcp/schema-registry-controlplane/internal/tools/tasktools"
	"github.com/srcp/schema-registry-controlplane/internal/tools/workflowtools"
	"github.com/srcp/schema-registry-controlplane/internal/workflow"
)

// Version is set via ldflags at build time.
var Version = "dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "info" {
		runInfo(os.Args[2:])
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "srcp: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to srcp.toml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Structured logging goes to stderr; stdout is the MCP protocol stream.
	logLevel := parseLogLevel(cfg.Log.Level)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	version := cfg.Server.Version
	if Version != "dev" {
		version = Version
	}

	// Load the registry fleet from the environment.
	fleet, defaultName := registry.LoadFleet()
	manager := registry.NewManager(fleet, defaultName, logger)
	logger.Info("starting srcp",
		"version", version,
		"registries", manager.Count(),
		"default_registry", manager.DefaultName(),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Core engines.
	mx := metrics.New()
	tasks := task.NewManager(cfg.Task.PoolSize, logger)
	tasks.SetMetrics(mx)
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		tasks.Shutdown(shutdownCtx)
	}()

	engine := migration.NewEngine(manager, cfg.Task.PoolSize, logger)
	engine.SetMetrics(mx)
	elicitor := elicitation.NewManager()
	elicitor.SetMetrics(mx)

	runtime := workflow.NewRuntime(elicitor)
	if err := runtime.RegisterPredefined(); err != nil {
		return fmt.Errorf("registering predefined workflows: %w", err)
	}

	// Smart defaults are optional: a failed store open degrades to plain
	// elicitations rather than blocking startup.
	var enhancer *smartdefaults.Enhancer
	if cfg.SmartDefaults.Enabled {
		learning, err := smartdefaults.OpenLearningEngine(cfg.SmartDefaults.StorePath)
		if err != nil {
			logger.Warn("smart-defaults store unavailable, suggestions disabled",
				"path", cfg.SmartDefaults.StorePath, "error", err)
		} else {
			defer learning.Close()
			enhancer = smartdefaults.NewEnhancer(smartdefaults.NewEngine(learning))
		}
	}

	coordinator := interactive.NewCoordinator(elicitor, enhancer, cfg.Elicitation.DefaultTimeoutSeconds)

	registryTools := mcp.NewRegistry()
	registerTools(registryTools, manager, engine, tasks, runtime, elicitor, coordinator)

	// Prompts and resources.
	registryTools.RegisterPrompt(&content.GuidePrompt{})
	registryTools.RegisterPrompt(&content.MigrationPrompt{})
	registryTools.RegisterResource(&content.DataModelResource{})
	registryTools.RegisterResource(&content.ToolReferenceResource{})
	registryTools.RegisterResource(&content.MigrationPlaybookResource{})

	// Housekeeping: expired-elicitation bookkeeping is swept periodically so
	// the expired table cannot grow without bound.
	sched := scheduler.NewScheduler(logger)
	sched.AddJob(&elicitationSweep{elicitor: elicitor}, 10*time.Minute)
	sched.Start(ctx)
	defer sched.Stop()

	server := mcp.NewServer(registryTools, mcp.ServerInfo{
		Name:    cfg.Server.Name,
		Version: version,
	}, logger)

	if cfg.Transport.Mode == "http" {
		httpServer := mcp.NewHTTPServer(server, cfg.Transport.CORSOrigins, cfg.Transport.AuthToken, logger)
		addr := cfg.Transport.Host + ":" + cfg.Transport.Port
		logger.Info("serving MCP over HTTP", "addr", addr)
		mux := http.NewServeMux()
		mux.Handle("/", httpServer.Handler())
		mux.Handle("/metrics", mx.Handler())
		srv := &http.Server{Addr: addr, Handler: mux}
		go func() {
			<-ctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			srv.Shutdown(shutdownCtx)
		}()
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}

	return server.Run(ctx)
}

// registerTools wires every tool group into the MCP registry.
func registerTools(
	reg *mcp.Registry,
	manager *registry.Manager,
	engine *migration.Engine,
	tasks *task.Manager,
	runtime *workflow.Runtime,
	elicitor *elicitation.Manager,
	coordinator *interactive.Coordinator,
) {
	// Registry management.
	reg.Register(registrytools.NewListRegistries(manager))
	reg.Register(registrytools.NewGetRegistryInfo(manager))
	reg.Register(registrytools.NewTestRegistryConnection(manager))
	reg.Register(registrytools.NewTestAllRegistries(manager))
	reg.Register(registrytools.NewSetDefaultRegistry(manager))
	reg.Register(registrytools.NewGetDefaultRegistry(manager))
	reg.Register(registrytools.NewCheckReadonlyMode(manager))

	// Schemas.
	registerSchema := schematools.NewRegisterSchema(manager)
	checkCompatibility := schematools.NewCheckCompatibility(manager)
	reg.Register(registerSchema)
	reg.Register(schematools.NewGetSchema(manager))
	reg.Register(schematools.NewGetSchemaVersions(manager))
	reg.Register(checkCompatibility)
	reg.Register(schematools.NewListSubjects(manager))
	reg.Register(schematools.NewDeleteSubject(manager))

	// Contexts.
	createContext := contexttools.NewCreateContext(manager)
	reg.Register(contexttools.NewListContexts(manager))
	reg.Register(createContext)
	reg.Register(contexttools.NewDeleteContext(engine))

	// Config and modes.
	reg.Register(configtools.NewGetGlobalConfig(manager))
	reg.Register(configtools.NewUpdateGlobalConfig(manager))
	reg.Register(configtools.NewGetSubjectConfig(manager))
	reg.Register(configtools.NewUpdateSubjectConfig(manager))
	reg.Register(modetools.NewGetMode(manager))
	reg.Register(modetools.NewUpdateMode(manager))
	reg.Register(modetools.NewGetSubjectMode(manager))
	reg.Register(modetools.NewUpdateSubjectMode(manager))

	// Migration.
	migrateContext := migrationtools.NewMigrateContext(engine, tasks)
	reg.Register(migrationtools.NewMigrateSchema(engine))
	reg.Register(migrateContext)
	reg.Register(migrationtools.NewListMigrations(tasks))
	reg.Register(migrationtools.NewGetMigrationStatus(tasks))
	reg.Register(migrationtools.NewCompareRegistries(engine))
	reg.Register(migrationtools.NewCompareContextsAcrossRegistries(engine))
	reg.Register(migrationtools.NewFindMissingSchemas(engine))
	reg.Register(migrationtools.NewClearContextBatch(engine))
	reg.Register(migrationtools.NewClearMultipleContextsBatch(engine))
	reg.Register(migrationtools.NewClearContextAcrossRegistriesBatch(engine))

	// Tasks.
	reg.Register(tasktools.NewCreateAsyncTask(tasks))
	reg.Register(tasktools.NewGetTaskStatus(tasks))
	reg.Register(tasktools.NewListTasks(tasks))
	reg.Register(tasktools.NewCancelTask(tasks))
	reg.Register(tasktools.NewCancelAllTasks(tasks))
	reg.Register(tasktools.NewResetTaskQueue(tasks))

	// Workflows and elicitation.
	reg.Register(workflowtools.NewStartWorkflow(runtime))
	reg.Register(workflowtools.NewListWorkflows(runtime))
	reg.Register(workflowtools.NewWorkflowStatus(runtime))
	reg.Register(workflowtools.NewAbortWorkflow(runtime))
	reg.Register(workflowtools.NewDescribeWorkflow(runtime))
	reg.Register(workflowtools.NewGuidedSchemaMigration(runtime))
	reg.Register(workflowtools.NewGuidedContextReorganization(runtime))
	reg.Register(workflowtools.NewGuidedDisasterRecovery(runtime))
	reg.Register(workflowtools.NewGuidedSchemaEvolution(runtime))
	reg.Register(workflowtools.NewSubmitElicitationResponse(runtime, elicitor, coordinator))

	// Interactive wrappers: same operations, missing inputs elicited.
	reg.Register(interactive.WrapRegisterSchema(coordinator, registerSchema))
	reg.Register(interactive.WrapMigrateContext(coordinator, migrateContext))
	reg.Register(interactive.WrapCreateContext(coordinator, createContext))
	reg.Register(interactive.WrapCheckCompatibility(coordinator, checkCompatibility))

	// Counting and statistics.
	reg.Register(statstools.NewCountContexts(manager))
	reg.Register(statstools.NewCountSchemas(manager))
	reg.Register(statstools.NewCountSchemaVersions(manager))
	reg.Register(statstools.NewGetRegistryStatistics(manager))
}

// elicitationSweep drops expired elicitation bookkeeping older than a day.
type elicitationSweep struct {
	elicitor *elicitation.Manager
}

func (j *elicitationSweep) Name() string { return "elicitation-sweep" }

func (j *elicitationSweep) Run(context.Context) error {
	j.elicitor.CleanupExpired(24 * time.Hour)
	return nil
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
