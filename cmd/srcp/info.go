package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// runInfo handles the "srcp info" subcommand.
// It prints general configuration information and, with flags,
// client-specific MCP configuration snippets.
func runInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	claude := fs.Bool("claude", false, "show Claude Desktop MCP client configuration")
	cursor := fs.Bool("cursor", false, "show Cursor MCP client configuration")
	fs.Parse(args)

	switch {
	case *claude:
		printClaudeConfig()
	case *cursor:
		printCursorConfig()
	default:
		printGeneralInfo()
	}
}

func printGeneralInfo() {
	fmt.Fprintf(os.Stdout, `srcp %s — Schema Registry control plane MCP server

srcp mediates between tool-driven clients (AI agents, CLIs, automation)
and a fleet of Confluent-compatible Schema Registry instances: schema
lifecycle, cross-registry migration, async task tracking, and guided
multi-step workflows, all exposed as MCP tools.

TRANSPORT MODES

  stdio (default)
    Communicates over stdin/stdout using JSON-RPC 2.0. Used when launched
    as a subprocess by an MCP client.

  http
    Runs as a standalone HTTP server (MCP Streamable HTTP transport,
    spec 2025-03-26) on SRCP_HOST:SRCP_PORT. Set SRCP_AUTH_TOKEN to
    require a shared bearer token.

    Endpoint:      POST /mcp
    Health check:  GET /health
    Default port:  8765

REGISTRY FLEET (environment)

  Multi mode, for i in 1..8 — any valid (NAME_i, URL_i) pair enables it
  and the first valid slot becomes the default registry:

    SCHEMA_REGISTRY_NAME_i      logical registry name (unique)
    SCHEMA_REGISTRY_URL_i       base URL, e.g. http://localhost:8081
    SCHEMA_REGISTRY_USER_i      basic-auth user (optional)
    SCHEMA_REGISTRY_PASSWORD_i  basic-auth password (optional)
    READONLY_i                  true|1|yes|on blocks writes to this registry

  Single mode (used only when no numbered slot is present):

    SCHEMA_REGISTRY_URL, SCHEMA_REGISTRY_USER,
    SCHEMA_REGISTRY_PASSWORD, READONLY

TOOLS (58)

  Registry (7):    listRegistries, getRegistryInfo, testRegistryConnection,
                   testAllRegistries, setDefaultRegistry, getDefaultRegistry,
                   checkReadonlyMode
  Schemas (6):     registerSchema, getSchema, getSchemaVersions,
                   checkCompatibility, listSubjects, deleteSubject
  Contexts (3):    listContexts, createContext, deleteContext
  Config (4):      getGlobalConfig, updateGlobalConfig, getSubjectConfig,
                   updateSubjectConfig
  Modes (4):       getMode, updateMode, getSubjectMode, updateSubjectMode
  Migration (10):  migrateSchema, migrateContext, listMigrations,
                   getMigrationStatus, compareRegistries,
                   compareContextsAcrossRegistries, findMissingSchemas,
                   clearContextBatch, clearMultipleContextsBatch,
                   clearContextAcrossRegistriesBatch
  Tasks (6):       createAsyncTask, getTaskStatus, listTasks, cancelTask,
                   cancelAllTasks, resetTaskQueue
  Workflows (10):  startWorkflow, listWorkflows, workflowStatus,
                   abortWorkflow, describeWorkflow, guidedSchemaMigration,
                   guidedContextReorganization, guidedDisasterRecovery,
                   guidedSchemaEvolution, submitElicitationResponse
  Interactive (4): registerSchemaInteractive, migrateContextInteractive,
                   createContextInteractive, checkCompatibilityInteractive
  Counting (4):    countContexts, countSchemas, countSchemaVersions,
                   getRegistryStatistics

PROMPTS (2)

  srcp-guide      Usage guide (focus: overview/migration/workflows/tools)
  srcp-migration  Step-by-step plan for a specific migration

RESOURCES (3)

  registry://data-model          Entities: registries, contexts, subjects,
                                 versions, tasks, workflows
  registry://tool-reference      Tool usage quick reference
  registry://migration-playbook  Migration procedure and failure handling

SERVICE SETTINGS

  Read from srcp.toml (./srcp.toml, ~/.config/srcp/srcp.toml, or
  SRCP_CONFIG), overridden by environment:

    SRCP_TRANSPORT, SRCP_HOST, SRCP_PORT, SRCP_CORS_ORIGINS,
    SRCP_AUTH_TOKEN, SRCP_LOG_LEVEL, SRCP_TASK_POOL_SIZE,
    SRCP_ELICITATION_DEFAULT_TIMEOUT_SECONDS,
    SRCP_SMART_DEFAULTS_ENABLED, SRCP_SMART_DEFAULTS_STORE_PATH

CLIENT CONFIGURATION

  To see configuration for a specific MCP client, run:

    srcp info --claude      Claude Desktop (claude_desktop_config.json)
    srcp info --cursor      Cursor (.cursor/mcp.json)
`, Version)
}

func printClaudeConfig() {
	printStdioConfig("Claude Desktop", "claude_desktop_config.json", `{
  "mcpServers": {
    "schema-registry": {
      "command": "srcp",
      "env": {
        "SCHEMA_REGISTRY_NAME_1": "dev",
        "SCHEMA_REGISTRY_URL_1": "http://localhost:8081",
        "SCHEMA_REGISTRY_NAME_2": "prod",
        "SCHEMA_REGISTRY_URL_2": "http://localhost:8082",
        "READONLY_2": "true"
      }
    }
  }
}`)

	printHTTPConfig("Claude Desktop", "claude_desktop_config.json", `{
  "mcpServers": {
    "schema-registry": {
      "type": "streamable-http",
      "url": "http://your-srcp-server:8765/mcp",
      "headers": {
        "Authorization": "Bearer your-shared-token"
      }
    }
  }
}`)
}

func printCursorConfig() {
	printStdioConfig("Cursor", ".cursor/mcp.json", `{
  "mcpServers": {
    "schema-registry": {
      "command": "srcp",
      "env": {
        "SCHEMA_REGISTRY_URL": "http://localhost:8081"
      }
    }
  }
}`)

	printHTTPConfig("Cursor", ".cursor/mcp.json", `{
  "mcpServers": {
    "schema-registry": {
      "type": "streamable-http",
      "url": "http://your-srcp-server:8765/mcp",
      "headers": {
        "Authorization": "Bearer your-shared-token"
      }
    }
  }
}`)
}

func printStdioConfig(client, file, config string) {
	fmt.Fprintf(os.Stdout, `%s — stdio mode
%s

Add to %s:

%s

srcp runs as a subprocess — no server needed. The registry fleet is
configured through the env block.

`, client, strings.Repeat("─", len(client)+14), file, config)
}

func printHTTPConfig(client, file, config string) {
	fmt.Fprintf(os.Stdout, `%s — HTTP mode (remote server)
%s

Add to %s:

%s

The Authorization header must match the server's SRCP_AUTH_TOKEN; drop
it when the server runs with auth disabled.

`, client, strings.Repeat("─", len(client)+30), file, config)
}
