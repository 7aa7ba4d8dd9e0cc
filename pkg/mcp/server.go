package mcp

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	uplift "github.com/uplift-labs/uplift/pkg"
	"github.com/uplift-labs/uplift/pkg/affirmations"
	pkgdb "github.com/uplift-labs/uplift/pkg/db"
	"github.com/uplift-labs/uplift/pkg/kvstore"
	"github.com/uplift-labs/uplift/pkg/utils"
)

// UpliftMCPServer exposes the affirmation engine to MCP clients over stdio.
type UpliftMCPServer struct {
	mcpServer *server.MCPServer
	db        *sql.DB
	service   *affirmations.Service
	settings  *affirmations.SettingsStore
	activity  *affirmations.ActivityStore
	kv        *kvstore.Store
	DBPath    string
}

// NewUpliftMCPServer spins up an MCP server backed by the SQLite database at
// dbPath. An empty dbPath falls back to the OS default location; an empty
// catalogPath loads the embedded catalog.
func NewUpliftMCPServer(dbPath, catalogPath string, logger *zap.Logger) (*UpliftMCPServer, error) {
	if dbPath == "" {
		dbPath = utils.GetDefaultDBPathOnly()
	}

	// Expand ~ to home directory if present
	if strings.HasPrefix(dbPath, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			dbPath = filepath.Join(homeDir, dbPath[2:])
		}
	}

	// Ensure parent directory exists
	dbDir := filepath.Dir(dbPath)
	if _, err := os.Stat(dbDir); os.IsNotExist(err) {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory for database: %w", err)
		}
	}

	s := server.NewMCPServer(
		"Uplift MCP Server",
		uplift.Version,
		server.WithResourceCapabilities(true, true),
		server.WithLogging(),
		server.WithRecovery(),
	)

	if logger != nil {
		pkgdb.SetLogger(logger)
	}

	// Open database (WAL + FULL).
	dbConn, err := pkgdb.OpenDBConnection(dbPath, true, "FULL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Automatically initialize or migrate the database schema.
	if err := pkgdb.UpgradeDB(dbConn, dbPath, pkgdb.TargetSchemaVersion); err != nil {
		dbConn.Close()
		return nil, fmt.Errorf("failed to initialize/upgrade database schema for '%s': %w", dbPath, err)
	}

	kv := kvstore.New(dbConn, logger)
	if !affirmations.MigrateData(kv, logger) {
		dbConn.Close()
		return nil, fmt.Errorf("failed to migrate app data in '%s'", dbPath)
	}

	settings := affirmations.NewSettingsStore(kv)
	activity := affirmations.NewActivityStore(kv, nil)
	service := affirmations.NewService(settings, activity, logger)
	if err := service.Initialize(catalogPath); err != nil {
		dbConn.Close()
		return nil, fmt.Errorf("failed to load affirmation catalog: %w", err)
	}

	m := &UpliftMCPServer{
		mcpServer: s,
		db:        dbConn,
		service:   service,
		settings:  settings,
		activity:  activity,
		kv:        kv,
		DBPath:    dbPath,
	}
	m.registerTools()
	return m, nil
}

// Start runs the stdio event loop.
func (s *UpliftMCPServer) Start() error {
	return server.ServeStdio(s.mcpServer)
}

// DB returns the underlying *sql.DB.
func (s *UpliftMCPServer) DB() *sql.DB {
	return s.db
}

// MCPRawServer exposes the raw mcp-go server (useful for additional configuration).
func (s *UpliftMCPServer) MCPRawServer() *server.MCPServer {
	return s.mcpServer
}

// Close cleans up allocated resources.
func (s *UpliftMCPServer) Close() error {
	if s.db != nil {
		// TRUNCATE mode waits for transactions and writes the WAL back to the main DB.
		_, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE);")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: WAL checkpoint failed during close: %v\n", err)
		}
		return s.db.Close()
	}
	return nil
}
