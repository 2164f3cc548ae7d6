package cli

import "database/sql"

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// ExtractCommand fetches an account's timeline, filters the noise, and
// renders markdown files.
type ExtractCommand struct {
	Account string `long:"account" description:"Account ID to extract (required)" required:"true"`
	Since   string `long:"since" description:"How far back to extract (e.g., 90d, 12w)" default:"90d"`
	Until   string `long:"until" description:"Cut off this long before now (e.g., 7d)"`
	Out     string `long:"out" description:"Override output directory"`
	Name    string `long:"name" description:"Customer name used in filenames and headers"`

	globals *GlobalFlags
	version string
}

// StatusCommand shows ledger statistics and configuration summary.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}

// SearchCommand searches persisted emails by keyword with filters.
type SearchCommand struct {
	Query   string `long:"query" description:"Full-text query over subject and snippet"`
	Sender  string `long:"sender" description:"Filter by sender address"`
	Account string `long:"account" description:"Filter by account ID"`
	Since   string `long:"since" description:"Only emails newer than duration (e.g., 7d, 24h)" default:"30d"`
	Until   string `long:"until" description:"Only emails older than duration"`
	Limit   int    `long:"limit" description:"Maximum results" default:"10"`
	Offset  int    `long:"offset" description:"Skip first N results" default:"0"`

	globals *GlobalFlags
	version string
}

// PurgeCommand deletes ALL local data after a safety confirmation.
type PurgeCommand struct {
	All   bool `long:"all" description:"Required flag to confirm purge intent"`
	Force bool `long:"force" description:"Skip safety confirmation prompt"`

	globals *GlobalFlags
	version string
	db      *sql.DB // injectable for testing; nil means open default DB
}
