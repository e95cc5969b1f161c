package system

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/daybook/internal/cli"
	"github.com/julianstephens/daybook/internal/keyring"
	"github.com/julianstephens/daybook/internal/migration"
	"github.com/julianstephens/daybook/internal/storage"
	"github.com/julianstephens/daybook/migrations"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false

	// Check 1: DB reachable
	if err := checkDBReachable(ctx); err != nil {
		fmt.Printf("❌ Database reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Database reachable: OK\n")
	}

	// Check 2: Schema version
	if err := checkSchemaVersion(ctx); err != nil {
		fmt.Printf("❌ Schema version: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Schema version: OK\n")
	}

	// Check 3: Single writer (warning only)
	if err := checkSingleWriter(); err != nil {
		fmt.Printf("⚠ Single writer: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Single writer: OK\n")
	}

	// Check 4: Sync configuration (warning only when sync is off)
	syncEnabled, syncErr := checkSync(ctx)
	switch {
	case !syncEnabled:
		fmt.Printf("⊘ Sync: DISABLED\n")
	case syncErr != nil:
		fmt.Printf("❌ Sync: FAIL\n")
		fmt.Printf("   Error: %v\n", syncErr)
		hasError = true
	default:
		fmt.Printf("✓ Sync: OK\n")
	}

	// Check 5: Clock/timezone sanity
	if err := checkClockTimezone(ctx); err != nil {
		fmt.Printf("❌ Clock/timezone: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Clock/timezone: OK\n")
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	sqliteStore, ok := ctx.Store.Provider().(*storage.SQLiteStore)
	if !ok {
		return nil
	}

	db := sqliteStore.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	var result int
	if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}

	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	sqliteStore, ok := ctx.Store.Provider().(*storage.SQLiteStore)
	if !ok {
		return nil
	}

	db := sqliteStore.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return fmt.Errorf("failed to access sqlite migrations: %w", err)
	}

	runner := migration.NewRunner(db, subFS)

	current, err := runner.CurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}
	latest, err := runner.LatestVersion()
	if err != nil {
		return fmt.Errorf("failed to get latest schema version: %w", err)
	}

	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'daybook migrate')", current, latest)
	}

	return nil
}

// checkSingleWriter looks for other running daybook processes. Two writers
// against the same replica will not corrupt SQLite, but their debounce
// windows race and the last push wins.
func checkSingleWriter() error {
	self := os.Getpid()
	exe := binaryName()

	procs, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("failed to list processes: %w", err)
	}

	var others []int
	for _, p := range procs {
		if p.Pid() == self {
			continue
		}
		if p.Executable() == exe {
			others = append(others, p.Pid())
		}
	}

	if len(others) > 0 {
		return fmt.Errorf("found %d other %s process(es) running: %v", len(others), exe, others)
	}
	return nil
}

func binaryName() string {
	path, err := os.Executable()
	if err != nil {
		return "daybook"
	}
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func checkSync(ctx *cli.Context) (bool, error) {
	settings, err := ctx.Settings()
	if err != nil {
		return true, err
	}
	if !settings.SyncEnabled() {
		return false, nil
	}

	if settings.SyncServerURL == "" {
		return true, fmt.Errorf("sync user is set but server URL is empty")
	}

	if !strings.HasPrefix(settings.SyncServerURL, "postgres") {
		if !keyring.IsAvailable() {
			return true, fmt.Errorf("OS keyring is not available; sync token cannot be read")
		}
	}

	return true, nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}

	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	if settings.Timezone != "" && settings.Timezone != "Local" {
		if _, err := time.LoadLocation(settings.Timezone); err != nil {
			return fmt.Errorf("configured timezone %q is invalid: %w", settings.Timezone, err)
		}
	}

	return nil
}
