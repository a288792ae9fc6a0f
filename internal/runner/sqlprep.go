package runner

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// storeName is the database file a SQL session's script runs against.
const storeName = "ephemeral.db"

// prepopulate seeds a fresh store in dir from the SQL script at
// scriptPath. A missing script is not an error; the user's script then
// starts against an empty store.
func prepopulate(dir, scriptPath string) error {
	script, err := os.ReadFile(scriptPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading prepopulation script: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, storeName))
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(string(script)); err != nil {
		return fmt.Errorf("applying prepopulation script: %w", err)
	}
	return nil
}
