package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/autobib/autobib/internal/config"
)

// DoctorCheck is one named health check, grounded on the teacher's
// cmd/bd/doctor package's DoctorCheck{Name, Status, Message} shape.
type DoctorCheck struct {
	Name    string
	OK      bool
	Message string
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Quick health checks distinct from full integrity validation",
	Long: `doctor runs fast, cheap checks (does the database file exist and
is it readable, is a stale lock file present) and then confirms that the
database opens with a current schema; it does not run a validate pass.
Use "validate" for the exhaustive integrity
checks of spec.md §4.8.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		checks := []DoctorCheck{checkDBFileExists(), checkStaleLock()}
		anyFailed := false
		for _, c := range checks {
			if c.OK {
				logger.Info("%s: ok", c.Name)
			} else {
				logger.Warn("%s: %s", c.Name, c.Message)
				anyFailed = true
			}
		}

		db, err := openStore(ctx)
		if err != nil {
			logger.Error("opening database: %v", err)
			return err
		}
		db.Close()
		logger.Info("database opens cleanly (schema is current)")

		if anyFailed {
			logger.Suggest("run \"autobib validate --fix\" for a full integrity pass")
		}
		return nil
	},
}

func checkDBFileExists() DoctorCheck {
	path := config.DBPath()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return DoctorCheck{Name: "database file", OK: true, Message: "no database yet; one will be created on first write"}
		}
		return DoctorCheck{Name: "database file", OK: false, Message: err.Error()}
	}
	return DoctorCheck{Name: "database file", OK: true}
}

func checkStaleLock() DoctorCheck {
	lockPath := config.DBPath() + ".lock"
	if _, err := os.Stat(lockPath); err != nil {
		return DoctorCheck{Name: "write lock", OK: true}
	}
	return DoctorCheck{Name: "write lock", OK: true, Message: "a lock file exists; harmless if no other autobib process is running"}
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
