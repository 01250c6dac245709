package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"
)

var (
	migrateDir  string
	migrateDown bool
)

var migrateCmd = &cobra.Command{
	Use:   "db:migrate",
	Short: "Apply SQL migrations from the migrations directory",
	Run: func(cmd *cobra.Command, args []string) {
		dsn := os.Getenv("MYSQL_DSN")
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s",
				os.Getenv("MYSQL_USER"), os.Getenv("MYSQL_PASS"),
				os.Getenv("MYSQL_HOST"), envOr("MYSQL_PORT", "3306"), os.Getenv("MYSQL_DB"))
		}
		m, err := migrate.New("file://"+migrateDir, "mysql://"+dsn)
		if err != nil {
			fmt.Printf("migrate init failed: %v\n", err)
			os.Exit(1)
		}
		if migrateDown {
			err = m.Steps(-1)
		} else {
			err = m.Up()
		}
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			fmt.Printf("migrate failed: %v\n", err)
			os.Exit(1)
		}
		version, dirty, _ := m.Version()
		fmt.Printf("migrations applied (version=%d dirty=%v)\n", version, dirty)
	},
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func init() {
	migrateCmd.Flags().StringVar(&migrateDir, "dir", "migrations", "Migrations directory")
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "Roll back one migration instead of applying")
	rootCmd.AddCommand(migrateCmd)
}
