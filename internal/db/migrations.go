package db

import (
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
)

// RunMigrations выполняет SQL-скрипты при старте. Ошибки вида
// "already exists" пропускаются, чтобы скрипты можно было гонять повторно.
func RunMigrations(db *sqlx.DB, scriptPaths ...string) error {
	for _, scriptPath := range scriptPaths {
		log.Printf("Executing SQL script: %s", scriptPath)

		content, err := os.ReadFile(scriptPath)
		if err != nil {
			return fmt.Errorf("db.RunMigrations: cannot read %s: %w", scriptPath, err)
		}

		statements := strings.Split(string(content), ";")
		for _, stmt := range statements {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}

			if _, err := db.Exec(stmt); err != nil {
				if strings.Contains(err.Error(), "already exists") || strings.Contains(err.Error(), "duplicate key") {
					log.Printf("Skipping error in %s: %v", scriptPath, err)
					continue
				}
				return fmt.Errorf("db.RunMigrations: error executing statement in %s: %w", scriptPath, err)
			}
		}
		log.Printf("Successfully executed %s", scriptPath)
	}

	return nil
}
