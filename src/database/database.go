package database

import (
	"database/sql"
	stdlog "log"

	"github.com/AiProject2025/abdul-instant-price-poc-sub000/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Checking database migrations", "databasePath", databasePath)
	} else {
		stdlog.Println("Checking database migrations for:", databasePath)
	}
	migrateScenarioTables()

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		is_email_verified BOOLEAN DEFAULT FALSE,
		email_verification_token TEXT,
		email_verification_token_expires_at TIMESTAMP,
		password_reset_token TEXT,
		password_reset_token_expires_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		token TEXT NOT NULL,
		refresh_token TEXT NOT NULL,
		user_agent TEXT,
		client_ip TEXT,
		is_blocked BOOLEAN DEFAULT FALSE,
		expires_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS clients (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		deleted_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS scenarios (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		client_id INTEGER,
		name TEXT NOT NULL,
		portfolio_json TEXT NOT NULL DEFAULT '[]',
		groups_json TEXT NOT NULL DEFAULT '[]',
		selection_json TEXT NOT NULL DEFAULT '{"selected_package_ids":[]}',
		deleted_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id),
		FOREIGN KEY(client_id) REFERENCES clients(id)
	);

	CREATE TABLE IF NOT EXISTS scenario_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scenario_id INTEGER NOT NULL,
		application_json TEXT NOT NULL,
		response_json TEXT,
		deleted_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(scenario_id) REFERENCES scenarios(id)
	);

	CREATE TABLE IF NOT EXISTS session_state (
		user_id INTEGER NOT NULL,
		state_key TEXT NOT NULL,
		state_value TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY(user_id, state_key)
	);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	} else {
		stdlog.Println("Database tables ensured/created.")
	}
}

// migrateScenarioTables adds columns introduced after the first release to
// existing scenario tables. New installs get them from CREATE TABLE.
func migrateScenarioTables() {
	var tableName string
	err := DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='scenarios'").Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			if logger.L != nil {
				logger.L.Info("'scenarios' table does not exist, no migration needed as table will be created.")
			} else {
				stdlog.Println("'scenarios' table does not exist, no migration needed as table will be created.")
			}
			return
		}
		if logger.L != nil {
			logger.L.Error("Error checking for 'scenarios' table", "error", err)
		} else {
			stdlog.Printf("Error checking for 'scenarios' table: %v", err)
		}
		return
	}

	columnExists := tableColumns("scenarios")
	if columnExists == nil {
		return
	}

	if _, ok := columnExists["selection_json"]; !ok {
		if _, err := DB.Exec(`ALTER TABLE scenarios ADD COLUMN selection_json TEXT NOT NULL DEFAULT '{"selected_package_ids":[]}'`); err != nil {
			logger.L.Error("Error adding 'selection_json' column to 'scenarios' table", "error", err)
		} else {
			logger.L.Info("Added 'selection_json' column to 'scenarios' table")
		}
	}
	if _, ok := columnExists["deleted_at"]; !ok {
		if _, err := DB.Exec("ALTER TABLE scenarios ADD COLUMN deleted_at TIMESTAMP"); err != nil {
			logger.L.Error("Error adding 'deleted_at' column to 'scenarios' table", "error", err)
		} else {
			logger.L.Info("Added 'deleted_at' column to 'scenarios' table")
		}
	}
}

func tableColumns(table string) map[string]bool {
	rows, err := DB.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		if logger.L != nil {
			logger.L.Error("Error querying table schema", "table", table, "error", err)
		} else {
			stdlog.Printf("Error querying table schema for '%s': %v", table, err)
		}
		return nil
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			if logger.L != nil {
				logger.L.Error("Error scanning column info", "table", table, "error", err)
			} else {
				stdlog.Printf("Error scanning column info for '%s': %v", table, err)
			}
			return nil
		}
		columnExists[name] = true
	}
	if err = rows.Err(); err != nil {
		if logger.L != nil {
			logger.L.Error("Error iterating over column info", "table", table, "error", err)
		}
		return nil
	}
	return columnExists
}
