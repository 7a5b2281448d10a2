package model

import (
	"database/sql"
	"errors"
	"time"
)

// Client is a borrower record owned by an operator account.
type Client struct {
	ID        int       `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Scenario is one saved loan scenario: the in-progress portfolio, the
// package groups from the last analysis run, and the operator's selection.
// The JSON columns hold the serialized domain structures; rows are
// soft-deleted and restorable.
type Scenario struct {
	ID            int       `json:"id"`
	UserID        int64     `json:"user_id"`
	ClientID      int64     `json:"client_id,omitempty"`
	Name          string    `json:"name"`
	PortfolioJSON string    `json:"portfolio_json"`
	GroupsJSON    string    `json:"groups_json"`
	SelectionJSON string    `json:"selection_json"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ScenarioResult is a pricing outcome persisted against a scenario.
type ScenarioResult struct {
	ID              int       `json:"id"`
	ScenarioID      int64     `json:"scenario_id"`
	ApplicationJSON string    `json:"application_json"`
	ResponseJSON    string    `json:"response_json"`
	CreatedAt       time.Time `json:"created_at"`
}

// CreateClient inserts a client row for the owning user.
func CreateClient(db *sql.DB, c *Client) error {
	res, err := db.Exec(`INSERT INTO clients (user_id, name, email, phone) VALUES (?, ?, ?, ?)`,
		c.UserID, c.Name, c.Email, c.Phone)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = int(id)
	return nil
}

// SearchClients returns non-deleted clients for the user whose name or email
// matches the query substring.
func SearchClients(db *sql.DB, userID int64, query string) ([]Client, error) {
	rows, err := db.Query(`
	SELECT id, user_id, name, email, phone, created_at, updated_at
	FROM clients
	WHERE user_id = ? AND deleted_at IS NULL AND (name LIKE ? OR email LIKE ?)
	ORDER BY name ASC`, userID, "%"+query+"%", "%"+query+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// CreateScenario inserts a scenario row.
func CreateScenario(db *sql.DB, s *Scenario) error {
	res, err := db.Exec(`
	INSERT INTO scenarios (user_id, client_id, name, portfolio_json, groups_json, selection_json)
	VALUES (?, ?, ?, ?, ?, ?)`,
		s.UserID, nullableID(s.ClientID), s.Name, s.PortfolioJSON, s.GroupsJSON, s.SelectionJSON)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = int(id)
	return nil
}

// GetScenario retrieves a non-deleted scenario owned by the user.
func GetScenario(db *sql.DB, userID, scenarioID int64) (*Scenario, error) {
	row := db.QueryRow(`
	SELECT id, user_id, COALESCE(client_id, 0), name, portfolio_json, groups_json, selection_json, created_at, updated_at
	FROM scenarios
	WHERE id = ? AND user_id = ? AND deleted_at IS NULL`, scenarioID, userID)

	var s Scenario
	err := row.Scan(&s.ID, &s.UserID, &s.ClientID, &s.Name, &s.PortfolioJSON, &s.GroupsJSON, &s.SelectionJSON, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("scenario not found")
		}
		return nil, err
	}
	return &s, nil
}

// ListScenarios returns the user's non-deleted scenarios, newest first.
func ListScenarios(db *sql.DB, userID int64) ([]Scenario, error) {
	rows, err := db.Query(`
	SELECT id, user_id, COALESCE(client_id, 0), name, portfolio_json, groups_json, selection_json, created_at, updated_at
	FROM scenarios
	WHERE user_id = ? AND deleted_at IS NULL
	ORDER BY updated_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scenarios []Scenario
	for rows.Next() {
		var s Scenario
		if err := rows.Scan(&s.ID, &s.UserID, &s.ClientID, &s.Name, &s.PortfolioJSON, &s.GroupsJSON, &s.SelectionJSON, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, rows.Err()
}

// UpdateScenario replaces the scenario's name and serialized state.
func UpdateScenario(db *sql.DB, s *Scenario) error {
	res, err := db.Exec(`
	UPDATE scenarios
	SET name = ?, portfolio_json = ?, groups_json = ?, selection_json = ?, updated_at = ?
	WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		s.Name, s.PortfolioJSON, s.GroupsJSON, s.SelectionJSON, time.Now(), s.ID, s.UserID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.New("scenario not found")
	}
	return nil
}

// SoftDeleteScenario marks a scenario deleted without dropping the row.
func SoftDeleteScenario(db *sql.DB, userID, scenarioID int64) error {
	res, err := db.Exec(`UPDATE scenarios SET deleted_at = ? WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		time.Now(), scenarioID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.New("scenario not found")
	}
	return nil
}

// RestoreScenario clears the soft-delete marker.
func RestoreScenario(db *sql.DB, userID, scenarioID int64) error {
	res, err := db.Exec(`UPDATE scenarios SET deleted_at = NULL WHERE id = ? AND user_id = ? AND deleted_at IS NOT NULL`,
		scenarioID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.New("no deleted scenario to restore")
	}
	return nil
}

// CreateScenarioResult persists a pricing outcome for a scenario.
func CreateScenarioResult(db *sql.DB, r *ScenarioResult) error {
	res, err := db.Exec(`INSERT INTO scenario_results (scenario_id, application_json, response_json) VALUES (?, ?, ?)`,
		r.ScenarioID, r.ApplicationJSON, r.ResponseJSON)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	r.ID = int(id)
	return nil
}

// ListScenarioResults returns a scenario's non-deleted pricing outcomes,
// newest first.
func ListScenarioResults(db *sql.DB, scenarioID int64) ([]ScenarioResult, error) {
	rows, err := db.Query(`
	SELECT id, scenario_id, application_json, COALESCE(response_json, ''), created_at
	FROM scenario_results
	WHERE scenario_id = ? AND deleted_at IS NULL
	ORDER BY created_at DESC, id DESC`, scenarioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ScenarioResult
	for rows.Next() {
		var r ScenarioResult
		if err := rows.Scan(&r.ID, &r.ScenarioID, &r.ApplicationJSON, &r.ResponseJSON, &r.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func nullableID(id int64) interface{} {
	if id == 0 {
		return nil
	}
	return id
}
