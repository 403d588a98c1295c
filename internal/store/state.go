package store

import (
	"fmt"
	"strings"
)

// Singleton state operations. Every write is a single UPDATE statement so a
// reader in another process sees either all of it or none of it.

// GetSession returns the current session state.
func (s *Store) GetSession() (*SessionState, error) {
	query := `
		SELECT commander, current_system, log_file, last_updated
		FROM session_state
		WHERE id = 1
	`

	var st SessionState
	var lastUpdated string
	err := s.db.QueryRow(query).Scan(&st.Commander, &st.System, &st.LogFile, &lastUpdated)
	if err != nil {
		return nil, fmt.Errorf("failed to get session state: %w", wrapSchemaErr(err))
	}

	st.LastUpdated, err = parseTimestamp(lastUpdated)
	if err != nil {
		return nil, fmt.Errorf("failed to parse session last_updated: %w", err)
	}
	return &st, nil
}

// UpdateSession applies the non-nil fields of u to the session state.
func (s *Store) UpdateSession(u SessionUpdate) error {
	var set setClause
	set.add("commander", u.Commander)
	set.add("current_system", u.System)
	set.add("log_file", u.LogFile)
	if set.empty() {
		return nil
	}
	set.addValue("last_updated", timestamp(s.now()))

	if err := s.exec("session_state", set); err != nil {
		return fmt.Errorf("failed to update session state: %w", err)
	}
	return nil
}

// GetShip returns the current ship status.
func (s *Store) GetShip() (*ShipStatus, error) {
	query := `
		SELECT cargo_capacity, cargo_count, limpet_count, credits, last_updated
		FROM ship_status
		WHERE id = 1
	`

	var st ShipStatus
	var lastUpdated string
	err := s.db.QueryRow(query).Scan(&st.CargoCapacity, &st.CargoCount, &st.LimpetCount, &st.Credits, &lastUpdated)
	if err != nil {
		return nil, fmt.Errorf("failed to get ship status: %w", wrapSchemaErr(err))
	}

	st.LastUpdated, err = parseTimestamp(lastUpdated)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ship last_updated: %w", err)
	}
	return &st, nil
}

// UpdateShip applies the non-nil fields of u to the ship status.
func (s *Store) UpdateShip(u ShipUpdate) error {
	var set setClause
	set.add("cargo_capacity", u.CargoCapacity)
	set.add("cargo_count", u.CargoCount)
	set.add("limpet_count", u.LimpetCount)
	set.add("credits", u.Credits)
	if set.empty() {
		return nil
	}
	set.addValue("last_updated", timestamp(s.now()))

	if err := s.exec("ship_status", set); err != nil {
		return fmt.Errorf("failed to update ship status: %w", err)
	}
	return nil
}

// AdjustCredits adds delta to the credit balance and returns the new balance.
// The read and the write happen in one statement, so concurrent adjustments
// cannot lose updates.
func (s *Store) AdjustCredits(delta int64) (int64, error) {
	query := `
		UPDATE ship_status
		SET credits = credits + ?, last_updated = ?
		WHERE id = 1
		RETURNING credits
	`

	var balance int64
	if err := s.db.QueryRow(query, delta, timestamp(s.now())).Scan(&balance); err != nil {
		return 0, fmt.Errorf("failed to adjust credits by %d: %w", delta, wrapSchemaErr(err))
	}
	return balance, nil
}

// GetHeartbeat returns the service heartbeat record.
func (s *Store) GetHeartbeat() (*Heartbeat, error) {
	query := `
		SELECT running, pid, last_heartbeat, journal_file, poll_interval
		FROM service_heartbeat
		WHERE id = 1
	`

	var hb Heartbeat
	var last string
	err := s.db.QueryRow(query).Scan(&hb.Running, &hb.PID, &last, &hb.JournalFile, &hb.PollInterval)
	if err != nil {
		return nil, fmt.Errorf("failed to get heartbeat: %w", wrapSchemaErr(err))
	}

	hb.LastHeartbeat, err = parseTimestamp(last)
	if err != nil {
		return nil, fmt.Errorf("failed to parse last_heartbeat: %w", err)
	}
	return &hb, nil
}

// UpdateHeartbeat applies the non-nil fields of u to the heartbeat record.
func (s *Store) UpdateHeartbeat(u HeartbeatUpdate) error {
	var set setClause
	set.add("running", u.Running)
	set.add("pid", u.PID)
	set.add("journal_file", u.JournalFile)
	set.add("poll_interval", u.PollInterval)
	if u.Touch {
		set.addValue("last_heartbeat", timestamp(s.now()))
	}
	if set.empty() {
		return nil
	}

	if err := s.exec("service_heartbeat", set); err != nil {
		return fmt.Errorf("failed to update heartbeat: %w", err)
	}
	return nil
}

// setClause accumulates "column = ?" pairs for a singleton UPDATE.
type setClause struct {
	columns []string
	args    []any
}

func (c *setClause) add(column string, v any) {
	switch p := v.(type) {
	case *string:
		if p != nil {
			c.addValue(column, *p)
		}
	case *int64:
		if p != nil {
			c.addValue(column, *p)
		}
	case *int:
		if p != nil {
			c.addValue(column, *p)
		}
	case *bool:
		if p != nil {
			c.addValue(column, *p)
		}
	case *float64:
		if p != nil {
			c.addValue(column, *p)
		}
	default:
		panic(fmt.Sprintf("setClause: unsupported type %T for %s", v, column))
	}
}

func (c *setClause) addValue(column string, v any) {
	c.columns = append(c.columns, column+" = ?")
	c.args = append(c.args, v)
}

func (c *setClause) empty() bool {
	return len(c.columns) == 0
}

// exec runs the accumulated UPDATE against the id=1 row of table. Table and
// column names come from this package only.
func (s *Store) exec(table string, set setClause) error {
	query := "UPDATE " + table + " SET " + strings.Join(set.columns, ", ") + " WHERE id = 1"
	_, err := s.db.Exec(query, set.args...)
	return wrapSchemaErr(err)
}
