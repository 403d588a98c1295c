package store

import (
	"database/sql"
	"fmt"
)

// Prospecting detection operations

// InsertDetections appends detection rows in a single transaction and fills
// in their IDs and capture time.
func (s *Store) InsertDetections(detections []Detection) error {
	if len(detections) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO prospecting_detections
		(captured_at, journal_timestamp, material, percentage, motherlode, content_tier, surface, deepcore, remaining, processed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
	`)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("failed to prepare detection insert: %w", wrapSchemaErr(err))
	}
	defer stmt.Close()

	captured := s.now()
	for i := range detections {
		d := &detections[i]
		result, err := stmt.Exec(
			timestamp(captured),
			d.JournalTimestamp,
			d.Material,
			d.Percentage,
			d.Motherlode,
			d.ContentTier,
			d.Surface,
			d.Deepcore,
			d.Remaining,
		)
		if err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("failed to insert detection for %s: %w", d.Material, err)
		}
		if d.ID, err = result.LastInsertId(); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("failed to get detection ID: %w", err)
		}
		d.CapturedAt = captured.UTC()
		d.Processed = false
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit detections: %w", err)
	}
	return nil
}

// UnprocessedDetections returns up to limit detections not yet marked
// processed, oldest first.
func (s *Store) UnprocessedDetections(limit int) ([]*Detection, error) {
	query := `
		SELECT id, captured_at, journal_timestamp, material, percentage, motherlode,
		       content_tier, surface, deepcore, remaining, processed
		FROM prospecting_detections
		WHERE processed = 0
		ORDER BY id ASC
		LIMIT ?
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unprocessed detections: %w", wrapSchemaErr(err))
	}
	defer rows.Close()

	var detections []*Detection
	for rows.Next() {
		var d Detection
		var captured string
		err := rows.Scan(
			&d.ID,
			&captured,
			&d.JournalTimestamp,
			&d.Material,
			&d.Percentage,
			&d.Motherlode,
			&d.ContentTier,
			&d.Surface,
			&d.Deepcore,
			&d.Remaining,
			&d.Processed,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan detection row: %w", err)
		}
		if d.CapturedAt, err = parseTimestamp(captured); err != nil {
			return nil, fmt.Errorf("failed to parse captured_at for detection %d: %w", d.ID, err)
		}
		detections = append(detections, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating detections: %w", err)
	}
	return detections, nil
}

// MarkDetectionProcessed flips the processed flag of one detection.
func (s *Store) MarkDetectionProcessed(id int64) error {
	result, err := s.db.Exec(`UPDATE prospecting_detections SET processed = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark detection %d processed: %w", id, wrapSchemaErr(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("detection %d not found", id)
	}
	return nil
}

// ClearDetections removes every detection row.
func (s *Store) ClearDetections() error {
	if _, err := s.db.Exec(`DELETE FROM prospecting_detections`); err != nil {
		return fmt.Errorf("failed to clear detections: %w", wrapSchemaErr(err))
	}
	return nil
}

// Refined material operations

// InsertRefined appends a refinery event.
func (s *Store) InsertRefined(r *RefinedMaterial) error {
	captured := s.now()
	result, err := s.db.Exec(`
		INSERT INTO refined_materials (captured_at, journal_timestamp, material, category)
		VALUES (?, ?, ?, ?)
	`, timestamp(captured), r.JournalTimestamp, r.Material, r.Category)
	if err != nil {
		return fmt.Errorf("failed to insert refined material %s: %w", r.Material, wrapSchemaErr(err))
	}

	if r.ID, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("failed to get refined material ID: %w", err)
	}
	r.CapturedAt = captured.UTC()
	return nil
}

// RefinedCount returns the number of refinery events, restricted to one
// material when material is non-empty.
func (s *Store) RefinedCount(material string) (int, error) {
	var count int
	var err error
	if material == "" {
		err = s.db.QueryRow(`SELECT COUNT(*) FROM refined_materials`).Scan(&count)
	} else {
		err = s.db.QueryRow(`SELECT COUNT(*) FROM refined_materials WHERE material = ?`, material).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count refined materials: %w", wrapSchemaErr(err))
	}
	return count, nil
}

// RefinedTotals returns the number of refinery events per material, most
// collected first.
func (s *Store) RefinedTotals() ([]*RefinedTotal, error) {
	rows, err := s.db.Query(`
		SELECT material, category, COUNT(*) AS n
		FROM refined_materials
		GROUP BY material, category
		ORDER BY n DESC, material ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to total refined materials: %w", wrapSchemaErr(err))
	}
	defer rows.Close()

	var totals []*RefinedTotal
	for rows.Next() {
		var t RefinedTotal
		if err := rows.Scan(&t.Material, &t.Category, &t.Count); err != nil {
			return nil, fmt.Errorf("failed to scan refined total: %w", err)
		}
		totals = append(totals, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating refined totals: %w", err)
	}
	return totals, nil
}

// ClearRefined removes every refinery event.
func (s *Store) ClearRefined() error {
	if _, err := s.db.Exec(`DELETE FROM refined_materials`); err != nil {
		return fmt.Errorf("failed to clear refined materials: %w", wrapSchemaErr(err))
	}
	return nil
}

// Signal operations

// UpsertFleetCarrier records a carrier sighting; the latest sighting of a
// signal name replaces the previous one.
func (s *Store) UpsertFleetCarrier(fc *FleetCarrier) error {
	seen := s.now()
	_, err := s.db.Exec(`
		INSERT INTO fleet_carriers (signal_name, system_address, system_name, discovered_at, last_seen)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(signal_name) DO UPDATE SET
			system_address = excluded.system_address,
			system_name = excluded.system_name,
			discovered_at = excluded.discovered_at,
			last_seen = excluded.last_seen
	`, fc.SignalName, fc.SystemAddress, fc.SystemName, fc.DiscoveredAt, timestamp(seen))
	if err != nil {
		return fmt.Errorf("failed to upsert fleet carrier %s: %w", fc.SignalName, wrapSchemaErr(err))
	}
	fc.LastSeen = seen.UTC()
	return nil
}

// ListFleetCarriers returns carriers, most recently seen first.
func (s *Store) ListFleetCarriers() ([]*FleetCarrier, error) {
	rows, err := s.db.Query(`
		SELECT signal_name, system_address, system_name, discovered_at, last_seen
		FROM fleet_carriers
		ORDER BY last_seen DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list fleet carriers: %w", wrapSchemaErr(err))
	}
	defer rows.Close()

	var carriers []*FleetCarrier
	for rows.Next() {
		var fc FleetCarrier
		var lastSeen string
		if err := rows.Scan(&fc.SignalName, &fc.SystemAddress, &fc.SystemName, &fc.DiscoveredAt, &lastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan fleet carrier row: %w", err)
		}
		if fc.LastSeen, err = parseTimestamp(lastSeen); err != nil {
			return nil, fmt.Errorf("failed to parse last_seen for %s: %w", fc.SignalName, err)
		}
		carriers = append(carriers, &fc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fleet carriers: %w", err)
	}
	return carriers, nil
}

// InsertStation appends a station signal.
func (s *Store) InsertStation(st *StationSignal) error {
	seen := s.now()
	result, err := s.db.Exec(`
		INSERT INTO station_signals (signal_name, signal_type, system_address, system_name, discovered_at, last_seen)
		VALUES (?, ?, ?, ?, ?, ?)
	`, st.SignalName, st.SignalType, st.SystemAddress, st.SystemName, st.DiscoveredAt, timestamp(seen))
	if err != nil {
		return fmt.Errorf("failed to insert station %s: %w", st.SignalName, wrapSchemaErr(err))
	}
	if st.ID, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("failed to get station ID: %w", err)
	}
	st.LastSeen = seen.UTC()
	return nil
}

// ListStations returns station signals, newest first, excluding any row
// typed as a fleet carrier.
func (s *Store) ListStations() ([]*StationSignal, error) {
	rows, err := s.db.Query(`
		SELECT id, signal_name, signal_type, system_address, system_name, discovered_at, last_seen
		FROM station_signals
		WHERE signal_type NOT LIKE '%FleetCarrier%'
		ORDER BY last_seen DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list stations: %w", wrapSchemaErr(err))
	}
	defer rows.Close()

	var stations []*StationSignal
	for rows.Next() {
		var st StationSignal
		var lastSeen string
		if err := rows.Scan(&st.ID, &st.SignalName, &st.SignalType, &st.SystemAddress, &st.SystemName, &st.DiscoveredAt, &lastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan station row: %w", err)
		}
		if st.LastSeen, err = parseTimestamp(lastSeen); err != nil {
			return nil, fmt.Errorf("failed to parse last_seen for station %d: %w", st.ID, err)
		}
		stations = append(stations, &st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stations: %w", err)
	}
	return stations, nil
}

// Material config operations

// SaveMaterialConfig inserts or replaces the tracking preference for a
// material.
func (s *Store) SaveMaterialConfig(c *MaterialConfig) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO material_config
		(material, min_percentage, target_price, track_surface, track_deepcore, enabled)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.Material, c.MinPercentage, c.TargetPrice, c.TrackSurface, c.TrackDeepcore, c.Enabled)
	if err != nil {
		return fmt.Errorf("failed to save material config %s: %w", c.Material, wrapSchemaErr(err))
	}
	return nil
}

// GetMaterialConfig returns the preference for one material, or nil when
// none is stored.
func (s *Store) GetMaterialConfig(material string) (*MaterialConfig, error) {
	var c MaterialConfig
	err := s.db.QueryRow(`
		SELECT material, min_percentage, target_price, track_surface, track_deepcore, enabled
		FROM material_config
		WHERE material = ?
	`, material).Scan(&c.Material, &c.MinPercentage, &c.TargetPrice, &c.TrackSurface, &c.TrackDeepcore, &c.Enabled)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get material config %s: %w", material, wrapSchemaErr(err))
	}
	return &c, nil
}

// ListMaterialConfigs returns every stored preference ordered by material.
func (s *Store) ListMaterialConfigs() ([]*MaterialConfig, error) {
	rows, err := s.db.Query(`
		SELECT material, min_percentage, target_price, track_surface, track_deepcore, enabled
		FROM material_config
		ORDER BY material
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list material configs: %w", wrapSchemaErr(err))
	}
	defer rows.Close()

	var configs []*MaterialConfig
	for rows.Next() {
		var c MaterialConfig
		if err := rows.Scan(&c.Material, &c.MinPercentage, &c.TargetPrice, &c.TrackSurface, &c.TrackDeepcore, &c.Enabled); err != nil {
			return nil, fmt.Errorf("failed to scan material config row: %w", err)
		}
		configs = append(configs, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating material configs: %w", err)
	}
	return configs, nil
}

// DeleteMaterialConfig removes the preference for a material.
func (s *Store) DeleteMaterialConfig(material string) error {
	result, err := s.db.Exec(`DELETE FROM material_config WHERE material = ?`, material)
	if err != nil {
		return fmt.Errorf("failed to delete material config %s: %w", material, wrapSchemaErr(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("material config %s not found", material)
	}
	return nil
}

// Chat operations

// InsertChat appends a chat message.
func (s *Store) InsertChat(m *ChatMessage) error {
	captured := s.now()
	result, err := s.db.Exec(`
		INSERT INTO chat_messages (journal_timestamp, channel, sender, message, subtype, captured_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, m.JournalTimestamp, m.Channel, m.Sender, m.Message, m.Subtype, timestamp(captured))
	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", wrapSchemaErr(err))
	}
	if m.ID, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("failed to get chat message ID: %w", err)
	}
	m.CapturedAt = captured.UTC()
	return nil
}

// ChatSince returns messages whose journal timestamp is strictly greater
// than cursor, oldest first.
func (s *Store) ChatSince(cursor string) ([]*ChatMessage, error) {
	rows, err := s.db.Query(`
		SELECT id, journal_timestamp, channel, sender, message, subtype, captured_at
		FROM chat_messages
		WHERE journal_timestamp > ?
		ORDER BY journal_timestamp ASC, id ASC
	`, cursor)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", wrapSchemaErr(err))
	}
	defer rows.Close()

	var messages []*ChatMessage
	for rows.Next() {
		var m ChatMessage
		var captured string
		if err := rows.Scan(&m.ID, &m.JournalTimestamp, &m.Channel, &m.Sender, &m.Message, &m.Subtype, &captured); err != nil {
			return nil, fmt.Errorf("failed to scan chat row: %w", err)
		}
		if m.CapturedAt, err = parseTimestamp(captured); err != nil {
			return nil, fmt.Errorf("failed to parse captured_at for chat %d: %w", m.ID, err)
		}
		messages = append(messages, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat messages: %w", err)
	}
	return messages, nil
}

// ClearChat removes every chat message.
func (s *Store) ClearChat() error {
	if _, err := s.db.Exec(`DELETE FROM chat_messages`); err != nil {
		return fmt.Errorf("failed to clear chat messages: %w", wrapSchemaErr(err))
	}
	return nil
}
