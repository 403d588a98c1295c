package store

import (
	"fmt"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// Service lease operations. The lease row is the exclusivity guarantee for
// the ingestion service: at most one process may hold it at a time.

// LeaseOwner identifies the process asking for the lease.
type LeaseOwner struct {
	PID  int
	Host string
}

// CurrentOwner describes the calling process.
func CurrentOwner() LeaseOwner {
	host, _ := os.Hostname()
	return LeaseOwner{PID: os.Getpid(), Host: host}
}

// ownerAlive is the OS-level fallback used only for stale-lease detection.
// Replaced in tests.
var ownerAlive = func(l Lease) bool {
	if host, _ := os.Hostname(); l.OwnerHost != "" && l.OwnerHost != host {
		// A process on another machine cannot be probed; trust the expiry.
		return true
	}
	alive, err := process.PidExists(int32(l.OwnerPID))
	if err != nil {
		return true
	}
	return alive
}

// GetLease returns the current lease row.
func (s *Store) GetLease() (*Lease, error) {
	var l Lease
	var acquired, expires string
	err := s.db.QueryRow(`
		SELECT owner_pid, owner_host, acquired_at, expires_at
		FROM service_lease
		WHERE id = 1
	`).Scan(&l.OwnerPID, &l.OwnerHost, &acquired, &expires)
	if err != nil {
		return nil, fmt.Errorf("failed to get service lease: %w", wrapSchemaErr(err))
	}

	if l.AcquiredAt, err = parseTimestamp(acquired); err != nil {
		return nil, fmt.Errorf("failed to parse lease acquired_at: %w", err)
	}
	if l.ExpiresAt, err = parseTimestamp(expires); err != nil {
		return nil, fmt.Errorf("failed to parse lease expires_at: %w", err)
	}
	return &l, nil
}

// AcquireLease takes the service lease for owner for ttl. It fails with
// ErrLeaseHeld when another live process holds an unexpired lease. A lease
// whose owner has exited or whose expiry has passed is reclaimed.
func (s *Store) AcquireLease(owner LeaseOwner, ttl time.Duration) (*Lease, error) {
	current, err := s.GetLease()
	if err != nil {
		return nil, err
	}

	now := s.now()
	if current.Held() && !sameOwner(*current, owner) {
		expired := !current.ExpiresAt.IsZero() && now.After(current.ExpiresAt)
		if !expired && ownerAlive(*current) {
			return nil, fmt.Errorf("%w (pid %d on %s)", ErrLeaseHeld, current.OwnerPID, current.OwnerHost)
		}
	}

	next := Lease{
		OwnerPID:   owner.PID,
		OwnerHost:  owner.Host,
		AcquiredAt: now.UTC(),
		ExpiresAt:  now.Add(ttl).UTC(),
	}

	// Compare-and-swap on the row we observed so two starters racing past the
	// check above cannot both win.
	result, err := s.db.Exec(`
		UPDATE service_lease
		SET owner_pid = ?, owner_host = ?, acquired_at = ?, expires_at = ?
		WHERE id = 1 AND owner_pid = ? AND owner_host = ? AND acquired_at = ?
	`,
		next.OwnerPID, next.OwnerHost, timestamp(next.AcquiredAt), timestamp(next.ExpiresAt),
		current.OwnerPID, current.OwnerHost, leaseTimestamp(current.AcquiredAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire service lease: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w (lost acquisition race)", ErrLeaseHeld)
	}
	return &next, nil
}

// RenewLease extends the lease held by owner to now+ttl.
func (s *Store) RenewLease(owner LeaseOwner, ttl time.Duration) error {
	result, err := s.db.Exec(`
		UPDATE service_lease
		SET expires_at = ?
		WHERE id = 1 AND owner_pid = ? AND owner_host = ?
	`, timestamp(s.now().Add(ttl)), owner.PID, owner.Host)
	if err != nil {
		return fmt.Errorf("failed to renew service lease: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: lease no longer owned by pid %d", ErrLeaseHeld, owner.PID)
	}
	return nil
}

// ReleaseLease clears the lease if owner still holds it. Releasing a lease
// held by someone else is a no-op.
func (s *Store) ReleaseLease(owner LeaseOwner) error {
	_, err := s.db.Exec(`
		UPDATE service_lease
		SET owner_pid = 0, owner_host = '', acquired_at = '', expires_at = ''
		WHERE id = 1 AND owner_pid = ? AND owner_host = ?
	`, owner.PID, owner.Host)
	if err != nil {
		return fmt.Errorf("failed to release service lease: %w", err)
	}
	return nil
}

func sameOwner(l Lease, o LeaseOwner) bool {
	return l.OwnerPID == o.PID && l.OwnerHost == o.Host
}

// leaseTimestamp renders an observed acquired_at back to its stored form; an
// unheld lease stores the empty string.
func leaseTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return timestamp(t)
}
