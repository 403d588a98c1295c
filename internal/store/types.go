package store

import "time"

// Content tier labels for prospecting detections.
const (
	TierLow     = "Low"
	TierMedium  = "Medium"
	TierHigh    = "High"
	TierUnknown = "Unknown"
)

// UnknownValue is the sentinel stored before any identity or location event
// has been seen.
const UnknownValue = "Unknown"

// SessionState is the singleton record of who is playing and where.
type SessionState struct {
	Commander   string
	System      string
	LogFile     string
	LastUpdated time.Time
}

// SessionUpdate carries a partial update to SessionState. Nil fields are
// left untouched.
type SessionUpdate struct {
	Commander *string
	System    *string
	LogFile   *string
}

// ShipStatus is the singleton record of cargo and credit state.
type ShipStatus struct {
	CargoCapacity int64
	CargoCount    int64
	LimpetCount   int64
	Credits       int64
	LastUpdated   time.Time
}

// ShipUpdate carries a partial update to ShipStatus. Nil fields are left
// untouched.
type ShipUpdate struct {
	CargoCapacity *int64
	CargoCount    *int64
	LimpetCount   *int64
	Credits       *int64
}

// Heartbeat is the liveness record written by the ingestion service.
type Heartbeat struct {
	Running       bool
	PID           int
	LastHeartbeat time.Time
	JournalFile   string
	PollInterval  float64 // seconds
}

// Interval returns the poll interval as a duration.
func (h Heartbeat) Interval() time.Duration {
	return time.Duration(h.PollInterval * float64(time.Second))
}

// Alive reports whether the service should be considered running at now:
// the running flag is set and the heartbeat is no older than twice the poll
// interval.
func (h Heartbeat) Alive(now time.Time) bool {
	if !h.Running || h.LastHeartbeat.IsZero() {
		return false
	}
	return now.Sub(h.LastHeartbeat) <= 2*h.Interval()
}

// HeartbeatUpdate carries a partial update to the heartbeat. LastHeartbeat
// is set to the store clock whenever Touch is true.
type HeartbeatUpdate struct {
	Running      *bool
	PID          *int
	JournalFile  *string
	PollInterval *float64
	Touch        bool
}

// Detection is one material row produced by a prospecting scan.
type Detection struct {
	ID               int64
	CapturedAt       time.Time
	JournalTimestamp string
	Material         string
	Percentage       float64
	Motherlode       bool
	ContentTier      string
	Surface          bool
	Deepcore         bool
	Remaining        float64
	Processed        bool
}

// RefinedMaterial records one refinery collection.
type RefinedMaterial struct {
	ID               int64
	CapturedAt       time.Time
	JournalTimestamp string
	Material         string
	Category         string
}

// RefinedTotal is the number of refinery events for one material.
type RefinedTotal struct {
	Material string
	Category string
	Count    int
}

// FleetCarrier is a carrier signal, unique by signal name.
type FleetCarrier struct {
	SignalName    string
	SystemAddress int64
	SystemName    string
	DiscoveredAt  string
	LastSeen      time.Time
}

// StationSignal is a non-carrier station signal.
type StationSignal struct {
	ID            int64
	SignalName    string
	SignalType    string
	SystemAddress int64
	SystemName    string
	DiscoveredAt  string
	LastSeen      time.Time
}

// MaterialConfig is the user's tracking preference for one material.
type MaterialConfig struct {
	Material      string
	MinPercentage float64
	TargetPrice   int64
	TrackSurface  bool
	TrackDeepcore bool
	Enabled       bool
}

// Matches reports whether a detection satisfies this tracking preference.
func (c MaterialConfig) Matches(d Detection) bool {
	if !c.Enabled || c.Material != d.Material {
		return false
	}
	if d.Percentage < c.MinPercentage {
		return false
	}
	if d.Deepcore {
		return c.TrackDeepcore
	}
	return c.TrackSurface
}

// Chat subtypes.
const (
	ChatSecurity = "sec"
	ChatPirate   = "pirate"
	ChatSystem   = "system"
	ChatSquadron = "sq"
	ChatFriends  = "friends"
	ChatOther    = "other"
)

// ChatMessage is one received chat line.
type ChatMessage struct {
	ID               int64
	JournalTimestamp string
	Channel          string
	Sender           string
	Message          string
	Subtype          string
	CapturedAt       time.Time
}

// Lease is the exclusivity record for the ingestion service.
type Lease struct {
	OwnerPID   int
	OwnerHost  string
	AcquiredAt time.Time
	ExpiresAt  time.Time
}

// Held reports whether the lease names an owner.
func (l Lease) Held() bool {
	return l.OwnerPID != 0
}
