package store

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates an in-memory store with the schema applied and
// registers cleanup with t.Cleanup.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.CreateSchema())
	t.Cleanup(func() { st.Close() })
	return st
}

// fakeClock is a settable clock for deterministic timestamps.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func ptr[T any](v T) *T { return &v }

func TestNew(t *testing.T) {
	st, err := New(":memory:")
	require.NoError(t, err)
	defer st.Close()

	assert.NotNil(t, st.DB())
}

func TestCreateSchema(t *testing.T) {
	st := setupTestStore(t)

	tables := []string{
		"session_state", "ship_status", "service_heartbeat", "service_lease",
		"prospecting_detections", "refined_materials", "fleet_carriers",
		"station_signals", "material_config", "chat_messages",
	}
	for _, table := range tables {
		var name string
		err := st.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %s not found", table)
	}

	// Running it twice must not reset the singletons.
	require.NoError(t, st.UpdateSession(SessionUpdate{Commander: ptr("Jameson")}))
	require.NoError(t, st.CreateSchema())
	session, err := st.GetSession()
	require.NoError(t, err)
	assert.Equal(t, "Jameson", session.Commander)
}

func TestGetSession_NoSchema_ReturnsErrNotInitialized(t *testing.T) {
	st, err := New(":memory:")
	require.NoError(t, err)
	defer st.Close()

	_, err = st.GetSession()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotInitialized), "got %v", err)
}

func TestSessionDefaultsToUnknown(t *testing.T) {
	st := setupTestStore(t)

	session, err := st.GetSession()
	require.NoError(t, err)
	assert.Equal(t, UnknownValue, session.Commander)
	assert.Equal(t, UnknownValue, session.System)
	assert.True(t, session.LastUpdated.IsZero())
}

func TestUpdateSession_PartialFieldsLeaveOthersUntouched(t *testing.T) {
	st := setupTestStore(t)
	clock := &fakeClock{t: time.Date(2025, 11, 29, 12, 0, 0, 0, time.UTC)}
	st.SetClock(clock.Now)

	require.NoError(t, st.UpdateSession(SessionUpdate{Commander: ptr("Jameson"), System: ptr("Sol")}))
	clock.Advance(time.Minute)
	require.NoError(t, st.UpdateSession(SessionUpdate{System: ptr("Achenar")}))

	session, err := st.GetSession()
	require.NoError(t, err)
	assert.Equal(t, "Jameson", session.Commander)
	assert.Equal(t, "Achenar", session.System)
	assert.Equal(t, clock.Now(), session.LastUpdated)
}

func TestUpdateSession_EmptyUpdateIsNoop(t *testing.T) {
	st := setupTestStore(t)

	require.NoError(t, st.UpdateSession(SessionUpdate{}))
	session, err := st.GetSession()
	require.NoError(t, err)
	assert.True(t, session.LastUpdated.IsZero())
}

func TestUpdateShipAndAdjustCredits(t *testing.T) {
	st := setupTestStore(t)

	require.NoError(t, st.UpdateShip(ShipUpdate{CargoCapacity: ptr(int64(256)), Credits: ptr(int64(1000))}))
	require.NoError(t, st.UpdateShip(ShipUpdate{CargoCount: ptr(int64(12)), LimpetCount: ptr(int64(30))}))

	balance, err := st.AdjustCredits(500)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), balance)

	balance, err = st.AdjustCredits(-2000)
	require.NoError(t, err)
	assert.Equal(t, int64(-500), balance)

	ship, err := st.GetShip()
	require.NoError(t, err)
	assert.Equal(t, int64(256), ship.CargoCapacity)
	assert.Equal(t, int64(12), ship.CargoCount)
	assert.Equal(t, int64(30), ship.LimpetCount)
	assert.Equal(t, int64(-500), ship.Credits)
}

func TestHeartbeat(t *testing.T) {
	st := setupTestStore(t)
	clock := &fakeClock{t: time.Date(2025, 11, 29, 12, 0, 0, 0, time.UTC)}
	st.SetClock(clock.Now)

	hb, err := st.GetHeartbeat()
	require.NoError(t, err)
	assert.False(t, hb.Running)
	assert.False(t, hb.Alive(clock.Now()))

	require.NoError(t, st.UpdateHeartbeat(HeartbeatUpdate{
		Running:      ptr(true),
		PID:          ptr(4242),
		JournalFile:  ptr("/tmp/Journal.0002.log"),
		PollInterval: ptr(0.5),
		Touch:        true,
	}))

	hb, err = st.GetHeartbeat()
	require.NoError(t, err)
	assert.True(t, hb.Running)
	assert.Equal(t, 4242, hb.PID)
	assert.Equal(t, "/tmp/Journal.0002.log", hb.JournalFile)
	assert.Equal(t, 500*time.Millisecond, hb.Interval())
	assert.True(t, hb.Alive(clock.Now().Add(time.Second)))
	assert.False(t, hb.Alive(clock.Now().Add(1001*time.Millisecond)))

	// Touch alone advances only the timestamp.
	clock.Advance(2 * time.Second)
	require.NoError(t, st.UpdateHeartbeat(HeartbeatUpdate{Touch: true}))
	hb, err = st.GetHeartbeat()
	require.NoError(t, err)
	assert.Equal(t, clock.Now(), hb.LastHeartbeat)
	assert.Equal(t, 4242, hb.PID)
}

func TestDetections(t *testing.T) {
	st := setupTestStore(t)

	batch := []Detection{
		{JournalTimestamp: "2025-11-29T11:59:51Z", Material: "Platinum", Percentage: 51.662041, ContentTier: TierMedium, Surface: true, Remaining: 100},
		{JournalTimestamp: "2025-11-29T11:59:51Z", Material: "Painite", Percentage: 100, ContentTier: TierMedium, Motherlode: true, Deepcore: true, Remaining: 100},
	}
	require.NoError(t, st.InsertDetections(batch))
	assert.NotZero(t, batch[0].ID)
	assert.Greater(t, batch[1].ID, batch[0].ID)

	rows, err := st.UnprocessedDetections(10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Platinum", rows[0].Material)
	assert.InDelta(t, 51.662041, rows[0].Percentage, 1e-9)
	assert.True(t, rows[0].Surface)
	assert.False(t, rows[0].Deepcore)
	assert.Equal(t, "Painite", rows[1].Material)
	assert.True(t, rows[1].Motherlode)
	assert.True(t, rows[1].Deepcore)

	limited, err := st.UnprocessedDetections(1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "Platinum", limited[0].Material)

	require.NoError(t, st.MarkDetectionProcessed(rows[0].ID))
	rows, err = st.UnprocessedDetections(10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Painite", rows[0].Material)

	assert.Error(t, st.MarkDetectionProcessed(9999))

	require.NoError(t, st.ClearDetections())
	rows, err = st.UnprocessedDetections(10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRefinedCount(t *testing.T) {
	st := setupTestStore(t)

	for _, m := range []string{"Painite", "Painite", "Platinum"} {
		require.NoError(t, st.InsertRefined(&RefinedMaterial{JournalTimestamp: "2025-11-29T12:00:00Z", Material: m, Category: "mining"}))
	}

	total, err := st.RefinedCount("")
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	painite, err := st.RefinedCount("Painite")
	require.NoError(t, err)
	assert.Equal(t, 2, painite)

	totals, err := st.RefinedTotals()
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, RefinedTotal{Material: "Painite", Category: "mining", Count: 2}, *totals[0])
	assert.Equal(t, "Platinum", totals[1].Material)

	require.NoError(t, st.ClearRefined())
	total, err = st.RefinedCount("")
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestFleetCarrierUpsert(t *testing.T) {
	st := setupTestStore(t)
	clock := &fakeClock{t: time.Date(2025, 11, 29, 12, 0, 0, 0, time.UTC)}
	st.SetClock(clock.Now)

	require.NoError(t, st.UpsertFleetCarrier(&FleetCarrier{SignalName: "ALPHA (K7Q-BQL)", SystemAddress: 1, SystemName: "Sol", DiscoveredAt: "t1"}))
	clock.Advance(time.Second)
	require.NoError(t, st.UpsertFleetCarrier(&FleetCarrier{SignalName: "BRAVO (X2Z-11A)", SystemAddress: 2, SystemName: "Sol", DiscoveredAt: "t2"}))
	clock.Advance(time.Second)
	require.NoError(t, st.UpsertFleetCarrier(&FleetCarrier{SignalName: "ALPHA (K7Q-BQL)", SystemAddress: 3, SystemName: "Achenar", DiscoveredAt: "t3"}))

	carriers, err := st.ListFleetCarriers()
	require.NoError(t, err)
	require.Len(t, carriers, 2)
	assert.Equal(t, "ALPHA (K7Q-BQL)", carriers[0].SignalName)
	assert.Equal(t, "Achenar", carriers[0].SystemName)
	assert.Equal(t, int64(3), carriers[0].SystemAddress)
	assert.Equal(t, "BRAVO (X2Z-11A)", carriers[1].SignalName)
}

func TestStationsExcludeCarrierTypedRows(t *testing.T) {
	st := setupTestStore(t)

	require.NoError(t, st.InsertStation(&StationSignal{SignalName: "Jameson Memorial", SignalType: "Station", SystemName: "Shinrarta Dezhra"}))
	require.NoError(t, st.InsertStation(&StationSignal{SignalName: "Jameson Memorial", SignalType: "Station", SystemName: "Shinrarta Dezhra"}))
	require.NoError(t, st.InsertStation(&StationSignal{SignalName: "Odd one", SignalType: "FleetCarrier"}))

	stations, err := st.ListStations()
	require.NoError(t, err)
	assert.Len(t, stations, 2)
	for _, s := range stations {
		assert.NotEqual(t, "FleetCarrier", s.SignalType)
	}
}

func TestSaveMaterialConfig_UpsertKeepsOneRow(t *testing.T) {
	st := setupTestStore(t)

	require.NoError(t, st.SaveMaterialConfig(&MaterialConfig{Material: "Platinum", MinPercentage: 20, TargetPrice: 200000, TrackSurface: true, TrackDeepcore: false, Enabled: true}))
	require.NoError(t, st.SaveMaterialConfig(&MaterialConfig{Material: "Platinum", MinPercentage: 35, TargetPrice: 250000, TrackSurface: true, TrackDeepcore: true, Enabled: true}))

	configs, err := st.ListMaterialConfigs()
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, 35.0, configs[0].MinPercentage)
	assert.Equal(t, int64(250000), configs[0].TargetPrice)
	assert.True(t, configs[0].TrackDeepcore)

	got, err := st.GetMaterialConfig("Platinum")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 35.0, got.MinPercentage)

	missing, err := st.GetMaterialConfig("Gold")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, st.DeleteMaterialConfig("Platinum"))
	assert.Error(t, st.DeleteMaterialConfig("Platinum"))
}

func TestMaterialConfigMatches(t *testing.T) {
	cfg := MaterialConfig{Material: "Platinum", MinPercentage: 30, TrackSurface: true, TrackDeepcore: false, Enabled: true}

	tests := []struct {
		name string
		d    Detection
		want bool
	}{
		{"surface above threshold", Detection{Material: "Platinum", Percentage: 31, Surface: true}, true},
		{"exactly at threshold", Detection{Material: "Platinum", Percentage: 30, Surface: true}, true},
		{"below threshold", Detection{Material: "Platinum", Percentage: 29.9, Surface: true}, false},
		{"other material", Detection{Material: "Gold", Percentage: 90, Surface: true}, false},
		{"deepcore not tracked", Detection{Material: "Platinum", Percentage: 100, Deepcore: true, Motherlode: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.Matches(tt.d))
		})
	}

	cfg.Enabled = false
	assert.False(t, cfg.Matches(Detection{Material: "Platinum", Percentage: 90, Surface: true}))
}

func TestChatSince(t *testing.T) {
	st := setupTestStore(t)

	for _, ts := range []string{"2025-11-29T12:00:02Z", "2025-11-29T12:00:01Z", "2025-11-29T12:00:03Z"} {
		require.NoError(t, st.InsertChat(&ChatMessage{JournalTimestamp: ts, Channel: "local", Sender: "Someone", Message: "o7", Subtype: ChatSystem}))
	}

	all, err := st.ChatSince("1970-01-01")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2025-11-29T12:00:01Z", all[0].JournalTimestamp)
	assert.Equal(t, "2025-11-29T12:00:03Z", all[2].JournalTimestamp)

	newer, err := st.ChatSince("2025-11-29T12:00:02Z")
	require.NoError(t, err)
	require.Len(t, newer, 1)
	assert.Equal(t, "2025-11-29T12:00:03Z", newer[0].JournalTimestamp)

	require.NoError(t, st.ClearChat())
	all, err = st.ChatSince("")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestFileBackedStoreSharedBetweenHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journalwatch.db")

	writer, err := New(path)
	require.NoError(t, err)
	defer writer.Close()
	require.NoError(t, writer.CreateSchema())

	reader, err := New(path)
	require.NoError(t, err)
	defer reader.Close()

	require.NoError(t, writer.UpdateSession(SessionUpdate{System: ptr("Deciat")}))
	session, err := reader.GetSession()
	require.NoError(t, err)
	assert.Equal(t, "Deciat", session.System)

	require.NoError(t, writer.Checkpoint())
}
