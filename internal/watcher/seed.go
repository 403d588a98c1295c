package watcher

import (
	"github.com/sirupsen/logrus"

	"github.com/blackwell-systems/journalwatch/internal/journal"
	"github.com/blackwell-systems/journalwatch/internal/store"
)

// seedIdentity scans path from the end for the most recent commander and
// star system and writes whichever it finds to the session. Nothing else in
// the file is projected.
func (w *Watcher) seedIdentity(path string) {
	var commander, system string

	err := journal.ScanBackward(path, func(line string) bool {
		ev, err := journal.Decode(line)
		if err != nil {
			return true
		}
		switch ev.Kind {
		case journal.KindIdentity:
			if commander == "" {
				commander = commanderName(ev)
			}
		case journal.KindLocation:
			if system == "" {
				var loc journal.Location
				if ev.Decode(&loc) == nil {
					system = loc.StarSystem
				}
			}
		}
		return commander == "" || system == ""
	})
	if err != nil {
		w.log.WithError(err).Warn("identity seed scan failed")
		return
	}

	var u store.SessionUpdate
	if commander != "" {
		u.Commander = &commander
	}
	if system != "" {
		u.System = &system
	}
	if err := w.store.UpdateSession(u); err != nil {
		w.log.WithError(err).Warn("failed to seed session")
		return
	}
	w.log.WithFields(logrus.Fields{"commander": commander, "system": system}).Info("session seeded from journal")
}

func commanderName(ev journal.Event) string {
	if ev.Name == "LoadGame" {
		var lg journal.LoadGame
		if ev.Decode(&lg) == nil {
			return lg.Commander
		}
		return ""
	}
	var c journal.Commander
	if ev.Decode(&c) == nil {
		return c.Name
	}
	return ""
}
