package projector

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/blackwell-systems/journalwatch/internal/journal"
	"github.com/blackwell-systems/journalwatch/internal/store"
)

const (
	motherlodePercentage = 100.0
	refinedCategory      = "mining"
)

func (p *Projector) projectIdentity(ev journal.Event) error {
	switch ev.Name {
	case "LoadGame":
		var lg journal.LoadGame
		if err := ev.Decode(&lg); err != nil {
			return err
		}
		if lg.Commander != "" {
			if err := p.store.UpdateSession(store.SessionUpdate{Commander: &lg.Commander}); err != nil {
				return err
			}
		}
		if lg.Credits != nil {
			// Absolute snapshot from the game; replaces any additive drift.
			if err := p.store.UpdateShip(store.ShipUpdate{Credits: lg.Credits}); err != nil {
				return err
			}
		}
		p.log.WithField("commander", lg.Commander).Info("game loaded")
	default:
		var c journal.Commander
		if err := ev.Decode(&c); err != nil {
			return err
		}
		if c.Name == "" {
			return nil
		}
		if err := p.store.UpdateSession(store.SessionUpdate{Commander: &c.Name}); err != nil {
			return err
		}
	}
	return nil
}

func (p *Projector) projectLocation(ev journal.Event) error {
	var loc journal.Location
	if err := ev.Decode(&loc); err != nil {
		return err
	}
	if loc.StarSystem == "" {
		return nil
	}
	if err := p.store.UpdateSession(store.SessionUpdate{System: &loc.StarSystem}); err != nil {
		return err
	}
	p.log.WithFields(logrus.Fields{"event": ev.Name, "system": loc.StarSystem}).Info("location changed")
	return nil
}

func (p *Projector) projectLoadout(ev journal.Event) error {
	var lo journal.Loadout
	if err := ev.Decode(&lo); err != nil {
		return err
	}

	var capacity int64
	var found bool
	for _, m := range lo.Modules {
		if m.CargoCapacity != nil {
			capacity += *m.CargoCapacity
			found = true
		}
	}
	if !found {
		if lo.CargoCapacity == nil {
			return nil
		}
		capacity = *lo.CargoCapacity
	}

	if err := p.store.UpdateShip(store.ShipUpdate{CargoCapacity: &capacity}); err != nil {
		return err
	}
	p.log.WithField("capacity", capacity).Debug("cargo capacity updated")
	return nil
}

func (p *Projector) projectCargo(ev journal.Event) error {
	var c journal.Cargo
	if err := ev.Decode(&c); err != nil {
		return err
	}
	if c.Inventory == nil {
		return nil
	}

	var cargo, limpets int64
	for _, item := range c.Inventory {
		if isLimpet(item) {
			limpets += item.Count
		} else {
			cargo += item.Count
		}
	}

	if err := p.store.UpdateShip(store.ShipUpdate{CargoCount: &cargo, LimpetCount: &limpets}); err != nil {
		return err
	}
	p.log.WithFields(logrus.Fields{"cargo": cargo, "limpets": limpets}).Debug("cargo updated")
	return nil
}

// isLimpet reports whether a manifest entry is a limpet. The internal name
// for limpets is "drones", so the localised name is checked too.
func isLimpet(item journal.CargoItem) bool {
	return strings.Contains(strings.ToLower(item.Name), "limpet") ||
		strings.Contains(strings.ToLower(item.NameLocalised), "limpet")
}

func (p *Projector) projectProspecting(ev journal.Event) error {
	var pa journal.ProspectedAsteroid
	if err := ev.Decode(&pa); err != nil {
		return err
	}

	rows := detectionsFor(ev.Timestamp, pa)
	if len(rows) == 0 {
		return nil
	}
	if err := p.store.InsertDetections(rows); err != nil {
		return err
	}

	for _, d := range rows {
		p.log.WithFields(logrus.Fields{
			"material":   d.Material,
			"percentage": d.Percentage,
			"deepcore":   d.Deepcore,
			"tier":       d.ContentTier,
		}).Debug("prospected")
		p.checkTracked(d)
	}
	return nil
}

// detectionsFor fans a prospecting scan out into one row per surface
// material plus one motherlode row when a core material is present.
func detectionsFor(timestamp string, pa journal.ProspectedAsteroid) []store.Detection {
	content := pa.ContentLocalised
	if content == "" {
		content = pa.Content
	}
	tier := contentTier(content)

	rows := make([]store.Detection, 0, len(pa.Materials)+1)
	for _, m := range pa.Materials {
		rows = append(rows, store.Detection{
			JournalTimestamp: timestamp,
			Material:         displayName(m.NameLocalised, m.Name),
			Percentage:       m.Proportion,
			ContentTier:      tier,
			Surface:          true,
			Remaining:        pa.Remaining,
		})
	}

	if pa.MotherlodeMaterial != "" {
		rows = append(rows, store.Detection{
			JournalTimestamp: timestamp,
			Material:         displayName(pa.MotherlodeMaterialLocalised, pa.MotherlodeMaterial),
			Percentage:       motherlodePercentage,
			Motherlode:       true,
			ContentTier:      tier,
			Deepcore:         true,
			Remaining:        pa.Remaining,
		})
	}
	return rows
}

// contentTier picks the first of Low, Medium, High found in the content
// descriptor.
func contentTier(content string) string {
	for _, tier := range []string{store.TierLow, store.TierMedium, store.TierHigh} {
		if strings.Contains(content, tier) {
			return tier
		}
	}
	return store.TierUnknown
}

// displayName prefers the localised name and falls back to the cleaned
// internal symbol.
func displayName(localised, symbol string) string {
	if localised != "" {
		return localised
	}
	return journal.CleanSymbol(symbol)
}

// checkTracked reads the tracking config for d and notifies when it matches.
// A failed lookup only skips the notification.
func (p *Projector) checkTracked(d store.Detection) {
	cfg, err := p.store.GetMaterialConfig(d.Material)
	if err != nil {
		p.log.WithError(err).WithField("material", d.Material).Warn("failed to read material config")
		return
	}
	if cfg == nil || !cfg.Matches(d) {
		return
	}

	p.log.WithFields(logrus.Fields{
		"material":   d.Material,
		"percentage": d.Percentage,
		"threshold":  cfg.MinPercentage,
		"deepcore":   d.Deepcore,
	}).Info("tracked material found")
	if p.notifier != nil {
		p.notifier.Notify(d, *cfg)
	}
}

func (p *Projector) projectRefining(ev journal.Event) error {
	var mr journal.MiningRefined
	if err := ev.Decode(&mr); err != nil {
		return err
	}

	name := displayName(mr.TypeLocalised, mr.Type)
	if name == "" {
		name = store.UnknownValue
	}
	if err := p.store.InsertRefined(&store.RefinedMaterial{
		JournalTimestamp: ev.Timestamp,
		Material:         name,
		Category:         refinedCategory,
	}); err != nil {
		return err
	}
	p.log.WithField("material", name).Info("refined")
	return nil
}

func (p *Projector) projectSignal(ev journal.Event) error {
	var sig journal.FSSSignalDiscovered
	if err := ev.Decode(&sig); err != nil {
		return err
	}
	if !sig.IsStation {
		return nil
	}

	system := store.UnknownValue
	session, err := p.store.GetSession()
	if err != nil {
		return fmt.Errorf("failed to read current system: %w", err)
	}
	if session.System != "" {
		system = session.System
	}

	if isCarrier(sig) {
		return p.store.UpsertFleetCarrier(&store.FleetCarrier{
			SignalName:    sig.SignalName,
			SystemAddress: sig.SystemAddress,
			SystemName:    system,
			DiscoveredAt:  ev.Timestamp,
		})
	}
	return p.store.InsertStation(&store.StationSignal{
		SignalName:    sig.SignalName,
		SignalType:    sig.SignalType,
		SystemAddress: sig.SystemAddress,
		SystemName:    system,
		DiscoveredAt:  ev.Timestamp,
	})
}

// isCarrier recognises fleet carriers by their "NAME (XXX-XXX)" callsign
// suffix or by signal type.
func isCarrier(sig journal.FSSSignalDiscovered) bool {
	return strings.HasSuffix(strings.TrimSpace(sig.SignalName), ")") ||
		strings.Contains(sig.SignalType, "FleetCarrier")
}

func (p *Projector) projectChat(ev journal.Event) error {
	var rt journal.ReceiveText
	if err := ev.Decode(&rt); err != nil {
		return err
	}

	sender := rt.FromLocalised
	if sender == "" {
		sender = rt.From
	}
	message := rt.MessageLocalised
	if message == "" {
		message = rt.Message
	}
	channel := strings.ToLower(rt.Channel)

	return p.store.InsertChat(&store.ChatMessage{
		JournalTimestamp: ev.Timestamp,
		Channel:          channel,
		Sender:           sender,
		Message:          message,
		Subtype:          ClassifyChat(sender, channel),
	})
}

func (p *Projector) projectCredits(ev journal.Event) error {
	var delta int64
	switch ev.Name {
	case "MarketSell":
		var ms journal.MarketSell
		if err := ev.Decode(&ms); err != nil {
			return err
		}
		delta = ms.TotalSale
	case "MarketBuy":
		var mb journal.MarketBuy
		if err := ev.Decode(&mb); err != nil {
			return err
		}
		delta = -mb.TotalCost
	case "SellExplorationData":
		var sd journal.SellExplorationData
		if err := ev.Decode(&sd); err != nil {
			return err
		}
		delta = sd.BaseValue + sd.Bonus
	case "MultiSellExplorationData":
		var md journal.MultiSellExplorationData
		if err := ev.Decode(&md); err != nil {
			return err
		}
		delta = md.TotalEarnings
	default:
		return nil
	}
	if delta == 0 {
		return nil
	}

	balance, err := p.store.AdjustCredits(delta)
	if err != nil {
		return err
	}
	p.log.WithFields(logrus.Fields{"event": ev.Name, "delta": delta, "balance": balance}).Info("credits adjusted")
	return nil
}
