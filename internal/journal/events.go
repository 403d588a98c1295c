package journal

import "strings"

// Kind groups journal event names by the state they affect.
type Kind int

const (
	KindUnhandled Kind = iota
	KindIdentity
	KindLocation
	KindLoadout
	KindCargo
	KindProspecting
	KindRefining
	KindSignal
	KindChat
	KindCredits
)

var kindNames = map[Kind]string{
	KindUnhandled:   "unhandled",
	KindIdentity:    "identity",
	KindLocation:    "location",
	KindLoadout:     "loadout",
	KindCargo:       "cargo",
	KindProspecting: "prospecting",
	KindRefining:    "refining",
	KindSignal:      "signal",
	KindChat:        "chat",
	KindCredits:     "credits",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// eventKinds maps journal event names to their kind. Names not present are
// KindUnhandled.
var eventKinds = map[string]Kind{
	"LoadGame":                 KindIdentity,
	"Commander":                KindIdentity,
	"Location":                 KindLocation,
	"FSDJump":                  KindLocation,
	"CarrierJump":              KindLocation,
	"Docked":                   KindLocation,
	"Loadout":                  KindLoadout,
	"Cargo":                    KindCargo,
	"ProspectedAsteroid":       KindProspecting,
	"MiningRefined":            KindRefining,
	"FSSSignalDiscovered":      KindSignal,
	"ReceiveText":              KindChat,
	"MarketSell":               KindCredits,
	"MarketBuy":                KindCredits,
	"SellExplorationData":      KindCredits,
	"MultiSellExplorationData": KindCredits,
}

// KindOf returns the kind for a journal event name.
func KindOf(name string) Kind {
	return eventKinds[name]
}

// CleanSymbol strips the localisation decoration from an internal journal
// symbol: a leading "$", a trailing ";" and a trailing "_name" suffix
// (matched case-insensitively). "$painite_name;" becomes "painite".
func CleanSymbol(s string) string {
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSuffix(s, ";")
	if len(s) >= len("_name") && strings.EqualFold(s[len(s)-len("_name"):], "_name") {
		s = s[:len(s)-len("_name")]
	}
	return s
}

// Payloads. Only the fields journalwatch projects are declared; pointer
// fields distinguish an absent value from a zero one.

// LoadGame is written when the game loads a commander.
type LoadGame struct {
	Commander string `json:"Commander"`
	Ship      string `json:"Ship"`
	Credits   *int64 `json:"Credits"`
}

// Commander is written at startup with the commander name.
type Commander struct {
	Name string `json:"Name"`
	FID  string `json:"FID"`
}

// Location covers Location, FSDJump, CarrierJump and Docked.
type Location struct {
	StarSystem    string `json:"StarSystem"`
	SystemAddress int64  `json:"SystemAddress"`
	StationName   string `json:"StationName"`
}

// Loadout describes the current ship fit.
type Loadout struct {
	Ship          string          `json:"Ship"`
	CargoCapacity *int64          `json:"CargoCapacity"`
	Modules       []LoadoutModule `json:"Modules"`
}

// LoadoutModule is one fitted module.
type LoadoutModule struct {
	Slot          string `json:"Slot"`
	Item          string `json:"Item"`
	CargoCapacity *int64 `json:"CargoCapacity"`
}

// Cargo is a full cargo hold snapshot. Inventory is nil when the event
// omits the manifest.
type Cargo struct {
	Vessel    string      `json:"Vessel"`
	Count     int64       `json:"Count"`
	Inventory []CargoItem `json:"Inventory"`
}

// CargoItem is one manifest entry.
type CargoItem struct {
	Name          string `json:"Name"`
	NameLocalised string `json:"Name_Localised"`
	Count         int64  `json:"Count"`
}

// ProspectedAsteroid is the result of a prospector limpet scan.
type ProspectedAsteroid struct {
	Materials                   []ProspectedMaterial `json:"Materials"`
	MotherlodeMaterial          string               `json:"MotherlodeMaterial"`
	MotherlodeMaterialLocalised string               `json:"MotherlodeMaterial_Localised"`
	Content                     string               `json:"Content"`
	ContentLocalised            string               `json:"Content_Localised"`
	Remaining                   float64              `json:"Remaining"`
}

// ProspectedMaterial is one surface material. Proportion is a percentage on
// the 0-100 scale.
type ProspectedMaterial struct {
	Name          string  `json:"Name"`
	NameLocalised string  `json:"Name_Localised"`
	Proportion    float64 `json:"Proportion"`
}

// MiningRefined is written when a refinery bin fills.
type MiningRefined struct {
	Type          string `json:"Type"`
	TypeLocalised string `json:"Type_Localised"`
}

// FSSSignalDiscovered is written for each signal found in a system scan.
type FSSSignalDiscovered struct {
	SignalName          string `json:"SignalName"`
	SignalNameLocalised string `json:"SignalName_Localised"`
	SignalType          string `json:"SignalType"`
	IsStation           bool   `json:"IsStation"`
	SystemAddress       int64  `json:"SystemAddress"`
}

// ReceiveText is an incoming chat message.
type ReceiveText struct {
	From             string `json:"From"`
	FromLocalised    string `json:"From_Localised"`
	Message          string `json:"Message"`
	MessageLocalised string `json:"Message_Localised"`
	Channel          string `json:"Channel"`
}

// MarketSell is a commodity sale.
type MarketSell struct {
	Type      string `json:"Type"`
	Count     int64  `json:"Count"`
	TotalSale int64  `json:"TotalSale"`
}

// MarketBuy is a commodity purchase.
type MarketBuy struct {
	Type      string `json:"Type"`
	Count     int64  `json:"Count"`
	TotalCost int64  `json:"TotalCost"`
}

// SellExplorationData is a single-system cartography sale.
type SellExplorationData struct {
	BaseValue int64 `json:"BaseValue"`
	Bonus     int64 `json:"Bonus"`
}

// MultiSellExplorationData is a bulk cartography sale.
type MultiSellExplorationData struct {
	BaseValue     int64 `json:"BaseValue"`
	Bonus         int64 `json:"Bonus"`
	TotalEarnings int64 `json:"TotalEarnings"`
}
