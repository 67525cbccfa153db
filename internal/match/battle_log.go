package match

import (
	"fmt"
	"strings"
)

// Log categories.
const (
	CatSetup   = "setup"
	CatMove    = "move"
	CatAttack  = "attack"
	CatBleed   = "bleed"
	CatDeath   = "death"
	CatTurn    = "turn"
	CatOutcome = "outcome"
)

// LogEntry is one recorded battle event.
type LogEntry struct {
	Round    int
	Unit     string // label e.g. "P0", "O3", or "--" for global events
	Faction  string // "player", "opponent", or "--"
	Category string
	Key      string
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric payload (damage, distance)
}

// String formats the entry as a fixed-width log line.
//
//	[R=004] O2   attack    hit              O2 did 96 damage to P1, leaving it with 254 HP
func (e LogEntry) String() string {
	return fmt.Sprintf("[R=%03d] %-4s %-9s %-16s %s",
		e.Round, e.Unit, e.Category, e.Key, e.Value)
}

// BattleLog collects structured events for one match. It is unbounded; the
// front-end shows only the tail.
type BattleLog struct {
	entries []LogEntry
}

// NewBattleLog creates an empty log.
func NewBattleLog() *BattleLog {
	return &BattleLog{}
}

// Add records a new entry.
func (bl *BattleLog) Add(round int, unit, faction, category, key, value string, numVal float64) {
	bl.entries = append(bl.entries, LogEntry{
		Round:    round,
		Unit:     unit,
		Faction:  faction,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// Entries returns all recorded entries.
func (bl *BattleLog) Entries() []LogEntry {
	return bl.entries
}

// Recent returns the last n entries, oldest first.
func (bl *BattleLog) Recent(n int) []LogEntry {
	if n >= len(bl.entries) {
		return bl.entries
	}
	return bl.entries[len(bl.entries)-n:]
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (bl *BattleLog) Filter(category, key string) []LogEntry {
	var out []LogEntry
	for _, e := range bl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterUnit returns entries for a specific unit label.
func (bl *BattleLog) FilterUnit(label string) []LogEntry {
	var out []LogEntry
	for _, e := range bl.entries {
		if e.Unit == label {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (bl *BattleLog) CountCategory(category, key string) int {
	return len(bl.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (bl *BattleLog) LastOf(category, key string) (LogEntry, bool) {
	entries := bl.Filter(category, key)
	if len(entries) == 0 {
		return LogEntry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (bl *BattleLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range bl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string.
func (bl *BattleLog) Format() string {
	var sb strings.Builder
	for _, e := range bl.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
