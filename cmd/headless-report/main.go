package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Garsondee/Skirmish/internal/ai"
	"github.com/Garsondee/Skirmish/internal/combat"
	"github.com/Garsondee/Skirmish/internal/config"
	"github.com/Garsondee/Skirmish/internal/logging"
	"github.com/Garsondee/Skirmish/internal/match"
	"github.com/Garsondee/Skirmish/internal/scenario"
)

type runStats struct {
	runIndex int
	seed     int64

	outcome match.Outcome
	rounds  int

	playerRoster   []combat.Archetype
	opponentRoster []combat.Archetype
	playerTotal    int
	opponentTotal  int
	playerAlive    int
	opponentAlive  int

	firstDeathRound int
	attacks         int
	hits            int
	damage          int
	bleedTicks      int
	bleedDamage     int
	moves           int

	// survivors counts surviving units per archetype, both sides.
	survivors map[combat.Archetype]int
}

type runConfig struct {
	settings match.Settings
	roster   []combat.Archetype // empty: random five
	scenario *scenario.Scenario
	logger   zerolog.Logger
}

func main() {
	var runs int
	var seedBase int64
	var seedStep int64
	var width, height, maxRounds int
	var configPath, logLevel, rosterFlag, scenarioPath string

	flag.IntVar(&runs, "runs", 5, "number of headless matches")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.IntVar(&width, "width", 0, "grid width (0: from config)")
	flag.IntVar(&height, "height", 0, "grid height (0: from config)")
	flag.IntVar(&maxRounds, "max-rounds", 0, "round limit before a draw (0: from config)")
	flag.StringVar(&configPath, "config", "", "optional config file")
	flag.StringVar(&logLevel, "log-level", "", "log level (default: from config)")
	flag.StringVar(&rosterFlag, "roster", "", "player archetype initials, e.g. STCRR (default: random)")
	flag.StringVar(&scenarioPath, "scenario", "", "optional scenario YAML")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	if width == 0 {
		width = cfg.Grid.Width
	}
	if height == 0 {
		height = cfg.Grid.Height
	}
	if maxRounds == 0 {
		maxRounds = cfg.Match.MaxRounds
	}
	if logLevel == "" {
		logLevel = cfg.Log.Level
	}
	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if maxRounds <= 0 {
		fmt.Println("error: -max-rounds must be > 0 for unattended runs")
		return
	}
	roster, err := parseRoster(rosterFlag)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	rc := runConfig{
		settings: match.Settings{Width: width, Height: height, Obstacles: cfg.Grid.Obstacles, MaxRounds: maxRounds},
		roster:   roster,
		logger:   logging.New(logLevel, os.Stderr),
	}
	name := "random"
	if scenarioPath != "" {
		rc.scenario, err = scenario.Load(scenarioPath)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		name = rc.scenario.Name
	}

	fmt.Printf("=== Headless Battle Report ===\n")
	fmt.Printf("scenario=%s runs=%d grid=%dx%d max_rounds=%d seed_base=%d seed_step=%d\n\n",
		name, runs, width, height, maxRounds, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		stats, err := runMatch(i+1, seed, rc)
		if err != nil {
			fmt.Printf("run %d (seed=%d) failed: %v\n", i+1, seed, err)
			continue
		}
		all = append(all, stats)
		printRun(os.Stdout, stats)
	}

	printAggregate(os.Stdout, all)
}

// parseRoster reads archetype initials ("STCR") or comma-separated names.
func parseRoster(s string) ([]combat.Archetype, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var parts []string
	if strings.Contains(s, ",") {
		parts = strings.Split(s, ",")
	} else {
		parts = strings.Split(s, "")
	}
	if len(parts) > combat.RosterCapacity {
		return nil, fmt.Errorf("roster %q has %d units, max %d", s, len(parts), combat.RosterCapacity)
	}
	out := make([]combat.Archetype, 0, len(parts))
	for _, p := range parts {
		a, err := combat.ParseArchetype(p)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// runMatch plays one engine-vs-engine match to completion.
func runMatch(runIndex int, seed int64, rc runConfig) (runStats, error) {
	settings := rc.settings
	settings.Seed = seed
	opts := []match.Option{match.WithAutoOpponent(false), match.WithLogger(rc.logger)}
	if rc.scenario != nil {
		w, err := rc.scenario.Build(rc.logger)
		if err != nil {
			return runStats{}, err
		}
		opts = append(opts, match.WithWorld(w))
	}
	m := match.New(settings, opts...)

	if m.World().Roster(combat.Player).Len() == 0 {
		picks := rc.roster
		if len(picks) == 0 {
			for i := 0; i < combat.RosterCapacity; i++ {
				picks = append(picks, combat.Archetypes[m.Rand().Intn(len(combat.Archetypes))])
			}
		}
		for _, a := range picks {
			if _, err := m.AddPlayerUnit(a); err != nil {
				return runStats{}, err
			}
		}
	}
	if err := m.Start(); err != nil {
		return runStats{}, err
	}

	rs := runStats{
		runIndex:        runIndex,
		seed:            seed,
		playerRoster:    archetypes(m.Units(combat.Player)),
		opponentRoster:  archetypes(m.Units(combat.Opponent)),
		firstDeathRound: -1,
		survivors:       map[combat.Archetype]int{},
	}
	rs.playerTotal = len(rs.playerRoster)
	rs.opponentTotal = len(rs.opponentRoster)

	engines := [2]*ai.Engine{
		{Faction: combat.Player, Logger: rc.logger},
		{Faction: combat.Opponent, Logger: rc.logger},
	}
	for m.Phase() == match.PhaseBattle {
		if _, err := m.PlayTurn(engines[m.Turn()]); err != nil {
			return rs, err
		}
		if m.Phase() != match.PhaseBattle {
			break
		}
		if _, err := m.EndTurn(); err != nil {
			return rs, err
		}
	}

	rs.outcome = m.Outcome()
	rs.rounds = m.Round()
	for _, u := range m.Units(combat.Player) {
		rs.playerAlive++
		rs.survivors[u.Archetype()]++
	}
	for _, u := range m.Units(combat.Opponent) {
		rs.opponentAlive++
		rs.survivors[u.Archetype()]++
	}

	log := m.Log()
	if e, ok := firstOf(log.Entries(), match.CatDeath, "killed"); ok {
		rs.firstDeathRound = e.Round
	}
	rs.moves = log.CountCategory(match.CatMove, "move")
	rs.hits = log.CountCategory(match.CatAttack, "hit")
	rs.attacks = rs.hits + log.CountCategory(match.CatAttack, "miss")
	for _, e := range log.Filter(match.CatAttack, "hit") {
		rs.damage += int(e.NumVal)
	}
	for _, e := range log.Filter(match.CatBleed, "bleed") {
		rs.bleedTicks++
		rs.bleedDamage += int(e.NumVal)
	}
	return rs, nil
}

func archetypes(units []*combat.Unit) []combat.Archetype {
	out := make([]combat.Archetype, 0, len(units))
	for _, u := range units {
		out = append(out, u.Archetype())
	}
	return out
}

func firstOf(entries []match.LogEntry, category, key string) (match.LogEntry, bool) {
	for _, e := range entries {
		if e.Category == category && e.Key == key {
			return e, true
		}
	}
	return match.LogEntry{}, false
}

// classifyRun labels how a match ended.
func classifyRun(rs runStats) string {
	switch {
	case rs.outcome == match.Draw && rs.playerAlive > 0 && rs.opponentAlive > 0:
		return "stalemate"
	case rs.outcome == match.Draw:
		return "mutual_destruction"
	case rs.playerAlive+rs.opponentAlive == 0:
		return "mutual_destruction"
	}
	winnerAlive, winnerTotal := rs.playerAlive, rs.playerTotal
	if rs.outcome == match.OpponentWon {
		winnerAlive, winnerTotal = rs.opponentAlive, rs.opponentTotal
	}
	if winnerTotal > 0 && winnerAlive*2 <= winnerTotal {
		return "pyrrhic"
	}
	return "decisive"
}

func printRun(w io.Writer, rs runStats) {
	fmt.Fprintf(w, "--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Fprintf(w, "rosters: player=%s opponent=%s\n", rosterString(rs.playerRoster), rosterString(rs.opponentRoster))
	fmt.Fprintf(w, "result: %s (%s) rounds=%d survivors player=%d/%d opponent=%d/%d first_death=%s\n",
		rs.outcome, classifyRun(rs), rs.rounds,
		rs.playerAlive, rs.playerTotal, rs.opponentAlive, rs.opponentTotal, roundString(rs.firstDeathRound))
	fmt.Fprintf(w, "events: moves=%d attacks=%d hits=%d hit_rate=%.0f%% damage=%d bleed_ticks=%d bleed_damage=%d\n",
		rs.moves, rs.attacks, rs.hits, pct(rs.hits, rs.attacks), rs.damage, rs.bleedTicks, rs.bleedDamage)
	fmt.Fprintln(w)
}

func printAggregate(w io.Writer, all []runStats) {
	outcomes := map[match.Outcome]int{}
	kinds := map[string]int{}
	totalRounds := 0
	totalAttacks, totalHits, totalDamage, totalBleed := 0, 0, 0, 0
	fielded := map[combat.Archetype]int{}
	survived := map[combat.Archetype]int{}
	deathRounds := make([]int, 0, len(all))

	for _, rs := range all {
		outcomes[rs.outcome]++
		kinds[classifyRun(rs)]++
		totalRounds += rs.rounds
		totalAttacks += rs.attacks
		totalHits += rs.hits
		totalDamage += rs.damage
		totalBleed += rs.bleedDamage
		for _, a := range rs.playerRoster {
			fielded[a]++
		}
		for _, a := range rs.opponentRoster {
			fielded[a]++
		}
		for a, n := range rs.survivors {
			survived[a] += n
		}
		if rs.firstDeathRound >= 0 {
			deathRounds = append(deathRounds, rs.firstDeathRound)
		}
	}

	fmt.Fprintln(w, "=== Aggregate ===")
	fmt.Fprintf(w, "runs=%d\n", len(all))
	fmt.Fprintf(w, "outcomes: player_won=%d opponent_won=%d draw=%d\n",
		outcomes[match.PlayerWon], outcomes[match.OpponentWon], outcomes[match.Draw])
	fmt.Fprintf(w, "endings: %s\n", joinCounts(kinds))
	fmt.Fprintf(w, "avg_per_run: rounds=%.1f attacks=%.1f damage=%.1f bleed_damage=%.1f hit_rate=%.0f%% first_death=%s\n",
		avg(totalRounds, len(all)), avg(totalAttacks, len(all)), avg(totalDamage, len(all)), avg(totalBleed, len(all)),
		pct(totalHits, totalAttacks), avgRoundString(deathRounds))

	fmt.Fprintln(w, "\n=== Archetype Survival ===")
	for _, a := range combat.Archetypes {
		if fielded[a] == 0 {
			continue
		}
		fmt.Fprintf(w, "  %-8s fielded=%d survived=%d rate=%.0f%%\n", a, fielded[a], survived[a], pct(survived[a], fielded[a]))
	}
}

func rosterString(as []combat.Archetype) string {
	if len(as) == 0 {
		return "-"
	}
	var sb strings.Builder
	for _, a := range as {
		sb.WriteString(a.String()[:1])
	}
	return sb.String()
}

func roundString(r int) string {
	if r < 0 {
		return "n/a"
	}
	return fmt.Sprintf("%d", r)
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func pct(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func avgRoundString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func joinCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, " ")
}
