// Package main provides the CLI entrypoint for qtyper.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/qtyper/internal/config"
	"github.com/verte-zerg/qtyper/internal/generator"
	"github.com/verte-zerg/qtyper/internal/model"
	"github.com/verte-zerg/qtyper/internal/quote"
	"github.com/verte-zerg/qtyper/internal/session"
	"github.com/verte-zerg/qtyper/internal/stats"
	"github.com/verte-zerg/qtyper/internal/store"
	"github.com/verte-zerg/qtyper/internal/tui"
	"github.com/verte-zerg/qtyper/internal/wordlist"
)

const (
	defaultLang        = "en"
	defaultWords       = 12
	defaultCaps        = 0.5
	defaultPunct       = 0.5
	defaultWeakTop     = 8
	defaultWeakFactor  = 2.0
	defaultWeakWindow  = 20
	defaultCurveWindow = 20
	defaultTimeout     = 10
)

const defaultPunctSet = ".,!?;:\"'{}()[]-=/<>`"

// Exit code for a user-interrupted session, matching the SIGINT convention.
const exitCodeAborted = 130

var (
	sessionMode     string
	sessionCount    int
	sessionDuration int
	sessionOffline  bool

	offlineLang       string
	offlineWords      int
	offlineCaps       float64
	offlinePunct      float64
	offlinePunctSet   string
	offlineFocusWeak  bool
	offlineWeakTop    int
	offlineWeakFactor float64
	offlineWeakWindow int

	providerURL     string
	providerTimeout int

	statsLang        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
)

var sessionAborted bool

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
	if sessionAborted {
		os.Exit(exitCodeAborted)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "qtyper",
		Short:         "TUI quote typing practice",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runSessionCmd,
	}

	rootCmd.Flags().StringVar(&sessionMode, "mode", "", "session mode: single, multi, time, zen (default: interactive menu)")
	rootCmd.Flags().IntVar(&sessionCount, "count", 0, "quotes to type for --mode multi")
	rootCmd.Flags().IntVar(&sessionDuration, "duration", 0, "seconds for --mode time")
	rootCmd.Flags().BoolVar(&sessionOffline, "offline", false, "compose texts from a local word list instead of the quote API")
	rootCmd.Flags().StringVar(&providerURL, "api-url", quote.DefaultAPIURL, "quote API endpoint")
	rootCmd.Flags().IntVar(&providerTimeout, "timeout", defaultTimeout, "quote fetch timeout in seconds")
	rootCmd.Flags().StringVar(&offlineLang, "lang", defaultLang, "word list language for --offline")
	rootCmd.Flags().IntVar(&offlineWords, "words", defaultWords, "words per offline text")
	rootCmd.Flags().Float64Var(&offlineCaps, "caps", defaultCaps, "probability of capitalized first letter (0-1)")
	rootCmd.Flags().Float64Var(&offlinePunct, "punct", defaultPunct, "punctuation probability per word (0-1)")
	rootCmd.Flags().StringVar(&offlinePunctSet, "punct-set", defaultPunctSet, "punctuation set")
	rootCmd.Flags().BoolVar(&offlineFocusWeak, "focus-weak", false, "bias offline texts toward weak characters")
	rootCmd.Flags().IntVar(&offlineWeakTop, "weak-top", defaultWeakTop, "number of weak characters to focus on")
	rootCmd.Flags().Float64Var(&offlineWeakFactor, "weak-factor", defaultWeakFactor, "weight factor for weak characters")
	rootCmd.Flags().IntVar(&offlineWeakWindow, "weak-window", defaultWeakWindow, "number of recent sessions to compute weak chars")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newLangsCmd())

	return rootCmd
}

func runSessionCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "mode", &sessionMode, fileCfg.Session.Mode)
	applyIntConfig(cmd, "count", &sessionCount, fileCfg.Session.Count)
	applyIntConfig(cmd, "duration", &sessionDuration, fileCfg.Session.Duration)
	applyStringConfig(cmd, "api-url", &providerURL, fileCfg.Provider.URL)
	applyIntConfig(cmd, "timeout", &providerTimeout, fileCfg.Provider.TimeoutSeconds)
	applyBoolConfig(cmd, "offline", &sessionOffline, fileCfg.Offline.Enabled)
	applyStringConfig(cmd, "lang", &offlineLang, fileCfg.Offline.Lang)
	applyIntConfig(cmd, "words", &offlineWords, fileCfg.Offline.Words)
	applyFloatConfig(cmd, "caps", &offlineCaps, fileCfg.Offline.CapsPct)
	applyFloatConfig(cmd, "punct", &offlinePunct, fileCfg.Offline.PunctPct)
	applyStringConfig(cmd, "punct-set", &offlinePunctSet, fileCfg.Offline.PunctSet)
	applyBoolConfig(cmd, "focus-weak", &offlineFocusWeak, fileCfg.Offline.FocusWeak)
	applyIntConfig(cmd, "weak-top", &offlineWeakTop, fileCfg.Offline.WeakTop)
	applyFloatConfig(cmd, "weak-factor", &offlineWeakFactor, fileCfg.Offline.WeakFactor)
	applyIntConfig(cmd, "weak-window", &offlineWeakWindow, fileCfg.Offline.WeakWindow)

	cfg := model.Config{
		Mode:           sessionMode,
		Count:          sessionCount,
		Duration:       sessionDuration,
		Offline:        sessionOffline,
		Lang:           offlineLang,
		Words:          offlineWords,
		CapsPct:        offlineCaps,
		PunctPct:       offlinePunct,
		PunctSet:       offlinePunctSet,
		FocusWeak:      offlineFocusWeak,
		WeakTop:        offlineWeakTop,
		WeakFactor:     offlineWeakFactor,
		WeakWindow:     offlineWeakWindow,
		APIURL:         providerURL,
		TimeoutSeconds: providerTimeout,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	policy, quit, err := resolvePolicy(cfg)
	if err != nil {
		return err
	}
	if quit {
		return nil
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	provider, source, err := buildProvider(cfg, st)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.TimeoutSeconds)*time.Second)
	first, err := provider.Fetch(ctx)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to fetch first quote: %w", err)
	}

	machine := session.NewMachine(policy, first)
	sessionModel := tui.NewModel(machine, provider, st, source, cfg.Lang)
	program := tea.NewProgram(sessionModel, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	switch sessionModel.Outcome() {
	case tui.OutcomeAborted:
		sessionAborted = true
		fmt.Println("session aborted")
		return nil
	case tui.OutcomeFailed:
		return sessionModel.Err()
	case tui.OutcomeFinished:
		fmt.Println(sessionModel.Report())
		return nil
	}
	return nil
}

// resolvePolicy turns flags into a session policy, falling back to the
// interactive menu when no mode was given.
func resolvePolicy(cfg model.Config) (session.Policy, bool, error) {
	switch cfg.Mode {
	case "single":
		return session.Single(), false, nil
	case "multi":
		if cfg.Count <= 0 {
			return session.Policy{}, false, fmt.Errorf("--mode multi requires --count > 0")
		}
		return session.Multi(cfg.Count), false, nil
	case "time":
		if cfg.Duration <= 0 {
			return session.Policy{}, false, fmt.Errorf("--mode time requires --duration > 0")
		}
		return session.Timed(time.Duration(cfg.Duration) * time.Second), false, nil
	case "zen":
		return session.Zen(), false, nil
	case "":
	default:
		return session.Policy{}, false, fmt.Errorf("unknown mode %q (single, multi, time, zen)", cfg.Mode)
	}

	menu := tui.NewMenu()
	program := tea.NewProgram(menu, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return session.Policy{}, false, fmt.Errorf("failed to run menu: %w", err)
	}
	choice := menu.Choice()
	if choice.Quit {
		if choice.Interrupted {
			sessionAborted = true
		}
		return session.Policy{}, true, nil
	}
	return choice.Policy, false, nil
}

func buildProvider(cfg model.Config, st *store.Store) (quote.Provider, string, error) {
	if !cfg.Offline {
		return quote.NewHTTP(cfg.APIURL, time.Duration(cfg.TimeoutSeconds)*time.Second), cfg.APIURL, nil
	}

	wordPath := config.DefaultWordListPath(cfg.Lang)
	words, err := wordlist.LoadWords(wordPath)
	if err != nil {
		return nil, "", wordListLoadError(cfg.Lang, wordPath, err)
	}
	words = wordlist.Filter(words, wordlist.FilterForLang(cfg.Lang))
	if len(words) == 0 {
		return nil, "", fmt.Errorf("word list %s has no usable words", wordPath)
	}

	provider := quote.NewLocal(generator.New(), words, generator.Options{
		Count:      cfg.Words,
		CapsPct:    cfg.CapsPct,
		PunctPct:   cfg.PunctPct,
		PunctSet:   []rune(cfg.PunctSet),
		WeakFactor: cfg.WeakFactor,
	})

	if cfg.FocusWeak {
		aggs, err := st.GetWeakChars(context.Background(), cfg.WeakWindow, cfg.Lang)
		if err != nil {
			logErrf("failed to load weak chars: %v\n", err)
		} else if len(aggs) == 0 {
			logErrln("no stats available for weak-char focus yet; using normal generator")
		} else {
			provider.FocusWeak(stats.SelectWeakChars(aggs, cfg.WeakTop))
		}
	}
	return provider, "wordlist:" + cfg.Lang, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show session history",
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsLang, "lang", "", "language filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	cfg := model.StatsConfig{
		Lang:        statsLang,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}

	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, sessions); err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}
	if err := stats.RenderCurves(out, sessions, cfg.CurveWindow, curveWidth()); err != nil {
		return fmt.Errorf("failed to render curves: %w", err)
	}

	windowIDs := lastSessionIDs(sessions, cfg.CurveWindow)
	charAggs, err := st.ListCharAggregatesForSessions(ctx, windowIDs)
	if err != nil {
		return fmt.Errorf("failed to load char stats: %w", err)
	}
	if err := stats.RenderCharTable(out, charAggs); err != nil {
		return fmt.Errorf("failed to render char table: %w", err)
	}
	return nil
}

// curveWidth sizes sparklines to the terminal, leaving room for labels.
func curveWidth() int {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return 60
	}
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 30 {
		return 60
	}
	return width - 30
}

func lastSessionIDs(sessions []model.SessionAggregate, window int) []int64 {
	if window > 0 && len(sessions) > window {
		sessions = sessions[len(sessions)-window:]
	}
	ids := make([]int64, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	return ids
}

func newLangsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "langs",
		Short: "List available word list languages",
		Args:  cobra.NoArgs,
		RunE:  runLangsCmd,
	}
}

func runLangsCmd(cmd *cobra.Command, _ []string) error {
	wordlistDir := config.DefaultWordListDir()
	entries, err := os.ReadDir(wordlistDir)
	if err != nil {
		if os.IsNotExist(err) {
			logErrf("No word lists found. Put one word per line in %s/<code>.txt\n", wordlistDir)
			return fmt.Errorf("wordlist directory does not exist")
		}
		return fmt.Errorf("failed to read wordlist directory: %w", err)
	}
	langs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		langs = append(langs, strings.TrimSuffix(entry.Name(), ".txt"))
	}
	if len(langs) == 0 {
		logErrf("No word lists found. Put one word per line in %s/<code>.txt\n", wordlistDir)
		return fmt.Errorf("no word lists found")
	}
	sort.Strings(langs)
	for _, lang := range langs {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), lang); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# qtyper configuration
# Uncomment a value to enable it. CLI flags override config values.

[session]
# mode = "single"         # single, multi, time, zen (default: interactive menu)
# count = 4               # Quotes to type in multi mode
# duration = 60           # Seconds in time mode

[provider]
# url = %q
# timeout-seconds = %d

[offline]
# enabled = false         # Compose texts locally instead of the quote API
# lang = %q               # Word list language
# words = %d              # Words per offline text
# caps = %.2f             # Probability of capitalized first letter (0-1)
# punct = %.2f            # Punctuation probability per word (0-1)
# punct-set = %q          # Punctuation set
# focus-weak = false      # Bias offline texts toward weak characters
# weak-top = %d           # Number of weak characters to focus on
# weak-factor = %.1f      # Weight factor for weak characters
# weak-window = %d        # Number of recent sessions to compute weak chars
`,
		quote.DefaultAPIURL,
		defaultTimeout,
		defaultLang,
		defaultWords,
		defaultCaps,
		defaultPunct,
		defaultPunctSet,
		defaultWeakTop,
		defaultWeakFactor,
		defaultWeakWindow,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.TimeoutSeconds <= 0 {
		return fmt.Errorf("--timeout must be > 0")
	}
	if cfg.Words <= 0 {
		return fmt.Errorf("--words must be > 0")
	}
	if cfg.CapsPct < 0 || cfg.CapsPct > 1 {
		return fmt.Errorf("--caps must be between 0 and 1")
	}
	if cfg.PunctPct < 0 || cfg.PunctPct > 1 {
		return fmt.Errorf("--punct must be between 0 and 1")
	}
	if cfg.PunctSet == "" {
		return fmt.Errorf("--punct-set must not be empty")
	}
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakFactor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	if cfg.WeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	return nil
}

func wordListLoadError(lang, path string, err error) error {
	lines := []string{
		fmt.Sprintf("failed to load word list: %v", err),
		fmt.Sprintf("expected word list at: %s", path),
		fmt.Sprintf("language %q not found", lang),
		"Run: qtyper langs",
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
