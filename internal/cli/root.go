// Package cli implements the diametrics CLI commands.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mwalther/diametrics/internal/analytics"
	"github.com/mwalther/diametrics/internal/config"
	"github.com/mwalther/diametrics/internal/report"
	"github.com/mwalther/diametrics/internal/store"
)

var (
	dataPath      string
	userFlag      string
	windowFlag    string
	startDateFlag string
	endDateFlag   string
	startFlag     string
	endFlag       string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "diametrics",
	Short: "Glucose time-series analytics",
	Long: "Analyzes a glucose reading snapshot: time in range, variability, AGP,\n" +
		"hypo/hyper episodes, meal/activity/insulin impact, trends and insights.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dataPath, "data", "d", "", "Snapshot path (default: $DIAMETRICS_DATA)")
	RootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "User ID (default: the snapshot's user)")
	RootCmd.PersistentFlags().StringVarP(&windowFlag, "window", "w", "week", "Time window: day, week, month, 3months or custom")
	RootCmd.PersistentFlags().StringVar(&startDateFlag, "start-date", "", "Window start date (YYYY-MM-DD)")
	RootCmd.PersistentFlags().StringVar(&endDateFlag, "end-date", "", "Window end date (YYYY-MM-DD)")
	RootCmd.PersistentFlags().StringVar(&startFlag, "start", "", "Exact window start (RFC 3339), overrides --window")
	RootCmd.PersistentFlags().StringVar(&endFlag, "end", "", "Exact window end (RFC 3339), overrides --window")
}

func getDataPath() string {
	if dataPath != "" {
		return dataPath
	}
	return os.Getenv("DIAMETRICS_DATA")
}

// newComposer loads configuration and the snapshot and wires the pipeline.
func newComposer() (*report.Composer, string) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		exitErr("load config", err)
	}
	if err := cfg.Validate(); err != nil {
		exitErr("validate config", err)
	}
	setupLogging(cfg.LogLevel)

	path := getDataPath()
	if path == "" {
		exitErr("load snapshot", errors.New("no snapshot given; use --data or $DIAMETRICS_DATA"))
	}
	s, userID, err := store.LoadSnapshot(path)
	if err != nil {
		exitErr("load snapshot", err)
	}
	if userFlag != "" {
		userID = userFlag
	}

	slog.Debug("snapshot loaded", "path", path, "user", userID)
	return report.NewComposer(s, cfg), userID
}

// windowQuery builds the window parameters from the persistent flags.
func windowQuery() analytics.WindowQuery {
	q := analytics.WindowQuery{Window: windowFlag}

	parseDate := func(flag, value string) *time.Time {
		if value == "" {
			return nil
		}
		t, err := time.Parse("2006-01-02", value)
		if err != nil {
			exitErr(fmt.Sprintf("parse --%s", flag), err)
		}
		return &t
	}
	parseDateTime := func(flag, value string) *time.Time {
		if value == "" {
			return nil
		}
		t, err := time.Parse(time.RFC3339, value)
		if err != nil {
			exitErr(fmt.Sprintf("parse --%s", flag), err)
		}
		return &t
	}

	q.StartDate = parseDate("start-date", startDateFlag)
	q.EndDate = parseDate("end-date", endDateFlag)
	q.StartDateTime = parseDateTime("start", startFlag)
	q.EndDateTime = parseDateTime("end", endFlag)
	return q
}

func setupLogging(level string) {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		exitErr("encode result", err)
	}
	fmt.Println(string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
