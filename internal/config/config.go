// Package config loads runtime settings from environment variables.
// Every value has a working default so the CLI runs without setup;
// the data directory falls back to ~/.radar/data.
package config

import (
	"os"
	"strconv"
	"time"
)

// DefaultUserAgent identifies the harvester to external sources.
// SEC EDGAR in particular requires a contactable user agent.
const DefaultUserAgent = "radar/0.1 (contact: ops@catalyst-labs.dev)"

// Settings holds all runtime configuration.
type Settings struct {
	// DataDir is where the SQLite database lives.
	DataDir string

	// UserAgent is sent on every outbound request.
	UserAgent string

	// SpendingAgencyName optionally narrows the spending-award search
	// to one agency. Empty means no agency filter.
	SpendingAgencyName string
	SpendingAgencyTier string
	SpendingAgencyType string

	// ContractsURL is the defense contract announcements landing page.
	ContractsURL string

	// SenateDisclosureURL is the senate disclosure homepage used to
	// discover the bulk download link.
	SenateDisclosureURL string

	// HousePTRYear is the filing year for the house PTR ID scan.
	HousePTRYear int

	// HousePTRStartID is the first candidate filing ID when no
	// checkpoint exists yet.
	HousePTRStartID int

	// HousePTRRatePerSec bounds the ID probe rate.
	HousePTRRatePerSec float64

	// Scheduler cadences per connector.
	SchedFilings     time.Duration
	SchedSpending    time.Duration
	SchedContracts   time.Duration
	SchedDisclosures time.Duration

	// Scheduler batch limits per connector.
	LimitFilings     int
	LimitSpending    int
	LimitContracts   int
	LimitDisclosures int
}

// Load reads settings from the environment, applying defaults.
func Load() Settings {
	return Settings{
		DataDir:             env("RADAR_DATA_DIR", ""),
		UserAgent:           env("RADAR_USER_AGENT", DefaultUserAgent),
		SpendingAgencyName:  env("USASPENDING_AGENCY_NAME", ""),
		SpendingAgencyTier:  env("USASPENDING_AGENCY_TIER", "toptier"),
		SpendingAgencyType:  env("USASPENDING_AGENCY_TYPE", "awarding"),
		ContractsURL:        env("DOD_CONTRACTS_URL", "https://www.defense.gov/News/Contracts/"),
		SenateDisclosureURL: env("SENATE_DISCLOSURE_URL", "https://www.disclosure.senate.gov/"),
		HousePTRYear:        envInt("HOUSE_PTR_YEAR", 2025),
		HousePTRStartID:     envInt("HOUSE_PTR_START_ID", 20025000),
		HousePTRRatePerSec:  envFloat("HOUSE_PTR_RATE_PER_SEC", 0.5),
		SchedFilings:        time.Duration(envInt("SCHED_FILINGS_MINUTES", 15)) * time.Minute,
		SchedSpending:       time.Duration(envInt("SCHED_SPENDING_MINUTES", 60)) * time.Minute,
		SchedContracts:      time.Duration(envInt("SCHED_CONTRACTS_MINUTES", 30)) * time.Minute,
		SchedDisclosures:    time.Duration(envInt("SCHED_DISCLOSURES_MINUTES", 30)) * time.Minute,
		LimitFilings:        envInt("LIMIT_FILINGS", 120),
		LimitSpending:       envInt("LIMIT_SPENDING", 200),
		LimitContracts:      envInt("LIMIT_CONTRACTS", 40),
		LimitDisclosures:    envInt("LIMIT_DISCLOSURES", 200),
	}
}

func env(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func envInt(name string, fallback int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(name string, fallback float64) float64 {
	if v := os.Getenv(name); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
