package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
	assert.Equal(t, "https://www.defense.gov/News/Contracts/", cfg.ContractsURL)
	assert.Equal(t, "https://www.disclosure.senate.gov/", cfg.SenateDisclosureURL)
	assert.Equal(t, 2025, cfg.HousePTRYear)
	assert.Equal(t, 20025000, cfg.HousePTRStartID)
	assert.Equal(t, 0.5, cfg.HousePTRRatePerSec)
	assert.Equal(t, 15*time.Minute, cfg.SchedFilings)
	assert.Equal(t, 60*time.Minute, cfg.SchedSpending)
	assert.Equal(t, 120, cfg.LimitFilings)
	assert.Equal(t, 200, cfg.LimitSpending)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("RADAR_USER_AGENT", "custom/2.0")
	t.Setenv("HOUSE_PTR_YEAR", "2026")
	t.Setenv("HOUSE_PTR_RATE_PER_SEC", "1.5")
	t.Setenv("SCHED_FILINGS_MINUTES", "5")
	t.Setenv("LIMIT_SPENDING", "50")
	t.Setenv("USASPENDING_AGENCY_NAME", "Department of Defense")

	cfg := Load()

	assert.Equal(t, "custom/2.0", cfg.UserAgent)
	assert.Equal(t, 2026, cfg.HousePTRYear)
	assert.Equal(t, 1.5, cfg.HousePTRRatePerSec)
	assert.Equal(t, 5*time.Minute, cfg.SchedFilings)
	assert.Equal(t, 50, cfg.LimitSpending)
	assert.Equal(t, "Department of Defense", cfg.SpendingAgencyName)
}

func TestLoad_IgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("HOUSE_PTR_YEAR", "not-a-year")
	t.Setenv("HOUSE_PTR_RATE_PER_SEC", "fast")

	cfg := Load()

	assert.Equal(t, 2025, cfg.HousePTRYear)
	assert.Equal(t, 0.5, cfg.HousePTRRatePerSec)
}
