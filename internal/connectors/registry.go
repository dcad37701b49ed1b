package connectors

import (
	"sort"

	"github.com/catalyst-labs/radar/internal/config"
	"github.com/catalyst-labs/radar/internal/connectors/disclosures"
	"github.com/catalyst-labs/radar/internal/connectors/dodcontracts"
	"github.com/catalyst-labs/radar/internal/connectors/secfilings"
	"github.com/catalyst-labs/radar/internal/connectors/usaspending"
	"github.com/catalyst-labs/radar/internal/core/ports/driven"
	"github.com/catalyst-labs/radar/internal/httpx"
)

// Build constructs every registered connector from settings.
// The source set is fixed; there is no dynamic registration.
func Build(cfg config.Settings) map[string]driven.Connector {
	httpCfg := httpx.Config{UserAgent: cfg.UserAgent}

	return map[string]driven.Connector{
		secfilings.Name: secfilings.New(httpCfg, nil),
		usaspending.Name: usaspending.New(httpCfg, usaspending.Config{
			AgencyName: cfg.SpendingAgencyName,
			AgencyTier: cfg.SpendingAgencyTier,
			AgencyType: cfg.SpendingAgencyType,
		}),
		dodcontracts.Name: dodcontracts.New(httpCfg, cfg.ContractsURL),
		disclosures.Name: disclosures.New(httpCfg, disclosures.Config{
			SenateURL:  cfg.SenateDisclosureURL,
			HouseYear:  cfg.HousePTRYear,
			StartID:    cfg.HousePTRStartID,
			RatePerSec: cfg.HousePTRRatePerSec,
		}),
	}
}

// Names returns the registered connector names, sorted.
func Names(m map[string]driven.Connector) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
