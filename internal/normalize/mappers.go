package normalize

import (
	"fmt"
	"strings"

	"github.com/catalyst-labs/radar/internal/core/domain"
)

// Each mapper keeps its payload key aliases in a table so adding a new
// upstream spelling is a one-line change.

var politicianKeys = struct {
	person, txDate, txType, asset, amount []string
}{
	person: []string{"reporting_person", "representative", "senator", "name", "filer"},
	txDate: []string{"transaction_date_or_range", "transaction_date", "tx_date", "date", "filing_date"},
	txType: []string{"transaction_type", "type", "tx_type"},
	asset:  []string{"asset", "asset_description", "asset_name", "ticker"},
	amount: []string{"amount", "amount_range", "value", "amount_band"},
}

// mapPoliticianDisclosure normalizes a legislator financial-disclosure
// transaction.
func mapPoliticianDisclosure(in Input, base domain.CanonicalEvent, payload any) domain.NormalizationResult {
	person := stringField(payload, politicianKeys.person...)
	txDate := stringField(payload, politicianKeys.txDate...)
	txType := stringField(payload, politicianKeys.txType...)
	asset := stringField(payload, politicianKeys.asset...)
	amountBand := stringField(payload, politicianKeys.amount...)

	if person == "" || asset == "" || txType == "" {
		return quarantine("politician disclosure missing key fields (name/asset/type)")
	}

	event := base
	if event.Title == titlePlaceholder {
		event.Title = fmt.Sprintf("%s disclosure: %s %s", person, txType, asset)
	}
	if event.Summary == summaryPlaceholder {
		event.Summary = fmt.Sprintf("%s reported a %s transaction in %s (%s).",
			person, strings.ToLower(txType), asset, orUnknown(amountBand))
	}
	event.ThemeTags = []string{"POLITICIAN", "DISCLOSURE"}
	event.Details = domain.EventDetails{
		TypeSpecific: map[string]any{
			"reporting_person": person,
			"transaction_date": txDate,
			"transaction_type": txType,
			"asset":            asset,
			"amount_band":      amountBand,
		},
		Entities: []domain.Entity{
			{Name: person, EntityType: "PERSON", Role: "FILER"},
			{Name: asset, EntityType: "COMPANY", Role: "ASSET"},
		},
		RawPayload: payload,
	}

	identity := []string{
		string(domain.EventPoliticianDisclosure),
		person, txDate, txType, asset, amountBand,
	}
	return ok(finalize(in, &event, domain.EventPoliticianDisclosure, identity), "")
}

var spendingKeys = struct {
	awardID, agency, recipient, amount []string
}{
	awardID:   []string{"generated_unique_award_id", "award_id", "piid", "internal_id"},
	agency:    []string{"awarding_agency", "awarding_agency_name", "agency"},
	recipient: []string{"recipient_name", "recipient", "awardee"},
	amount:    []string{"award_amount", "total_obligation", "obligated_amount", "amount"},
}

// mapSpendingAward normalizes a federal spending award row.
func mapSpendingAward(in Input, base domain.CanonicalEvent, payload any) domain.NormalizationResult {
	awardID := stringField(payload, spendingKeys.awardID...)
	agency := stringField(payload, spendingKeys.agency...)
	recipient := stringField(payload, spendingKeys.recipient...)
	amount := stringField(payload, spendingKeys.amount...)

	if awardID == "" || agency == "" || recipient == "" {
		return quarantine("award missing key fields (award id/agency/recipient)")
	}

	event := base
	if event.Title == titlePlaceholder {
		event.Title = fmt.Sprintf("Federal award to %s", recipient)
	}
	if event.Summary == summaryPlaceholder {
		event.Summary = fmt.Sprintf("%s awarded %s to %s.", agency, orUnknown(amount), recipient)
	}
	event.ThemeTags = []string{"FEDERAL_AWARD"}
	event.Details = domain.EventDetails{
		TypeSpecific: map[string]any{
			"award_id":  awardID,
			"agency":    agency,
			"recipient": recipient,
			"amount":    amount,
		},
		Entities: []domain.Entity{
			{Name: agency, EntityType: "AGENCY", Role: "AWARDER"},
			{Name: recipient, EntityType: "COMPANY", Role: "RECIPIENT"},
		},
		RawPayload: payload,
	}

	identity := []string{
		string(domain.EventFederalAward), "USASPENDING", awardID, agency, recipient,
	}
	return ok(finalize(in, &event, domain.EventFederalAward, identity), "")
}

var defenseKeys = struct {
	contract, recipient, agency, amount []string
}{
	contract:  []string{"contract_number", "piid", "contract_id"},
	recipient: []string{"recipient", "contractor", "company", "awardee"},
	agency:    []string{"agency", "awarding_agency", "branch"},
	amount:    []string{"amount", "value", "contract_value"},
}

// mapDefenseAward normalizes a defense contract announcement.
func mapDefenseAward(in Input, base domain.CanonicalEvent, payload any) domain.NormalizationResult {
	contract := stringField(payload, defenseKeys.contract...)
	recipient := stringField(payload, defenseKeys.recipient...)
	agency := stringField(payload, defenseKeys.agency...)
	amount := stringField(payload, defenseKeys.amount...)

	if recipient == "" {
		// Announcement pages carry the awardee in the headline.
		recipient = base.Title
	}
	if agency == "" {
		agency = "DoD"
	}

	event := base
	if event.Title == titlePlaceholder {
		event.Title = fmt.Sprintf("Defense contract awarded to %s", recipient)
	}
	if event.Summary == summaryPlaceholder {
		event.Summary = fmt.Sprintf("%s awarded a contract to %s (%s).",
			agency, recipient, orUnknown(amount))
	}
	event.ThemeTags = []string{"FEDERAL_AWARD", "DEFENSE"}
	event.Details = domain.EventDetails{
		TypeSpecific: map[string]any{
			"contract_number": contract,
			"agency":          agency,
			"recipient":       recipient,
			"amount":          amount,
		},
		Entities: []domain.Entity{
			{Name: agency, EntityType: "AGENCY", Role: "AWARDER"},
			{Name: recipient, EntityType: "COMPANY", Role: "RECIPIENT"},
		},
		RawPayload: payload,
	}

	stable := contract
	if stable == "" {
		stable = base.SourceURL
	}
	identity := []string{
		string(domain.EventFederalAward), "DOD", stable, agency, recipient,
	}
	return ok(finalize(in, &event, domain.EventFederalAward, identity), "")
}

var filingKeys = struct {
	accession, form, filer []string
}{
	accession: []string{"accession_number", "accession", "id"},
	form:      []string{"form_type", "form", "filing_type", "category"},
	filer:     []string{"company", "filer", "registrant", "company_name"},
}

// mapSecuritiesFiling normalizes a securities filing notice.
func mapSecuritiesFiling(in Input, base domain.CanonicalEvent, payload any) domain.NormalizationResult {
	accession := stringField(payload, filingKeys.accession...)
	form := stringField(payload, filingKeys.form...)
	filer := stringField(payload, filingKeys.filer...)

	if accession == "" && base.SourceURL == "" {
		return quarantine("filing missing accession number and source URL")
	}

	event := base
	if event.Title == titlePlaceholder {
		event.Title = strings.Trim(fmt.Sprintf("SEC filing %s - %s", form, filer), " -")
		if event.Title == "SEC filing" || event.Title == "" {
			event.Title = titlePlaceholder
		}
	}
	if event.Summary == summaryPlaceholder && filer != "" {
		formLabel := form
		if formLabel == "" {
			formLabel = "filing"
		}
		event.Summary = fmt.Sprintf("%s filed a %s with the SEC.", filer, formLabel)
	}
	event.ThemeTags = []string{"SEC_FILING"}

	var entities []domain.Entity
	if filer != "" {
		entities = append(entities, domain.Entity{Name: filer, EntityType: "COMPANY", Role: "FILER"})
	}
	event.Details = domain.EventDetails{
		TypeSpecific: map[string]any{
			"accession_number": accession,
			"form_type":        form,
			"filer":            filer,
		},
		Entities:   entities,
		RawPayload: payload,
	}

	stable := accession
	if stable == "" {
		stable = base.SourceURL
	}
	identity := []string{
		string(domain.EventOtherPublicCatalyst), "SEC", stable, form, filer,
	}
	return ok(finalize(in, &event, domain.EventOtherPublicCatalyst, identity), "")
}

// stringField returns the first non-empty payload value among keys,
// normalized to a single-line string. Non-map payloads yield "".
func stringField(payload any, keys ...string) string {
	m, okMap := payload.(map[string]any)
	if !okMap {
		return ""
	}
	for _, key := range keys {
		v, present := m[key]
		if !present || v == nil {
			continue
		}
		s := normWS(fmt.Sprint(v))
		if s != "" {
			return s
		}
	}
	return ""
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown amount"
	}
	return s
}
