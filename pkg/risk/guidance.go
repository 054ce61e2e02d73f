package risk

// Severity is the styling key the collaborator uses when rendering a tier.
type Severity string

const (
	SeverityOK       Severity = "ok"
	SeverityWarn     Severity = "warn"
	SeverityCritical Severity = "critical"
)

// Disclaimer accompanies every assessment, whatever the tier.
const Disclaimer = "This is a screening tool, not a diagnostic test. " +
	"Created using STEPS Survey data for Ugandan Population and not yet approved."

func (t Tier) Severity() Severity {
	switch t {
	case TierHigh:
		return SeverityCritical
	case TierModerate:
		return SeverityWarn
	default:
		return SeverityOK
	}
}

// Guidance is the fixed clinical follow-up advice keyed by tier.
func (t Tier) Guidance() string {
	switch t {
	case TierHigh:
		return "Prioritize confirmatory fasting glucose or HbA1c testing."
	case TierModerate:
		return "Lifestyle counselling and follow-up."
	default:
		return "Reassurance and general health advice."
	}
}
