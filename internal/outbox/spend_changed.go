package outbox

// EventSpendChanged is emitted whenever a phase's committed, estimated or
// actual spend may have changed. Its single consumer recalculates the phase.
const EventSpendChanged = "phase.spend_changed"

// SpendChanged is the payload of EventSpendChanged.
type SpendChanged struct {
	PhaseID      string `json:"phase_id"`
	SpendEntryID string `json:"spend_entry_id,omitempty"`
	Cause        string `json:"cause"`
}

// NewSpendChanged builds a pending SpendChanged event keyed by phase.
func NewSpendChanged(phaseID, spendEntryID, cause string) (*Event, error) {
	return NewEvent(EventSpendChanged, phaseID, SpendChanged{
		PhaseID:      phaseID,
		SpendEntryID: spendEntryID,
		Cause:        cause,
	})
}
