package app

type WarningCode string

const (
	// WarnPartialFailure: the primary mutation committed but a follow-up
	// recalculation or event delivery did not.
	WarnPartialFailure WarningCode = WarningCode(ErrCodePartialFailure)
	// WarnCapitalThreshold: the amount is above the advisory share of
	// available capital.
	WarnCapitalThreshold WarningCode = "CAPITAL_THRESHOLD"
)

// Warning accompanies a successful result.
type Warning struct {
	Code    WarningCode
	Message string
	PhaseID string
}
