package record

// Reason identifies the stage that rejected a row. Reason codes are stable
// strings: they appear in the rejected output's Reason column and in run
// result breakdowns.
type Reason string

// Rejection reason codes, one per rejecting stage.
const (
	ReasonMissingName            Reason = "missingName"
	ReasonDigitName              Reason = "digitName"
	ReasonSpecialCharName        Reason = "specialCharName"
	ReasonIncompleteRegistration Reason = "incompleteRegistration"
	ReasonNonNumericPhone        Reason = "nonNumericPhone"
	ReasonShortName              Reason = "shortName"
	ReasonPredicate              Reason = "predicate"
)

// String returns the reason code.
func (r Reason) String() string {
	return string(r)
}
