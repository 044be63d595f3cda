package domain

import "errors"

// Rule violations. Each rejects a single action and leaves the round untouched.
var (
	ErrInvalidCombination    = errors.New("invalid combination")
	ErrIllegalOwnership      = errors.New("cards not held by seat")
	ErrFailsToBeat           = errors.New("play does not beat the last play")
	ErrOutOfTurn             = errors.New("not your turn")
	ErrAuctionPhaseViolation = errors.New("bid not allowed in this auction phase")
	ErrMustLead              = errors.New("leading seat cannot pass")
	ErrMalformedAction       = errors.New("malformed action")
)

var violationCodes = []struct {
	err  error
	code string
}{
	{ErrInvalidCombination, "invalid_combination"},
	{ErrIllegalOwnership, "illegal_ownership"},
	{ErrFailsToBeat, "fails_to_beat"},
	{ErrOutOfTurn, "out_of_turn"},
	{ErrAuctionPhaseViolation, "auction_phase_violation"},
	{ErrMustLead, "must_lead"},
	{ErrMalformedAction, "malformed_action"},
}

// ViolationCode maps a rule violation to the reason code relayed to clients.
// Errors that are not rule violations map to "internal".
func ViolationCode(err error) string {
	for _, v := range violationCodes {
		if errors.Is(err, v.err) {
			return v.code
		}
	}
	return "internal"
}

// IsViolation reports whether err is one of the rule violations above.
func IsViolation(err error) bool {
	return ViolationCode(err) != "internal"
}
