package distribution

import (
	"errors"

	errs "assembly/core/errors"
	"assembly/native/common"
	"assembly/native/token"
)

var (
	errNilState  = errors.New("distribution engine: state not configured")
	errNilLedger = errors.New("distribution engine: token ledger not configured")

	ErrDistributionPeriodEnded = errors.New("distribution: distribution period ended")
	ErrRedeemPeriodNotStarted  = errors.New("distribution: redeem period has not started")
	ErrInvalidNumberOfAccounts = errors.New("distribution: invalid number of accounts")

	ErrAddressMismatch         = errors.New("distribution: address does not match derivation")
	ErrDecimalsMismatch        = errors.New("distribution: distributable and reward decimals differ")
	ErrFreezeAuthorityMismatch = errors.New("distribution: freeze authority mismatch")
	ErrReceiverNotOwner        = errors.New("distribution: receiver token account not owned by recipient")
	ErrMintMismatch            = errors.New("distribution: mint does not match distributor")
	ErrMissingSignature        = errors.New("distribution: missing required signature")
	ErrInvalidWindows          = errors.New("distribution: redeem window opens before distribution ends")
	ErrAlreadyRedeemed         = errors.New("distribution: grant already redeemed")
	ErrOverflow                = errors.New("distribution: amount overflow")
)

// Reason is the closed set of rejection reasons a call can end with. The
// first three carry the program's custom error codes.
type Reason uint32

const (
	ReasonNone                    Reason = 0
	ReasonDistributionPeriodEnded Reason = 6000
	ReasonRedeemPeriodNotStarted  Reason = 6001
	ReasonInvalidNumberOfAccounts Reason = 6002
)

// Validation and ledger reasons.
const (
	ReasonAddressMismatch Reason = 7000 + iota
	ReasonDecimalsMismatch
	ReasonFreezeAuthorityMismatch
	ReasonReceiverNotOwner
	ReasonMintMismatch
	ReasonMissingSignature
	ReasonAuthorityMismatch
	ReasonAccountInUse
	ReasonAccountNotFound
	ReasonInsufficientFunds
	ReasonOverflow
	ReasonInvalidWindows
	ReasonAlreadyRedeemed
	ReasonModulePaused
	ReasonUnknown
)

var reasonNames = map[Reason]string{
	ReasonNone:                    "none",
	ReasonDistributionPeriodEnded: "distribution_period_ended",
	ReasonRedeemPeriodNotStarted:  "redeem_period_not_started",
	ReasonInvalidNumberOfAccounts: "invalid_number_of_accounts",
	ReasonAddressMismatch:         "address_mismatch",
	ReasonDecimalsMismatch:        "decimals_mismatch",
	ReasonFreezeAuthorityMismatch: "freeze_authority_mismatch",
	ReasonReceiverNotOwner:        "receiver_not_owner",
	ReasonMintMismatch:            "mint_mismatch",
	ReasonMissingSignature:        "missing_signature",
	ReasonAuthorityMismatch:       "authority_mismatch",
	ReasonAccountInUse:            "account_in_use",
	ReasonAccountNotFound:         "account_not_found",
	ReasonInsufficientFunds:       "insufficient_funds",
	ReasonOverflow:                "overflow",
	ReasonInvalidWindows:          "invalid_windows",
	ReasonAlreadyRedeemed:         "already_redeemed",
	ReasonModulePaused:            "module_paused",
	ReasonUnknown:                 "unknown",
}

func (r Reason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return "unknown"
}

var reasonTable = []struct {
	err    error
	reason Reason
}{
	{ErrDistributionPeriodEnded, ReasonDistributionPeriodEnded},
	{ErrRedeemPeriodNotStarted, ReasonRedeemPeriodNotStarted},
	{ErrInvalidNumberOfAccounts, ReasonInvalidNumberOfAccounts},
	{ErrAddressMismatch, ReasonAddressMismatch},
	{ErrDecimalsMismatch, ReasonDecimalsMismatch},
	{ErrFreezeAuthorityMismatch, ReasonFreezeAuthorityMismatch},
	{ErrReceiverNotOwner, ReasonReceiverNotOwner},
	{ErrMintMismatch, ReasonMintMismatch},
	{ErrMissingSignature, ReasonMissingSignature},
	{ErrInvalidWindows, ReasonInvalidWindows},
	{ErrAlreadyRedeemed, ReasonAlreadyRedeemed},
	{ErrOverflow, ReasonOverflow},
	{common.ErrModulePaused, ReasonModulePaused},
	{token.ErrMissingSignature, ReasonMissingSignature},
	{token.ErrInvalidSigner, ReasonAuthorityMismatch},
	{token.ErrAuthorityMismatch, ReasonAuthorityMismatch},
	{token.ErrOwnerMismatch, ReasonAuthorityMismatch},
	{token.ErrMintMismatch, ReasonMintMismatch},
	{token.ErrInsufficientFunds, ReasonInsufficientFunds},
	{token.ErrOverflow, ReasonOverflow},
	{errs.ErrAccountInUse, ReasonAccountInUse},
	{errs.ErrAccountNotFound, ReasonAccountNotFound},
	{errs.ErrAccountOwner, ReasonAddressMismatch},
}

// ReasonOf maps an error returned by any call to its rejection reason.
func ReasonOf(err error) Reason {
	if err == nil {
		return ReasonNone
	}
	for _, entry := range reasonTable {
		if errors.Is(err, entry.err) {
			return entry.reason
		}
	}
	return ReasonUnknown
}
