package sharedexpense

import "github.com/fkhayef/sharedexpenses/pkg/apperr"

var (
	ErrSplitNotFound           = apperr.NotFound("shared expense not found")
	ErrParticipantNotFound     = apperr.NotFound("participant not found")
	ErrExpenseNotFound         = apperr.NotFound("expense not found")
	ErrUserNotFound            = apperr.NotFound("user not found")
	ErrParticipantUserNotFound = apperr.NotFound("participant user not found")

	ErrAccessDenied    = apperr.Unauthorized("you do not have access to this shared expense")
	ErrNotPayer        = apperr.Unauthorized("only the payer can perform this action")
	ErrExpenseNotOwned = apperr.Unauthorized("expense does not belong to user")
	ErrNotParticipant  = apperr.Unauthorized("only the payer or the participant can dispute a share")

	ErrAlreadySettled       = apperr.Conflict("shared expense is already settled")
	ErrAlreadyPaid          = apperr.Conflict("participant has already paid")
	ErrParticipantWaived    = apperr.Conflict("participant share has been waived")
	ErrParticipantDisputed  = apperr.Conflict("participant share is disputed")
	ErrHasPayments          = apperr.Conflict("cannot delete shared expense with payments already made")
	ErrReplaceAfterPayments = apperr.Conflict("cannot replace participants after payments have been made")
	ErrShareTotalMismatch   = apperr.Conflict("participant shares do not match expense total")
	ErrDuplicateParticipant = apperr.Conflict("participant already exists on this shared expense")
	ErrConcurrentUpdate     = apperr.RetryableConflict("shared expense was modified concurrently, retry the request")
	ErrInvariantViolated    = apperr.Invariant("shared expense invariant violated")

	ErrInvalidParticipant    = apperr.Validation("participant must reference either a user_id or an external_name")
	ErrExternalNameRequired  = apperr.Validation("external participant must have a name")
	ErrInvalidEmail          = apperr.Validation("external_email is not a valid email address")
	ErrRepeatedParticipant   = apperr.Validation("participant is listed more than once")
	ErrTotalAmountMismatch   = apperr.Validation("total_amount must equal the expense amount")
	ErrNegativeExpenseAmount = apperr.Validation("expense amount cannot be negative")
	ErrSplitTypeNeedsPeople  = apperr.Validation("changing split_type requires replacing participants")
	ErrDisputeReasonRequired = apperr.Validation("a dispute reason is required")
	ErrDescriptionTooLong    = apperr.Validation("description must be at most 500 characters")
	ErrGroupNameTooLong      = apperr.Validation("group_name must be at most 100 characters")
	ErrNotesTooLong          = apperr.Validation("notes must be at most 500 characters")
	ErrExternalNameTooLong   = apperr.Validation("external_name must be at most 255 characters")
	ErrInvalidID             = apperr.Validation("ids must be positive")
)

const (
	maxDescriptionLength  = 500
	maxGroupNameLength    = 100
	maxNotesLength        = 500
	maxExternalNameLength = 255
)
