// Package result defines the outcome codes every domain operation
// returns. Domain failures are values, never panics: callers branch on
// the code and decide how to present it.
package result

// Result is the outcome of a repository or domain engine operation.
type Result string

const (
	Success Result = "SUCCESS"
	// PartialSuccess reports a bulk write where some entries applied and
	// some did not.
	PartialSuccess Result = "PARTIAL_SUCCESS"
	// SuccessImportRenumbered reports a successful add whose requested
	// import number could not be reserved as the item code, so a
	// sequential code was allocated instead.
	SuccessImportRenumbered Result = "SUCCESS_BUT_IMPORT_RENUMBERED"
	Error                   Result = "ERROR"
	InputError              Result = "INPUT_ERROR"
	NothingToUpdate         Result = "NOTHING_TO_UPDATE"

	InvalidValue      Result = "INVALID_VALUE"
	InvalidItemCode   Result = "INVALID_ITEM_CODE"
	InvalidAuthor     Result = "INVALID_AUTHOR"
	InvalidTitle      Result = "INVALID_TITLE"
	InvalidAmount     Result = "INVALID_AMOUNT"
	InvalidCharity    Result = "INVALID_CHARITY"
	InvalidItemNumber Result = "INVALID_ITEM_NUMBER"
	InvalidItemOwner  Result = "INVALID_ITEM_OWNER"
	InvalidBuyer      Result = "INVALID_BUYER"
	InvalidBadge      Result = "INVALID_BADGE"

	IncompleteSaleInfo      Result = "INCOMPLETE_SALE_INFO"
	DuplicateItem           Result = "DUPLICATE_ITEM"
	DuplicateImportNumber   Result = "DUPLICATE_IMPORT_NUMBER"
	ItemNotFound            Result = "ITEM_NOT_FOUND"
	ItemNotClosable         Result = "ITEM_NOT_CLOSABLE"
	ItemClosedAlready       Result = "ITEM_CLOSED_ALREADY"
	AmountTooLow            Result = "AMOUNT_TOO_LOW"
	AmountNotDefined        Result = "AMOUNT_NOT_DEFINED"
	BuyerNotDefined         Result = "BUYER_NOT_DEFINED"
	InitialAmountNotDefined Result = "INITIAL_AMOUNT_NOT_DEFINED"
	CharityNotDefined       Result = "CHARITY_NOT_DEFINED"

	NoImport        Result = "NO_IMPORT"
	InvalidChecksum Result = "INVALID_CHECKSUM"

	ReconciliationDataChanged Result = "RECONCILIATION_DATA_CHANGED"
	BadgeAlreadyReconciled    Result = "BADGE_ALREADY_RECONCILED"

	PrimaryRateInvalid Result = "PRIMARY_RATE_INVALID"
)

// OK reports whether r is a success variant.
func (r Result) OK() bool {
	return r == Success || r == SuccessImportRenumbered
}
