package enums

// TokenEntryKind is the direction of a token ledger movement.
type TokenEntryKind string

const (
	TokenEntryDebit  TokenEntryKind = "debit"
	TokenEntryCredit TokenEntryKind = "credit"
)
