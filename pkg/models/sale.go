// pkg/models/sale.go
package models

// Transfer is one fund movement executed by a settlement.
type Transfer struct {
	From   Identity `json:"from"`
	To     Identity `json:"to"`
	Amount int64    `json:"amount"`
	Memo   string   `json:"memo,omitempty"`
}

// SaleEvent is the output of a settlement. It is not ledger state: it drives
// the fund transfers and is handed to the external transaction log.
type SaleEvent struct {
	ArtworkID         uint64     `json:"artwork_id"`
	Payer             Identity   `json:"payer"`
	SalePrice         int64      `json:"sale_price"`
	AmountPaid        int64      `json:"amount_paid"`
	Kind              SaleKind   `json:"kind"`
	OwnershipTransfer bool       `json:"ownership_transfer"`
	PlatformFee       int64      `json:"platform_fee"`
	RoyaltyAmount     int64      `json:"royalty_amount"`
	Transfers         []Transfer `json:"transfers"`
}
