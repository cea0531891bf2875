package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/mjansen/wealth-tracker-backend/internal/api/request"
)

// ValidAction contains the allowed feed transaction actions.
var ValidAction = map[string]bool{
	"buy": true, "sell": true,
}

// ValidateSyncRequest validates a sync request body. Each transaction
// record must carry an account, symbol, a YYYY-MM-DD date, a buy/sell
// action and a positive quantity; amounts must not be negative.
func ValidateSyncRequest(req request.SyncRequest) error {
	errors := make(map[string]string)

	for i, record := range req.Transactions {
		field := func(name string) string {
			return fmt.Sprintf("transactions[%d].%s", i, name)
		}

		if strings.TrimSpace(record.Account) == "" {
			errors[field("account")] = "account is required"
		}
		if strings.TrimSpace(record.Symbol) == "" {
			errors[field("symbol")] = "symbol is required"
		}

		if strings.TrimSpace(record.Date) == "" {
			errors[field("date")] = "date is required"
		} else if _, err := time.Parse("2006-01-02", record.Date); err != nil {
			errors[field("date")] = err.Error()
		}

		if strings.TrimSpace(record.Action) == "" {
			errors[field("action")] = "action is required"
		} else if !ValidAction[record.Action] {
			errors[field("action")] = fmt.Sprintf("invalid action: %s", record.Action)
		}

		if !record.Quantity.IsPositive() {
			errors[field("quantity")] = "quantity must be positive"
		}
		if record.Amount.IsNegative() {
			errors[field("amount")] = "amount must not be negative"
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateResetRequest validates a ledger reset request. The confirm flag
// must be set; resetting is destructive.
func ValidateResetRequest(req request.ResetRequest) error {
	if !req.Confirm {
		return &Error{Fields: map[string]string{"confirm": "explicit confirmation is required"}}
	}
	return nil
}
