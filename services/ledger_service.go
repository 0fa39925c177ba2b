// services/ledger_service.go
package services

import (
	"fmt"
	"time"

	"match-stake-system/models"
	"match-stake-system/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerService holds fungible balances and performs exact-amount transfers on
// behalf of the match engine. It carries no policy of its own: every transfer
// either fully applies or not at all, enforced by running inside a gorm
// transaction and mutating balances with guarded single UPDATE statements.
type LedgerService struct {
	DB     *gorm.DB
	Events *EventService
}

func NewLedgerService(db *gorm.DB, events *EventService) *LedgerService {
	return &LedgerService{DB: db, Events: events}
}

// BalanceOf returns the current balance of an account. Unknown accounts read
// as zero — account rows are created lazily on first credit.
func (s *LedgerService) BalanceOf(address string) (int64, error) {
	var acct models.Account
	if err := s.DB.First(&acct, "address = ?", address).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, err
	}
	return acct.Balance, nil
}

// TransferInto moves amount from a player account into a custody account.
func (s *LedgerService) TransferInto(account, custodian string, amount int64) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.TransferTx(tx, account, custodian, amount)
	})
}

// TransferOut moves amount from a custody account back to a player account.
// An underfunded custodian is a broken engine invariant, not a user error, so
// the InsufficientBalance it produces here should never be reachable.
func (s *LedgerService) TransferOut(custodian, account string, amount int64) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.TransferTx(tx, custodian, account, amount)
	})
}

// TransferTx performs a transfer inside an existing transaction so the match
// engine can compose it with its own state mutation and event append.
func (s *LedgerService) TransferTx(tx *gorm.DB, from, to string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: transfer amount must be positive, got %d", ErrInvalidArgument, amount)
	}
	if from == to {
		return fmt.Errorf("%w: transfer from an account to itself", ErrInvalidArgument)
	}
	if err := s.debitTx(tx, from, amount); err != nil {
		return err
	}
	return s.creditTx(tx, to, amount)
}

// Purchase credits an account from an external top-up and records the
// purchase on the event log in the same transaction.
func (s *LedgerService) Purchase(address string, amount int64) error {
	if address == "" {
		return fmt.Errorf("%w: purchase address is required", ErrInvalidArgument)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: purchase amount must be positive, got %d", ErrInvalidArgument, amount)
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.creditTx(tx, address, amount); err != nil {
			return err
		}
		return s.Events.Append(tx, &models.MatchEvent{
			Type:    models.EventPurchase,
			Address: address,
			Amount:  amount,
		})
	})
	if err != nil {
		return err
	}
	utils.Log.Infof("💰 Purchase credited: %s +%d", address, amount)
	return nil
}

// Withdraw debits an account for an external withdrawal flow.
func (s *LedgerService) Withdraw(address string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: withdraw amount must be positive, got %d", ErrInvalidArgument, amount)
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.debitTx(tx, address, amount)
	})
}

// debitTx subtracts amount from an account with a balance guard in the WHERE
// clause. The conditional UPDATE is atomic: no concurrent transfer can observe
// an intermediate balance, and a zero row count means the funds were not there.
func (s *LedgerService) debitTx(tx *gorm.DB, address string, amount int64) error {
	res := tx.Model(&models.Account{}).
		Where("address = ? AND balance >= ?", address, amount).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance - ?", amount),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: account %s cannot cover %d", ErrInsufficientBalance, address, amount)
	}
	return nil
}

// creditTx adds amount to an account in a single upsert, creating the row on
// first credit. The conflict clause keeps two first-time credits to the same
// address from colliding on the key.
func (s *LedgerService) creditTx(tx *gorm.DB, address string, amount int64) error {
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "address"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"balance":    gorm.Expr("balance + ?", amount),
			"updated_at": time.Now().UTC(),
		}),
	}).Create(&models.Account{Address: address, Balance: amount}).Error
}
