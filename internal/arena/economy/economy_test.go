package economy

import (
	"context"
	"testing"

	"github.com/louisbranch/gridfall/internal/platform/errors"
)

func TestLedgerDeductAndRefund(t *testing.T) {
	ledger := NewInMemoryLedger()
	ledger.SetBalance("acct-1", 100)
	ctx := context.Background()

	ok, err := ledger.CanAfford(ctx, "acct-1", 50)
	if err != nil || !ok {
		t.Fatalf("can afford: %v %v", ok, err)
	}

	if err := ledger.Deduct(ctx, "acct-1", 50); err != nil {
		t.Fatalf("deduct: %v", err)
	}
	if got := ledger.Balance("acct-1"); got != 50 {
		t.Fatalf("balance = %d, want 50", got)
	}

	if err := ledger.Refund(ctx, "acct-1", 25); err != nil {
		t.Fatalf("refund: %v", err)
	}
	if got := ledger.Balance("acct-1"); got != 75 {
		t.Fatalf("balance = %d, want 75", got)
	}
}

func TestLedgerInsufficientFunds(t *testing.T) {
	ledger := NewInMemoryLedger()
	ctx := context.Background()

	if err := ledger.Deduct(ctx, "acct-1", 10); !errors.IsCode(err, errors.CodeInsufficientFunds) {
		t.Fatalf("expected INSUFFICIENT_FUNDS, got %v", err)
	}

	ok, err := ledger.CanAfford(ctx, "acct-1", 1)
	if err != nil || ok {
		t.Fatalf("empty account affords nothing: %v %v", ok, err)
	}
}

func TestLedgerDistribute(t *testing.T) {
	ledger := NewInMemoryLedger()
	ctx := context.Background()

	if err := ledger.Distribute(ctx, "winner", 300); err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if got := ledger.Balance("winner"); got != 300 {
		t.Fatalf("balance = %d, want 300", got)
	}
}

func TestStaticIdentity(t *testing.T) {
	accountID, err := StaticIdentity{}.AccountID(context.Background(), "ch-7")
	if err != nil {
		t.Fatalf("account id: %v", err)
	}
	if accountID != "ch-7" {
		t.Fatalf("account id = %q, want ch-7", accountID)
	}
}
