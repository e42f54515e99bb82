package nakama

import (
	"context"
	"testing"

	"onecard/internal/app"
	"onecard/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
)

// fakeWallets implements WalletModule for testing.
type fakeWallets struct {
	accounts map[string]*api.Account
	wallets  map[string]map[string]int64
	calls    int
}

func (m *fakeWallets) AccountGetId(ctx context.Context, userID string) (*api.Account, error) {
	if acc, ok := m.accounts[userID]; ok {
		return acc, nil
	}
	return &api.Account{}, nil
}

func (m *fakeWallets) WalletUpdate(ctx context.Context, userID string, changeset map[string]int64, metadata map[string]interface{}, updateLedger bool) (map[string]int64, map[string]int64, error) {
	m.calls++
	if m.wallets == nil {
		m.wallets = make(map[string]map[string]int64)
	}
	if _, ok := m.wallets[userID]; !ok {
		m.wallets[userID] = make(map[string]int64)
	}
	prev := make(map[string]int64)
	for k, v := range m.wallets[userID] {
		prev[k] = v
	}
	for k, v := range changeset {
		m.wallets[userID][k] += v
	}
	return prev, m.wallets[userID], nil
}

func newTestSigner() *app.ResultSigner {
	return app.NewResultSigner("nakama-secret", resultTokenIssuer, 0)
}

func TestEconomyAdapter_GetBalance(t *testing.T) {
	wallets := &fakeWallets{accounts: map[string]*api.Account{
		"rich": {Wallet: `{"gold": 1200, "gems": 3}`},
		"bad":  {Wallet: `not json`},
	}}
	adapter := NewNakamaEconomyAdapter(wallets)

	tests := []struct {
		name    string
		userID  string
		want    int64
		wantErr bool
	}{
		{name: "Gold", userID: "rich", want: 1200},
		{name: "EmptyWallet", userID: "nobody", want: 0},
		{name: "Malformed", userID: "bad", wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := adapter.GetBalance(context.Background(), test.userID)
			if (err != nil) != test.wantErr {
				t.Fatalf("GetBalance() error = %v, wantErr %t", err, test.wantErr)
			}
			if got != test.want {
				t.Fatalf("GetBalance() = %d, want %d", got, test.want)
			}
		})
	}
}

func TestEconomyAdapter_UpdateBalancesSkipsZero(t *testing.T) {
	wallets := &fakeWallets{}
	adapter := NewNakamaEconomyAdapter(wallets)

	err := adapter.UpdateBalances(context.Background(), []ports.WalletUpdate{
		{UserID: "user-1", Amount: 100},
		{UserID: "user-2", Amount: 0},
		{UserID: "user-1", Amount: 25},
	})
	if err != nil {
		t.Fatalf("UpdateBalances() error = %v", err)
	}
	if wallets.calls != 2 {
		t.Fatalf("Expected 2 wallet updates, got %d", wallets.calls)
	}
	if got := wallets.wallets["user-1"][WalletCurrency]; got != 125 {
		t.Fatalf("user-1 gold = %d, want 125", got)
	}
}
