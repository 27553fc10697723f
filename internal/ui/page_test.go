package ui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AlexZinkM/devnet-demo/internal/provider"
	"github.com/AlexZinkM/devnet-demo/solana"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, p *Page) string {
	t.Helper()
	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	return rec.Body.String()
}

func TestPageWithoutProvider(t *testing.T) {
	s := solana.NewSession(provider.Environment{}, nil, solana.Options{TransferLamports: 1_999_000_000})
	defer s.Close()

	body := render(t, NewPage(s))
	assert.Contains(t, body, `id="install"`)
	assert.NotContains(t, body, `id="connect"`)
	assert.Contains(t, body, `id="create"`)
	assert.Contains(t, body, "Transfer 1.999000000 SOL")
	assert.Contains(t, body, "disabled")
	assert.Contains(t, body, "Idle")
}

func TestPageConnect(t *testing.T) {
	key, err := solanago.NewRandomPrivateKey()
	require.NoError(t, err)
	wallet := provider.NewKeyfileFromKey(key)
	defer wallet.Close()

	s := solana.NewSession(provider.Environment{provider.InjectionKey: wallet}, nil, solana.Options{})
	defer s.Close()
	p := NewPage(s)

	body := render(t, p)
	assert.Contains(t, body, `id="connect"`)
	assert.NotContains(t, body, "Connected account")
	assert.NotContains(t, body, `id="install"`)

	pub, err := s.Connect(context.Background(), provider.ConnectOpts{})
	require.NoError(t, err)

	body = render(t, p)
	assert.NotContains(t, body, `id="connect"`)
	assert.Contains(t, body, "Connected account: <code>"+pub.String()+"</code>")
	assert.Contains(t, body, `id="disconnect"`)
	assert.Contains(t, body, "WalletConnected")
}

func TestNewView(t *testing.T) {
	account := solanago.NewWallet().PublicKey()
	wallet := solanago.NewWallet().PublicKey()

	v := newView(solana.Snapshot{
		State:             solana.StateReady,
		ProviderAvailable: true,
		Account:           account,
		Wallet:            wallet,
		AirdropLamports:   2_000_000_000,
		TransferLamports:  1_999_000_000,
	})
	assert.Equal(t, "Ready", v.State)
	assert.Equal(t, account.String(), v.Account)
	assert.Equal(t, wallet.String(), v.Wallet)
	assert.Empty(t, v.LastSignature)
	assert.Equal(t, "2.000000000", v.AirdropSOL)
	assert.Equal(t, "1.999000000", v.TransferSOL)
	assert.True(t, v.CanTransfer)

	v = newView(solana.Snapshot{State: solana.StateTransferred, LastSignature: solanago.Signature{1}})
	assert.False(t, v.CanTransfer)
	assert.Empty(t, v.Account)
	assert.Equal(t, solanago.Signature{1}.String(), v.LastSignature)
}

func TestPageNotFound(t *testing.T) {
	s := solana.NewSession(nil, nil, solana.Options{})
	defer s.Close()

	rec := httptest.NewRecorder()
	NewPage(s).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	NewPage(s).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
