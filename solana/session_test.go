package solana

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AlexZinkM/devnet-demo/internal/metrics"
	"github.com/AlexZinkM/devnet-demo/internal/provider"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAirdrop  = 2_000_000_000
	testTransfer = 1_999_000_000
)

// fakeNetwork records what the session sends and fails on demand.
type fakeNetwork struct {
	mu sync.Mutex

	airdropErr   error
	confirmErr   error
	blockhashErr error
	sendErr      error
	balance      uint64

	// when set, RequestAirdrop signals started and waits for release
	started chan struct{}
	release chan struct{}

	airdrops        []solana.PublicKey
	airdropLamports []uint64
	sent            []*solana.Transaction
}

func (f *fakeNetwork) RequestAirdrop(ctx context.Context, account solana.PublicKey, lamports uint64) (solana.Signature, error) {
	if f.started != nil {
		close(f.started)
		<-f.release
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.airdropErr != nil {
		return solana.Signature{}, f.airdropErr
	}
	f.airdrops = append(f.airdrops, account)
	f.airdropLamports = append(f.airdropLamports, lamports)
	return solana.Signature{byte(len(f.airdrops))}, nil
}

func (f *fakeNetwork) ConfirmTransaction(ctx context.Context, sig solana.Signature) error {
	return f.confirmErr
}

func (f *fakeNetwork) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	if f.blockhashErr != nil {
		return solana.Hash{}, f.blockhashErr
	}
	return solana.Hash{42}, nil
}

func (f *fakeNetwork) SendAndConfirmTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, tx)
	if f.sendErr != nil {
		return solana.Signature{}, f.sendErr
	}
	return tx.Signatures[0], nil
}

func (f *fakeNetwork) Balance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	return f.balance, nil
}

type fakeRates struct {
	rate decimal.Decimal
	err  error
}

func (r fakeRates) GetSOLtoUSDRate(ctx context.Context) (decimal.Decimal, error) {
	return r.rate, r.err
}

func newTestSession(t *testing.T, env provider.Environment, net *fakeNetwork) *Session {
	t.Helper()
	s := NewSession(env, net, Options{
		AirdropLamports:  testAirdrop,
		TransferLamports: testTransfer,
	})
	t.Cleanup(s.Close)
	return s
}

func newTestWallet(t *testing.T, opts ...provider.Option) *provider.Keyfile {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	k := provider.NewKeyfileFromKey(key, opts...)
	t.Cleanup(func() { _ = k.Close() })
	return k
}

func captureLogs(t *testing.T) *test.Hook {
	t.Helper()
	hook := test.NewGlobal()
	level := log.GetLevel()
	log.SetLevel(log.DebugLevel)
	t.Cleanup(func() {
		hook.Reset()
		log.SetLevel(level)
		log.StandardLogger().ReplaceHooks(make(log.LevelHooks))
	})
	return hook
}

func entryWith(hook *test.Hook, msg string) *log.Entry {
	for _, e := range hook.AllEntries() {
		if e.Message == msg {
			return e
		}
	}
	return nil
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Idle", StateIdle.String())
	assert.Equal(t, "AccountReady", StateAccountReady.String())
	assert.Equal(t, "WalletConnected", StateWalletConnected.String())
	assert.Equal(t, "Ready", StateReady.String())
	assert.Equal(t, "Transferred", StateTransferred.String())
	assert.Equal(t, "State(9)", State(9).String())
}

func TestNoProvider(t *testing.T) {
	net := &fakeNetwork{}
	s := newTestSession(t, provider.Environment{}, net)
	ctx := context.Background()

	assert.False(t, s.ProviderAvailable())
	assert.Equal(t, StateIdle, s.State())
	assert.NotEmpty(t, s.ID())

	_, err := s.Connect(ctx, provider.ConnectOpts{})
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.Equal(t, StateIdle, s.State())
	assert.Empty(t, s.Snapshot().LastError)

	assert.NoError(t, s.Disconnect(ctx))

	_, err = s.SignMessage(ctx, []byte("hi"), provider.DisplayUTF8)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestGenerateAccount(t *testing.T) {
	net := &fakeNetwork{}
	s := newTestSession(t, nil, net)
	before := testutil.ToFloat64(metrics.Operations.WithLabelValues(opGenerate, metrics.OutcomeSuccess))

	res, err := s.GenerateAccount(context.Background())
	require.NoError(t, err)

	account, ok := s.Account()
	require.True(t, ok)
	assert.Equal(t, account.PublicKey, res.Address)
	assert.Equal(t, account.PrivateKey.PublicKey(), account.PublicKey)
	assert.Len(t, account.PrivateKey, 64)
	assert.NotEmpty(t, res.QRCode)
	assert.Equal(t, uint64(testAirdrop), res.Lamports)
	assert.False(t, res.AirdropSignature.IsZero())

	assert.Equal(t, []solana.PublicKey{res.Address}, net.airdrops)
	assert.Equal(t, []uint64{testAirdrop}, net.airdropLamports)
	assert.Equal(t, StateAccountReady, s.State())

	snap := s.Snapshot()
	assert.Equal(t, res.Address, snap.Account)
	assert.Empty(t, snap.LastError)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.Operations.WithLabelValues(opGenerate, metrics.OutcomeSuccess)))
}

func TestGenerateReplacesAccount(t *testing.T) {
	net := &fakeNetwork{}
	s := newTestSession(t, nil, net)
	ctx := context.Background()

	first, err := s.GenerateAccount(ctx)
	require.NoError(t, err)
	old := s.account

	second, err := s.GenerateAccount(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.Address, second.Address)

	account, ok := s.Account()
	require.True(t, ok)
	assert.Equal(t, second.Address, account.PublicKey)

	// the replaced secret is wiped
	assert.Equal(t, make(solana.PrivateKey, 64), old.PrivateKey)
	assert.Equal(t, []solana.PublicKey{first.Address, second.Address}, net.airdrops)
	assert.Equal(t, []uint64{testAirdrop, testAirdrop}, net.airdropLamports)
}

func TestGenerateFundingFailure(t *testing.T) {
	tests := []struct {
		name string
		net  *fakeNetwork
	}{
		{"airdrop rejected", &fakeNetwork{airdropErr: errors.New("airdrop limit reached")}},
		{"airdrop not confirmed", &fakeNetwork{confirmErr: context.DeadlineExceeded}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t, nil, tt.net)

			res, err := s.GenerateAccount(context.Background())
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrFunding)

			// the account is kept so the user can retry funding elsewhere
			assert.Equal(t, StateAccountReady, s.State())
			assert.NotEmpty(t, s.Snapshot().LastError)
		})
	}
}

func TestConnectAndDisconnect(t *testing.T) {
	hook := captureLogs(t)
	wallet := newTestWallet(t)
	s := newTestSession(t, provider.Environment{provider.InjectionKey: wallet}, &fakeNetwork{})
	ctx := context.Background()

	require.True(t, s.ProviderAvailable())

	pub, err := s.Connect(ctx, provider.ConnectOpts{})
	require.NoError(t, err)
	assert.Equal(t, wallet.PublicKey(), pub)
	assert.Equal(t, StateWalletConnected, s.State())
	assert.Equal(t, pub, s.Snapshot().Wallet)

	entry := entryWith(hook, "wallet account")
	require.NotNil(t, entry)
	assert.Equal(t, pub.String(), entry.Data["wallet"])

	require.NoError(t, s.Disconnect(ctx))
	assert.Equal(t, StateIdle, s.State())
	assert.False(t, wallet.IsConnected())

	// nothing connected
	require.NoError(t, s.Disconnect(ctx))
}

func TestConnectRejected(t *testing.T) {
	hook := captureLogs(t)
	wallet := newTestWallet(t, provider.WithApprover(func(context.Context) bool { return false }))
	s := newTestSession(t, provider.Environment{provider.InjectionKey: wallet}, &fakeNetwork{})

	_, err := s.GenerateAccount(context.Background())
	require.NoError(t, err)

	_, err = s.Connect(context.Background(), provider.ConnectOpts{})
	assert.ErrorIs(t, err, ErrUserRejected)
	assert.True(t, provider.IsUserRejected(err))
	assert.Equal(t, StateAccountReady, s.State())
	assert.True(t, s.Snapshot().Wallet.IsZero())

	entry := entryWith(hook, "wallet connection rejected")
	require.NotNil(t, entry)
	assert.Equal(t, log.DebugLevel, entry.Level)
}

func TestConnectOnlyIfTrusted(t *testing.T) {
	wallet := newTestWallet(t)
	s := newTestSession(t, provider.Environment{provider.InjectionKey: wallet}, &fakeNetwork{})
	ctx := context.Background()

	_, err := s.Connect(ctx, provider.ConnectOpts{OnlyIfTrusted: true})
	assert.ErrorIs(t, err, ErrUserRejected)

	_, err = s.Connect(ctx, provider.ConnectOpts{})
	require.NoError(t, err)
	require.NoError(t, s.Disconnect(ctx))

	_, err = s.Connect(ctx, provider.ConnectOpts{OnlyIfTrusted: true})
	assert.NoError(t, err)
}

func TestAlreadyConnectedWallet(t *testing.T) {
	wallet := newTestWallet(t)
	pub, err := wallet.Connect(context.Background(), provider.ConnectOpts{})
	require.NoError(t, err)

	s := newTestSession(t, provider.Environment{provider.InjectionKey: wallet}, &fakeNetwork{})
	assert.Equal(t, StateWalletConnected, s.State())
	assert.Equal(t, pub, s.Snapshot().Wallet)
}

func TestProviderEvents(t *testing.T) {
	wallet := newTestWallet(t)
	s := newTestSession(t, provider.Environment{provider.InjectionKey: wallet}, &fakeNetwork{})
	ctx := context.Background()

	_, err := s.Connect(ctx, provider.ConnectOpts{})
	require.NoError(t, err)

	next := solana.NewWallet().PrivateKey
	wallet.SwitchAccount(next)
	assert.Equal(t, next.PublicKey(), s.Snapshot().Wallet)

	// disconnected from the wallet side
	require.NoError(t, wallet.Disconnect(ctx))
	assert.True(t, s.Snapshot().Wallet.IsZero())
	assert.Equal(t, StateIdle, s.State())
}

func TestTransfer(t *testing.T) {
	hook := captureLogs(t)
	net := &fakeNetwork{}
	wallet := newTestWallet(t)
	s := newTestSession(t, provider.Environment{provider.InjectionKey: wallet}, net)
	ctx := context.Background()

	gen, err := s.GenerateAccount(ctx)
	require.NoError(t, err)
	to, err := s.Connect(ctx, provider.ConnectOpts{})
	require.NoError(t, err)
	require.Equal(t, StateReady, s.State())
	hook.Reset()

	res, err := s.Transfer(ctx)
	require.NoError(t, err)
	assert.Equal(t, gen.Address, res.From)
	assert.Equal(t, to, res.To)
	assert.Equal(t, uint64(testTransfer), res.Lamports)
	assert.False(t, res.Signature.IsZero())

	require.Len(t, net.sent, 1)
	tx := net.sent[0]
	assert.NoError(t, tx.VerifySignatures())
	assert.Equal(t, solana.Hash{42}, tx.Message.RecentBlockhash)
	assert.Equal(t, gen.Address, tx.Message.AccountKeys[0], "fee payer")
	assert.Equal(t, res.Signature, tx.Signatures[0])

	require.Len(t, tx.Message.Instructions, 1)
	inst := tx.Message.Instructions[0]
	program, err := tx.ResolveProgramIDIndex(inst.ProgramIDIndex)
	require.NoError(t, err)
	assert.Equal(t, solana.SystemProgramID, program)

	accounts, err := inst.ResolveInstructionAccounts(&tx.Message)
	require.NoError(t, err)
	decoded, err := system.DecodeInstruction(accounts, inst.Data)
	require.NoError(t, err)
	transfer, ok := decoded.Impl.(*system.Transfer)
	require.True(t, ok)
	assert.Equal(t, uint64(1_999_000_000), *transfer.Lamports)
	assert.Equal(t, gen.Address, transfer.GetFundingAccount().PublicKey)
	assert.Equal(t, to, transfer.GetRecipientAccount().PublicKey)

	snap := s.Snapshot()
	assert.Equal(t, StateTransferred, snap.State)
	assert.Equal(t, res.Signature, snap.LastSignature)

	entry := entryWith(hook, "transaction signature")
	require.NotNil(t, entry)
	assert.Equal(t, res.Signature.String(), entry.Data["signature"])
	assert.NotEmpty(t, entry.Data["signature"])

	// a second transfer from the same account is not allowed
	_, err = s.Transfer(ctx)
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Len(t, net.sent, 1)
}

func TestTransferNotReady(t *testing.T) {
	ctx := context.Background()

	t.Run("idle", func(t *testing.T) {
		net := &fakeNetwork{}
		s := newTestSession(t, nil, net)
		_, err := s.Transfer(ctx)
		assert.ErrorIs(t, err, ErrNotReady)
		assert.Empty(t, net.sent)
	})

	t.Run("account only", func(t *testing.T) {
		net := &fakeNetwork{}
		s := newTestSession(t, nil, net)
		_, err := s.GenerateAccount(ctx)
		require.NoError(t, err)

		_, err = s.Transfer(ctx)
		assert.ErrorIs(t, err, ErrNotReady)
		assert.Empty(t, net.sent)
	})

	t.Run("wallet only", func(t *testing.T) {
		net := &fakeNetwork{}
		wallet := newTestWallet(t)
		s := newTestSession(t, provider.Environment{provider.InjectionKey: wallet}, net)
		_, err := s.Connect(ctx, provider.ConnectOpts{})
		require.NoError(t, err)

		_, err = s.Transfer(ctx)
		assert.ErrorIs(t, err, ErrNotReady)
		assert.Empty(t, net.sent)
	})
}

func TestTransferFailure(t *testing.T) {
	tests := []struct {
		name string
		net  *fakeNetwork
	}{
		{"blockhash unavailable", &fakeNetwork{blockhashErr: errors.New("node is behind")}},
		{"insufficient funds", &fakeNetwork{sendErr: errors.New("Attempt to debit an account but found no record of a prior credit.")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hook := captureLogs(t)
			wallet := newTestWallet(t)
			s := newTestSession(t, provider.Environment{provider.InjectionKey: wallet}, tt.net)
			ctx := context.Background()

			_, err := s.GenerateAccount(ctx)
			require.NoError(t, err)
			_, err = s.Connect(ctx, provider.ConnectOpts{})
			require.NoError(t, err)
			hook.Reset()

			res, err := s.Transfer(ctx)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrTransfer)

			snap := s.Snapshot()
			assert.Equal(t, StateReady, snap.State)
			assert.True(t, snap.LastSignature.IsZero())
			assert.NotEmpty(t, snap.LastError)

			assert.Nil(t, entryWith(hook, "transaction signature"))
			for _, e := range hook.AllEntries() {
				assert.NotContains(t, e.Data, "signature")
			}
		})
	}
}

func TestTransferredAcrossReconnect(t *testing.T) {
	wallet := newTestWallet(t)
	s := newTestSession(t, provider.Environment{provider.InjectionKey: wallet}, &fakeNetwork{})
	ctx := context.Background()

	_, err := s.GenerateAccount(ctx)
	require.NoError(t, err)
	_, err = s.Connect(ctx, provider.ConnectOpts{})
	require.NoError(t, err)
	_, err = s.Transfer(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Disconnect(ctx))
	assert.Equal(t, StateAccountReady, s.State())

	_, err = s.Connect(ctx, provider.ConnectOpts{})
	require.NoError(t, err)
	assert.Equal(t, StateTransferred, s.State())

	// a new account can be funded and transferred from again
	_, err = s.GenerateAccount(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateReady, s.State())
	assert.True(t, s.Snapshot().LastSignature.IsZero())
}

func TestBusy(t *testing.T) {
	net := &fakeNetwork{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	wallet := newTestWallet(t)
	s := newTestSession(t, provider.Environment{provider.InjectionKey: wallet}, net)
	ctx := context.Background()

	errc := make(chan error, 1)
	go func() {
		_, err := s.GenerateAccount(ctx)
		errc <- err
	}()

	select {
	case <-net.started:
	case <-time.After(5 * time.Second):
		t.Fatal("airdrop was not requested")
	}

	_, err := s.GenerateAccount(ctx)
	assert.ErrorIs(t, err, ErrBusy)
	_, err = s.Connect(ctx, provider.ConnectOpts{})
	assert.ErrorIs(t, err, ErrBusy)
	_, err = s.Transfer(ctx)
	assert.ErrorIs(t, err, ErrBusy)

	// reads are not blocked
	assert.Equal(t, StateAccountReady, s.State())

	close(net.release)
	require.NoError(t, <-errc)

	_, err = s.Connect(ctx, provider.ConnectOpts{})
	assert.NoError(t, err)
}

func TestSignMessage(t *testing.T) {
	wallet := newTestWallet(t)
	s := newTestSession(t, provider.Environment{provider.InjectionKey: wallet}, &fakeNetwork{})
	ctx := context.Background()

	_, err := s.SignMessage(ctx, []byte("hello"), provider.DisplayUTF8)
	assert.ErrorIs(t, err, ErrNotConnected)

	pub, err := s.Connect(ctx, provider.ConnectOpts{})
	require.NoError(t, err)

	signed, err := s.SignMessage(ctx, []byte("hello"), provider.DisplayUTF8)
	require.NoError(t, err)
	assert.Equal(t, pub, signed.PublicKey)
	assert.True(t, pub.Verify([]byte("hello"), signed.Signature))

	_, err = s.SignMessage(ctx, []byte("not hex"), provider.DisplayHex)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserRejected)
}

func TestBalance(t *testing.T) {
	ctx := context.Background()
	net := &fakeNetwork{balance: 2_000_000_000}

	s := NewSession(nil, net, Options{
		AirdropLamports:  testAirdrop,
		TransferLamports: testTransfer,
		Rates:            fakeRates{rate: decimal.RequireFromString("142.37")},
	})
	defer s.Close()

	_, err := s.Balance(ctx)
	assert.ErrorIs(t, err, ErrNotReady)

	gen, err := s.GenerateAccount(ctx)
	require.NoError(t, err)

	res, err := s.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, gen.Address, res.Address)
	assert.Equal(t, uint64(2_000_000_000), res.Lamports)
	assert.Equal(t, "2.000000000", res.SOL)
	assert.Equal(t, "142.37", res.Rate)
	assert.Equal(t, "284.74", res.USD)
}

func TestBalanceWithoutRate(t *testing.T) {
	ctx := context.Background()
	net := &fakeNetwork{balance: 1_000_000}

	s := NewSession(nil, net, Options{
		AirdropLamports: testAirdrop,
		Rates:           fakeRates{err: errors.New("rate limited")},
	})
	defer s.Close()

	_, err := s.GenerateAccount(ctx)
	require.NoError(t, err)

	res, err := s.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0.001000000", res.SOL)
	assert.Empty(t, res.Rate)
	assert.Empty(t, res.USD)
}
