package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/AlexZinkM/devnet-demo/internal/common"
	"github.com/AlexZinkM/devnet-demo/internal/model"
	"github.com/AlexZinkM/devnet-demo/internal/provider"
	"github.com/AlexZinkM/devnet-demo/solana"

	log "github.com/sirupsen/logrus"
)

// SolanaHandler exposes the demo session over HTTP
type SolanaHandler struct {
	session *solana.Session
}

// NewSolanaHandler creates a new SolanaHandler for session
func NewSolanaHandler(session *solana.Session) *SolanaHandler {
	return &SolanaHandler{session: session}
}

// State handles GET /solana/state
// @Summary      Get session state
// @Description  Returns the state machine position, generated account and connected wallet
// @Tags         solana
// @Produce      json
// @Success      200  {object}  model.StateResponse
// @Router       /solana/state [get]
func (h *SolanaHandler) State(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, stateResponse(h.session.Snapshot()))
}

// stateResponse converts a session snapshot into its JSON form
func stateResponse(snap solana.Snapshot) model.StateResponse {
	resp := model.StateResponse{
		SessionID:         snap.SessionID,
		State:             snap.State.String(),
		ProviderAvailable: snap.ProviderAvailable,
		LastError:         snap.LastError,
		AirdropSOL:        common.LamportsToSOL(snap.AirdropLamports),
		TransferSOL:       common.LamportsToSOL(snap.TransferLamports),
	}
	if !snap.Account.IsZero() {
		resp.Account = snap.Account.String()
	}
	if !snap.Wallet.IsZero() {
		resp.Wallet = snap.Wallet.String()
	}
	if !snap.LastSignature.IsZero() {
		resp.LastSignature = snap.LastSignature.String()
	}
	return resp
}

// Generate handles POST /solana/generate
// @Summary      Generate funded account
// @Description  Generates a new devnet keypair and funds it from the faucet
// @Tags         solana
// @Produce      json
// @Success      200  {object}  model.GenerateResponse
// @Failure      429  {object}  model.ErrorResponse
// @Failure      502  {object}  model.ErrorResponse
// @Router       /solana/generate [post]
func (h *SolanaHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. should be POST", http.StatusMethodNotAllowed)
		return
	}

	res, err := h.session.GenerateAccount(r.Context())
	if isForm(r) {
		backToPage(w, r)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.GenerateResponse{
		Success:          true,
		Message:          "Account generated and funded",
		Address:          res.Address.String(),
		QR:               res.QRCode,
		AirdropSignature: res.AirdropSignature.String(),
		AirdropSOL:       common.LamportsToSOL(res.Lamports),
	})
}

// Connect handles POST /wallet/connect
// @Summary      Connect wallet
// @Description  Asks the wallet provider for access to its account
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.ConnectRequest  false  "Connect options"
// @Success      200      {object}  model.ConnectResponse
// @Failure      403      {object}  model.ErrorResponse
// @Failure      503      {object}  model.ErrorResponse
// @Router       /wallet/connect [post]
func (h *SolanaHandler) Connect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.ConnectRequest
	if isForm(r) {
		req.OnlyIfTrusted = r.FormValue("onlyIfTrusted") == "true"
	} else if err := decodeOptional(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error(), Code: model.CodeBadRequest})
		return
	}

	pub, err := h.session.Connect(r.Context(), provider.ConnectOpts{OnlyIfTrusted: req.OnlyIfTrusted})
	if isForm(r) {
		backToPage(w, r)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.ConnectResponse{PublicKey: pub.String()})
}

// Disconnect handles POST /wallet/disconnect
// @Summary      Disconnect wallet
// @Description  Ends the wallet session, no-op when nothing is connected
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.DisconnectResponse
// @Router       /wallet/disconnect [post]
func (h *SolanaHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	err := h.session.Disconnect(r.Context())
	if isForm(r) {
		backToPage(w, r)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.DisconnectResponse{Disconnected: true})
}

// Transfer handles POST /solana/transfer
// @Summary      Transfer SOL to the wallet
// @Description  Sends the configured amount from the generated account to the connected wallet
// @Tags         solana
// @Produce      json
// @Success      200  {object}  model.TransferResponse
// @Failure      409  {object}  model.ErrorResponse
// @Failure      502  {object}  model.ErrorResponse
// @Router       /solana/transfer [post]
func (h *SolanaHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	res, err := h.session.Transfer(r.Context())
	if isForm(r) {
		backToPage(w, r)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.TransferResponse{
		TxID:     res.Signature.String(),
		From:     res.From.String(),
		To:       res.To.String(),
		Amount:   common.LamportsToSOL(res.Lamports),
		Currency: "SOL",
	})
}

// SignMessage handles POST /wallet/sign-message
// @Summary      Sign a message with the wallet
// @Description  Asks the connected wallet to sign an utf8 or hex message
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.SignMessageRequest  true  "Message"
// @Success      200      {object}  model.SignMessageResponse
// @Failure      409      {object}  model.ErrorResponse
// @Router       /wallet/sign-message [post]
func (h *SolanaHandler) SignMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.SignMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error(), Code: model.CodeBadRequest})
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "message is required", Code: model.CodeBadRequest})
		return
	}

	display := provider.DisplayEncoding(req.Display)
	if display == "" {
		display = provider.DisplayUTF8
	}

	signed, err := h.session.SignMessage(r.Context(), []byte(req.Message), display)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.SignMessageResponse{
		PublicKey: signed.PublicKey.String(),
		Signature: signed.Signature.String(),
	})
}

// GetBalance handles GET /solana/balance
// @Summary      Get generated account balance
// @Description  Gets the SOL balance of the generated account with its USD value
// @Tags         solana
// @Produce      json
// @Success      200  {object}  model.BalanceResponse
// @Failure      409  {object}  model.ErrorResponse
// @Router       /solana/balance [get]
func (h *SolanaHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	balance, err := h.session.Balance(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.BalanceResponse{
		Address:  balance.Address.String(),
		Lamports: balance.Lamports,
		SOL:      balance.SOL,
		Rate:     balance.Rate,
		USD:      balance.USD,
	})
}

// StatusOf maps a session error to its HTTP status and error code
func StatusOf(err error) (int, string) {
	switch {
	case errors.Is(err, solana.ErrProviderUnavailable):
		return http.StatusServiceUnavailable, model.CodeProviderUnavailable
	case errors.Is(err, solana.ErrUserRejected):
		return http.StatusForbidden, model.CodeUserRejected
	case errors.Is(err, solana.ErrNotReady):
		return http.StatusConflict, model.CodeNotReady
	case errors.Is(err, solana.ErrNotConnected):
		return http.StatusConflict, model.CodeNotConnected
	case errors.Is(err, solana.ErrBusy):
		return http.StatusTooManyRequests, model.CodeBusy
	case errors.Is(err, solana.ErrFunding):
		return http.StatusBadGateway, model.CodeFundingFailed
	case errors.Is(err, solana.ErrTransfer):
		return http.StatusBadGateway, model.CodeTransferFailed
	default:
		return http.StatusInternalServerError, model.CodeInternal
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, code := StatusOf(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
	}
	writeJSON(w, status, model.ErrorResponse{Error: err.Error(), Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("failed to write response")
	}
}

// decodeOptional decodes a JSON body into v, an empty body is allowed
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// isForm reports whether the request was posted by the page
func isForm(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data"
}

func backToPage(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
