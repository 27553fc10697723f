// Package ui renders the single demo page.
package ui

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/AlexZinkM/devnet-demo/internal/common"
	"github.com/AlexZinkM/devnet-demo/solana"

	log "github.com/sirupsen/logrus"
)

//go:embed templates/index.html
var templates embed.FS

var page = template.Must(template.ParseFS(templates, "templates/index.html"))

// view is the page model
type view struct {
	State             string
	ProviderAvailable bool
	Account           string
	AccountQR         string
	Wallet            string
	LastSignature     string
	LastError         string
	AirdropSOL        string
	TransferSOL       string
	CanTransfer       bool
}

func newView(snap solana.Snapshot) view {
	v := view{
		State:             snap.State.String(),
		ProviderAvailable: snap.ProviderAvailable,
		LastError:         snap.LastError,
		AirdropSOL:        common.LamportsToSOL(snap.AirdropLamports),
		TransferSOL:       common.LamportsToSOL(snap.TransferLamports),
		CanTransfer:       snap.State == solana.StateReady,
	}
	if !snap.Account.IsZero() {
		v.Account = snap.Account.String()
	}
	if !snap.Wallet.IsZero() {
		v.Wallet = snap.Wallet.String()
	}
	if !snap.LastSignature.IsZero() {
		v.LastSignature = snap.LastSignature.String()
	}
	return v
}

// Page serves GET /
type Page struct {
	session *solana.Session
}

// NewPage creates the page for session
func NewPage(session *solana.Session) *Page {
	return &Page{session: session}
}

// ServeHTTP implements http.Handler
func (p *Page) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	v := newView(p.session.Snapshot())
	if v.Account != "" {
		qr, err := common.QRCodeBase64(v.Account)
		if err != nil {
			log.WithError(err).Warn("failed to render address QR code")
		}
		v.AccountQR = qr
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, v); err != nil {
		log.WithError(err).Error("failed to render page")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}
