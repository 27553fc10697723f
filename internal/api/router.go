package api

import (
	"net/http"
	"time"

	_ "github.com/AlexZinkM/devnet-demo/docs"
	"github.com/AlexZinkM/devnet-demo/internal/handler"
	"github.com/AlexZinkM/devnet-demo/internal/ui"
	"github.com/AlexZinkM/devnet-demo/solana"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRouter sets up router with handlers for session
func SetupRouter(session *solana.Session) http.Handler {
	solanaHandler := handler.NewSolanaHandler(session)

	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)
	mux.Handle("/metrics", promhttp.Handler())

	// Demo page
	mux.Handle("/", ui.NewPage(session))

	// Session endpoints
	mux.HandleFunc("/solana/state", solanaHandler.State)
	mux.HandleFunc("/solana/generate", solanaHandler.Generate)
	mux.HandleFunc("/solana/transfer", solanaHandler.Transfer)
	mux.HandleFunc("/solana/balance", solanaHandler.GetBalance)

	// Wallet endpoints
	mux.HandleFunc("/wallet/connect", solanaHandler.Connect)
	mux.HandleFunc("/wallet/disconnect", solanaHandler.Disconnect)
	mux.HandleFunc("/wallet/sign-message", solanaHandler.SignMessage)

	return withLogging(mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Debug("request")
	})
}
