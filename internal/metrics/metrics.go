package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values of Operations
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
	OutcomeSkipped  = "skipped"
)

var (
	// Operations tracks session operations (generate, connect, disconnect, transfer, sign_message)
	Operations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devnet_demo_operations_total",
			Help: "Total number of session operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	// Lamports tracks lamports moved, by kind (airdrop, transfer)
	Lamports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devnet_demo_lamports_total",
			Help: "Total number of lamports requested from the faucet or transferred",
		},
		[]string{"kind"},
	)

	// RPCCalls tracks Solana RPC calls per method
	RPCCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devnet_demo_rpc_calls_total",
			Help: "Total number of Solana RPC calls",
		},
		[]string{"method"},
	)

	// RPCErrors tracks failed Solana RPC calls per method
	RPCErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devnet_demo_rpc_errors_total",
			Help: "Total number of failed Solana RPC calls",
		},
		[]string{"method"},
	)
)
