// Package journal implements the three append-only, informational text
// logs the spec requires: book snapshots, transactions (Executed
// messages), and client actions (EnterOrder/CancelOrder requests). None of
// these logs feed back into engine state; they exist purely for
// after-the-fact inspection. Grounded in exchange.py's BookLogger /
// TransactionLogger / ClientActionLogger trio, reimplemented with
// go.uber.org/zap file-backed cores the way the teacher wires a logger
// per component (cmd/orders/main.go's zap.NewProduction()) rather than
// hand-rolled file I/O.
package journal

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Journal owns the three loggers. A run-scoped correlation id (minted by
// the caller, typically via google/uuid) is attached to every line so logs
// from concurrent runs in the same directory can be told apart.
type Journal struct {
	runID      string
	bookLog    *zap.Logger
	txnLog     *zap.Logger
	actionLog  *zap.Logger
}

// Paths names the three log files to open.
type Paths struct {
	Book    string
	Txn     string
	Action  string
}

// Open creates (or appends to) the three log files and returns a Journal
// tagging every entry with runID.
func Open(paths Paths, runID string) (*Journal, error) {
	bookLog, err := newFileLogger(paths.Book)
	if err != nil {
		return nil, err
	}
	txnLog, err := newFileLogger(paths.Txn)
	if err != nil {
		return nil, err
	}
	actionLog, err := newFileLogger(paths.Action)
	if err != nil {
		return nil, err
	}
	return &Journal{runID: runID, bookLog: bookLog, txnLog: txnLog, actionLog: actionLog}, nil
}

func newFileLogger(path string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// LogBookSnapshot records the book's top-of-book state after a handler
// runs, mirroring exchange.py's post-handler book_logger.update_log call.
func (j *Journal) LogBookSnapshot(symbol string, bestBid, bestAsk uint32, bidVolume, askVolume uint32, timestamp uint64) {
	j.bookLog.Info("book_snapshot",
		zap.String("run_id", j.runID),
		zap.String("symbol", symbol),
		zap.Uint32("best_bid", bestBid),
		zap.Uint32("best_bid_volume", bidVolume),
		zap.Uint32("best_ask", bestAsk),
		zap.Uint32("best_ask_volume", askVolume),
		zap.Uint64("timestamp", timestamp),
	)
}

// LogTransaction records one Executed leg, mirroring transaction_logger.
func (j *Journal) LogTransaction(orderToken string, matchNumber uint64, price, shares uint32, timestamp uint64) {
	j.txnLog.Info("execution",
		zap.String("run_id", j.runID),
		zap.String("order_token", orderToken),
		zap.Uint64("match_number", matchNumber),
		zap.Uint32("price", price),
		zap.Uint32("shares", shares),
		zap.Uint64("timestamp", timestamp),
	)
}

// Client action kinds, mirroring exchange.py's PLACE_LIMIT_ORDER_ACTION /
// CANCEL_LIMIT_ORDER_ACTION constants.
const (
	ActionPlaceLimitOrder = "place_limit_order"
	ActionCancelOrder     = "cancel_order"
)

// LogClientAction records an inbound EnterOrder or CancelOrder request,
// mirroring action_logger.update_log.
func (j *Journal) LogClientAction(action string, orderToken string, timestamp uint64) {
	j.actionLog.Info("client_action",
		zap.String("run_id", j.runID),
		zap.String("action", action),
		zap.String("order_token", orderToken),
		zap.Uint64("timestamp", timestamp),
	)
}

// Close flushes and releases all three underlying loggers.
func (j *Journal) Close() {
	_ = j.bookLog.Sync()
	_ = j.txnLog.Sync()
	_ = j.actionLog.Sync()
}
