package cli

import (
	"context"
	"log/slog"

	"github.com/roach88/mlops-seed/internal/history"
)

// openLedger opens the --history-db ledger. It returns nil when recording is
// disabled.
func openLedger(opts *RootOptions) (*history.Store, error) {
	if opts.HistoryDB == "" {
		return nil, nil
	}
	return history.Open(opts.HistoryDB)
}

// closeLedger closes st if it is open.
func closeLedger(st *history.Store, logger *slog.Logger) {
	if st == nil {
		return
	}
	if err := st.Close(); err != nil {
		logger.Error("error closing ledger", "error", err)
	}
}

// record appends e to st. A nil st is a no-op.
func record(ctx context.Context, st *history.Store, logger *slog.Logger, e history.Entry) error {
	if st == nil {
		return nil
	}
	saved, err := st.Record(ctx, e)
	if err != nil {
		return err
	}
	logger.Debug("recorded deployment", "id", saved.ID, "seq", saved.Seq, "kind", saved.Kind, "stage", saved.Stage)
	return nil
}
