// Package worker archives saved ledger documents into a local sqlite
// database, driven by save events from the broker.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"registro/internal/amqp"
	"registro/internal/binstore"
	"registro/internal/core"
	"registro/internal/metrics"
)

// ArchiveWorker copies the latest document for a bin from the primary store
// into the archive store whenever a save event arrives. The event carries
// only the bin id; the worker always fetches the current document, so a
// burst of saves collapses into the newest state.
type ArchiveWorker struct {
	source  binstore.Store
	archive binstore.Store
}

func NewArchiveWorker(source, archive binstore.Store) *ArchiveWorker {
	return &ArchiveWorker{
		source:  source,
		archive: archive,
	}
}

// HandleSavedMessage processes a single save event.
func (w *ArchiveWorker) HandleSavedMessage(ctx context.Context, msg *amqp.LedgerSavedMessage) error {
	slog.InfoContext(ctx, "Processing save event",
		"event_id", msg.EventID,
		"bin_id", msg.BinID,
		"entry_count", msg.EntryCount)

	raw, err := w.source.Load(ctx, msg.BinID)
	if err != nil {
		return fmt.Errorf("load document for bin %s: %w", msg.BinID, err)
	}
	if raw == nil {
		// the bin vanished between the save and this event; nothing to copy
		slog.WarnContext(ctx, "Bin has no document, skipping archive",
			"event_id", msg.EventID, "bin_id", msg.BinID)
		return nil
	}

	// rebuild through the tolerant parser so the archive always holds a
	// well-formed document, whatever the primary store returned
	ledger := core.FromDocument(raw)
	doc := ledger.ToDocument(organizationFrom(raw), time.Now())

	if err := w.archive.Save(ctx, msg.BinID, doc); err != nil {
		return fmt.Errorf("archive document for bin %s: %w", msg.BinID, err)
	}

	metrics.ArchivedDocuments.Inc()
	slog.InfoContext(ctx, "Archived document",
		"event_id", msg.EventID,
		"bin_id", msg.BinID,
		"entries", len(doc.Entries),
		"balance_cents", doc.Totals.Balance.Cents)

	return nil
}

// Run consumes save events until the context is cancelled, reconnecting
// with backoff when the broker connection drops.
func (w *ArchiveWorker) Run(ctx context.Context, client *amqp.Client, reconnectRetries int) error {
	for {
		err := client.ConsumeLedgerSaved(ctx, func(msg *amqp.LedgerSavedMessage) error {
			return w.HandleSavedMessage(ctx, msg)
		})
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.WarnContext(ctx, "Consumer stopped, attempting reconnect", "error", err)
		if err := client.Reconnect(ctx, reconnectRetries); err != nil {
			return fmt.Errorf("reconnect consumer: %w", err)
		}
	}
}

// organizationFrom pulls the organization out of a raw document without
// re-parsing the whole entry list a second time.
func organizationFrom(raw []byte) string {
	var doc struct {
		Record *struct {
			Meta core.DocumentMeta `json:"meta"`
		} `json:"record"`
		Meta core.DocumentMeta `json:"meta"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ""
	}
	if doc.Record != nil && doc.Record.Meta.Organization != "" {
		return doc.Record.Meta.Organization
	}
	return doc.Meta.Organization
}
