package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/futarchyhq/futarchyd/internal/domain"
)

// Archiver implements domain.SettlementArchiver by serializing each
// settlement to JSON and uploading it to object storage. The archive is a
// cold audit trail; the database row in the settlement store remains the
// authoritative record, so an archive failure is reported but never blocks
// settlement.
type Archiver struct {
	writer domain.BlobWriter
}

// NewArchiver creates an Archiver that writes through the given BlobWriter.
func NewArchiver(writer domain.BlobWriter) *Archiver {
	return &Archiver{writer: writer}
}

// ArchiveSettlement uploads one settlement report.
//
// Object key layout: settlements/{marketID}/{settlementID}.json
func (a *Archiver) ArchiveSettlement(ctx context.Context, st domain.Settlement) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("s3blob: marshal settlement %s: %w", st.ID, err)
	}

	key := fmt.Sprintf("settlements/%s/%s.json", st.MarketID, st.ID)
	if err := a.writer.Put(ctx, key, bytes.NewReader(data), "application/json"); err != nil {
		return fmt.Errorf("s3blob: archive settlement %s: %w", st.ID, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.SettlementArchiver = (*Archiver)(nil)
