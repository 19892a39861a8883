package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
	"github.com/uptrace/bun"
)

type archiveRow struct {
	bun.BaseModel `bun:"table:archive_records,alias:ar"`

	ID                uuid.UUID `bun:"id,pk,type:uuid"`
	BaseName          string    `bun:"base_name,notnull"`
	DateStamp         string    `bun:"date_stamp,notnull"`
	Sequence          int       `bun:"sequence,notnull"`
	Description       string    `bun:"description,notnull"`
	ElapsedMillis     int64     `bun:"elapsed_ms,notnull"`
	OutputReportPath  string    `bun:"output_report_path,notnull"`
	ArchiveReportPath string    `bun:"archive_report_path,notnull"`
	ImagePath         string    `bun:"image_path"`
	DocumentPath      string    `bun:"document_path"`
	CreatedAt         time.Time `bun:"created_at,notnull"`
}

// PostgresIndex records archived runs in an append-only archive_records table.
type PostgresIndex struct {
	db bun.IDB
}

var _ contractx.ArchiveIndex = (*PostgresIndex)(nil)

func NewPostgresIndex(db bun.IDB) *PostgresIndex {
	return &PostgresIndex{db: db}
}

func (x *PostgresIndex) EnsureSchema(ctx context.Context) error {
	if _, err := x.db.NewCreateTable().Model((*archiveRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("%w: create archive_records: %v", contractx.ErrStorage, err)
	}
	return nil
}

func (x *PostgresIndex) Record(ctx context.Context, rec contractx.ArchiveRecord) error {
	row := rowFromRecord(rec)
	if _, err := x.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("%w: insert archive record %s: %v", contractx.ErrStorage, row.BaseName, err)
	}
	return nil
}

// Recent returns up to limit records, newest sequence first.
func (x *PostgresIndex) Recent(ctx context.Context, limit int) ([]contractx.ArchiveRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	var rows []archiveRow
	if err := x.recentQuery(&rows, limit).Scan(ctx); err != nil {
		return nil, fmt.Errorf("%w: list archive records: %v", contractx.ErrStorage, err)
	}

	out := make([]contractx.ArchiveRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.record())
	}
	return out, nil
}

func (x *PostgresIndex) recentQuery(rows *[]archiveRow, limit int) *bun.SelectQuery {
	return x.db.NewSelect().
		Model(rows).
		OrderExpr("sequence DESC").
		Limit(limit)
}

func rowFromRecord(rec contractx.ArchiveRecord) archiveRow {
	return archiveRow{
		ID:                rec.ID,
		BaseName:          rec.Identity.BaseName(),
		DateStamp:         rec.Identity.DateStamp,
		Sequence:          rec.Identity.Sequence,
		Description:       rec.Description,
		ElapsedMillis:     rec.Elapsed.Milliseconds(),
		OutputReportPath:  rec.OutputReportPath,
		ArchiveReportPath: rec.ArchiveReportPath,
		ImagePath:         rec.ImagePath,
		DocumentPath:      rec.DocumentPath,
		CreatedAt:         rec.CreatedAt,
	}
}

func (r archiveRow) record() contractx.ArchiveRecord {
	return contractx.ArchiveRecord{
		ID:                r.ID,
		Identity:          contractx.RunIdentity{DateStamp: r.DateStamp, Sequence: r.Sequence},
		Description:       r.Description,
		Elapsed:           time.Duration(r.ElapsedMillis) * time.Millisecond,
		OutputReportPath:  r.OutputReportPath,
		ArchiveReportPath: r.ArchiveReportPath,
		ImagePath:         r.ImagePath,
		DocumentPath:      r.DocumentPath,
		CreatedAt:         r.CreatedAt,
	}
}
