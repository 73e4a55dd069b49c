package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	appctx "trackiq/internal/core/context"
	"trackiq/internal/core/id"
	"trackiq/internal/domain/audit"
)

// CompressionAlgo tells how Changes is stored.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// DefaultCompressThreshold is the snapshot size above which zstd is used.
const DefaultCompressThreshold = 10 * 1024

// AuditEntry is one row of sys_audit.
type AuditEntry struct {
	ID              id.ID           `json:"id"`
	EntityType      string          `json:"entityType"`
	EntityID        id.ID           `json:"entityId"`
	Action          audit.Action    `json:"action"`
	UserID          string          `json:"userId,omitempty"`
	UserEmail       string          `json:"userEmail,omitempty"`
	Changes         json.RawMessage `json:"changes"`
	CompressionAlgo CompressionAlgo `json:"-"`
	RequestID       string          `json:"requestId,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// AuditStore records entity snapshots in sys_audit.
type AuditStore struct {
	txm               *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

var _ audit.Recorder = (*AuditStore)(nil)

// NewAuditStore creates an audit store. Snapshots above DefaultCompressThreshold
// bytes are stored zstd-compressed.
func NewAuditStore(txm *TxManager) (*AuditStore, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &AuditStore{
		txm:               txm,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: DefaultCompressThreshold,
	}, nil
}

// Record implements audit.Recorder.
func (s *AuditStore) Record(ctx context.Context, entityType string, entityID id.ID, action audit.Action, snapshot any) error {
	changes, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal audit snapshot: %w", err)
	}

	entry := AuditEntry{
		ID:         id.New(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Changes:    changes,
		RequestID:  appctx.GetRequestID(ctx),
		CreatedAt:  time.Now().UTC(),
	}
	if u := appctx.GetUser(ctx); u != nil {
		entry.UserID = u.UserID
		entry.UserEmail = u.Email
	}
	return s.insert(ctx, entry)
}

func (s *AuditStore) insert(ctx context.Context, e AuditEntry) error {
	var plain, packed []byte
	algo, payload := s.encode(e.Changes)
	if algo == CompressionZstd {
		packed = payload
	} else {
		plain = payload
	}

	const query = `
		INSERT INTO sys_audit (
			id, entity_type, entity_id, action, user_id, user_email,
			changes, changes_compressed, compression_algo, request_id, created_at
		) VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9, NULLIF($10, ''), $11)
	`
	_, err := s.txm.GetQuerier(ctx).Exec(ctx, query,
		e.ID, e.EntityType, e.EntityID, string(e.Action), e.UserID, e.UserEmail,
		plain, packed, string(algo), e.RequestID, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}

// encode compresses payloads above the threshold.
func (s *AuditStore) encode(changes []byte) (CompressionAlgo, []byte) {
	if len(changes) <= s.compressThreshold {
		return CompressionNone, changes
	}
	return CompressionZstd, s.encoder.EncodeAll(changes, nil)
}

func (s *AuditStore) decode(algo CompressionAlgo, plain, packed []byte) (json.RawMessage, error) {
	if algo != CompressionZstd || len(packed) == 0 {
		return plain, nil
	}
	out, err := s.decoder.DecodeAll(packed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress changes: %w", err)
	}
	return out, nil
}

// History returns the newest entries of one entity.
func (s *AuditStore) History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	const query = `
		SELECT id, entity_type, entity_id, action,
			COALESCE(user_id, ''), COALESCE(user_email, ''),
			changes, changes_compressed, compression_algo,
			COALESCE(request_id, ''), created_at
		FROM sys_audit
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows, err := s.txm.GetQuerier(ctx).Query(ctx, query, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit history: %w", err)
	}
	defer rows.Close()

	entries := []AuditEntry{}
	for rows.Next() {
		var (
			e             AuditEntry
			action, algo  string
			plain, packed []byte
		)
		if err := rows.Scan(
			&e.ID, &e.EntityType, &e.EntityID, &action, &e.UserID, &e.UserEmail,
			&plain, &packed, &algo, &e.RequestID, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Action = audit.Action(action)
		e.CompressionAlgo = CompressionAlgo(algo)
		if e.Changes, err = s.decode(e.CompressionAlgo, plain, packed); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
