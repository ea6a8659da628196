package record

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	dom "taskflow/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore keeps records of all owners in the records table.
type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

// Owner returns a Store that only sees records of ownerID.
func (s *PGStore) Owner(ownerID int64) *OwnerStore {
	return &OwnerStore{db: s.db, owner: ownerID}
}

type OwnerStore struct {
	db    *pgxpool.Pool
	owner int64
}

const recordColumns = `id, owner_id, data, created_on, modified_on`

func (s *OwnerStore) Fetch(ctx context.Context, collection string, q Query) ([]Record, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + recordColumns + ` FROM records WHERE collection = $1 AND owner_id = $2`)
	args := []any{collection, s.owner}

	if len(q.OrderBy) > 0 {
		parts := make([]string, 0, len(q.OrderBy))
		for _, o := range q.OrderBy {
			args = append(args, o.Field)
			dir := "ASC"
			if o.Direction == Desc {
				dir = "DESC"
			}
			parts = append(parts, fmt.Sprintf("data->>$%d %s", len(args), dir))
		}
		sb.WriteString(" ORDER BY " + strings.Join(parts, ", ") + ", id DESC")
	} else {
		sb.WriteString(" ORDER BY id")
	}
	if q.Limit > 0 {
		args = append(args, q.Limit)
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}
	if q.Offset > 0 {
		args = append(args, q.Offset)
		sb.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))
	}

	rows, err := s.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, remoteErr("fetch", err)
	}
	defer rows.Close()
	var list []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, remoteErr("fetch", err)
		}
		list = append(list, r)
	}
	if err := rows.Err(); err != nil {
		return nil, remoteErr("fetch", err)
	}
	return list, nil
}

func (s *OwnerStore) Create(ctx context.Context, collection string, r Record) (Record, error) {
	data, err := json.Marshal(stripBackendFields(r))
	if err != nil {
		return nil, fmt.Errorf("record create: encode: %w", err)
	}
	query := `
		INSERT INTO records (collection, owner_id, data)
		VALUES ($1, $2, $3)
		RETURNING ` + recordColumns
	out, err := scanRecord(s.db.QueryRow(ctx, query, collection, s.owner, data))
	if err != nil {
		return nil, remoteErr("create", err)
	}
	return out, nil
}

func (s *OwnerStore) Update(ctx context.Context, collection, id string, r Record) (Record, error) {
	rid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(stripBackendFields(r))
	if err != nil {
		return nil, fmt.Errorf("record update: encode: %w", err)
	}
	query := `
		UPDATE records SET data = data || $4::jsonb, modified_on = NOW()
		WHERE collection = $1 AND owner_id = $2 AND id = $3
		RETURNING ` + recordColumns
	out, err := scanRecord(s.db.QueryRow(ctx, query, collection, s.owner, rid, data))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("record %s/%s: %w", collection, id, dom.ErrNotFound)
		}
		return nil, remoteErr("update", err)
	}
	return out, nil
}

func (s *OwnerStore) Delete(ctx context.Context, collection, id string) error {
	rid, err := parseID(id)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx,
		`DELETE FROM records WHERE collection = $1 AND owner_id = $2 AND id = $3`,
		collection, s.owner, rid)
	if err != nil {
		return remoteErr("delete", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("record %s/%s: %w", collection, id, dom.ErrNotFound)
	}
	return nil
}

func scanRecord(row pgx.Row) (Record, error) {
	var (
		id         int64
		owner      int64
		data       []byte
		createdOn  time.Time
		modifiedOn time.Time
	)
	if err := row.Scan(&id, &owner, &data, &createdOn, &modifiedOn); err != nil {
		return nil, err
	}
	r := Record{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("decode record %d: %w", id, err)
		}
	}
	r[FieldID] = strconv.FormatInt(id, 10)
	r[FieldOwner] = owner
	r[FieldCreatedOn] = createdOn.UTC().Format(time.RFC3339Nano)
	r[FieldModifiedOn] = modifiedOn.UTC().Format(time.RFC3339Nano)
	return r, nil
}

// stripBackendFields drops fields the backend owns so they never end up in data.
func stripBackendFields(r Record) Record {
	out := make(Record, len(r))
	for k, v := range r {
		switch k {
		case FieldID, "id", FieldOwner, FieldCreatedOn, FieldModifiedOn:
			continue
		}
		out[k] = v
	}
	return out
}

// Ids that are not numeric cannot exist in this backend.
func parseID(id string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("record id %q: %w", id, dom.ErrNotFound)
	}
	return n, nil
}

func remoteErr(op string, err error) error {
	return fmt.Errorf("record %s: %w", op, errors.Join(dom.ErrRemote, err))
}
