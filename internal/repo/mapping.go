package repo

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	dom "taskflow/internal/domain"
	"taskflow/internal/record"
)

// createdAtLayout is fixed-width so string order equals time order.
const createdAtLayout = "2006-01-02T15:04:05.000Z07:00"

// TaskFromRecord is the only way a backing-store record becomes a Task.
// It tolerates the identifier under "Id" or "id", the creation time under
// "createdAt" or "CreatedOn", and fills every missing optional field with
// its default.
func TaskFromRecord(r record.Record) dom.Task {
	t := dom.Task{
		ID:          firstString(r, record.FieldID, "id"),
		Title:       stringField(r["title"]),
		Description: stringField(r["description"]),
		Priority:    dom.PriorityMedium,
		IsCompleted: boolField(r["isCompleted"]),
	}
	if p := dom.Priority(strings.ToLower(stringField(r["priority"]))); p.Valid() {
		t.Priority = p
	}
	if due, err := dom.ParseDate(stringField(r["dueDate"])); err == nil {
		t.DueDate = due
	}
	for _, key := range []string{"createdAt", record.FieldCreatedOn} {
		if ts, ok := timeField(r[key]); ok {
			t.CreatedAt = ts
			break
		}
	}
	return t
}

// errMalformed marks a stored record that cannot be a task.
var errMalformed = errors.New("malformed task record")

// storedTask maps a record read back from a store. Records without an
// identifier or a title are rejected.
func storedTask(r record.Record) (dom.Task, error) {
	t := TaskFromRecord(r)
	if t.ID == "" {
		return dom.Task{}, fmt.Errorf("%w: missing id", errMalformed)
	}
	if strings.TrimSpace(t.Title) == "" {
		return dom.Task{}, fmt.Errorf("%w: task %s has no title", errMalformed, t.ID)
	}
	return t, nil
}

// taskRecord is the wire shape of a Task, without backend-owned fields
// unless withIdentity is set.
func taskRecord(t dom.Task, withIdentity bool) record.Record {
	r := fieldsRecord(t.Fields())
	r["createdAt"] = t.CreatedAt.UTC().Format(createdAtLayout)
	if withIdentity {
		r["id"] = t.ID
	}
	return r
}

func fieldsRecord(f dom.TaskFields) record.Record {
	r := record.Record{
		"title":       f.Title,
		"description": f.Description,
		"dueDate":     nil,
		"priority":    string(f.Priority),
		"isCompleted": f.IsCompleted,
	}
	if f.DueDate != nil {
		r["dueDate"] = f.DueDate.Format(dom.DateLayout)
	}
	return r
}

func firstString(r record.Record, keys ...string) string {
	for _, k := range keys {
		if s := stringField(r[k]); s != "" {
			return s
		}
	}
	return ""
}

func stringField(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case json.Number:
		return x.String()
	}
	return ""
}

func boolField(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		b, _ := strconv.ParseBool(x)
		return b
	}
	return false
}

func timeField(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), !x.IsZero()
	case string:
		if x == "" {
			return time.Time{}, false
		}
		ts, err := time.Parse(time.RFC3339Nano, x)
		if err != nil {
			return time.Time{}, false
		}
		return ts.UTC(), true
	}
	return time.Time{}, false
}

func intField(v any) int {
	switch x := v.(type) {
	case float64:
		return int(x)
	case int:
		return x
	case int64:
		return int(x)
	case json.Number:
		n, _ := x.Int64()
		return int(n)
	}
	return 0
}
