package repository

import "github.com/google/uuid"

// Every key column is a Postgres uuid. Text that cannot be one would fail the
// query with 22P02, so lookups treat it as a missing row instead.

func isUUID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// uuidsOnly drops ids that cannot match any row
func uuidsOnly(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if isUUID(id) {
			out = append(out, id)
		}
	}
	return out
}
