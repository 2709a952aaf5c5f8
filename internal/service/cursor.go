package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"minisocial/internal/model"
)

// Keyset cursors are "<created_at unix micro>:<id>". The id breaks ties
// between rows sharing a timestamp.

func formatCursor(createdAt time.Time, id int64) string {
	return fmt.Sprintf("%d:%d", createdAt.UnixMicro(), id)
}

func parseCursor(cursor string) (time.Time, int64, error) {
	micros, idStr, ok := strings.Cut(cursor, ":")
	if !ok {
		return time.Time{}, 0, model.ErrInvalidCursor
	}

	ts, err := strconv.ParseInt(micros, 10, 64)
	if err != nil {
		return time.Time{}, 0, model.ErrInvalidCursor
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return time.Time{}, 0, model.ErrInvalidCursor
	}

	return time.UnixMicro(ts).UTC(), id, nil
}
