package settings

import (
	"context"
	"strings"
)

// Style returns the persisted style key and its revision. Both are zero when
// no style has been saved.
func (s *Store) Style(ctx context.Context) (string, int64, error) {
	entry, err := s.Get(ctx, KeyStyle)
	if err != nil || entry == nil {
		return "", 0, err
	}
	return entry.Value, entry.Revision, nil
}

// SetStyle persists the style key in canonical upper case.
func (s *Store) SetStyle(ctx context.Context, key string) (int64, error) {
	entry, err := s.Set(ctx, KeyStyle, strings.ToUpper(strings.TrimSpace(key)))
	if err != nil {
		return 0, err
	}
	return entry.Revision, nil
}
