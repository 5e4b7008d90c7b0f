package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// BanList is the set of banned user ids, persisted as a JSON array of decimal strings.
type BanList map[int64]struct{}

func (b BanList) Contains(id int64) bool {
	_, ok := b[id]
	return ok
}

func (b BanList) IDs() []int64 {
	out := make([]int64, 0, len(b))
	for id := range b {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (b BanList) MarshalJSON() ([]byte, error) {
	ids := b.IDs()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strconv.FormatInt(id, 10)
	}
	return json.Marshal(out)
}

func (b *BanList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	set := make(BanList, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			var n int64
			if err := json.Unmarshal(item, &n); err != nil {
				return fmt.Errorf("banned id %s: %w", item, err)
			}
			set[n] = struct{}{}
			continue
		}
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("banned id %q: %w", s, err)
		}
		set[id] = struct{}{}
	}
	*b = set
	return nil
}
