package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/pasttense/pasttense/internal/db"
)

// hmergeScript applies a db.HashMerge to KEYS[1].
// ARGV: latest field, latest, earliest field, earliest, counter, then field/value pairs.
var hmergeScript = rueidis.NewLuaScript(`
local key = KEYS[1]
local latest = tonumber(ARGV[2])
local stored = tonumber(redis.call('HGET', key, ARGV[1]))
local newest = stored == nil or latest >= stored
if newest then
  redis.call('HSET', key, ARGV[1], ARGV[2])
end
local earliest = tonumber(redis.call('HGET', key, ARGV[3]))
if earliest == nil or tonumber(ARGV[4]) < earliest then
  redis.call('HSET', key, ARGV[3], ARGV[4])
end
for i = 6, #ARGV, 2 do
  if ARGV[i + 1] == '' then
    redis.call('HSETNX', key, ARGV[i], '')
  elseif newest or redis.call('HEXISTS', key, ARGV[i]) == 0 then
    redis.call('HSET', key, ARGV[i], ARGV[i + 1])
  end
end
return redis.call('HINCRBY', key, ARGV[5], 1)
`)

// HMerge runs the merge in one script call and returns the new counter value.
func (s *Store) HMerge(ctx context.Context, key string, m *db.HashMerge) (int64, error) {
	n, err := hmergeScript.Exec(ctx, s.client, []string{key}, hmergeArgs(m)).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpHMerge, Err: err}
	}
	return n, nil
}

func hmergeArgs(m *db.HashMerge) []string {
	names := make([]string, 0, len(m.Fields))
	for k := range m.Fields {
		names = append(names, k)
	}
	sort.Strings(names)

	args := make([]string, 0, 5+2*len(names))
	args = append(args,
		m.LatestField, strconv.FormatInt(m.Latest, 10),
		m.EarliestField, strconv.FormatInt(m.Earliest, 10),
		m.Counter,
	)
	for _, k := range names {
		args = append(args, k, m.Fields[k])
	}
	return args
}

// HGetAllMulti fetches several hashes in a single DoMulti round-trip.
// Missing keys come back as nil maps at their position.
func (s *Store) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	cmds := make(rueidis.Commands, len(keys))
	for i, key := range keys {
		cmds[i] = s.b().Hgetall().Key(key).Build()
	}

	results := s.client.DoMulti(ctx, cmds...)
	out := make([]map[string]string, len(results))
	for i, res := range results {
		m, err := res.AsStrMap()
		if err != nil {
			return nil, &db.Error{Op: db.OpHGetAll, Err: fmt.Errorf("key %s: %w", keys[i], err)}
		}
		if len(m) > 0 {
			out[i] = m
		}
	}
	return out, nil
}
