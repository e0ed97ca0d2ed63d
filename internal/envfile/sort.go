package envfile

import (
	"bytes"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
)

// PrefixGroup is a run of entries sharing an effective prefix.
type PrefixGroup struct {
	Prefix string
	Vars   []EnvVar
}

// Result describes a Sort run.
type Result struct {
	Vars    int  // parsed entries
	Groups  int  // output groups
	Changed bool // file contents were rewritten
}

// Prefix returns the part of key before its first underscore, or "" when
// key has none.
func Prefix(key string) string {
	prefix, _, ok := strings.Cut(key, "_")
	if !ok {
		return ""
	}
	return prefix
}

// Group partitions vars by prefix. A prefix carried by fewer than two
// entries (repeated keys count each time) is folded into the "" group.
// Groups come back in ascending prefix order and entries within a group
// are stably sorted by key, so repeated keys keep their file order.
func Group(vars []EnvVar) []PrefixGroup {
	if len(vars) == 0 {
		return nil
	}

	census := make(map[string]int)
	for _, v := range vars {
		census[Prefix(v.Key)]++
	}

	members := make(map[string][]EnvVar)
	for _, v := range vars {
		p := Prefix(v.Key)
		if census[p] <= 1 {
			p = ""
		}
		members[p] = append(members[p], v)
	}

	groups := make([]PrefixGroup, 0, len(members))
	for _, p := range slices.Sorted(maps.Keys(members)) {
		vs := members[p]
		slices.SortStableFunc(vs, func(a, b EnvVar) int {
			return strings.Compare(a.Key, b.Key)
		})
		groups = append(groups, PrefixGroup{Prefix: p, Vars: vs})
	}
	return groups
}

// Format renders groups as KEY=VALUE lines with a blank line after every
// group, including the last.
func Format(groups []PrefixGroup) []byte {
	var buf bytes.Buffer
	for _, g := range groups {
		for _, v := range g.Vars {
			buf.WriteString(v.String())
			buf.WriteByte('\n')
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// SortBytes returns the grouped and sorted form of data. ok is false when
// data holds no entries, in which case there is nothing to write.
func SortBytes(data []byte) (out []byte, ok bool, err error) {
	vars, err := Parse(data)
	if err != nil {
		return nil, false, err
	}
	if len(vars) == 0 {
		return nil, false, nil
	}
	return Format(Group(vars)), true, nil
}

// Sort rewrites the file at path in grouped, sorted order. A file without
// entries is left untouched.
func Sort(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read env file: %w", err)
	}

	vars, err := Parse(data)
	if err != nil {
		return Result{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(vars) == 0 {
		return Result{}, nil
	}

	groups := Group(vars)
	out := Format(groups)
	res := Result{Vars: len(vars), Groups: len(groups)}

	if bytes.Equal(out, data) {
		return res, nil
	}

	if err := writeFile(path, out); err != nil {
		return res, err
	}
	res.Changed = true
	return res, nil
}

// IsSorted reports whether Sort would leave the file at path unchanged.
func IsSorted(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read env file: %w", err)
	}

	out, ok, err := SortBytes(data)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	if !ok {
		return true, nil
	}
	return bytes.Equal(out, data), nil
}
