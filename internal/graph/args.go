package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ArgList is an ordered list of compiler flags that affect how a
// binary-interface module is compiled. Two lists are equal only when they are
// element-wise equal.
type ArgList []string

// Key returns a canonical encoding of the list. Distinct lists always have
// distinct keys.
func (a ArgList) Key() string {
	var b strings.Builder
	for _, arg := range a {
		b.WriteString(strconv.Itoa(len(arg)))
		b.WriteByte(':')
		b.WriteString(arg)
		b.WriteByte(';')
	}
	return b.String()
}

// Hash returns a stable hex digest of the list, suitable for file names.
func (a ArgList) Hash() string {
	sum := sha256.Sum256([]byte(a.Key()))
	return hex.EncodeToString(sum[:16])
}

// Equal reports whether a and b are element-wise equal.
func (a ArgList) Equal(b ArgList) bool {
	return slices.Equal(a, b)
}

// ArgSet is a set of ArgLists. Lists that are element-wise equal collapse to
// one entry. The zero value is an empty set but must be initialized with
// NewArgSet (or Clone) before Add.
type ArgSet map[string]ArgList

// NewArgSet returns a set holding the given lists.
func NewArgSet(lists ...ArgList) ArgSet {
	s := make(ArgSet, len(lists))
	for _, l := range lists {
		s.Add(l)
	}
	return s
}

// Add inserts list and reports whether it was not already present.
func (s ArgSet) Add(list ArgList) bool {
	k := list.Key()
	if _, ok := s[k]; ok {
		return false
	}
	s[k] = slices.Clone(list)
	return true
}

// Has reports whether list is in the set.
func (s ArgSet) Has(list ArgList) bool {
	_, ok := s[list.Key()]
	return ok
}

// Len returns the number of lists in the set.
func (s ArgSet) Len() int { return len(s) }

// Clone returns an independent copy of the set.
func (s ArgSet) Clone() ArgSet {
	out := make(ArgSet, len(s))
	for k, v := range s {
		out[k] = slices.Clone(v)
	}
	return out
}

// Union adds every list of other to s and returns the number added.
func (s ArgSet) Union(other ArgSet) int {
	added := 0
	for k, v := range other {
		if _, ok := s[k]; ok {
			continue
		}
		s[k] = slices.Clone(v)
		added++
	}
	return added
}

// Difference returns the lists of s that are not in other.
func (s ArgSet) Difference(other ArgSet) ArgSet {
	out := make(ArgSet)
	for k, v := range s {
		if _, ok := other[k]; !ok {
			out[k] = slices.Clone(v)
		}
	}
	return out
}

// Equal reports whether s and other hold the same lists.
func (s ArgSet) Equal(other ArgSet) bool {
	if len(s) != len(other) {
		return false
	}
	for k := range s {
		if _, ok := other[k]; !ok {
			return false
		}
	}
	return true
}

// Lists returns the lists in lexicographic order.
func (s ArgSet) Lists() []ArgList {
	out := make([]ArgList, 0, len(s))
	for _, v := range s {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b ArgList) int { return slices.Compare(a, b) })
	return out
}

// StateKey returns a canonical encoding of the whole set. Equal sets have
// equal state keys.
func (s ArgSet) StateKey() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return strings.Join(keys, "|")
}

func (s ArgSet) encodable() [][]string {
	lists := s.Lists()
	out := make([][]string, len(lists))
	for i, l := range lists {
		out[i] = []string(l)
		if out[i] == nil {
			out[i] = []string{}
		}
	}
	return out
}

func (s *ArgSet) fromLists(lists [][]string) {
	set := make(ArgSet, len(lists))
	for _, l := range lists {
		set.Add(l)
	}
	*s = set
}

// MarshalJSON encodes the set as a sorted list of lists.
func (s ArgSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.encodable())
}

// UnmarshalJSON decodes a list of lists, collapsing duplicates.
func (s *ArgSet) UnmarshalJSON(data []byte) error {
	var lists [][]string
	if err := json.Unmarshal(data, &lists); err != nil {
		return err
	}
	s.fromLists(lists)
	return nil
}

// MarshalYAML encodes the set as a sorted list of lists.
func (s ArgSet) MarshalYAML() (interface{}, error) {
	return s.encodable(), nil
}

// UnmarshalYAML decodes a list of lists, collapsing duplicates.
func (s *ArgSet) UnmarshalYAML(value *yaml.Node) error {
	var lists [][]string
	if err := value.Decode(&lists); err != nil {
		return err
	}
	s.fromLists(lists)
	return nil
}
