package p4

import (
	"sort"
	"strconv"
	"strings"
)

// MessageKey is the field holding the text of informational output, e.g. "Change 42 created."
const MessageKey = "data"

// Record is a single record of perforce output, or a spec form to submit.
//
// List-valued fields are carried as indexed keys, e.g. View0, View1, ...
type Record map[string]string

// Clone the record
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	c := make(Record, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// Message returns the informational text carried by this record, if any
func (r Record) Message() (string, bool) {
	msg, ok := r[MessageKey]
	return msg, ok
}

// Lookup a field, with an exact match first then a case-insensitive one
func (r Record) Lookup(field string) (string, bool) {
	if v, ok := r[field]; ok {
		return v, true
	}
	for k, v := range r {
		if strings.EqualFold(k, field) {
			return v, true
		}
	}
	return "", false
}

// List collects the indexed fields field0, field1... in index order.
//
// Indices must be contiguous from 0.
func (r Record) List(field string) ([]string, bool) {
	indexed := make(map[int]string)
	for k, v := range r {
		if idx, ok := indexOf(k, field); ok {
			indexed[idx] = v
		}
	}
	if len(indexed) == 0 {
		return nil, false
	}
	list := make([]string, 0, len(indexed))
	for i := 0; ; i++ {
		v, ok := indexed[i]
		if !ok {
			break
		}
		list = append(list, v)
	}
	return list, len(list) > 0
}

// SetList replaces a list-valued field by indexed fields
func (r Record) SetList(field string, values []string) {
	r.Remove(field)
	for i, v := range values {
		r[field+strconv.Itoa(i)] = v
	}
}

// Remove a field, including any case variant and its indexed fields
func (r Record) Remove(field string) {
	for k := range r {
		if strings.EqualFold(k, field) {
			delete(r, k)
			continue
		}
		if _, ok := indexOf(k, field); ok {
			delete(r, k)
		}
	}
}

// Fields returns the keys of this record, sorted
func (r Record) Fields() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Messages extracts the informational text from some output
func Messages(records []Record) []string {
	var msgs []string
	for _, rec := range records {
		if msg, ok := rec.Message(); ok {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

// indexOf tells if key is an indexed variant of field, e.g. View3 for View
func indexOf(key, field string) (int, bool) {
	if len(key) <= len(field) || !strings.EqualFold(key[:len(field)], field) {
		return 0, false
	}
	suffix := key[len(field):]
	for _, c := range suffix {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	idx, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false
	}
	return idx, true
}
