package report

import (
	"bytes"
	"encoding/json"
	"reflect"
	"sort"
	"strings"
)

// Reports written by other harness versions may carry keys this model does
// not declare. A resumed report keeps them: unknown top-level keys are held in
// Report.extra and every decoded record keeps its original bytes, so prior
// entries are written back unchanged.

type reportFields Report

func (r *Report) UnmarshalJSON(data []byte) error {
	var fields reportFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	known := jsonFieldNames(reflect.TypeOf(Report{}))
	for k := range all {
		if _, ok := known[k]; ok {
			delete(all, k)
		}
	}
	if len(all) == 0 {
		all = nil
	}

	*r = Report(fields)
	r.extra = all
	return nil
}

func (r Report) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(reportFields(r))
	if err != nil || len(r.extra) == 0 {
		return data, err
	}

	keys := make([]string, 0, len(r.extra))
	for k := range r.extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(bytes.TrimSuffix(bytes.TrimSpace(data), []byte("}")))
	for _, k := range keys {
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(r.extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type recordFields RepoRecord

func (rec *RepoRecord) UnmarshalJSON(data []byte) error {
	var fields recordFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*rec = RepoRecord(fields)
	rec.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON writes a decoded record back exactly as it was read.
func (rec RepoRecord) MarshalJSON() ([]byte, error) {
	if rec.raw != nil {
		return rec.raw, nil
	}
	return json.Marshal(recordFields(rec))
}

func jsonFieldNames(t reflect.Type) map[string]struct{} {
	names := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		names[name] = struct{}{}
	}
	return names
}
