package models

import (
	"bytes"
	"encoding/json"
	"time"
)

type JobMode string

const (
	ModeEdit    JobMode = "edit"
	ModeReplace JobMode = "replace"
)

// Job lifecycle events announced to subscribed clients.
const (
	EventJobCompleted = "job_completed"
	EventJobDeleted   = "job_deleted"
)

// Valid reports whether m is one of the supported job modes.
func (m JobMode) Valid() bool {
	return m == ModeEdit || m == ModeReplace
}

// Job is one recorded generation attempt. Images keeps the caller's order; for
// replace jobs the competitor references come first.
type Job struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id"`
	Mode      JobMode                `json:"mode"`
	Prompt    string                 `json:"prompt"`
	Images    []string               `json:"images"`
	OutputURL string                 `json:"output_url,omitempty"`
	Meta      map[string]interface{} `json:"meta,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// Clone returns a copy that shares no slices or maps with j, including
// those nested inside Meta.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	out := *j
	if j.Images != nil {
		out.Images = append([]string(nil), j.Images...)
	}
	if j.Meta != nil {
		out.Meta = cloneMap(j.Meta)
	}
	return &out
}

// NormalizeMeta converts meta to the shape it has after a JSON round trip,
// keeping numbers exact as json.Number.
func NormalizeMeta(meta map[string]interface{}) (map[string]interface{}, error) {
	if meta == nil {
		return nil, nil
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}
	return DecodeMeta(data)
}

// DecodeMeta decodes a stored meta object without losing integer precision.
func DecodeMeta(data []byte) (map[string]interface{}, error) {
	var meta map[string]interface{}
	if err := DecodeJSON(data, &meta); err != nil {
		return nil, err
	}
	return meta, nil
}

// DecodeJSON unmarshals data into v, decoding numbers as json.Number.
func DecodeJSON(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return cloneMap(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}
