package engine

import (
	"encoding/json"
	"strings"
)

const StatusOK = "ok"

type ResponseKind int

const (
	ResponseMalformed ResponseKind = iota
	ResponseToolError
	ResponseOK
)

func (k ResponseKind) String() string {
	switch k {
	case ResponseOK:
		return "ok"
	case ResponseToolError:
		return "tool_error"
	default:
		return "malformed"
	}
}

// Response is the classified outcome of one tool invocation.
//
//   - ResponseOK: status "ok", Data holds the raw data object.
//   - ResponseToolError: parseable JSON whose status is missing or not "ok".
//   - ResponseMalformed: non-zero exit, empty output or output that is not a JSON object.
type Response struct {
	Kind   ResponseKind
	Status *string
	Data   json.RawMessage
	Reason string
}

type SearchHit struct {
	File string `json:"file"`
}

type envelope struct {
	Status json.RawMessage `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func ParseResponse(returnCode int, stdout string) Response {
	if returnCode != 0 {
		return Response{Kind: ResponseMalformed, Reason: "non-zero exit status"}
	}
	if strings.TrimSpace(stdout) == "" {
		return Response{Kind: ResponseMalformed, Reason: "empty output"}
	}

	var env envelope
	if err := json.Unmarshal([]byte(stdout), &env); err != nil {
		return Response{Kind: ResponseMalformed, Reason: "invalid json: " + err.Error()}
	}

	var status *string
	if len(env.Status) > 0 {
		var s string
		if err := json.Unmarshal(env.Status, &s); err == nil {
			status = &s
		}
	}

	if status == nil || *status != StatusOK {
		return Response{Kind: ResponseToolError, Status: status}
	}
	return Response{Kind: ResponseOK, Status: status, Data: env.Data}
}

func (r Response) OK() bool {
	return r.Kind == ResponseOK
}

// SearchHits returns data.results of an ok response. Every other kind, and
// an ok response without a decodable results list, yields no hits.
func (r Response) SearchHits() []SearchHit {
	if r.Kind != ResponseOK || len(r.Data) == 0 {
		return nil
	}
	var data struct {
		Results []SearchHit `json:"results"`
	}
	if err := json.Unmarshal(r.Data, &data); err != nil {
		return nil
	}
	return data.Results
}

// Files returns the file path of every search hit in rank order.
func (r Response) Files() []string {
	hits := r.SearchHits()
	files := make([]string, 0, len(hits))
	for _, h := range hits {
		files = append(files, h.File)
	}
	return files
}
