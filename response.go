package workbench

import "encoding/json"

// Response is the uniform result envelope returned by every action. Exactly
// one of the two variants (success payload, classified error) is populated;
// the constructors are the only way to build one, so the invariant holds by
// construction.
type Response struct {
	ok       bool
	content  string
	metadata map[string]any
	errKind  ErrorKind
	errMsg   string
}

// Success builds a success envelope carrying the result payload.
func Success(content string) Response {
	return Response{ok: true, content: content}
}

// SuccessWithMetadata builds a success envelope with structured metadata
// alongside the payload.
func SuccessWithMetadata(content string, metadata map[string]any) Response {
	return Response{ok: true, content: content, metadata: metadata}
}

// Failure builds an error envelope with a classified kind and a
// human-readable message.
func Failure(kind ErrorKind, message string) Response {
	if kind == "" {
		kind = KindInternal
	}
	return Response{errKind: kind, errMsg: message}
}

// FromError converts an error into a failure envelope, classifying it via
// KindOf. A nil error yields an empty success envelope.
func FromError(err error) Response {
	if err == nil {
		return Success("")
	}
	return Failure(KindOf(err), err.Error())
}

// OK reports whether the response carries the success variant.
func (r Response) OK() bool { return r.ok }

// Content returns the success payload. Empty for failures.
func (r Response) Content() string { return r.content }

// Metadata returns the structured metadata attached to a success response.
func (r Response) Metadata() map[string]any { return r.metadata }

// ErrKind returns the failure classification. Empty for successes.
func (r Response) ErrKind() ErrorKind { return r.errKind }

// ErrMessage returns the failure message. Empty for successes.
func (r Response) ErrMessage() string { return r.errMsg }

// MarshalJSON serialises the envelope for HTTP hosts. The two variants have
// disjoint field sets, mirroring the in-memory invariant.
func (r Response) MarshalJSON() ([]byte, error) {
	if r.ok {
		return json.Marshal(struct {
			Status   string         `json:"status"`
			Content  string         `json:"content"`
			Metadata map[string]any `json:"metadata,omitempty"`
		}{Status: "success", Content: r.content, Metadata: r.metadata})
	}
	return json.Marshal(struct {
		Status    string    `json:"status"`
		Error     string    `json:"error"`
		ErrorKind ErrorKind `json:"error_kind"`
	}{Status: "error", Error: r.errMsg, ErrorKind: r.errKind})
}
