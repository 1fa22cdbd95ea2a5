package protocol

// Message type discriminators on the shared line channel. Any record whose
// type is none of these is a data message and flows to ReceiveMessages.
const (
	TypeControlRequest       = "control_request"
	TypeControlResponse      = "control_response"
	TypeControlCancelRequest = "control_cancel_request"
)

// Subtypes of control requests the engine initiates.
const (
	SubtypeInitialize        = "initialize"
	SubtypeInterrupt         = "interrupt"
	SubtypeSetPermissionMode = "set_permission_mode"
	SubtypeSetModel          = "set_model"
)

// Subtypes of peer-initiated control requests the engine answers.
const (
	SubtypeCanUseTool   = "can_use_tool"
	SubtypeHookCallback = "hook_callback"
	SubtypeMCPMessage   = "mcp_message"
)

// Subtypes of control responses.
const (
	ResponseSuccess = "success"
	ResponseError   = "error"
)

// ControlRequest is a correlated control message, engine- or peer-initiated.
//
// Wire format:
//
//	{
//	  "type": "control_request",
//	  "request_id": "req_1_abc123",
//	  "request": {
//	    "subtype": "initialize",
//	    "hooks": {...}
//	  }
//	}
type ControlRequest struct {
	// Type is always "control_request"
	Type string `json:"type"`

	// RequestID uniquely identifies this request for response correlation
	RequestID string `json:"request_id"` //nolint:tagliatelle // wire contract is snake_case

	// Request contains the nested request data including subtype and payload fields
	Request map[string]any `json:"request"`
}

// newControlRequest builds an engine-initiated request envelope. The payload
// fields are merged next to the subtype inside the nested request object.
func newControlRequest(requestID, subtype string, payload map[string]any) *ControlRequest {
	body := make(map[string]any, len(payload)+1)
	body["subtype"] = subtype
	for k, v := range payload {
		body[k] = v
	}

	return &ControlRequest{
		Type:      TypeControlRequest,
		RequestID: requestID,
		Request:   body,
	}
}

// Subtype extracts the subtype from the nested request data.
func (r *ControlRequest) Subtype() string {
	if s, ok := r.Request["subtype"].(string); ok {
		return s
	}

	return ""
}

// ControlResponse resolves one ControlRequest in either direction.
//
// Wire format for success:
//
//	{
//	  "type": "control_response",
//	  "response": {
//	    "subtype": "success",
//	    "request_id": "req_1_abc123",
//	    "response": {...}
//	  }
//	}
//
// Wire format for error:
//
//	{
//	  "type": "control_response",
//	  "response": {
//	    "subtype": "error",
//	    "request_id": "req_1_abc123",
//	    "error": "error message"
//	  }
//	}
type ControlResponse struct {
	// Type is always "control_response"
	Type string `json:"type"`

	// Response contains the nested response data including subtype, request_id,
	// and either response (for success) or error (for error)
	Response map[string]any `json:"response"`
}

// newSuccessResponse builds the success envelope answering requestID. A nil
// payload is carried as an empty object so the peer always sees a "response"
// field.
func newSuccessResponse(requestID string, payload map[string]any) *ControlResponse {
	if payload == nil {
		payload = map[string]any{}
	}

	return &ControlResponse{
		Type: TypeControlResponse,
		Response: map[string]any{
			"subtype":    ResponseSuccess,
			"request_id": requestID,
			"response":   payload,
		},
	}
}

// newErrorResponse builds the error envelope answering requestID.
func newErrorResponse(requestID, message string) *ControlResponse {
	return &ControlResponse{
		Type: TypeControlResponse,
		Response: map[string]any{
			"subtype":    ResponseError,
			"request_id": requestID,
			"error":      message,
		},
	}
}

// IsError checks if the response is an error response.
func (r *ControlResponse) IsError() bool {
	if s, ok := r.Response["subtype"].(string); ok {
		return s == ResponseError
	}

	return false
}

// ErrorMessage extracts the error message from an error response.
func (r *ControlResponse) ErrorMessage() string {
	if e, ok := r.Response["error"].(string); ok {
		return e
	}

	return ""
}

// Payload extracts the response payload from a success response.
func (r *ControlResponse) Payload() map[string]any {
	if p, ok := r.Response["response"].(map[string]any); ok {
		return p
	}

	return nil
}

// RequestID extracts the request_id from the nested response.
func (r *ControlResponse) RequestID() string {
	if id, ok := r.Response["request_id"].(string); ok {
		return id
	}

	return ""
}
