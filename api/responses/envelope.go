package responses

// Envelope wraps every successful JSON payload.
type Envelope struct {
	Data any `json:"data"`
}

// ErrorBody is the machine-readable error shown to the dashboard front end. Details carries
// field messages for VALIDATION errors and the login redirect for UNAUTHORIZED ones.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}
