package catalog

import "fmt"

// Error codes mirrored into log lines via the Code() convention the
// transport layer understands. The client absorbs all of them: callers see
// empty or absent results, never an error value.
const (
	CodeConfig    = "CONFIG_ERROR"
	CodeTransport = "TRANSPORT_ERROR"
	CodeResponse  = "RESPONSE_ERROR"
	CodeParse     = "PARSE_ERROR"
)

type apiError struct {
	code string
	op   string
	err  error
}

func (e *apiError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("catalog %s: %s", e.op, e.code)
	}
	return fmt.Sprintf("catalog %s: %v", e.op, e.err)
}

func (e *apiError) Unwrap() error { return e.err }

// Code exposes the taxonomy bucket for structured logging.
func (e *apiError) Code() string { return e.code }

func configErr(op string) *apiError {
	return &apiError{code: CodeConfig, op: op, err: fmt.Errorf("api token is not configured")}
}

func transportErr(op string, err error) *apiError {
	return &apiError{code: CodeTransport, op: op, err: err}
}

func responseErr(op string, status int, body string) *apiError {
	return &apiError{code: CodeResponse, op: op, err: fmt.Errorf("unexpected status %d: %s", status, body)}
}

func parseErr(op string, err error) *apiError {
	return &apiError{code: CodeParse, op: op, err: err}
}
