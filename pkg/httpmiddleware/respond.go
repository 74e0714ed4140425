package httpmiddleware

import (
	"net/http"
	"strconv"

	"github.com/go-faster/jx"
)

// writeProblem writes the API error envelope used by the storefront
// handlers: {"code": status, "message": message}.
func writeProblem(w http.ResponseWriter, status int, message string, extra func(e *jx.Encoder)) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	e.ObjStart()
	e.FieldStart("code")
	e.Int(status)
	e.FieldStart("message")
	e.Str(message)
	if extra != nil {
		extra(e)
	}
	e.ObjEnd()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(e.Bytes())))
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
