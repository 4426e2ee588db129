package httpx

import "net/http"

// RespondError is the fallback responder for errors no handler branch
// claimed. The error itself is never echoed to the client.
func RespondError(w http.ResponseWriter, _ error) {
	Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
