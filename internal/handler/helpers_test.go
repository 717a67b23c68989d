package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/fanblog/internal/handler"
)

// quietLogger swallows the error lines handlers write before answering 500.
var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// newHTTPHandler wires a Server with the given mocks. Pass nil for services
// the test does not exercise.
func newHTTPHandler(taxonomies handler.TaxonomyServicer, posts handler.PostServicer, export handler.ExportServicer) http.Handler {
	return handler.Handler(handler.NewServer(taxonomies, posts, export, quietLogger))
}

// jsonBody marshals v into a request body reader.
func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

// decodeError decodes an ErrorResponse body.
func decodeError(t *testing.T, body io.Reader) handler.ErrorResponse {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}
