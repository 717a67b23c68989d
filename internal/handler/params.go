package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/fanblog/internal/domain"
)

// pathUUID binds the named chi path parameter as a UUID. On failure it writes
// a 400 response and returns false.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (openapi_types.UUID, bool) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("invalid "+name+": must be a UUID"))
		return openapi_types.UUID{}, false
	}
	return id, true
}

// pathString binds the named chi path parameter as a string.
func pathString(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var v string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("invalid "+name))
		return "", false
	}
	return v, true
}

// pagination binds the optional ?page= and ?limit= query parameters.
func pagination(w http.ResponseWriter, r *http.Request) (domain.PaginationParams, bool) {
	var page, limit *int
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "page", q, &page); err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("invalid page: must be an integer"))
		return domain.PaginationParams{}, false
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &limit); err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("invalid limit: must be an integer"))
		return domain.PaginationParams{}, false
	}
	return domain.NewPaginationParams(page, limit), true
}

// queryString binds an optional string query parameter; absent yields "".
func queryString(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var v *string
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("invalid "+name))
		return "", false
	}
	if v == nil {
		return "", true
	}
	return *v, true
}
