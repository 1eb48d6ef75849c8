package testhelpers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/standardbeagle/nowmeta/internal/config"
	nmerrors "github.com/standardbeagle/nowmeta/internal/errors"
	"github.com/standardbeagle/nowmeta/internal/normalize"
	"github.com/standardbeagle/nowmeta/internal/remote"
)

// Credentials accepted by a FakeInstance
const (
	FakeUsername = "admin"
	FakePassword = "secret"
)

// FakeInstance serves the REST table API over httptest, answering every
// read from a FakeQuerier. Remote errors returned by the querier are sent
// back in the API's error envelope with their status code.
type FakeInstance struct {
	*httptest.Server
	Querier *FakeQuerier
}

// NewFakeInstance starts a fake instance and closes it when t finishes
func NewFakeInstance(t testing.TB, q *FakeQuerier) *FakeInstance {
	t.Helper()
	fi := &FakeInstance{Querier: q}
	fi.Server = httptest.NewServer(http.HandlerFunc(fi.serveTable))
	t.Cleanup(fi.Server.Close)
	return fi
}

// Remote returns connection settings pointing at the fake
func (fi *FakeInstance) Remote() config.Remote {
	return config.Remote{
		URL:        fi.URL,
		Username:   FakeUsername,
		Password:   FakePassword,
		TimeoutSec: 5,
	}
}

func (fi *FakeInstance) serveTable(w http.ResponseWriter, r *http.Request) {
	if user, pass, ok := r.BasicAuth(); !ok || user != FakeUsername || pass != FakePassword {
		writeEnvelope(w, http.StatusUnauthorized, "User Not Authenticated", "Required to provide Auth information")
		return
	}

	table, ok := strings.CutPrefix(r.URL.Path, "/api/now/table/")
	if !ok || table == "" || r.Method != http.MethodGet {
		writeEnvelope(w, http.StatusBadRequest, "Invalid table", r.URL.Path)
		return
	}

	req := decodeRequest(table, r)
	records, err := fi.Querier.Query(r.Context(), req)
	if err != nil {
		var remoteErr *nmerrors.RemoteError
		if errors.As(err, &remoteErr) && remoteErr.Status != 0 {
			writeEnvelope(w, remoteErr.Status, remoteErr.Message, remoteErr.Detail)
			return
		}
		writeEnvelope(w, http.StatusInternalServerError, err.Error(), "")
		return
	}
	if req.Display == remote.DisplayRaw {
		records = rawOnly(records)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"result": records})
}

func decodeRequest(table string, r *http.Request) remote.Request {
	q := r.URL.Query()
	req := remote.Request{
		Table:   table,
		Query:   q.Get("sysparm_query"),
		Display: remote.DisplayMode(q.Get("sysparm_display_value")),
	}
	if fields := q.Get("sysparm_fields"); fields != "" {
		req.Fields = strings.Split(fields, ",")
	}
	if limit, err := strconv.Atoi(q.Get("sysparm_limit")); err == nil {
		req.Limit = limit
	}
	return req
}

// rawOnly flattens pairs to their stored value, as the API does for
// sysparm_display_value=false
func rawOnly(records []normalize.Record) []normalize.Record {
	out := make([]normalize.Record, len(records))
	for i, rec := range records {
		flat := make(normalize.Record, len(rec))
		for k, f := range rec {
			if f.HasValue {
				flat[k] = normalize.Raw(f.Value)
			} else {
				flat[k] = f
			}
		}
		out[i] = flat
	}
	return out
}

func writeEnvelope(w http.ResponseWriter, status int, message, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error":  map[string]string{"message": message, "detail": detail},
		"status": "failure",
	})
}
