package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dbehnke/dmr-lc/pkg/database"
	"github.com/dbehnke/dmr-lc/pkg/decoder"
	"github.com/dbehnke/dmr-lc/pkg/lc"
	"github.com/dbehnke/dmr-lc/pkg/logger"
	"github.com/dbehnke/dmr-lc/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	messages []database.DecodedMessage
	counts   []database.OpcodeCount
	err      error
	limit    int
	called   string
	page     int
	source   uint32
	session  string
}

func (s *fakeStore) GetRecent(limit int) ([]database.DecodedMessage, error) {
	s.called, s.limit = "recent", limit
	return s.messages, s.err
}

func (s *fakeStore) GetRecentPaginated(page, perPage int) ([]database.DecodedMessage, int64, error) {
	s.called, s.page, s.limit = "paginated", page, perPage
	return s.messages, 42, s.err
}

func (s *fakeStore) GetBySource(radioID uint32, limit int) ([]database.DecodedMessage, error) {
	s.called, s.source, s.limit = "source", radioID, limit
	return s.messages, s.err
}

func (s *fakeStore) GetBySession(sessionID string) ([]database.DecodedMessage, error) {
	s.called, s.session = "session", sessionID
	return s.messages, s.err
}

func (s *fakeStore) CountByOpcode() ([]database.OpcodeCount, error) {
	return s.counts, s.err
}

type fakeStats metrics.Snapshot

func (s fakeStats) Snapshot() metrics.Snapshot { return metrics.Snapshot(s) }

func testLog() *logger.Logger {
	return logger.New(logger.Config{Level: "error"})
}

func get(t *testing.T, h http.HandlerFunc, target string, into interface{}) *http.Response {
	t.Helper()
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, target, nil))
	resp := w.Result()
	if into != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
	}
	return resp
}

func TestAPI_Status(t *testing.T) {
	SetVersionInfo(VersionInfo{Version: "1.2.3", Commit: "abc", BuildTime: "now"})
	defer SetVersionInfo(VersionInfo{Version: "dev", Commit: "unknown", BuildTime: "unknown"})

	api := NewAPI(NewRecentRecords(1), nil, nil, testLog())

	var result map[string]interface{}
	resp := get(t, api.HandleStatus, "/api/status", &result)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "running", result["status"])
	assert.Equal(t, "1.2.3", result["version"].(map[string]interface{})["version"])
}

func TestAPI_MethodNotAllowed(t *testing.T) {
	api := NewAPI(NewRecentRecords(1), nil, nil, testLog())
	for _, h := range []http.HandlerFunc{api.HandleStatus, api.HandleMessages, api.HandleStats, api.HandleOpcodes} {
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodPost, "/api/x", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	}
}

func TestAPI_MessagesFromMemory(t *testing.T) {
	recent := NewRecentRecords(10)
	for _, id := range []string{"a", "b", "c"} {
		recent.Add(decoder.Record{ID: id})
	}
	api := NewAPI(recent, nil, nil, testLog())

	var records []decoder.Record
	get(t, api.HandleMessages, "/api/messages?limit=2", &records)
	assert.Equal(t, []string{"c", "b"}, ids(records))

	resp := get(t, api.HandleMessages, "/api/messages?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_MessagesFromStore(t *testing.T) {
	store := &fakeStore{messages: []database.DecodedMessage{
		{ID: 12, UUID: "x", SessionID: "s1", Opcode: "GPS INFO", Source: 3120001},
	}}
	api := NewAPI(NewRecentRecords(1), store, nil, testLog())

	var records []decoder.Record
	get(t, api.HandleMessages, "/api/messages?limit=9999", &records)
	require.Len(t, records, 1)
	assert.Equal(t, "x", records[0].ID, "stored rows use the record schema")
	assert.Equal(t, "s1", records[0].SessionID)
	assert.Equal(t, uint32(3120001), records[0].Source)
	assert.Equal(t, "recent", store.called)
	assert.Equal(t, maxMessageLimit, store.limit)

	store.err = errors.New("locked")
	resp := get(t, api.HandleMessages, "/api/messages", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestAPI_MessagesSameSchemaWithAndWithoutStore(t *testing.T) {
	rec := decoder.Record{ID: "u-1", SessionID: "s", Opcode: "NULL", Kind: "short", Bits: "0"}

	recent := NewRecentRecords(1)
	recent.Add(rec)
	var fromMemory []map[string]interface{}
	get(t, NewAPI(recent, nil, nil, testLog()).HandleMessages, "/api/messages", &fromMemory)

	store := &fakeStore{messages: []database.DecodedMessage{*database.FromRecord(rec)}}
	store.messages[0].ID = 99
	var fromStore []map[string]interface{}
	get(t, NewAPI(NewRecentRecords(1), store, nil, testLog()).HandleMessages, "/api/messages", &fromStore)

	require.Len(t, fromMemory, 1)
	require.Len(t, fromStore, 1)
	assert.Equal(t, fromMemory[0], fromStore[0])
}

func TestAPI_MessagesStoreQueries(t *testing.T) {
	tests := []struct {
		target string
		called string
		check  func(t *testing.T, s *fakeStore, resp *http.Response)
	}{
		{"/api/messages?source=3120001&limit=5", "source", func(t *testing.T, s *fakeStore, _ *http.Response) {
			assert.Equal(t, uint32(3120001), s.source)
			assert.Equal(t, 5, s.limit)
		}},
		{"/api/messages?session=abc", "session", func(t *testing.T, s *fakeStore, _ *http.Response) {
			assert.Equal(t, "abc", s.session)
		}},
		{"/api/messages?page=3&limit=20", "paginated", func(t *testing.T, s *fakeStore, resp *http.Response) {
			assert.Equal(t, 3, s.page)
			assert.Equal(t, 20, s.limit)
			assert.Equal(t, "42", resp.Header.Get("X-Total-Count"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.called, func(t *testing.T) {
			store := &fakeStore{}
			api := NewAPI(NewRecentRecords(1), store, nil, testLog())
			var records []decoder.Record
			resp := get(t, api.HandleMessages, tt.target, &records)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.called, store.called)
			assert.Empty(t, records)
			tt.check(t, store, resp)
		})
	}
}

func TestAPI_MessagesFiltersMemory(t *testing.T) {
	recent := NewRecentRecords(10)
	recent.Add(decoder.Record{ID: "a", SessionID: "s1", Source: 1})
	recent.Add(decoder.Record{ID: "b", SessionID: "s1", Source: 2})
	recent.Add(decoder.Record{ID: "c", SessionID: "s2", Source: 1})
	recent.Add(decoder.Record{ID: "d", SessionID: "s1", Source: 1})
	api := NewAPI(recent, nil, nil, testLog())

	var records []decoder.Record
	get(t, api.HandleMessages, "/api/messages?source=1", &records)
	assert.Equal(t, []string{"d", "c", "a"}, ids(records))

	get(t, api.HandleMessages, "/api/messages?session=s1", &records)
	assert.Equal(t, []string{"a", "b", "d"}, ids(records), "session in capture order")

	resp := get(t, api.HandleMessages, "/api/messages?page=2&limit=3", &records)
	assert.Equal(t, []string{"a"}, ids(records))
	assert.Equal(t, "4", resp.Header.Get("X-Total-Count"))

	for _, bad := range []string{"page=0", "source=abc", "source=0", "limit=x"} {
		resp := get(t, api.HandleMessages, "/api/messages?"+bad, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, bad)
	}
}

func TestAPI_Stats(t *testing.T) {
	store := &fakeStore{counts: []database.OpcodeCount{{Opcode: "NULL", Total: 4}}}
	stats := fakeStats{Decoded: 5, Valid: 4, Invalid: 1}
	api := NewAPI(NewRecentRecords(1), store, stats, testLog())

	var result struct {
		Decoder metrics.Snapshot       `json:"decoder"`
		Stored  []database.OpcodeCount `json:"stored"`
	}
	get(t, api.HandleStats, "/api/stats", &result)
	assert.Equal(t, uint64(5), result.Decoder.Decoded)
	assert.Equal(t, uint64(1), result.Decoder.Invalid)
	require.Len(t, result.Stored, 1)
	assert.Equal(t, int64(4), result.Stored[0].Total)
}

func TestAPI_Opcodes(t *testing.T) {
	api := NewAPI(NewRecentRecords(1), nil, nil, testLog())

	var opcodes []OpcodeInfo
	get(t, api.HandleOpcodes, "/api/opcodes", &opcodes)
	require.Len(t, opcodes, len(lc.FullOpcodes())+len(lc.ShortOpcodes()))

	assert.Equal(t, OpcodeInfo{Name: "GROUP VOICE CHANNEL USER", Full: true, Vendor: lc.VendorStandard.String(), Value: 0}, opcodes[0])
	last := opcodes[len(opcodes)-1]
	assert.False(t, last.Full)
	assert.Equal(t, uint8(0xF), last.Value)
}
