package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/dbehnke/dmr-lc/pkg/database"
	"github.com/dbehnke/dmr-lc/pkg/decoder"
	"github.com/dbehnke/dmr-lc/pkg/lc"
	"github.com/dbehnke/dmr-lc/pkg/logger"
	"github.com/dbehnke/dmr-lc/pkg/metrics"
)

const (
	defaultMessageLimit = 50
	maxMessageLimit     = 500
)

// MessageStore is the stored message history the API reads
type MessageStore interface {
	GetRecent(limit int) ([]database.DecodedMessage, error)
	GetRecentPaginated(page, perPage int) ([]database.DecodedMessage, int64, error)
	GetBySource(radioID uint32, limit int) ([]database.DecodedMessage, error)
	GetBySession(sessionID string) ([]database.DecodedMessage, error)
	CountByOpcode() ([]database.OpcodeCount, error)
}

// messageQuery is the parsed /api/messages query string
type messageQuery struct {
	limit   int
	page    int
	source  uint32
	session string
}

func parseMessageQuery(r *http.Request) (messageQuery, error) {
	q := messageQuery{limit: defaultMessageLimit}
	values := r.URL.Query()

	if s := values.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return q, errors.New("limit must be a positive integer")
		}
		q.limit = min(n, maxMessageLimit)
	}
	if s := values.Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return q, errors.New("page must be a positive integer")
		}
		q.page = n
	}
	if s := values.Get("source"); s != "" {
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil || n == 0 {
			return q, errors.New("source must be a radio id")
		}
		q.source = uint32(n)
	}
	q.session = values.Get("session")
	return q, nil
}

// StatsSource reports live decoder tallies
type StatsSource interface {
	Snapshot() metrics.Snapshot
}

// API handles REST API endpoints
type API struct {
	logger  *logger.Logger
	recent  *RecentRecords
	store   MessageStore
	stats   StatsSource
	started time.Time
}

// NewAPI creates an API over the in-memory history. store and stats are
// optional.
func NewAPI(recent *RecentRecords, store MessageStore, stats StatsSource, log *logger.Logger) *API {
	return &API{
		logger:  log,
		recent:  recent,
		store:   store,
		stats:   stats,
		started: time.Now(),
	}
}

// OpcodeInfo describes one known opcode
type OpcodeInfo struct {
	Name   string `json:"name"`
	Full   bool   `json:"full"`
	Vendor string `json:"vendor,omitempty"`
	Value  uint8  `json:"value"`
}

// HandleStatus handles the /api/status endpoint
func (a *API) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	a.writeJSON(w, map[string]interface{}{
		"status":         "running",
		"service":        "dmr-lc",
		"version":        GetVersionInfo(),
		"uptime_seconds": int64(time.Since(a.started).Seconds()),
	})
}

// HandleMessages handles /api/messages, newest first. Optional parameters:
// limit=N, page=P (with X-Total-Count), source=<radio id>, and session=<id>
// which returns that session in capture order. Stored history is used when
// a store is configured; both sources answer with decoder.Record.
func (a *API) HandleMessages(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	q, err := parseMessageQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if a.store == nil {
		records, total := a.recentMessages(q)
		if q.page > 0 {
			w.Header().Set("X-Total-Count", strconv.Itoa(total))
		}
		a.writeJSON(w, records)
		return
	}

	var (
		messages []database.DecodedMessage
		total    int64
	)
	switch {
	case q.session != "":
		messages, err = a.store.GetBySession(q.session)
	case q.source != 0:
		messages, err = a.store.GetBySource(q.source, q.limit)
	case q.page > 0:
		messages, total, err = a.store.GetRecentPaginated(q.page, q.limit)
		w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	default:
		messages, err = a.store.GetRecent(q.limit)
	}
	if err != nil {
		a.logger.Error("Failed to load messages", logger.Error(err))
		http.Error(w, "failed to load messages", http.StatusInternalServerError)
		return
	}
	a.writeJSON(w, database.Records(messages))
}

// recentMessages answers a query from the in-memory history
func (a *API) recentMessages(q messageQuery) ([]decoder.Record, int) {
	all := a.recent.Last(0)
	matched := all[:0:0]
	for _, rec := range all {
		if q.source != 0 && rec.Source != q.source {
			continue
		}
		if q.session != "" && rec.SessionID != q.session {
			continue
		}
		matched = append(matched, rec)
	}

	if q.session != "" {
		slices.Reverse(matched)
		return matched, len(matched)
	}

	start := 0
	if q.page > 0 {
		start = min((q.page-1)*q.limit, len(matched))
	}
	end := min(start+q.limit, len(matched))
	return matched[start:end], len(matched)
}

// HandleStats handles the /api/stats endpoint
func (a *API) HandleStats(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	response := map[string]interface{}{}
	if a.stats != nil {
		response["decoder"] = a.stats.Snapshot()
	}
	if a.store != nil {
		counts, err := a.store.CountByOpcode()
		if err != nil {
			a.logger.Error("Failed to count messages", logger.Error(err))
			http.Error(w, "failed to count messages", http.StatusInternalServerError)
			return
		}
		response["stored"] = counts
	}
	a.writeJSON(w, response)
}

// HandleOpcodes lists every opcode the decoder recognizes
func (a *API) HandleOpcodes(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	var out []OpcodeInfo
	for _, op := range append(lc.FullOpcodes(), lc.ShortOpcodes()...) {
		info := OpcodeInfo{Name: op.String(), Full: op.IsFull(), Value: op.Value()}
		if op.IsFull() {
			info.Vendor = op.Vendor().String()
		}
		out = append(out, info)
	}
	a.writeJSON(w, out)
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func (a *API) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Warn("Failed to encode response", logger.Error(err))
	}
}
