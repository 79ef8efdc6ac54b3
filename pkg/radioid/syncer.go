// Package radioid keeps a local copy of the RadioID user directory so decoded
// source addresses can be shown with a callsign.
package radioid

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dbehnke/dmr-lc/pkg/database"
	"github.com/dbehnke/dmr-lc/pkg/logger"
)

const (
	// DefaultURL is the RadioID user export
	DefaultURL = "https://radioid.net/static/user.csv"
	// SyncInterval is how often the directory is refreshed
	SyncInterval = 24 * time.Hour
	// BatchSize for database upserts
	BatchSize = 1000
)

// Store is where synced users are saved
type Store interface {
	UpsertBatch(users []database.DMRUser, batchSize int) error
	Count() (int64, error)
}

// Syncer downloads the RadioID directory into a Store
type Syncer struct {
	url    string
	store  Store
	logger *logger.Logger
	client *http.Client
}

// NewSyncer creates a syncer for url; an empty url means DefaultURL
func NewSyncer(url string, store Store, log *logger.Logger) *Syncer {
	if url == "" {
		url = DefaultURL
	}
	return &Syncer{
		url:    url,
		store:  store,
		logger: log.WithComponent("radioid"),
		client: &http.Client{
			Timeout: 5 * time.Minute, // the export is large
		},
	}
}

// Start syncs once and then every SyncInterval until ctx is done
func (s *Syncer) Start(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.Sync(ctx); err != nil {
		s.logger.Error("Failed to sync RadioID directory on startup", logger.Error(err))
	}

	ticker := time.NewTicker(SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("RadioID syncer stopped")
			return
		case <-ticker.C:
			if err := s.Sync(ctx); err != nil {
				s.logger.Error("Failed to sync RadioID directory", logger.Error(err))
			}
		}
	}
}

// Sync downloads, parses and stores the directory
func (s *Syncer) Sync(ctx context.Context) error {
	start := time.Now()
	s.logger.Info("Downloading RadioID directory", logger.String("url", s.url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download directory: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			s.logger.Warn("Failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	users, err := s.parseCSV(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to parse CSV: %w", err)
	}

	if err := s.store.UpsertBatch(users, BatchSize); err != nil {
		return fmt.Errorf("failed to save users: %w", err)
	}

	count, _ := s.store.Count()
	s.logger.Info("RadioID directory sync complete",
		logger.Int("parsed", len(users)),
		logger.Int64("total_users", count),
		logger.String("duration", time.Since(start).String()))

	return nil
}

// parseCSV reads RADIO_ID,CALLSIGN,FIRST_NAME,LAST_NAME,CITY,STATE,COUNTRY,...
// after a header row. Short rows and rows with a bad id are skipped.
func (s *Syncer) parseCSV(r io.Reader) ([]database.DMRUser, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var users []database.DMRUser
	now := time.Now()
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			s.logger.Warn("Error reading CSV line", logger.Int("line", line), logger.Error(err))
			continue
		}
		if len(record) < 7 {
			continue
		}

		radioID, err := strconv.ParseUint(record[0], 10, 32)
		if err != nil {
			continue
		}

		users = append(users, database.DMRUser{
			RadioID:   uint32(radioID),
			Callsign:  record[1],
			FirstName: record[2],
			LastName:  record[3],
			City:      record[4],
			State:     record[5],
			Country:   record[6],
			UpdatedAt: now,
		})
	}

	return users, nil
}
