package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"sync"
	"time"

	"shareit/internal/events"
	"shareit/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	ledgerSheet  = "Bookings"
	ledgerColumn = "Bookings!A:A"
	stampLayout  = "2006-01-02 15:04:05"
)

var errRowNotFound = errors.New("booking row not found")

// LedgerHeader is the first row of the bookings sheet.
var LedgerHeader = []interface{}{"ID", "Item ID", "Item", "Owner ID", "Booker ID", "Booker", "Start", "End", "Status", "Updated At"}

// SheetsLedger mirrors booking events into a spreadsheet, one row per booking.
type SheetsLedger struct {
	service       *sheets.Service
	spreadsheetID string
	now           func() time.Time

	cacheMu  sync.RWMutex
	rowCache map[int64]int
}

// NewSheetsLedger authenticates with a service account key file.
func NewSheetsLedger(ctx context.Context, credentialsFile, spreadsheetID string) (*SheetsLedger, error) {
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}
	return newLedger(srv, spreadsheetID), nil
}

func newLedger(srv *sheets.Service, spreadsheetID string) *SheetsLedger {
	return &SheetsLedger{
		service:       srv,
		spreadsheetID: spreadsheetID,
		now:           time.Now,
		rowCache:      make(map[int64]int),
	}
}

func (s *SheetsLedger) Name() string { return "sheets" }

// TestConnection reads the header cell.
func (s *SheetsLedger) TestConnection(ctx context.Context) error {
	if _, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, ledgerSheet+"!A1").Context(ctx).Do(); err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// EnsureHeader writes LedgerHeader into row 1.
func (s *SheetsLedger) EnsureHeader(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Update(s.spreadsheetID, ledgerSheet+"!A1:J1", &sheets.ValueRange{
		Values: [][]interface{}{LedgerHeader},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// Deliver upserts the booking row for booking events; other events are ignored.
func (s *SheetsLedger) Deliver(ctx context.Context, ev *events.Event) error {
	switch ev.Type {
	case events.EventBookingCreated, events.EventBookingApproved, events.EventBookingRejected:
	default:
		return nil
	}
	var p events.BookingEventPayload
	if err := ev.Decode(&p); err != nil {
		return fmt.Errorf("decode %s payload: %w", ev.Type, err)
	}
	return s.UpsertBooking(ctx, p)
}

// WarmUpCache rebuilds the booking id to row index from column A.
func (s *SheetsLedger) WarmUpCache(ctx context.Context) error {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, ledgerColumn).Context(ctx).Do()
	if err != nil {
		return err
	}

	cache := make(map[int64]int, len(resp.Values))
	for i, row := range resp.Values {
		if id, ok := cellID(row); ok {
			cache[id] = i + 1
		}
	}

	s.cacheMu.Lock()
	s.rowCache = cache
	s.cacheMu.Unlock()
	return nil
}

// UpsertBooking rewrites the booking's row or appends one.
func (s *SheetsLedger) UpsertBooking(ctx context.Context, p events.BookingEventPayload) error {
	if p.BookingID == 0 {
		return fmt.Errorf("booking id is required")
	}

	rowIdx, err := s.FindBookingRow(ctx, p.BookingID)
	if errors.Is(err, errRowNotFound) {
		return s.AppendBooking(ctx, p)
	}
	if err != nil {
		return err
	}

	rangeData := fmt.Sprintf("%s!A%d:J%d", ledgerSheet, rowIdx, rowIdx)
	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, rangeData, &sheets.ValueRange{
		Values: [][]interface{}{s.rowValues(p)},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

func (s *SheetsLedger) AppendBooking(ctx context.Context, p events.BookingEventPayload) error {
	resp, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, ledgerColumn, &sheets.ValueRange{
		Values: [][]interface{}{s.rowValues(p)},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return err
	}
	if resp.Updates != nil {
		if row, ok := firstRow(resp.Updates.UpdatedRange); ok {
			s.setCachedRow(p.BookingID, row)
		}
	}
	return nil
}

// FindBookingRow returns the 1-based row of bookingID.
func (s *SheetsLedger) FindBookingRow(ctx context.Context, bookingID int64) (int, error) {
	if row, ok := s.getCachedRow(bookingID); ok {
		return row, nil
	}

	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, ledgerColumn).Context(ctx).Do()
	if err != nil {
		return 0, err
	}
	for i, row := range resp.Values {
		if id, ok := cellID(row); ok && id == bookingID {
			s.setCachedRow(bookingID, i+1)
			return i + 1, nil
		}
	}
	return 0, errRowNotFound
}

func (s *SheetsLedger) rowValues(p events.BookingEventPayload) []interface{} {
	return []interface{}{
		p.BookingID,
		p.ItemID,
		p.ItemName,
		p.OwnerID,
		p.BookerID,
		p.BookerName,
		p.Start.Local().Format(models.TimeLayout),
		p.End.Local().Format(models.TimeLayout),
		p.Status,
		s.now().Format(stampLayout),
	}
}

func cellID(row []interface{}) (int64, bool) {
	if len(row) == 0 {
		return 0, false
	}
	var id int64
	switch v := row[0].(type) {
	case float64:
		id = int64(v)
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		id = parsed
	}
	return id, id > 0
}

var updatedRangeRow = regexp.MustCompile(`![A-Z]+(\d+)`)

// firstRow extracts 10 from "Bookings!A10:J10".
func firstRow(updatedRange string) (int, bool) {
	m := updatedRangeRow.FindStringSubmatch(updatedRange)
	if m == nil {
		return 0, false
	}
	row, err := strconv.Atoi(m[1])
	return row, err == nil
}

func (s *SheetsLedger) getCachedRow(id int64) (int, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	row, ok := s.rowCache[id]
	return row, ok
}

func (s *SheetsLedger) setCachedRow(id int64, row int) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache[id] = row
}
