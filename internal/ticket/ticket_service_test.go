package ticket_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"cerven-ot/internal/config"
	"cerven-ot/internal/policy"
	"cerven-ot/internal/shared/apperror"
	"cerven-ot/internal/shared/contextutil"
	"cerven-ot/internal/shared/counter"
	"cerven-ot/internal/sla"
	"cerven-ot/internal/spreadsheet"
	"cerven-ot/internal/ticket"
	ticketerrors "cerven-ot/internal/ticket/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memRepo struct {
	rows     map[uuid.UUID]ticket.Ticket
	batches  [][]ticket.Ticket
	failNext bool
}

func (m *memRepo) WithTx(tx *sql.Tx) ticket.Repository { return m }

func (m *memRepo) Create(ctx context.Context, t *ticket.Ticket) error {
	m.rows[t.ID] = *t
	return nil
}

func (m *memRepo) CreateBatch(ctx context.Context, tickets []ticket.Ticket) error {
	if m.failNext {
		m.failNext = false
		return errors.New("insert failed")
	}
	m.batches = append(m.batches, tickets)
	for _, t := range tickets {
		m.rows[t.ID] = t
	}
	return nil
}

func (m *memRepo) FindByIDAndCompany(ctx context.Context, companyID, id string) (*ticket.Ticket, error) {
	t, ok := m.rows[uuid.MustParse(id)]
	if !ok || t.CompanyID.String() != companyID {
		return nil, gorm.ErrRecordNotFound
	}
	return &t, nil
}

func (m *memRepo) FindForUpdate(ctx context.Context, companyID, id string) (*ticket.Ticket, error) {
	return m.FindByIDAndCompany(ctx, companyID, id)
}

func (m *memRepo) FindAll(ctx context.Context, companyID string, filter ticket.Filter) ([]ticket.Ticket, error) {
	var out []ticket.Ticket
	for _, t := range m.rows {
		if t.CompanyID.String() != companyID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (m *memRepo) Update(ctx context.Context, t *ticket.Ticket) error {
	m.rows[t.ID] = *t
	return nil
}

type fakeCounter struct {
	next int64
}

func (f *fakeCounter) WithTx(tx *sql.Tx) counter.Repository { return f }

func (f *fakeCounter) GetNextValue(ctx context.Context, companyID, counterType string) (int64, error) {
	f.next++
	return f.next, nil
}

type fakeStores struct {
	byCode map[string]uuid.UUID
}

func (f *fakeStores) StoreExists(ctx context.Context, companyID, storeID string) (bool, error) {
	for _, id := range f.byCode {
		if id.String() == storeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStores) StoreIDsByCode(ctx context.Context, companyID string, codes []string) (map[string]uuid.UUID, error) {
	out := map[string]uuid.UUID{}
	for _, c := range codes {
		if id, ok := f.byCode[c]; ok {
			out[c] = id
		}
	}
	return out, nil
}

type fakeRecorder struct {
	runs []*spreadsheet.ImportRun
	err  error
}

func (f *fakeRecorder) Record(ctx context.Context, run *spreadsheet.ImportRun) error {
	f.runs = append(f.runs, run)
	return f.err
}

type fixture struct {
	sql        sqlmock.Sqlmock
	repo       *memRepo
	counter    *fakeCounter
	recorder   *fakeRecorder
	service    ticket.Service
	store      uuid.UUID
	company    uuid.UUID
	dispatcher contextutil.Principal
	employee   contextutil.Principal
}

func setup(t *testing.T) *fixture {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	company := uuid.New()
	f := &fixture{
		sql:      mock,
		repo:     &memRepo{rows: map[uuid.UUID]ticket.Ticket{}},
		counter:  &fakeCounter{},
		recorder: &fakeRecorder{},
		store:    uuid.New(),
		company:  company,
		dispatcher: contextutil.Principal{
			EmployeeID: uuid.NewString(),
			CompanyID:  company.String(),
			Role:       "DISPATCHER",
		},
		employee: contextutil.Principal{
			EmployeeID: uuid.NewString(),
			CompanyID:  company.String(),
			Role:       "EMPLOYEE",
		},
	}
	stores := &fakeStores{byCode: map[string]uuid.UUID{"ST01": f.store}}
	ev := policy.NewFromConfig(config.Approval{TicketManageRoles: []string{"ADMIN", "DISPATCHER"}}, nil)
	f.service = ticket.NewService(db, f.repo, f.counter, stores, f.recorder, ev)
	return f
}

func (f *fixture) open(t *testing.T) ticket.TicketResponse {
	t.Helper()
	f.sql.ExpectBegin()
	f.sql.ExpectCommit()
	resp, err := f.service.Create(context.Background(), f.dispatcher, ticket.CreateTicketRequest{
		StoreID:  f.store.String(),
		Title:    "POS terminal offline",
		Severity: "SEV1",
	})
	require.NoError(t, err)
	return resp
}

func update(t *testing.T, body string) ticket.UpdateTicketRequest {
	t.Helper()
	var req ticket.UpdateTicketRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return req
}

func TestService_Create(t *testing.T) {
	t.Run("numbers tickets per company", func(t *testing.T) {
		f := setup(t)

		first := f.open(t)
		second := f.open(t)

		assert.Equal(t, "TKT-000001", first.TicketNumber)
		assert.Equal(t, "TKT-000002", second.TicketNumber)
		assert.Equal(t, "sev1", first.Severity)
		assert.Equal(t, ticket.StatusOpen, first.Status)
		assert.Nil(t, first.SLACountHrs)
		assert.Equal(t, f.dispatcher.EmployeeID, *first.ReportedBy)
		assert.NoError(t, f.sql.ExpectationsWereMet())
	})

	t.Run("employee cannot create", func(t *testing.T) {
		f := setup(t)

		_, err := f.service.Create(context.Background(), f.employee, ticket.CreateTicketRequest{
			StoreID: f.store.String(), Title: "x", Severity: "sev2",
		})

		assert.ErrorIs(t, err, policy.ErrDenied)
		assert.NoError(t, f.sql.ExpectationsWereMet())
	})

	t.Run("unknown store", func(t *testing.T) {
		f := setup(t)

		_, err := f.service.Create(context.Background(), f.dispatcher, ticket.CreateTicketRequest{
			StoreID: uuid.NewString(), Title: "x", Severity: "sev2",
		})

		assert.ErrorIs(t, err, ticketerrors.ErrStoreNotFound)
	})

	t.Run("bad reported date", func(t *testing.T) {
		f := setup(t)

		_, err := f.service.Create(context.Background(), f.dispatcher, ticket.CreateTicketRequest{
			StoreID: f.store.String(), Title: "x", Severity: "sev2", ReportedDate: "12/01/2024",
		})

		assert.ErrorIs(t, err, sla.ErrInvalidDate)
		assert.Equal(t, 422, apperror.ToHTTP(err).Status)
	})
}

func TestService_Update(t *testing.T) {
	t.Run("derives sla fields", func(t *testing.T) {
		f := setup(t)
		created := f.open(t)

		f.sql.ExpectBegin()
		f.sql.ExpectCommit()
		resp, err := f.service.Update(context.Background(), f.dispatcher, created.ID, update(t, `{
			"ack_date": "2024-01-01", "ack_time": "09:00",
			"responded_date": "2024-01-01", "responded_time": "09:20",
			"attended_date": "2024-01-01", "work_end_time": "17:30",
			"resolved_date": "2024-01-01", "resolved_time": "12:00:00",
			"status": "RESOLVED"
		}`))

		require.NoError(t, err)
		require.NotNil(t, resp.SLACountHrs)
		assert.Equal(t, 8.5, *resp.SLACountHrs)
		require.NotNil(t, resp.SLAStatus)
		assert.Equal(t, sla.StatusPassed, *resp.SLAStatus)
		assert.Equal(t, ticket.StatusResolved, resp.Status)

		stored := f.repo.rows[uuid.MustParse(created.ID)]
		assert.Equal(t, 8.5, *stored.SLACountHrs)
		assert.NoError(t, f.sql.ExpectationsWereMet())
	})

	t.Run("null clears the source and the derived field", func(t *testing.T) {
		f := setup(t)
		created := f.open(t)

		f.sql.ExpectBegin()
		f.sql.ExpectCommit()
		_, err := f.service.Update(context.Background(), f.dispatcher, created.ID, update(t, `{
			"ack_date": "2024-01-01", "ack_time": "09:00",
			"attended_date": "2024-01-01", "work_end_time": "10:00",
			"resolved_date": "2024-01-02", "resolved_time": "09:00"
		}`))
		require.NoError(t, err)

		f.sql.ExpectBegin()
		f.sql.ExpectCommit()
		resp, err := f.service.Update(context.Background(), f.dispatcher, created.ID, update(t, `{
			"work_end_time": null, "resolved_time": ""
		}`))

		require.NoError(t, err)
		assert.Nil(t, resp.WorkEndTime)
		assert.Nil(t, resp.ResolvedTime)
		assert.Nil(t, resp.SLACountHrs)
		assert.Nil(t, resp.SLAStatus)
		assert.Equal(t, "2024-01-01", *resp.AckDate, "absent keys are untouched")
		assert.Equal(t, "POS terminal offline", resp.Title)
	})

	t.Run("late resolution fails", func(t *testing.T) {
		f := setup(t)
		created := f.open(t)

		f.sql.ExpectBegin()
		f.sql.ExpectCommit()
		resp, err := f.service.Update(context.Background(), f.dispatcher, created.ID, update(t, `{
			"ack_date": "2024-01-01", "ack_time": "09:00",
			"resolved_date": "2024-01-01", "resolved_time": "13:00:01"
		}`))

		require.NoError(t, err)
		assert.Equal(t, sla.StatusFailed, *resp.SLAStatus)
		assert.Nil(t, resp.SLACountHrs)
	})

	t.Run("invalid values are unprocessable", func(t *testing.T) {
		tests := []struct {
			name string
			body string
			want error
		}{
			{"clock", `{"ack_time": "25:00"}`, sla.ErrInvalidTime},
			{"date", `{"resolved_date": "2024-13-01"}`, sla.ErrInvalidDate},
			{"pause", `{"pause1_start": "yesterday"}`, sla.ErrInvalidTimestamp},
			{"pause longer than work", `{
				"ack_date": "2024-01-01", "ack_time": "09:00",
				"attended_date": "2024-01-01", "work_end_time": "10:00",
				"pause1_start": "2024-01-01T08:00", "pause1_end": "2024-01-01T12:00"
			}`, sla.ErrPauseTooLong},
			{"half a pause", `{
				"ack_date": "2024-01-01", "ack_time": "09:00",
				"attended_date": "2024-01-01", "work_end_time": "10:00",
				"pause2_start": "2024-01-01T09:10"
			}`, sla.ErrIncompletePause},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := setup(t)
				created := f.open(t)

				f.sql.ExpectBegin()
				f.sql.ExpectRollback()
				_, err := f.service.Update(context.Background(), f.dispatcher, created.ID, update(t, tt.body))

				assert.ErrorIs(t, err, tt.want)
				httpErr := apperror.ToHTTP(err)
				assert.Equal(t, 422, httpErr.Status)
				assert.Equal(t, apperror.CodeValidationFailed, httpErr.Code)
				assert.Nil(t, f.repo.rows[uuid.MustParse(created.ID)].AckTime)
				assert.NoError(t, f.sql.ExpectationsWereMet())
			})
		}
	})

	t.Run("closed ticket is immutable", func(t *testing.T) {
		f := setup(t)
		created := f.open(t)
		stored := f.repo.rows[uuid.MustParse(created.ID)]
		stored.Status = ticket.StatusClosed
		f.repo.rows[stored.ID] = stored

		f.sql.ExpectBegin()
		f.sql.ExpectRollback()
		_, err := f.service.Update(context.Background(), f.dispatcher, created.ID, update(t, `{"status": "open"}`))

		assert.ErrorIs(t, err, ticketerrors.ErrTicketClosed)
		httpErr := apperror.ToHTTP(err)
		assert.Equal(t, 400, httpErr.Status)
		assert.Equal(t, apperror.CodeInvalidState, httpErr.Code)
	})

	t.Run("title cannot be cleared", func(t *testing.T) {
		f := setup(t)
		created := f.open(t)

		f.sql.ExpectBegin()
		f.sql.ExpectRollback()
		_, err := f.service.Update(context.Background(), f.dispatcher, created.ID, update(t, `{"title": null}`))

		assert.ErrorIs(t, err, ticketerrors.ErrTitleRequired)
	})

	t.Run("employee denied before any read", func(t *testing.T) {
		f := setup(t)
		created := f.open(t)

		_, err := f.service.Update(context.Background(), f.employee, created.ID, update(t, `{"title": "x"}`))

		assert.ErrorIs(t, err, policy.ErrDenied)
		assert.NoError(t, f.sql.ExpectationsWereMet())
	})

	t.Run("other company's ticket is not found", func(t *testing.T) {
		f := setup(t)
		created := f.open(t)
		outsider := f.dispatcher
		outsider.CompanyID = uuid.NewString()

		f.sql.ExpectBegin()
		f.sql.ExpectRollback()
		_, err := f.service.Update(context.Background(), outsider, created.ID, update(t, `{"title": "x"}`))

		assert.ErrorIs(t, err, ticketerrors.ErrTicketNotFound)
	})

	t.Run("missing id", func(t *testing.T) {
		f := setup(t)

		_, err := f.service.Update(context.Background(), f.dispatcher, " ", ticket.UpdateTicketRequest{})

		assert.ErrorIs(t, err, ticketerrors.ErrIDRequired)
	})
}

func workbook(t *testing.T, headers []string, rows [][]string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, spreadsheet.WriteWorkbook(&buf, "Tickets", headers, rows))
	return &buf
}

var importHeaders = []string{"Store Code*", "Title*", "Severity*", "Description", "Reported Date"}

func TestService_Import(t *testing.T) {
	t.Run("mixed rows", func(t *testing.T) {
		f := setup(t)
		file := workbook(t, importHeaders, [][]string{
			{"st01", "Printer jam", "sev3", "tray 2", "2024-03-01"},
			{"", "", "", "", ""},
			{"ST01", "", "sev2", "", ""},
			{"ST99", "Door sensor", "sev2", "", ""},
			{"ST01", "Aircon", "urgent", "", ""},
			{"ST01", "Scanner", "SEV2", "", "03/01/2024"},
			{"ST01", "Network down", "sev1", "", ""},
		})

		f.sql.ExpectBegin()
		f.sql.ExpectCommit()
		summary, err := f.service.Import(context.Background(), f.dispatcher, "tickets.xlsx", file)

		require.NoError(t, err)
		assert.Equal(t, 6, summary.Total)
		assert.Equal(t, 2, summary.Succeeded)
		assert.Equal(t, 4, summary.Failed)
		assert.Equal(t, 1, summary.Skipped)
		require.Len(t, summary.Errors, 4)
		assert.Equal(t, spreadsheet.RowError{Row: 4, Field: "title", Message: "Title is required"}, summary.Errors[0])
		assert.Equal(t, "store_code", summary.Errors[1].Field)
		assert.Equal(t, 5, summary.Errors[1].Row)
		assert.Equal(t, "severity", summary.Errors[2].Field)
		assert.Equal(t, "reported_date", summary.Errors[3].Field)

		require.Len(t, f.repo.batches, 1)
		assert.Equal(t, "TKT-000001", f.repo.batches[0][0].TicketNumber)
		assert.Equal(t, "Printer jam", f.repo.batches[0][0].Title)
		assert.Equal(t, f.store, f.repo.batches[0][0].StoreID)

		require.Len(t, f.recorder.runs, 1)
		assert.Equal(t, spreadsheet.KindTickets, f.recorder.runs[0].Kind)
		assert.Equal(t, 4, f.recorder.runs[0].Failed)
		assert.NoError(t, f.sql.ExpectationsWereMet())
	})

	t.Run("writes in batches of one hundred", func(t *testing.T) {
		f := setup(t)
		rows := make([][]string, 0, 150)
		for i := 0; i < 150; i++ {
			rows = append(rows, []string{"ST01", fmt.Sprintf("Ticket %d", i), "sev4", "", ""})
		}
		file := workbook(t, importHeaders, rows)

		f.sql.ExpectBegin()
		f.sql.ExpectCommit()
		f.sql.ExpectBegin()
		f.sql.ExpectCommit()
		summary, err := f.service.Import(context.Background(), f.dispatcher, "bulk.xlsx", file)

		require.NoError(t, err)
		assert.Equal(t, 150, summary.Succeeded)
		require.Len(t, f.repo.batches, 2)
		assert.Len(t, f.repo.batches[0], 100)
		assert.Len(t, f.repo.batches[1], 50)
		assert.Equal(t, "TKT-000150", f.repo.batches[1][49].TicketNumber)
		assert.NoError(t, f.sql.ExpectationsWereMet())
	})

	t.Run("failed batch counts its rows as failures", func(t *testing.T) {
		f := setup(t)
		f.repo.failNext = true
		file := workbook(t, importHeaders, [][]string{{"ST01", "a", "sev1", "", ""}, {"ST01", "b", "sev1", "", ""}})

		f.sql.ExpectBegin()
		f.sql.ExpectRollback()
		summary, err := f.service.Import(context.Background(), f.dispatcher, "tickets.xlsx", file)

		require.NoError(t, err)
		assert.Equal(t, 0, summary.Succeeded)
		assert.Equal(t, 2, summary.Failed)
		assert.Len(t, summary.Errors, 2)
	})

	t.Run("missing required header fails the file", func(t *testing.T) {
		f := setup(t)
		file := workbook(t, []string{"Store Code", "Title"}, [][]string{{"ST01", "a"}})

		_, err := f.service.Import(context.Background(), f.dispatcher, "tickets.xlsx", file)

		assert.ErrorIs(t, err, spreadsheet.ErrMissingHeader)
		assert.Empty(t, f.recorder.runs)
	})

	t.Run("recorder failure does not fail the import", func(t *testing.T) {
		f := setup(t)
		f.recorder.err = errors.New("db down")
		file := workbook(t, importHeaders, [][]string{{"ST01", "a", "sev1", "", ""}})

		f.sql.ExpectBegin()
		f.sql.ExpectCommit()
		summary, err := f.service.Import(context.Background(), f.dispatcher, "tickets.xlsx", file)

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Succeeded)
	})

	t.Run("employee denied", func(t *testing.T) {
		f := setup(t)

		_, err := f.service.Import(context.Background(), f.employee, "tickets.xlsx", bytes.NewReader(nil))

		assert.ErrorIs(t, err, policy.ErrDenied)
	})
}

func TestService_Export(t *testing.T) {
	f := setup(t)
	created := f.open(t)
	stored := f.repo.rows[uuid.MustParse(created.ID)]
	hours := 2.5
	stored.SLACountHrs = &hours
	stored.Store = &ticket.StoreRef{ID: f.store, Code: "ST01", Name: "Central"}
	f.repo.rows[stored.ID] = stored

	data, filename, err := f.service.Export(context.Background(), f.dispatcher, ticket.Filter{})

	require.NoError(t, err)
	assert.Contains(t, filename, "tickets-")
	rows, err := spreadsheet.ReadRows(bytes.NewReader(data), filename)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Store Code", rows[0][0])
	assert.Equal(t, "Ticket Number", rows[0][5])
	assert.Equal(t, "ST01", rows[1][0])
	assert.Equal(t, "TKT-000001", rows[1][5])
	assert.Equal(t, "2.50", rows[1][7])
}
