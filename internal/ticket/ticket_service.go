package ticket

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"cerven-ot/internal/policy"
	"cerven-ot/internal/shared/apperror"
	"cerven-ot/internal/shared/contextutil"
	"cerven-ot/internal/shared/counter"
	"cerven-ot/internal/shared/patch"
	"cerven-ot/internal/sla"
	"cerven-ot/internal/spreadsheet"
	ticketerrors "cerven-ot/internal/ticket/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StoreLookup resolves stores of the caller's company. Codes are matched
// upper-cased.
type StoreLookup interface {
	StoreExists(ctx context.Context, companyID, storeID string) (bool, error)
	StoreIDsByCode(ctx context.Context, companyID string, codes []string) (map[string]uuid.UUID, error)
}

type ImportRecorder interface {
	Record(ctx context.Context, run *spreadsheet.ImportRun) error
}

var importSchema = spreadsheet.Schema{Columns: []spreadsheet.Column{
	{Header: "Store Code", Field: "store_code", Required: true},
	{Header: "Title", Field: "title", Required: true},
	{Header: "Severity", Field: "severity", Required: true},
	{Header: "Description", Field: "description"},
	{Header: "Reported Date", Field: "reported_date"},
}}

//go:generate mockgen -source=ticket_service.go -destination=mock/ticket_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, p contextutil.Principal, req CreateTicketRequest) (TicketResponse, error)
	GetAll(ctx context.Context, p contextutil.Principal, filter Filter) ([]TicketResponse, error)
	GetByID(ctx context.Context, p contextutil.Principal, id string) (TicketResponse, error)
	Update(ctx context.Context, p contextutil.Principal, id string, req UpdateTicketRequest) (TicketResponse, error)
	Import(ctx context.Context, p contextutil.Principal, filename string, r io.Reader) (spreadsheet.Summary, error)
	Export(ctx context.Context, p contextutil.Principal, filter Filter) ([]byte, string, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	counter  counter.Repository
	stores   StoreLookup
	recorder ImportRecorder
	policy   policy.Authorizer
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	counterRepo counter.Repository,
	stores StoreLookup,
	recorder ImportRecorder,
	authorizer policy.Authorizer,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("ticket.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("ticket.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		counter:  counterRepo,
		stores:   stores,
		recorder: recorder,
		policy:   authorizer,
		now:      time.Now,
		logger:   l,
	}
}

func (s *service) Create(ctx context.Context, p contextutil.Principal, req CreateTicketRequest) (TicketResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	if err := s.policy.Authorize(ctx, p, policy.TicketManage, policy.Resource{}); err != nil {
		return TicketResponse{}, err
	}
	companyID, err := uuid.Parse(p.CompanyID)
	if err != nil {
		return TicketResponse{}, policy.ErrNoPrincipal
	}

	storeID, err := uuid.Parse(strings.TrimSpace(req.StoreID))
	if err != nil {
		return TicketResponse{}, ticketerrors.ErrInvalidStoreID
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return TicketResponse{}, ticketerrors.ErrTitleRequired
	}
	severity := strings.ToLower(strings.TrimSpace(req.Severity))
	if !validSeverity(severity) {
		return TicketResponse{}, ticketerrors.ErrInvalidSeverity
	}

	t := &Ticket{
		ID:          uuid.New(),
		CompanyID:   companyID,
		StoreID:     storeID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Severity:    severity,
		Status:      StatusOpen,
	}
	if reporter, err := uuid.Parse(p.EmployeeID); err == nil {
		t.ReportedBy = &reporter
	}
	if v := strings.TrimSpace(req.AssignedTo); v != "" {
		assignee, err := uuid.Parse(v)
		if err != nil {
			return TicketResponse{}, ticketerrors.ErrInvalidAssignee
		}
		t.AssignedTo = &assignee
	}
	if v := strings.TrimSpace(req.ReportedDate); v != "" {
		if !sla.ValidDate(v) {
			return TicketResponse{}, fieldError(sla.ErrInvalidDate, "reported_date")
		}
		t.ReportedDate = &v
	}

	exists, err := s.stores.StoreExists(ctx, p.CompanyID, storeID.String())
	if err != nil {
		return TicketResponse{}, err
	}
	if !exists {
		return TicketResponse{}, ticketerrors.ErrStoreNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TicketResponse{}, err
	}
	defer tx.Rollback()

	n, err := s.counter.WithTx(tx).GetNextValue(ctx, p.CompanyID, counter.TypeTicket)
	if err != nil {
		log.Error("allocate ticket number failed", zap.Error(err))
		return TicketResponse{}, err
	}
	t.TicketNumber = counter.TicketNumber(n)

	if err := s.repo.WithTx(tx).Create(ctx, t); err != nil {
		log.Error("create ticket failed", zap.Error(err))
		return TicketResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return TicketResponse{}, err
	}

	log.Info("ticket created",
		zap.String("ticket_id", t.ID.String()),
		zap.String("ticket_number", t.TicketNumber),
		zap.String("severity", t.Severity),
	)
	return mapToResponse(t), nil
}

func (s *service) GetAll(ctx context.Context, p contextutil.Principal, filter Filter) ([]TicketResponse, error) {
	filter = normalizeFilter(filter)
	rows, err := s.repo.FindAll(ctx, p.CompanyID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]TicketResponse, 0, len(rows))
	for i := range rows {
		out = append(out, mapToResponse(&rows[i]))
	}
	return out, nil
}

func (s *service) GetByID(ctx context.Context, p contextutil.Principal, id string) (TicketResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return TicketResponse{}, ticketerrors.ErrTicketNotFound
	}
	t, err := s.repo.FindByIDAndCompany(ctx, p.CompanyID, id)
	if err != nil {
		return TicketResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(t), nil
}

func (s *service) Update(ctx context.Context, p contextutil.Principal, id string, req UpdateTicketRequest) (TicketResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	id = strings.TrimSpace(id)
	if id == "" {
		return TicketResponse{}, ticketerrors.ErrIDRequired
	}
	if _, err := uuid.Parse(id); err != nil {
		return TicketResponse{}, ticketerrors.ErrTicketNotFound
	}
	if err := s.policy.Authorize(ctx, p, policy.TicketManage, policy.Resource{}); err != nil {
		return TicketResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TicketResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	t, err := qtx.FindForUpdate(ctx, p.CompanyID, id)
	if err != nil {
		return TicketResponse{}, mapRepositoryError(err)
	}
	if t.Status == StatusClosed {
		return TicketResponse{}, ticketerrors.ErrTicketClosed
	}

	if err := applyUpdate(t, req); err != nil {
		return TicketResponse{}, err
	}
	if err := t.RecomputeSLA(); err != nil {
		return TicketResponse{}, err
	}

	if err := qtx.Update(ctx, t); err != nil {
		log.Error("update ticket failed", zap.String("ticket_id", id), zap.Error(err))
		return TicketResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return TicketResponse{}, err
	}

	fields := []zap.Field{
		zap.String("ticket_id", id),
		zap.String("status", t.Status),
	}
	if t.SLAStatus != nil {
		fields = append(fields, zap.String("sla_status", *t.SLAStatus))
	}
	log.Info("ticket updated", fields...)
	return mapToResponse(t), nil
}

type importRow struct {
	number int
	ticket Ticket
}

func (s *service) Import(ctx context.Context, p contextutil.Principal, filename string, r io.Reader) (spreadsheet.Summary, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	if err := s.policy.Authorize(ctx, p, policy.TicketManage, policy.Resource{}); err != nil {
		return spreadsheet.Summary{}, err
	}
	companyID, err := uuid.Parse(p.CompanyID)
	if err != nil {
		return spreadsheet.Summary{}, policy.ErrNoPrincipal
	}
	startedBy, err := uuid.Parse(p.EmployeeID)
	if err != nil {
		return spreadsheet.Summary{}, policy.ErrNoPrincipal
	}

	rows, err := spreadsheet.ReadRows(r, filename)
	if err != nil {
		return spreadsheet.Summary{}, err
	}
	parsed, err := importSchema.Parse(rows)
	if err != nil {
		return spreadsheet.Summary{}, err
	}

	summary := spreadsheet.Summary{
		Total:   len(parsed.Rows) + len(parsed.Errors),
		Skipped: parsed.Skipped,
		Errors:  append([]spreadsheet.RowError{}, parsed.Errors...),
	}

	stores := map[string]uuid.UUID{}
	if len(parsed.Rows) > 0 {
		codes := make([]string, 0, len(parsed.Rows))
		seen := map[string]bool{}
		for _, row := range parsed.Rows {
			code := normalizeCode(row.Get("store_code"))
			if !seen[code] {
				seen[code] = true
				codes = append(codes, code)
			}
		}
		stores, err = s.stores.StoreIDsByCode(ctx, p.CompanyID, codes)
		if err != nil {
			return spreadsheet.Summary{}, err
		}
	}

	var valid []importRow
	for _, row := range parsed.Rows {
		t, rowErr := ticketFromRow(row, stores)
		if rowErr != nil {
			summary.Errors = append(summary.Errors, *rowErr)
			continue
		}
		t.ID = uuid.New()
		t.CompanyID = companyID
		t.ReportedBy = &startedBy
		valid = append(valid, importRow{number: row.Number, ticket: t})
	}

	for _, batch := range spreadsheet.Batches(valid, spreadsheet.BatchSize) {
		if err := s.saveBatch(ctx, p.CompanyID, batch); err != nil {
			log.Error("ticket import batch failed",
				zap.Int("first_row", batch[0].number),
				zap.Int("rows", len(batch)),
				zap.Error(err),
			)
			for _, b := range batch {
				summary.Errors = append(summary.Errors, spreadsheet.RowError{Row: b.number, Message: "row could not be saved"})
			}
			continue
		}
		summary.Succeeded += len(batch)
	}
	summary.Failed = summary.Total - summary.Succeeded
	sort.SliceStable(summary.Errors, func(i, j int) bool { return summary.Errors[i].Row < summary.Errors[j].Row })

	run, err := spreadsheet.NewImportRun(companyID, startedBy, spreadsheet.KindTickets, filename, summary)
	if err == nil {
		err = s.recorder.Record(ctx, run)
	}
	if err != nil {
		log.Warn("record ticket import run failed", zap.Error(err))
	}

	log.Info("tickets imported",
		zap.String("filename", filename),
		zap.Int("total", summary.Total),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

func (s *service) saveBatch(ctx context.Context, companyID string, batch []importRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	numbers := s.counter.WithTx(tx)
	tickets := make([]Ticket, len(batch))
	for i := range batch {
		n, err := numbers.GetNextValue(ctx, companyID, counter.TypeTicket)
		if err != nil {
			return err
		}
		tickets[i] = batch[i].ticket
		tickets[i].TicketNumber = counter.TicketNumber(n)
	}

	if err := s.repo.WithTx(tx).CreateBatch(ctx, tickets); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) Export(ctx context.Context, p contextutil.Principal, filter Filter) ([]byte, string, error) {
	if err := s.policy.Authorize(ctx, p, policy.TicketManage, policy.Resource{}); err != nil {
		return nil, "", err
	}

	rows, err := s.repo.FindAll(ctx, p.CompanyID, normalizeFilter(filter))
	if err != nil {
		return nil, "", err
	}

	headers := append(importSchema.Headers(), "Ticket Number", "Status", "SLA Hours", "SLA Status")
	data := make([][]string, 0, len(rows))
	for i := range rows {
		t := &rows[i]
		storeCode := ""
		if t.Store != nil {
			storeCode = t.Store.Code
		}
		hours := ""
		if t.SLACountHrs != nil {
			hours = strconv.FormatFloat(*t.SLACountHrs, 'f', 2, 64)
		}
		data = append(data, []string{
			storeCode,
			t.Title,
			t.Severity,
			t.Description,
			deref(t.ReportedDate),
			t.TicketNumber,
			t.Status,
			hours,
			deref(t.SLAStatus),
		})
	}

	var buf bytes.Buffer
	if err := spreadsheet.WriteWorkbook(&buf, "Tickets", headers, data); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("tickets-%s.xlsx", s.now().UTC().Format("20060102"))
	return buf.Bytes(), filename, nil
}

func ticketFromRow(row spreadsheet.Row, stores map[string]uuid.UUID) (Ticket, *spreadsheet.RowError) {
	code := normalizeCode(row.Get("store_code"))
	storeID, ok := stores[code]
	if !ok {
		return Ticket{}, &spreadsheet.RowError{Row: row.Number, Field: "store_code", Message: "unknown store code " + code}
	}

	severity := strings.ToLower(row.Get("severity"))
	if !validSeverity(severity) {
		return Ticket{}, &spreadsheet.RowError{Row: row.Number, Field: "severity", Message: ticketerrors.ErrInvalidSeverity.Message}
	}

	t := Ticket{
		StoreID:     storeID,
		Title:       row.Get("title"),
		Description: row.Get("description"),
		Severity:    severity,
		Status:      StatusOpen,
	}
	if v := row.Get("reported_date"); v != "" {
		if !sla.ValidDate(v) {
			return Ticket{}, &spreadsheet.RowError{Row: row.Number, Field: "reported_date", Message: sla.ErrInvalidDate.Message}
		}
		t.ReportedDate = &v
	}
	return t, nil
}

func normalizeFilter(f Filter) Filter {
	return Filter{
		Status:   strings.ToLower(strings.TrimSpace(f.Status)),
		Severity: strings.ToLower(strings.TrimSpace(f.Severity)),
		StoreID:  strings.TrimSpace(f.StoreID),
	}
}

func fieldError(err *apperror.AppError, field string) error {
	return err.WithDetails(map[string]string{"field": field})
}

func validTimestamp(v string) bool {
	_, err := sla.ParseTimestamp(v)
	return err == nil
}

// applyText trims the value, treats an empty string as null and checks the
// format before writing.
func applyText(f patch.Field[string], dst **string, field string, valid func(string) bool, invalid *apperror.AppError) error {
	f.Value = strings.TrimSpace(f.Value)
	if f.Set && !f.Null && f.Value == "" {
		f.Null = true
	}
	if f.Set && !f.Null && valid != nil && !valid(f.Value) {
		return fieldError(invalid, field)
	}
	f.Apply(dst)
	return nil
}

func applyUpdate(t *Ticket, req UpdateTicketRequest) error {
	if req.Title.Set {
		title := strings.TrimSpace(req.Title.Value)
		if req.Title.Null || title == "" {
			return ticketerrors.ErrTitleRequired
		}
		t.Title = title
	}
	if req.Description.Set {
		t.Description = strings.TrimSpace(req.Description.Value)
	}
	if req.Severity.Set {
		severity := strings.ToLower(strings.TrimSpace(req.Severity.Value))
		if req.Severity.Null || !validSeverity(severity) {
			return ticketerrors.ErrInvalidSeverity
		}
		t.Severity = severity
	}
	if req.Status.Set {
		status := strings.ToLower(strings.TrimSpace(req.Status.Value))
		if req.Status.Null || !validStatus(status) {
			return ticketerrors.ErrInvalidStatus
		}
		t.Status = status
	}
	if req.AssignedTo.Set {
		v := strings.TrimSpace(req.AssignedTo.Value)
		if req.AssignedTo.Null || v == "" {
			t.AssignedTo = nil
		} else {
			assignee, err := uuid.Parse(v)
			if err != nil {
				return ticketerrors.ErrInvalidAssignee
			}
			t.AssignedTo = &assignee
		}
	}

	texts := []struct {
		field   string
		value   patch.Field[string]
		dst     **string
		valid   func(string) bool
		invalid *apperror.AppError
	}{
		{"reported_date", req.ReportedDate, &t.ReportedDate, sla.ValidDate, sla.ErrInvalidDate},
		{"ack_date", req.AckDate, &t.AckDate, sla.ValidDate, sla.ErrInvalidDate},
		{"ack_time", req.AckTime, &t.AckTime, sla.ValidClock, sla.ErrInvalidTime},
		{"responded_date", req.RespondedDate, &t.RespondedDate, sla.ValidDate, sla.ErrInvalidDate},
		{"responded_time", req.RespondedTime, &t.RespondedTime, sla.ValidClock, sla.ErrInvalidTime},
		{"attended_date", req.AttendedDate, &t.AttendedDate, sla.ValidDate, sla.ErrInvalidDate},
		{"work_end_time", req.WorkEndTime, &t.WorkEndTime, sla.ValidClock, sla.ErrInvalidTime},
		{"pause1_start", req.Pause1Start, &t.Pause1Start, validTimestamp, sla.ErrInvalidTimestamp},
		{"pause1_end", req.Pause1End, &t.Pause1End, validTimestamp, sla.ErrInvalidTimestamp},
		{"pause2_start", req.Pause2Start, &t.Pause2Start, validTimestamp, sla.ErrInvalidTimestamp},
		{"pause2_end", req.Pause2End, &t.Pause2End, validTimestamp, sla.ErrInvalidTimestamp},
		{"resolved_date", req.ResolvedDate, &t.ResolvedDate, sla.ValidDate, sla.ErrInvalidDate},
		{"resolved_time", req.ResolvedTime, &t.ResolvedTime, sla.ValidClock, sla.ErrInvalidTime},
	}
	for _, f := range texts {
		if err := applyText(f.value, f.dst, f.field, f.valid, f.invalid); err != nil {
			return err
		}
	}
	return nil
}

func uuidPtr(v *uuid.UUID) *string {
	if v == nil {
		return nil
	}
	s := v.String()
	return &s
}

func mapToResponse(t *Ticket) TicketResponse {
	resp := TicketResponse{
		ID:            t.ID.String(),
		CompanyID:     t.CompanyID.String(),
		StoreID:       t.StoreID.String(),
		TicketNumber:  t.TicketNumber,
		Title:         t.Title,
		Description:   t.Description,
		Severity:      t.Severity,
		Status:        t.Status,
		ReportedBy:    uuidPtr(t.ReportedBy),
		AssignedTo:    uuidPtr(t.AssignedTo),
		ReportedDate:  t.ReportedDate,
		AckDate:       t.AckDate,
		AckTime:       t.AckTime,
		RespondedDate: t.RespondedDate,
		RespondedTime: t.RespondedTime,
		AttendedDate:  t.AttendedDate,
		WorkEndTime:   t.WorkEndTime,
		Pause1Start:   t.Pause1Start,
		Pause1End:     t.Pause1End,
		Pause2Start:   t.Pause2Start,
		Pause2End:     t.Pause2End,
		ResolvedDate:  t.ResolvedDate,
		ResolvedTime:  t.ResolvedTime,
		SLACountHrs:   t.SLACountHrs,
		SLAStatus:     t.SLAStatus,
	}
	if t.Store != nil {
		resp.StoreCode = t.Store.Code
		resp.StoreName = t.Store.Name
	}
	if !t.CreatedAt.IsZero() {
		resp.CreatedAt = t.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !t.UpdatedAt.IsZero() {
		resp.UpdatedAt = t.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}
