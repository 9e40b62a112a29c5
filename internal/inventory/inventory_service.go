package inventory

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	inventoryerrors "cerven-ot/internal/inventory/errors"
	"cerven-ot/internal/policy"
	"cerven-ot/internal/shared/contextutil"
	"cerven-ot/internal/spreadsheet"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	StoreOptionsKeyPrefix = "stores:options:"
	storeOptionsTTL       = 30 * time.Minute
)

func StoreOptionsKey(companyID string) string {
	return StoreOptionsKeyPrefix + companyID
}

var storeCodePattern = regexp.MustCompile(`^[A-Z0-9_-]+$`)

var itemSchema = spreadsheet.Schema{Columns: []spreadsheet.Column{
	{Header: "Store Code", Field: "store_code", Required: true},
	{Header: "SKU", Field: "sku", Required: true},
	{Header: "Item Name", Field: "name", Required: true},
	{Header: "Quantity", Field: "quantity", Required: true},
	{Header: "Category", Field: "category"},
	{Header: "Serial Number", Field: "serial_number"},
}}

type ImportRecorder interface {
	Record(ctx context.Context, run *spreadsheet.ImportRun) error
}

//go:generate mockgen -source=inventory_service.go -destination=mock/inventory_service_mock.go -package=mock
type Service interface {
	CreateStore(ctx context.Context, p contextutil.Principal, req CreateStoreRequest) (StoreResponse, error)
	ListStores(ctx context.Context, p contextutil.Principal) ([]StoreResponse, error)
	StoreOptions(ctx context.Context, p contextutil.Principal) ([]StoreOption, error)
	ListItems(ctx context.Context, p contextutil.Principal, filter ItemFilter) ([]ItemResponse, error)
	ImportItems(ctx context.Context, p contextutil.Principal, filename string, r io.Reader) (spreadsheet.Summary, error)
	ExportItems(ctx context.Context, p contextutil.Principal, filter ItemFilter) ([]byte, string, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	rdb      *redis.Client
	sf       *singleflight.Group
	recorder ImportRecorder
	policy   policy.Authorizer
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rdb *redis.Client, recorder ImportRecorder, authorizer policy.Authorizer, logger ...*zap.Logger) Service {
	l := zap.L().Named("inventory.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("inventory.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		rdb:      rdb,
		sf:       &singleflight.Group{},
		recorder: recorder,
		policy:   authorizer,
		now:      time.Now,
		logger:   l,
	}
}

func (s *service) CreateStore(ctx context.Context, p contextutil.Principal, req CreateStoreRequest) (StoreResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	if err := s.policy.Authorize(ctx, p, policy.InventoryManage, policy.Resource{}); err != nil {
		return StoreResponse{}, err
	}
	companyID, err := uuid.Parse(p.CompanyID)
	if err != nil {
		return StoreResponse{}, policy.ErrNoPrincipal
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if !storeCodePattern.MatchString(code) {
		return StoreResponse{}, inventoryerrors.ErrInvalidStoreCode
	}

	store := &Store{
		ID:        uuid.New(),
		CompanyID: companyID,
		Code:      code,
		Name:      strings.TrimSpace(req.Name),
		Address:   strings.TrimSpace(req.Address),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return StoreResponse{}, err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).CreateStore(ctx, store); err != nil {
		return StoreResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return StoreResponse{}, err
	}

	if s.rdb != nil {
		cacheKey := StoreOptionsKey(p.CompanyID)
		if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
			log.Error("failed to invalidate store options cache", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	log.Info("store created", zap.String("store_id", store.ID.String()), zap.String("code", store.Code))
	return mapStoreResponse(store), nil
}

func (s *service) ListStores(ctx context.Context, p contextutil.Principal) ([]StoreResponse, error) {
	rows, err := s.repo.ListStores(ctx, p.CompanyID)
	if err != nil {
		return nil, err
	}
	out := make([]StoreResponse, 0, len(rows))
	for i := range rows {
		out = append(out, mapStoreResponse(&rows[i]))
	}
	return out, nil
}

func (s *service) StoreOptions(ctx context.Context, p contextutil.Principal) ([]StoreOption, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	cacheKey := StoreOptionsKey(p.CompanyID)

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, cacheKey).Result()
		if err == nil {
			var opts []StoreOption
			if err := json.Unmarshal([]byte(cached), &opts); err == nil {
				return opts, nil
			}
		}
	}

	// concurrent misses for one company share a single query
	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		rows, err := s.repo.ListStores(ctx, p.CompanyID)
		if err != nil {
			return nil, err
		}

		opts := make([]StoreOption, 0, len(rows))
		for _, st := range rows {
			opts = append(opts, StoreOption{ID: st.ID.String(), Code: st.Code, Name: st.Name})
		}

		if s.rdb != nil {
			if payload, err := json.Marshal(opts); err == nil {
				if err := s.rdb.Set(ctx, cacheKey, string(payload), storeOptionsTTL).Err(); err != nil {
					log.Warn("failed to cache store options", zap.String("key", cacheKey), zap.Error(err))
				}
			}
		}
		return opts, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]StoreOption), nil
}

func (s *service) ListItems(ctx context.Context, p contextutil.Principal, filter ItemFilter) ([]ItemResponse, error) {
	rows, err := s.repo.ListItems(ctx, p.CompanyID, normalizeFilter(filter))
	if err != nil {
		return nil, err
	}
	out := make([]ItemResponse, 0, len(rows))
	for i := range rows {
		out = append(out, mapItemResponse(&rows[i]))
	}
	return out, nil
}

type importRow struct {
	number int
	item   Item
}

func (s *service) ImportItems(ctx context.Context, p contextutil.Principal, filename string, r io.Reader) (spreadsheet.Summary, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	if err := s.policy.Authorize(ctx, p, policy.InventoryManage, policy.Resource{}); err != nil {
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
	parsed, err := itemSchema.Parse(rows)
	if err != nil {
		return spreadsheet.Summary{}, err
	}

	summary := spreadsheet.Summary{
		Total:   len(parsed.Rows) + len(parsed.Errors),
		Skipped: parsed.Skipped,
		Errors:  append([]spreadsheet.RowError{}, parsed.Errors...),
	}

	var codes []string
	seenCode := map[string]bool{}
	for _, row := range parsed.Rows {
		code := strings.ToUpper(row.Get("store_code"))
		if !seenCode[code] {
			seenCode[code] = true
			codes = append(codes, code)
		}
	}
	stores, err := s.repo.StoreIDsByCode(ctx, p.CompanyID, codes)
	if err != nil {
		return spreadsheet.Summary{}, err
	}

	var valid []importRow
	firstRow := map[string]int{}
	for _, row := range parsed.Rows {
		item, rowErr := itemFromRow(row, stores)
		if rowErr != nil {
			summary.Errors = append(summary.Errors, *rowErr)
			continue
		}
		key := item.StoreID.String() + "/" + item.SKU
		if first, dup := firstRow[key]; dup {
			summary.Errors = append(summary.Errors, spreadsheet.RowError{
				Row:     row.Number,
				Field:   "sku",
				Message: fmt.Sprintf("duplicate SKU for this store, already given on row %d", first),
			})
			continue
		}
		firstRow[key] = row.Number

		item.ID = uuid.New()
		item.CompanyID = companyID
		valid = append(valid, importRow{number: row.Number, item: item})
	}

	for _, batch := range spreadsheet.Batches(valid, spreadsheet.BatchSize) {
		if err := s.upsertBatch(ctx, batch); err != nil {
			log.Error("inventory import batch failed",
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

	run, err := spreadsheet.NewImportRun(companyID, startedBy, spreadsheet.KindInventory, filename, summary)
	if err == nil {
		err = s.recorder.Record(ctx, run)
	}
	if err != nil {
		log.Warn("record inventory import run failed", zap.Error(err))
	}

	log.Info("inventory imported",
		zap.String("filename", filename),
		zap.Int("total", summary.Total),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

func (s *service) upsertBatch(ctx context.Context, batch []importRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	items := make([]Item, len(batch))
	for i := range batch {
		items[i] = batch[i].item
	}
	if err := s.repo.WithTx(tx).UpsertItems(ctx, items); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) ExportItems(ctx context.Context, p contextutil.Principal, filter ItemFilter) ([]byte, string, error) {
	if err := s.policy.Authorize(ctx, p, policy.InventoryManage, policy.Resource{}); err != nil {
		return nil, "", err
	}

	rows, err := s.repo.ListItems(ctx, p.CompanyID, normalizeFilter(filter))
	if err != nil {
		return nil, "", err
	}

	data := make([][]string, 0, len(rows))
	for i := range rows {
		it := &rows[i]
		storeCode := ""
		if it.Store != nil {
			storeCode = it.Store.Code
		}
		serial := ""
		if it.SerialNumber != nil {
			serial = *it.SerialNumber
		}
		data = append(data, []string{storeCode, it.SKU, it.Name, strconv.Itoa(it.Quantity), it.Category, serial})
	}

	var buf bytes.Buffer
	if err := spreadsheet.WriteWorkbook(&buf, "Inventory", itemSchema.Headers(), data); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("inventory-%s.xlsx", s.now().UTC().Format("20060102"))
	return buf.Bytes(), filename, nil
}

func itemFromRow(row spreadsheet.Row, stores map[string]uuid.UUID) (Item, *spreadsheet.RowError) {
	code := strings.ToUpper(row.Get("store_code"))
	storeID, ok := stores[code]
	if !ok {
		return Item{}, &spreadsheet.RowError{Row: row.Number, Field: "store_code", Message: "unknown store code " + code}
	}

	qty, ok := parseQuantity(row.Get("quantity"))
	if !ok {
		return Item{}, &spreadsheet.RowError{Row: row.Number, Field: "quantity", Message: inventoryerrors.ErrInvalidQuantity.Message}
	}

	item := Item{
		StoreID:  storeID,
		SKU:      row.Get("sku"),
		Name:     row.Get("name"),
		Category: row.Get("category"),
		Quantity: qty,
	}
	if v := row.Get("serial_number"); v != "" {
		item.SerialNumber = &v
	}
	return item, nil
}

// parseQuantity accepts whole numbers, including the "12.0" form numeric
// cells are sometimes rendered in.
func parseQuantity(v string) (int, bool) {
	if n, err := strconv.Atoi(v); err == nil {
		return n, n >= 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func normalizeFilter(f ItemFilter) ItemFilter {
	return ItemFilter{
		StoreID:  strings.TrimSpace(f.StoreID),
		Category: strings.TrimSpace(f.Category),
	}
}

func mapStoreResponse(s *Store) StoreResponse {
	resp := StoreResponse{
		ID:        s.ID.String(),
		CompanyID: s.CompanyID.String(),
		Code:      s.Code,
		Name:      s.Name,
		Address:   s.Address,
	}
	if !s.CreatedAt.IsZero() {
		resp.CreatedAt = s.CreatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func mapItemResponse(it *Item) ItemResponse {
	resp := ItemResponse{
		ID:           it.ID.String(),
		StoreID:      it.StoreID.String(),
		SKU:          it.SKU,
		Name:         it.Name,
		Category:     it.Category,
		Quantity:     it.Quantity,
		SerialNumber: it.SerialNumber,
	}
	if it.Store != nil {
		resp.StoreCode = it.Store.Code
	}
	if !it.UpdatedAt.IsZero() {
		resp.UpdatedAt = it.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}
