package inventory_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"cerven-ot/internal/config"
	"cerven-ot/internal/inventory"
	inventoryerrors "cerven-ot/internal/inventory/errors"
	"cerven-ot/internal/policy"
	"cerven-ot/internal/shared/contextutil"
	"cerven-ot/internal/spreadsheet"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	stores      []inventory.Store
	items       map[string]inventory.Item
	batches     [][]inventory.Item
	listCalls   int
	failUpsert  bool
	createStore error
}

func (m *memRepo) WithTx(tx *sql.Tx) inventory.Repository { return m }

func (m *memRepo) CreateStore(ctx context.Context, s *inventory.Store) error {
	if m.createStore != nil {
		return m.createStore
	}
	m.stores = append(m.stores, *s)
	return nil
}

func (m *memRepo) ListStores(ctx context.Context, companyID string) ([]inventory.Store, error) {
	m.listCalls++
	var out []inventory.Store
	for _, s := range m.stores {
		if s.CompanyID.String() == companyID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memRepo) StoreExists(ctx context.Context, companyID, storeID string) (bool, error) {
	for _, s := range m.stores {
		if s.CompanyID.String() == companyID && s.ID.String() == storeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) StoreIDsByCode(ctx context.Context, companyID string, codes []string) (map[string]uuid.UUID, error) {
	out := map[string]uuid.UUID{}
	for _, s := range m.stores {
		for _, c := range codes {
			if s.CompanyID.String() == companyID && s.Code == c {
				out[c] = s.ID
			}
		}
	}
	return out, nil
}

func (m *memRepo) ListItems(ctx context.Context, companyID string, filter inventory.ItemFilter) ([]inventory.Item, error) {
	var out []inventory.Item
	for _, it := range m.items {
		if it.CompanyID.String() != companyID {
			continue
		}
		if filter.StoreID != "" && it.StoreID.String() != filter.StoreID {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (m *memRepo) UpsertItems(ctx context.Context, items []inventory.Item) error {
	if m.failUpsert {
		return errors.New("upsert failed")
	}
	m.batches = append(m.batches, items)
	for _, it := range items {
		key := it.StoreID.String() + "/" + it.SKU
		if cur, ok := m.items[key]; ok {
			it.ID = cur.ID
		}
		m.items[key] = it
	}
	return nil
}

type fakeRecorder struct {
	runs []*spreadsheet.ImportRun
}

func (f *fakeRecorder) Record(ctx context.Context, run *spreadsheet.ImportRun) error {
	f.runs = append(f.runs, run)
	return nil
}

type fixture struct {
	sql      sqlmock.Sqlmock
	redis    redismock.ClientMock
	repo     *memRepo
	recorder *fakeRecorder
	service  inventory.Service
	company  uuid.UUID
	manager  contextutil.Principal
	staff    contextutil.Principal
	central  inventory.Store
}

func setup(t *testing.T, withRedis bool) *fixture {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	company := uuid.New()
	central := inventory.Store{ID: uuid.New(), CompanyID: company, Code: "ST01", Name: "Central"}
	f := &fixture{
		sql:      mock,
		repo:     &memRepo{stores: []inventory.Store{central}, items: map[string]inventory.Item{}},
		recorder: &fakeRecorder{},
		company:  company,
		central:  central,
		manager:  contextutil.Principal{EmployeeID: uuid.NewString(), CompanyID: company.String(), Role: "STORE_MANAGER"},
		staff:    contextutil.Principal{EmployeeID: uuid.NewString(), CompanyID: company.String(), Role: "EMPLOYEE"},
	}

	var rdb *redis.Client
	if withRedis {
		rdb, f.redis = redismock.NewClientMock()
	}
	ev := policy.NewFromConfig(config.Approval{InventoryManageRoles: []string{"ADMIN", "STORE_MANAGER"}}, nil)
	f.service = inventory.NewService(db, f.repo, rdb, f.recorder, ev)
	return f
}

func optionsJSON(t *testing.T, opts []inventory.StoreOption) string {
	t.Helper()
	b, err := json.Marshal(opts)
	require.NoError(t, err)
	return string(b)
}

func TestService_StoreOptions(t *testing.T) {
	t.Run("miss loads and caches", func(t *testing.T) {
		f := setup(t, true)
		key := inventory.StoreOptionsKey(f.company.String())
		want := []inventory.StoreOption{{ID: f.central.ID.String(), Code: "ST01", Name: "Central"}}

		f.redis.ExpectGet(key).RedisNil()
		f.redis.ExpectSet(key, optionsJSON(t, want), 30*time.Minute).SetVal("OK")

		got, err := f.service.StoreOptions(context.Background(), f.staff)

		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, 1, f.repo.listCalls)
		assert.NoError(t, f.redis.ExpectationsWereMet())
	})

	t.Run("hit skips the database", func(t *testing.T) {
		f := setup(t, true)
		key := inventory.StoreOptionsKey(f.company.String())

		f.redis.ExpectGet(key).SetVal(`[{"id":"s-1","code":"ST09","name":"Cached"}]`)

		got, err := f.service.StoreOptions(context.Background(), f.staff)

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "ST09", got[0].Code)
		assert.Zero(t, f.repo.listCalls)
	})

	t.Run("redis down falls back to the database", func(t *testing.T) {
		f := setup(t, true)
		key := inventory.StoreOptionsKey(f.company.String())

		f.redis.ExpectGet(key).SetErr(errors.New("connection refused"))
		f.redis.ExpectSet(key, optionsJSON(t, []inventory.StoreOption{{ID: f.central.ID.String(), Code: "ST01", Name: "Central"}}), 30*time.Minute).
			SetErr(errors.New("connection refused"))

		got, err := f.service.StoreOptions(context.Background(), f.staff)

		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("works without redis", func(t *testing.T) {
		f := setup(t, false)

		got, err := f.service.StoreOptions(context.Background(), f.staff)

		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}

func TestService_CreateStore(t *testing.T) {
	t.Run("creates and invalidates options", func(t *testing.T) {
		f := setup(t, true)
		key := inventory.StoreOptionsKey(f.company.String())

		f.sql.ExpectBegin()
		f.sql.ExpectCommit()
		f.redis.ExpectDel(key).SetVal(1)

		resp, err := f.service.CreateStore(context.Background(), f.manager, inventory.CreateStoreRequest{
			Code: " st-02 ", Name: "Harbour", Address: "Pier 4",
		})

		require.NoError(t, err)
		assert.Equal(t, "ST-02", resp.Code)
		assert.Len(t, f.repo.stores, 2)
		assert.NoError(t, f.sql.ExpectationsWereMet())
		assert.NoError(t, f.redis.ExpectationsWereMet())
	})

	t.Run("duplicate code keeps the cache", func(t *testing.T) {
		f := setup(t, true)
		f.repo.createStore = inventoryerrors.ErrStoreCodeTaken

		f.sql.ExpectBegin()
		f.sql.ExpectRollback()

		_, err := f.service.CreateStore(context.Background(), f.manager, inventory.CreateStoreRequest{Code: "ST01", Name: "Again"})

		assert.ErrorIs(t, err, inventoryerrors.ErrStoreCodeTaken)
		assert.NoError(t, f.redis.ExpectationsWereMet())
	})

	t.Run("invalid code", func(t *testing.T) {
		f := setup(t, false)

		_, err := f.service.CreateStore(context.Background(), f.manager, inventory.CreateStoreRequest{Code: "ST 01", Name: "x"})

		assert.ErrorIs(t, err, inventoryerrors.ErrInvalidStoreCode)
	})

	t.Run("staff denied", func(t *testing.T) {
		f := setup(t, false)

		_, err := f.service.CreateStore(context.Background(), f.staff, inventory.CreateStoreRequest{Code: "ST05", Name: "x"})

		assert.ErrorIs(t, err, policy.ErrDenied)
	})
}

var itemHeaders = []string{"Store Code*", "SKU*", "Item Name*", "Quantity*", "Category", "Serial Number"}

func itemWorkbook(t *testing.T, rows [][]string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, spreadsheet.WriteWorkbook(&buf, "Inventory", itemHeaders, rows))
	return &buf
}

func TestService_ImportItems(t *testing.T) {
	t.Run("validates and upserts", func(t *testing.T) {
		f := setup(t, false)
		existing := inventory.Item{ID: uuid.New(), CompanyID: f.company, StoreID: f.central.ID, SKU: "SKU-1", Name: "Old", Quantity: 1}
		f.repo.items[f.central.ID.String()+"/SKU-1"] = existing

		file := itemWorkbook(t, [][]string{
			{"st01", "SKU-1", "Router", "4", "network", "RT-99"},
			{"ST01", "SKU-2", "Switch", "2.0", "network", ""},
			{"ST01", "SKU-3", "Cable", "-1", "", ""},
			{"ST01", "SKU-4", "Tape", "1.5", "", ""},
			{"ST77", "SKU-5", "Lamp", "1", "", ""},
			{"ST01", "SKU-1", "Router again", "9", "", ""},
			{"", "", "", "", "", ""},
			{"ST01", "", "No sku", "1", "", ""},
		})

		f.sql.ExpectBegin()
		f.sql.ExpectCommit()
		summary, err := f.service.ImportItems(context.Background(), f.manager, "inventory.xlsx", file)

		require.NoError(t, err)
		assert.Equal(t, 7, summary.Total)
		assert.Equal(t, 2, summary.Succeeded)
		assert.Equal(t, 5, summary.Failed)
		assert.Equal(t, 1, summary.Skipped)

		fields := make([]string, 0, len(summary.Errors))
		for _, e := range summary.Errors {
			fields = append(fields, e.Field)
		}
		assert.Equal(t, []string{"quantity", "quantity", "store_code", "sku", "sku"}, fields)
		assert.Contains(t, summary.Errors[3].Message, "row 2")

		router := f.repo.items[f.central.ID.String()+"/SKU-1"]
		assert.Equal(t, existing.ID, router.ID)
		assert.Equal(t, "Router", router.Name)
		assert.Equal(t, 4, router.Quantity)
		require.NotNil(t, router.SerialNumber)
		assert.Equal(t, "RT-99", *router.SerialNumber)
		assert.Equal(t, 2, f.repo.items[f.central.ID.String()+"/SKU-2"].Quantity)

		require.Len(t, f.recorder.runs, 1)
		assert.Equal(t, spreadsheet.KindInventory, f.recorder.runs[0].Kind)
		assert.NoError(t, f.sql.ExpectationsWereMet())
	})

	t.Run("failed batch", func(t *testing.T) {
		f := setup(t, false)
		f.repo.failUpsert = true
		file := itemWorkbook(t, [][]string{{"ST01", "SKU-1", "Router", "4", "", ""}})

		f.sql.ExpectBegin()
		f.sql.ExpectRollback()
		summary, err := f.service.ImportItems(context.Background(), f.manager, "inventory.xlsx", file)

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Failed)
		assert.Equal(t, "row could not be saved", summary.Errors[0].Message)
	})

	t.Run("unreadable file", func(t *testing.T) {
		f := setup(t, false)

		_, err := f.service.ImportItems(context.Background(), f.manager, "inventory.xlsx", bytes.NewReader([]byte("not a workbook")))

		assert.ErrorIs(t, err, spreadsheet.ErrUnreadableFile)
	})

	t.Run("staff denied", func(t *testing.T) {
		f := setup(t, false)

		_, err := f.service.ImportItems(context.Background(), f.staff, "inventory.xlsx", itemWorkbook(t, nil))

		assert.ErrorIs(t, err, policy.ErrDenied)
	})
}

func TestService_ExportItems(t *testing.T) {
	f := setup(t, false)
	serial := "RT-99"
	store := f.central
	f.repo.items["a"] = inventory.Item{
		ID: uuid.New(), CompanyID: f.company, StoreID: f.central.ID, SKU: "SKU-1",
		Name: "Router", Category: "network", Quantity: 4, SerialNumber: &serial, Store: &store,
	}

	data, filename, err := f.service.ExportItems(context.Background(), f.manager, inventory.ItemFilter{})

	require.NoError(t, err)
	rows, err := spreadsheet.ReadRows(bytes.NewReader(data), filename)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Store Code", "SKU", "Item Name", "Quantity", "Category", "Serial Number"}, rows[0])
	assert.Equal(t, []string{"ST01", "SKU-1", "Router", "4", "network", "RT-99"}, rows[1])

	_, _, err = f.service.ExportItems(context.Background(), f.staff, inventory.ItemFilter{})
	assert.ErrorIs(t, err, policy.ErrDenied)
}
