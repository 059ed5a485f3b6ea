package service

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"testing"
	"time"

	"go.uber.org/zap"

	"ueesync/internal/client/ueeshop"
	"ueesync/internal/models"
)

var errStorage = errors.New("storage down")

type fetchCall struct {
	fromSec int64
	toSec   int64
	page    int
}

type fakeFetcher struct {
	pages      [][]ueeshop.RawOrder
	failAtPage int
	calls      []fetchCall
}

func (f *fakeFetcher) FetchOrdersPage(ctx context.Context, fromSec, toSec int64, status string, count, page int) (ueeshop.OrdersPage, error) {
	f.calls = append(f.calls, fetchCall{fromSec: fromSec, toSec: toSec, page: page})
	if f.failAtPage > 0 && page >= f.failAtPage {
		return ueeshop.OrdersPage{}, errors.New("gateway down")
	}
	total := len(f.pages)
	if total == 0 {
		total = 1
	}
	if page > len(f.pages) {
		return ueeshop.OrdersPage{TotalPages: total}, nil
	}
	return ueeshop.OrdersPage{Records: f.pages[page-1], TotalPages: total}, nil
}

func rawOrder(oid string, updatedSec int64, pids ...string) ueeshop.RawOrder {
	order := ueeshop.Fields{
		"UpdateTime": jstr(strconv.FormatInt(updatedSec, 10)),
		"OrderTime":  jstr(strconv.FormatInt(updatedSec-100, 10)),
	}
	if oid != "" {
		order["OId"] = jstr(oid)
	}
	items := make([]ueeshop.Fields, 0, len(pids))
	for _, pid := range pids {
		items = append(items, ueeshop.Fields{
			"ProductId": jstr(pid),
			"Qty":       jstr("1"),
		})
	}
	return ueeshop.RawOrder{Order: order, Items: items}
}

func newOrderSync(repo *stubRepo, fetcher OrderFetcher) *OrderSyncService {
	logger := zap.NewNop()
	return &OrderSyncService{
		Store:    repo,
		Client:   fetcher,
		Resolver: &AttributionResolver{Store: repo, Logger: logger},
		Recorder: &SyncLogRecorder{Store: repo, Logger: logger},
		Logger:   logger,
		Now:      func() time.Time { return time.Unix(2000, 0) },
	}
}

func TestOrderSync_FirstRunClampsWindowToZero(t *testing.T) {
	repo := newStubRepo()
	fetcher := &fakeFetcher{pages: [][]ueeshop.RawOrder{{rawOrder("1001", 1500, "P1")}}}
	svc := newOrderSync(repo, fetcher)

	result, err := svc.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.FromSec != 0 || result.ToSec != 2000 {
		t.Fatalf("window=[%d,%d] want [0,2000]", result.FromSec, result.ToSec)
	}
	if result.Applied != 1 || result.Fetched != 1 {
		t.Fatalf("result=%+v", result)
	}
	state := repo.states[JobOrders]
	if state.LastSyncSec != 2000 || state.LastError != "" {
		t.Fatalf("state=%+v", state)
	}
}

func TestOrderSync_WindowOverlapsCursor(t *testing.T) {
	repo := newStubRepo()
	repo.states[JobOrders] = models.SyncState{Job: JobOrders, LastSyncSec: 1700}
	fetcher := &fakeFetcher{}
	svc := newOrderSync(repo, fetcher)

	if _, err := svc.Run(context.Background(), RunOptions{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(fetcher.calls) != 1 {
		t.Fatalf("calls=%d", len(fetcher.calls))
	}
	if got := fetcher.calls[0]; got.fromSec != 1400 || got.toSec != 2000 {
		t.Fatalf("window=[%d,%d] want cursor minus overlap", got.fromSec, got.toSec)
	}
}

func TestOrderSync_ForceFromOverridesCursor(t *testing.T) {
	repo := newStubRepo()
	repo.states[JobOrders] = models.SyncState{Job: JobOrders, LastSyncSec: 1700}
	fetcher := &fakeFetcher{}
	svc := newOrderSync(repo, fetcher)

	if _, err := svc.Run(context.Background(), RunOptions{ForceFromSec: 500}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := fetcher.calls[0]; got.fromSec != 200 {
		t.Fatalf("fromSec=%d want forced base minus overlap", got.fromSec)
	}
}

func TestOrderSync_AppliesAttribution(t *testing.T) {
	repo := newStubRepo()
	repo.bindings = bindings()
	fetcher := &fakeFetcher{pages: [][]ueeshop.RawOrder{{
		rawOrder("1001", 1500, "P1", "P2"),
		rawOrder("1002", 1500, "P9"),
	}}}
	svc := newOrderSync(repo, fetcher)

	if _, err := svc.Run(context.Background(), RunOptions{}); err != nil {
		t.Fatalf("run: %v", err)
	}

	attributed := repo.orders["1001"]
	if !reflect.DeepEqual([]string(attributed.AnchorIDList), []string{"A1", "A2"}) {
		t.Fatalf("anchors=%v", attributed.AnchorIDList)
	}
	if !attributed.VisibleToAnchors || attributed.ChannelType != ChannelAnchor {
		t.Fatalf("order=%+v", attributed)
	}

	organic := repo.orders["1002"]
	if organic.VisibleToAnchors || organic.ChannelType != ChannelOrganic || len(organic.AnchorIDList) != 0 {
		t.Fatalf("order=%+v want organic", organic)
	}
}

func TestOrderSync_SecondRunIsIdempotent(t *testing.T) {
	repo := newStubRepo()
	fetcher := &fakeFetcher{pages: [][]ueeshop.RawOrder{{rawOrder("1001", 1500, "P1")}}}
	svc := newOrderSync(repo, fetcher)

	if _, err := svc.Run(context.Background(), RunOptions{}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	result, err := svc.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if result.Applied != 0 || result.Stale != 1 {
		t.Fatalf("result=%+v want unchanged record counted stale", result)
	}
}

func TestOrderSync_OlderUpdateDoesNotRegress(t *testing.T) {
	repo := newStubRepo()
	repo.orders["1001"] = models.SlimOrder{OID: "1001", SourceUpdatedAt: 1900, AdminNote: "newer"}
	fetcher := &fakeFetcher{pages: [][]ueeshop.RawOrder{{rawOrder("1001", 1800, "P1")}}}
	svc := newOrderSync(repo, fetcher)

	result, err := svc.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Stale != 1 || result.Applied != 0 {
		t.Fatalf("result=%+v", result)
	}
	if got := repo.orders["1001"]; got.SourceUpdatedAt != 1900 || got.AdminNote != "newer" {
		t.Fatalf("order regressed: %+v", got)
	}
}

func TestOrderSync_FailureKeepsCursor(t *testing.T) {
	repo := newStubRepo()
	repo.states[JobOrders] = models.SyncState{Job: JobOrders, LastSyncSec: 1700, LastSuccessAt: 1700}
	fetcher := &fakeFetcher{
		pages: [][]ueeshop.RawOrder{
			{rawOrder("1001", 1500, "P1")},
			{rawOrder("1002", 1500, "P2")},
			{rawOrder("1003", 1500, "P3")},
		},
		failAtPage: 2,
	}
	svc := newOrderSync(repo, fetcher)

	if _, err := svc.Run(context.Background(), RunOptions{}); err == nil {
		t.Fatalf("expected error from page 2")
	}
	state := repo.states[JobOrders]
	if state.LastSyncSec != 1700 {
		t.Fatalf("cursor moved to %d on a failed pass", state.LastSyncSec)
	}
	if state.LastError == "" {
		t.Fatalf("last error not recorded")
	}
	if _, ok := repo.orders["1001"]; !ok {
		t.Fatalf("page 1 records must still be applied")
	}
}

func TestOrderSync_StorageFailureAborts(t *testing.T) {
	repo := newStubRepo()
	repo.failUpsertAt = 1
	fetcher := &fakeFetcher{pages: [][]ueeshop.RawOrder{{rawOrder("1001", 1500, "P1")}}}
	svc := newOrderSync(repo, fetcher)

	if _, err := svc.Run(context.Background(), RunOptions{}); !errors.Is(err, errStorage) {
		t.Fatalf("err=%v want storage error", err)
	}
	if state := repo.states[JobOrders]; state.LastSyncSec != 0 || state.LastError == "" {
		t.Fatalf("state=%+v", state)
	}
}

func TestOrderSync_SkipsRecordMissingOID(t *testing.T) {
	repo := newStubRepo()
	fetcher := &fakeFetcher{pages: [][]ueeshop.RawOrder{{
		rawOrder("", 1500, "P1"),
		rawOrder("1002", 1500, "P2"),
	}}}
	svc := newOrderSync(repo, fetcher)

	result, err := svc.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Skipped != 1 || result.Applied != 1 {
		t.Fatalf("result=%+v", result)
	}
	if state := repo.states[JobOrders]; state.LastSyncSec != 2000 {
		t.Fatalf("skip must not block the cursor, state=%+v", state)
	}
}

func TestOrderSync_DrainsAllPages(t *testing.T) {
	repo := newStubRepo()
	fetcher := &fakeFetcher{pages: [][]ueeshop.RawOrder{
		{rawOrder("1001", 1500)},
		{rawOrder("1002", 1500)},
		{rawOrder("1003", 1500)},
	}}
	svc := newOrderSync(repo, fetcher)

	result, err := svc.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Pages != 3 || result.Fetched != 3 {
		t.Fatalf("result=%+v", result)
	}
	for i, call := range fetcher.calls {
		if call.page != i+1 {
			t.Fatalf("call %d hit page %d, want strict order", i, call.page)
		}
	}
}
