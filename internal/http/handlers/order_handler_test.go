package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/tbourn/go-groupbuy-backend/internal/domain"
	"github.com/tbourn/go-groupbuy-backend/internal/services"
)

func listOrders(t *testing.T, e *env, proposalID int64) []domain.Order {
	t.Helper()
	w := doJSON(t, e.r, http.MethodGet, fmt.Sprintf("/orders/%d", proposalID), "")
	if w.Code != http.StatusOK {
		t.Fatalf("list orders: %d %s", w.Code, w.Body.String())
	}
	return decodeBody[[]domain.Order](t, w)
}

func proposalView(t *testing.T, e *env, id int64) ProposalResponse {
	t.Helper()
	return decodeBody[ProposalResponse](t, doJSON(t, e.r, http.MethodGet, fmt.Sprintf("/proposals/%d", id), ""))
}

func TestCreateOrder_AndListInInsertionOrder(t *testing.T) {
	e := newEnv(t)
	pid := createProposal(t, e, "0")
	o1 := createOrder(t, e, pid, "200")
	o2 := createOrder(t, e, pid, `"150"`)
	o3 := createOrder(t, e, pid, "-20")

	got := listOrders(t, e, pid)
	if len(got) != 3 || got[0].ID != o1 || got[1].ID != o2 || got[2].ID != o3 {
		t.Fatalf("orders: %+v", got)
	}
	if got[1].Price != 150 || got[2].Price != -20 {
		t.Fatalf("prices: %+v", got)
	}
	if v := proposalView(t, e, pid); v.CurrentTotal != 330 || v.OrderCount != 3 {
		t.Fatalf("aggregate: %+v", v)
	}
}

func TestCreateOrder_BadRequestsAndMissingProposal(t *testing.T) {
	e := newEnv(t)
	pid := createProposal(t, e, "0")

	cases := map[string]string{
		"invalid json":     `{"proposal_id":`,
		"missing proposal": `{"user_name":"bob","item":"x","price":1}`,
		"text proposal":    `{"proposal_id":"abc","user_name":"bob","item":"x","price":1}`,
		"missing user":     fmt.Sprintf(`{"proposal_id":%d,"item":"x","price":1}`, pid),
		"missing item":     fmt.Sprintf(`{"proposal_id":%d,"user_name":"bob","price":1}`, pid),
		"missing price":    fmt.Sprintf(`{"proposal_id":%d,"user_name":"bob","item":"x"}`, pid),
		"text price":       fmt.Sprintf(`{"proposal_id":%d,"user_name":"bob","item":"x","price":"cheap"}`, pid),
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			expectError(t, doJSON(t, e.r, http.MethodPost, "/orders", body), http.StatusBadRequest, ErrCodeBadRequest)
		})
	}

	body := `{"proposal_id":999,"user_name":"bob","item":"x","price":1}`
	expectError(t, doJSON(t, e.r, http.MethodPost, "/orders", body), http.StatusNotFound, ErrCodeNotFound)
}

func TestCreateOrder_ServiceError(t *testing.T) {
	r := newRouter(New(stubProposals{}, stubOrders{err: errBoom}, stubSweeper{}, nil))
	body := `{"proposal_id":1,"user_name":"bob","item":"x","price":1}`
	expectError(t, doJSON(t, r, http.MethodPost, "/orders", body), http.StatusInternalServerError, ErrCodeCreateFailed)

	r = newRouter(New(stubProposals{}, stubOrders{err: services.ErrProposalNotFound}, stubSweeper{}, nil))
	expectError(t, doJSON(t, r, http.MethodPost, "/orders", body), http.StatusNotFound, ErrCodeNotFound)
}

func TestListOrders_ETagAndNotModified(t *testing.T) {
	e := newEnv(t)
	pid := createProposal(t, e, "0")
	createOrder(t, e, pid, "100")

	path := fmt.Sprintf("/orders/%d", pid)
	w := doJSON(t, e.r, http.MethodGet, path, "")
	etag := w.Header().Get("ETag")
	if w.Code != http.StatusOK || etag == "" {
		t.Fatalf("first list: %d etag=%q", w.Code, etag)
	}

	w = doJSON(t, e.r, http.MethodGet, path, "", "If-None-Match", etag)
	if w.Code != http.StatusNotModified || w.Body.Len() != 0 {
		t.Fatalf("revalidate: %d %q", w.Code, w.Body.String())
	}

	createOrder(t, e, pid, "5")
	w = doJSON(t, e.r, http.MethodGet, path, "", "If-None-Match", etag)
	if w.Code != http.StatusOK || w.Header().Get("ETag") == etag {
		t.Fatalf("etag should change after a new order: %d %q", w.Code, w.Header().Get("ETag"))
	}
}

func TestListOrders_UnknownProposalIsEmpty(t *testing.T) {
	e := newEnv(t)
	w := doJSON(t, e.r, http.MethodGet, "/orders/12345", "")
	if w.Code != http.StatusOK || w.Body.String() != "[]" {
		t.Fatalf("unknown proposal: %d %q", w.Code, w.Body.String())
	}
	expectError(t, doJSON(t, e.r, http.MethodGet, "/orders/-1", ""), http.StatusBadRequest, ErrCodeBadRequest)
}

func TestListOrders_StoreErrors(t *testing.T) {
	r := newRouter(New(stubProposals{}, stubOrders{err: errBoom}, stubSweeper{}, nil))
	expectError(t, doJSON(t, r, http.MethodGet, "/orders/1", ""), http.StatusInternalServerError, ErrCodeListFailed)

	// A failing stats query only costs the ETag.
	r = newRouter(New(stubProposals{}, stubOrders{statsErr: errBoom}, stubSweeper{}, nil))
	w := doJSON(t, r, http.MethodGet, "/orders/1", "")
	if w.Code != http.StatusOK || w.Header().Get("ETag") != "" || w.Body.String() != "[]" {
		t.Fatalf("stats failure: %d etag=%q body=%q", w.Code, w.Header().Get("ETag"), w.Body.String())
	}
}

func TestUpdateOrder_ReplacesFields(t *testing.T) {
	e := newEnv(t)
	pid := createProposal(t, e, "500")
	o1 := createOrder(t, e, pid, "200")
	createOrder(t, e, pid, "150")

	body := `{"user_name":"carol","item":"rice","price":300,"remarks":"no egg"}`
	w := doJSON(t, e.r, http.MethodPut, fmt.Sprintf("/orders/%d", o1), body)
	if ack := decodeBody[AckResponse](t, w); w.Code != http.StatusOK || !ack.Found {
		t.Fatalf("update: %d %+v", w.Code, ack)
	}

	got := listOrders(t, e, pid)[0]
	if got.UserName != "carol" || got.Item != "rice" || got.Price != 300 || got.Remarks != "no egg" {
		t.Fatalf("updated order: %+v", got)
	}
	if v := proposalView(t, e, pid); v.CurrentTotal != 450 {
		t.Fatalf("aggregate after update: %+v", v)
	}

	// Omitted remarks reset to "".
	doJSON(t, e.r, http.MethodPut, fmt.Sprintf("/orders/%d", o1), `{"user_name":"carol","item":"rice","price":300}`)
	if got := listOrders(t, e, pid)[0]; got.Remarks != "" {
		t.Fatalf("remarks not cleared: %q", got.Remarks)
	}
}

func TestUpdateOrder_MissingAndBadRequests(t *testing.T) {
	e := newEnv(t)
	w := doJSON(t, e.r, http.MethodPut, "/orders/999", `{"user_name":"a","item":"b","price":1}`)
	if ack := decodeBody[AckResponse](t, w); w.Code != http.StatusOK || ack.Found {
		t.Fatalf("missing update: %d %+v", w.Code, ack)
	}

	for name, body := range map[string]string{
		"missing item": `{"user_name":"a","price":1}`,
		"bad price":    `{"user_name":"a","item":"b","price":[1]}`,
		"no body":      ``,
	} {
		t.Run(name, func(t *testing.T) {
			expectError(t, doJSON(t, e.r, http.MethodPut, "/orders/1", body), http.StatusBadRequest, ErrCodeBadRequest)
		})
	}
	expectError(t, doJSON(t, e.r, http.MethodPut, "/orders/zero", `{}`), http.StatusBadRequest, ErrCodeBadRequest)

	r := newRouter(New(stubProposals{}, stubOrders{err: errBoom}, stubSweeper{}, nil))
	expectError(t, doJSON(t, r, http.MethodPut, "/orders/1", `{"user_name":"a","item":"b","price":1}`),
		http.StatusInternalServerError, ErrCodeUpdateFailed)
}

func TestDeleteOrder_RemovesAndAcknowledgesMissing(t *testing.T) {
	e := newEnv(t)
	pid := createProposal(t, e, "0")
	o1 := createOrder(t, e, pid, "200")
	o2 := createOrder(t, e, pid, "150")

	path := fmt.Sprintf("/orders/%d", o1)
	if ack := decodeBody[AckResponse](t, doJSON(t, e.r, http.MethodDelete, path, "")); !ack.Found {
		t.Fatalf("first delete not found")
	}
	if ack := decodeBody[AckResponse](t, doJSON(t, e.r, http.MethodDelete, path, "")); ack.Found {
		t.Fatalf("second delete reported found")
	}

	got := listOrders(t, e, pid)
	if len(got) != 1 || got[0].ID != o2 {
		t.Fatalf("remaining orders: %+v", got)
	}
	if v := proposalView(t, e, pid); v.CurrentTotal != 150 || v.OrderCount != 1 {
		t.Fatalf("aggregate after delete: %+v", v)
	}

	r := newRouter(New(stubProposals{}, stubOrders{err: errBoom}, stubSweeper{}, nil))
	expectError(t, doJSON(t, r, http.MethodDelete, "/orders/1", ""), http.StatusInternalServerError, ErrCodeDeleteFailed)
}

func TestCreateOrder_FailedCreateReleasesKey(t *testing.T) {
	e := newEnv(t)
	const key = "order-retry"

	missing := `{"proposal_id":99,"user_name":"bob","item":"noodles","price":5}`
	expectError(t, doJSON(t, e.r, http.MethodPost, "/orders", missing, "Idempotency-Key", key), http.StatusNotFound, ErrCodeNotFound)

	pid := createProposal(t, e, "0")
	body := fmt.Sprintf(`{"proposal_id":%d,"user_name":"bob","item":"noodles","price":5}`, pid)
	first := doJSON(t, e.r, http.MethodPost, "/orders", body, "Idempotency-Key", key)
	if first.Code != http.StatusCreated || first.Header().Get("Idempotency-Replayed") != "" {
		t.Fatalf("retry after failure: %d %v %s", first.Code, first.Header(), first.Body.String())
	}
	second := doJSON(t, e.r, http.MethodPost, "/orders", body, "Idempotency-Key", key)
	if second.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatalf("second create not replayed: %d", second.Code)
	}
	if decodeBody[CreatedResponse](t, first).ID != decodeBody[CreatedResponse](t, second).ID {
		t.Fatalf("replay returned a different id")
	}
	if got := listOrders(t, e, pid); len(got) != 1 {
		t.Fatalf("want 1 order, got %d", len(got))
	}
}
