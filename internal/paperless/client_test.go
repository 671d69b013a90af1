package paperless

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markis/budget-importer/internal/logging"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "secret-token", logging.NewWithWriter(io.Discard), opts...)
}

func documentBody(id int, fields string) string {
	return fmt.Sprintf(`{
		"id": %d,
		"title": "Company Name",
		"created_date": "2024-01-01",
		"custom_fields": [%s]
	}`, id, fields)
}

func TestFetchReceipts_ParsesCustomFields(t *testing.T) {
	body := `{"count": 1, "next": null, "results": [` +
		documentBody(18, `{"value": "USD16.75", "field": 1}, {"value": "Groceries", "field": 3}`) +
		`]}`
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	})

	receipts, err := client.FetchReceipts(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, receipts, 1)

	r := receipts[0]
	assert.Equal(t, int64(18), r.ID)
	assert.Equal(t, "Company Name", r.Title)
	assert.Equal(t, "2024-01-01", r.Date.Format("2006-01-02"))
	require.True(t, r.Total.Valid)
	assert.Equal(t, "-16.75", r.Total.Decimal.String())
	assert.Equal(t, "Groceries", r.Category)
}

func TestFetchReceipts_MissingTotalIsNull(t *testing.T) {
	body := `{"count": 1, "next": null, "results": [` +
		documentBody(7, `{"value": "Dining", "field": 3}`) + `]}`
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	})

	receipts, err := client.FetchReceipts(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.False(t, receipts[0].Total.Valid)
}

func TestFetchReceipts_ConfigurableFieldIDs(t *testing.T) {
	body := `{"count": 1, "next": null, "results": [` +
		documentBody(7, `{"value": "USD5.00", "field": 11}, {"value": "Fuel", "field": 12}`) + `]}`
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}, WithFieldIDs(11, 12))

	receipts, err := client.FetchReceipts(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	require.True(t, receipts[0].Total.Valid)
	assert.Equal(t, "-5", receipts[0].Total.Decimal.String())
	assert.Equal(t, "Fuel", receipts[0].Category)
}

func TestFetchReceipts_FollowsPagination(t *testing.T) {
	var srv *httptest.Server
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Token secret-token", r.Header.Get("Authorization"))

		if r.URL.Query().Get("page") == "2" {
			_, _ = fmt.Fprintf(w, `{"count": 2, "next": null, "results": [%s]}`,
				documentBody(2, `{"value": "USD2.00", "field": 1}`))
			return
		}

		assert.Equal(t, "receipt", r.URL.Query().Get("document_type__name__iexact"))
		_, _ = fmt.Fprintf(w, `{"count": 2, "next": "%s/api/documents/?page=2", "results": [%s]}`,
			srv.URL, documentBody(1, `{"value": "USD1.00", "field": 1}`))
	}
	srv = httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL, "secret-token", logging.NewWithWriter(io.Discard))

	receipts, err := client.FetchReceipts(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, receipts, 2)
	assert.Equal(t, int64(1), receipts[0].ID)
	assert.Equal(t, int64(2), receipts[1].ID)
}

func TestFetchReceipts_DocumentURL(t *testing.T) {
	body := `{"count": 1, "next": null, "results": [` +
		documentBody(18, `{"value": "USD16.75", "field": 1}`) + `]}`
	var baseURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	baseURL = srv.URL
	client := NewClient(baseURL+"/", "tok", logging.NewWithWriter(io.Discard))

	receipts, err := client.FetchReceipts(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.Equal(t, baseURL+"/documents/18/", receipts[0].URL)
}

func TestFetchReceipts_MissingDateFails(t *testing.T) {
	body := `{"count": 1, "next": null, "results": [
		{"id": 9, "title": "Broken", "created_date": "", "custom_fields": []}
	]}`
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	})

	_, err := client.FetchReceipts(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "created_date")
}

func TestFetchReceipts_NonOKStatusFails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.FetchReceipts(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestFetchReceipts_MalformedTotalFails(t *testing.T) {
	body := `{"count": 1, "next": null, "results": [` +
		documentBody(3, `{"value": "USDabc", "field": 1}`) + `]}`
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	})

	_, err := client.FetchReceipts(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing total")
}
