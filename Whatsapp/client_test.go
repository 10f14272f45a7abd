package Whatsapp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, devices string, sent *[]sendRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/app/devices":
			io.WriteString(w, devices)
		case "/send/message":
			var req sendRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			if req.Phone == "0000" {
				http.Error(w, `{"code":"INVALID_JID"}`, http.StatusBadRequest)
				return
			}
			*sent = append(*sent, req)
			io.WriteString(w, `{"code":"SUCCESS"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNotifySendsToEveryPhone(t *testing.T) {
	var sent []sendRequest
	server := newService(t, `{"code":"SUCCESS","results":[{"name":"office","device":"91900@s.whatsapp.net"}]}`, &sent)

	client := NewClient(server.URL, []string{"919000000001", "919000000002"})
	require.NoError(t, client.Notify(context.Background(), "Vendor ledger integrity warning", "1 orphaned entry"))

	require.Len(t, sent, 2)
	assert.Equal(t, "919000000002", sent[1].Phone)
	assert.Equal(t, "*Vendor ledger integrity warning*\n1 orphaned entry", sent[0].Message)
}

func TestNotifyKeepsGoingAfterFailedPhone(t *testing.T) {
	var sent []sendRequest
	server := newService(t, `{"results":[{"name":"office"}]}`, &sent)

	err := NewClient(server.URL, []string{"0000", "919000000001"}).Notify(context.Background(), "s", "t")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0000")
	assert.Len(t, sent, 1)
}

func TestNotifyNeedsPairedDevice(t *testing.T) {
	var sent []sendRequest
	server := newService(t, `{"code":"SUCCESS","results":[]}`, &sent)

	client := NewClient(server.URL, []string{"919000000001"})
	ok, err := client.LoggedIn(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, client.Notify(context.Background(), "s", "t"), ErrNotLoggedIn)
	assert.Empty(t, sent)

	assert.Error(t, NewClient(server.URL, nil).Notify(context.Background(), "s", "t"))
}
