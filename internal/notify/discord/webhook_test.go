package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podcast-notifier/pkg/logger"
	"github.com/podcast-notifier/pkg/ratelimit"
)

func TestSender_Send(t *testing.T) {
	var received Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sender := NewSender(ratelimit.NewDefaultLimiter(), logger.Nop())
	msg := Message{Content: "Verplant - Folge 1", Embeds: []Embed{{Title: "Folge 1"}}}

	err := sender.Send(context.Background(), srv.URL, msg)

	require.NoError(t, err)
	assert.Equal(t, "Verplant - Folge 1", received.Content)
	require.Len(t, received.Embeds, 1)
	assert.Equal(t, "Folge 1", received.Embeds[0].Title)
}

func TestSender_Send_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid webhook token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	sender := NewSender(ratelimit.NewDefaultLimiter(), logger.Nop())

	err := sender.Send(context.Background(), srv.URL, Message{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
