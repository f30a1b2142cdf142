package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/api/handlers"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/entities"
	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/providers"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestSSEHandler_StreamDocumentUpdates(t *testing.T) {
	t.Run("should stream document events", func(t *testing.T) {
		eventBus := NewMockEventBus()
		handler := handlers.NewSSEHandler(eventBus)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		req := httptest.NewRequest(http.MethodGet, "/api/stream/documents/doc-1", nil)
		req.SetPathValue("id", "doc-1")
		req = req.WithContext(ctx)
		w := httptest.NewRecorder()

		done := make(chan struct{})
		go func() {
			handler.StreamDocumentUpdates(w, req)
			close(done)
		}()

		channel := providers.GetDocumentChannel("doc-1")
		waitFor(t, func() bool { return eventBus.SubscriberCount(channel) == 1 && handler.GetClientCount() == 1 })

		require.NoError(t, eventBus.Publish(context.Background(), channel, &entities.DocumentEvent{
			ID:               "evt-1",
			DocumentID:       "doc-1",
			EventType:        entities.DocumentEventProcessed,
			ProcessingStatus: entities.DocumentStatusCompleted,
		}))

		time.Sleep(100 * time.Millisecond)
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("handler did not exit after cancel")
		}

		result := w.Result()
		assert.Equal(t, "text/event-stream", result.Header.Get("Content-Type"))
		assert.Equal(t, "no-cache", result.Header.Get("Cache-Control"))

		body := w.Body.String()
		assert.True(t, strings.HasPrefix(body, "event: connected\n"))
		assert.Contains(t, body, "event: document_processed\n")
		assert.Contains(t, body, `"document_id":"doc-1"`)
		assert.Equal(t, 0, handler.GetClientCount())
	})

	t.Run("should send heartbeats", func(t *testing.T) {
		handler := handlers.NewSSEHandler(NewMockEventBus()).WithHeartbeat(20 * time.Millisecond)
		ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
		defer cancel()

		req := httptest.NewRequest(http.MethodGet, "/api/stream/documents/doc-2", nil)
		req.SetPathValue("id", "doc-2")
		req = req.WithContext(ctx)
		w := httptest.NewRecorder()

		handler.StreamDocumentUpdates(w, req)

		assert.Contains(t, w.Body.String(), "event: heartbeat\n")
	})

	t.Run("should return error for missing document ID", func(t *testing.T) {
		handler := handlers.NewSSEHandler(NewMockEventBus())
		w := httptest.NewRecorder()

		handler.StreamDocumentUpdates(w, httptest.NewRequest(http.MethodGet, "/api/stream/documents/", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should report unavailable bus", func(t *testing.T) {
		eventBus := NewMockEventBus()
		eventBus.subscribeErr = errors.New("redis down")
		handler := handlers.NewSSEHandler(eventBus)

		req := httptest.NewRequest(http.MethodGet, "/api/stream/documents/doc-3", nil)
		req.SetPathValue("id", "doc-3")
		w := httptest.NewRecorder()
		handler.StreamDocumentUpdates(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
