package transcode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/folioworks/media-ingest/internal/config"
	"github.com/folioworks/media-ingest/internal/domain/media"
)

func newClientForTest(t *testing.T, baseURL string) *Client {
	t.Helper()
	c := NewClient(&config.Config{
		TranscodeBaseURL: baseURL,
		TranscodeToken:   "test-token",
		TranscodeTimeout: 5 * time.Second,
		TransferTimeout:  5 * time.Second,
	}, zerolog.Nop())
	if c == nil {
		t.Fatal("expected a configured client")
	}
	return c
}

func TestNewClientUnconfigured(t *testing.T) {
	c := NewClient(&config.Config{}, zerolog.Nop())
	if c != nil {
		t.Fatal("expected nil client without a base url")
	}
	// A nil client fails loudly instead of panicking.
	if _, err := c.CreateUploadSession(context.Background(), "*"); err == nil {
		t.Fatal("expected error from nil client")
	}
	if _, err := c.GetJobStatus(context.Background(), "abc"); err == nil {
		t.Fatal("expected error from nil client")
	}
}

func TestCreateUploadSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/uploads" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("missing bearer token, got %q", got)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if body["cors_origin"] != "https://cms.folioworks.dev" {
			t.Errorf("unexpected cors origin %q", body["cors_origin"])
		}
		json.NewEncoder(w).Encode(map[string]string{
			"job_id":        "job-42",
			"upload_target": "https://upload.example.com/job-42",
		})
	}))
	defer srv.Close()

	session, err := newClientForTest(t, srv.URL).CreateUploadSession(context.Background(), "https://cms.folioworks.dev")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.JobID != "job-42" || session.UploadTarget != "https://upload.example.com/job-42" {
		t.Fatalf("unexpected session %+v", session)
	}
}

func TestCreateUploadSessionMissingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"job_id": "job-42"})
	}))
	defer srv.Close()

	_, err := newClientForTest(t, srv.URL).CreateUploadSession(context.Background(), "*")
	if err == nil {
		t.Fatal("expected error for incomplete session response")
	}
}

func TestCreateUploadSessionServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no capacity", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newClientForTest(t, srv.URL).CreateUploadSession(context.Background(), "*")
	if err == nil {
		t.Fatal("expected error for 503 response")
	}
}

func TestTransferReportsProgress(t *testing.T) {
	payload := strings.Repeat("v", 4096)
	var received int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if got := r.Header.Get("Content-Type"); got != "video/mp4" {
			t.Errorf("unexpected content type %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		received = len(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var lastSent, lastTotal int64
	err := newClientForTest(t, srv.URL).Transfer(context.Background(), srv.URL+"/upload",
		strings.NewReader(payload), int64(len(payload)), "video/mp4",
		func(sent, total int64) {
			lastSent, lastTotal = sent, total
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if received != len(payload) {
		t.Fatalf("server received %d bytes, want %d", received, len(payload))
	}
	if lastSent != int64(len(payload)) || lastTotal != int64(len(payload)) {
		t.Fatalf("final progress %d/%d, want %d/%d", lastSent, lastTotal, len(payload), len(payload))
	}
}

func TestTransferServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	err := newClientForTest(t, srv.URL).Transfer(context.Background(), srv.URL+"/upload",
		strings.NewReader("x"), 1, "video/mp4", nil)
	if err == nil {
		t.Fatal("expected error for 403 response")
	}
}

func TestGetJobStatus(t *testing.T) {
	tests := []struct {
		name       string
		payload    map[string]any
		wantStatus media.VideoStatus
		wantErr    bool
	}{
		{
			name:       "awaiting upload",
			payload:    map[string]any{"status": "AwaitingUpload"},
			wantStatus: media.VideoStatusAwaitingUpload,
		},
		{
			name:       "preparing",
			payload:    map[string]any{"status": "Preparing"},
			wantStatus: media.VideoStatusPreparing,
		},
		{
			name:       "errored",
			payload:    map[string]any{"status": "Errored"},
			wantStatus: media.VideoStatusErrored,
		},
		{
			name:       "snake case alias",
			payload:    map[string]any{"status": "awaiting_upload"},
			wantStatus: media.VideoStatusAwaitingUpload,
		},
		{
			name:       "processing alias",
			payload:    map[string]any{"status": "processing"},
			wantStatus: media.VideoStatusPreparing,
		},
		{
			name:       "waiting alias",
			payload:    map[string]any{"status": "waiting"},
			wantStatus: media.VideoStatusAwaitingUpload,
		},
		{
			name: "ready with renditions",
			payload: map[string]any{
				"status":           "READY",
				"playable_ids":     []string{"pl-1", "pl-2"},
				"duration_seconds": 90.5,
				"aspect_ratio":     "16:9",
			},
			wantStatus: media.VideoStatusReady,
		},
		{
			name:       "failed alias",
			payload:    map[string]any{"status": "failed"},
			wantStatus: media.VideoStatusErrored,
		},
		{
			name:    "unknown status",
			payload: map[string]any{"status": "paused"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/v1/jobs/job-42" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				json.NewEncoder(w).Encode(tt.payload)
			}))
			defer srv.Close()

			status, err := newClientForTest(t, srv.URL).GetJobStatus(context.Background(), "job-42")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if status.Status != tt.wantStatus {
				t.Fatalf("status = %s, want %s", status.Status, tt.wantStatus)
			}
			if tt.wantStatus == media.VideoStatusReady {
				if len(status.PlayableIDs) != 2 || status.PlayableIDs[0] != "pl-1" {
					t.Fatalf("renditions not carried: %+v", status.PlayableIDs)
				}
				if status.DurationSeconds != 90.5 || status.AspectRatio != "16:9" {
					t.Fatalf("metadata not carried: %+v", status)
				}
			}
		})
	}
}

func TestDeleteJob(t *testing.T) {
	var deleted string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", r.Method)
		}
		deleted = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	if err := newClientForTest(t, srv.URL).DeleteJob(context.Background(), "job-42"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != "/v1/jobs/job-42" {
		t.Fatalf("unexpected delete path %q", deleted)
	}
}
