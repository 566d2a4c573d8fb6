package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGeneratePaperRoundTrip(t *testing.T) {
	var gotBody GenerateRequest
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/generate-paper" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(GenerateResponse{Status: StatusProcessing, DocumentID: "doc-7"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, StaticTokenProvider{BearerToken: "tok-123", Subject: "u1"})
	resp, err := client.GeneratePaper(context.Background(), GenerateRequest{
		Topic:      "graph coloring",
		Sections:   []string{"abstract"},
		WordCount:  2500,
		SourceType: SourceTypeTopic,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.Status != StatusProcessing || resp.DocumentID != "doc-7" {
		t.Fatalf("response %+v", resp)
	}
	if gotBody.Topic != "graph coloring" || gotBody.WordCount != 2500 {
		t.Fatalf("request body %+v", gotBody)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("auth header %q", gotAuth)
	}
}

func TestPaperStatusPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/paper-status/doc-7" {
			t.Errorf("path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(StatusResponse{Status: StatusSuccess, Paper: "done"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	resp, err := client.PaperStatus(context.Background(), "doc-7")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if resp.Paper != "done" {
		t.Fatalf("response %+v", resp)
	}
}

func TestNon2xxBecomesServerErrorWithMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail": "Topic is required"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	_, err := client.GeneratePaper(context.Background(), GenerateRequest{})
	var serr *ServerError
	if !errors.As(err, &serr) {
		t.Fatalf("expected ServerError, got %v", err)
	}
	if serr.StatusCode != http.StatusBadRequest || serr.Message != "Topic is required" {
		t.Fatalf("server error %+v", serr)
	}
}

func TestConnectionFailureBecomesTransportError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", nil)
	client.HTTP = &http.Client{Timeout: 200 * time.Millisecond}
	_, err := client.PaperStatus(context.Background(), "doc-1")
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestFetchAndPushSessions(t *testing.T) {
	var pushed struct {
		Chats []Session `json:"chats"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/sessions":
			_, _ = w.Write([]byte(`{"chats": [{"id": "s1", "topic": "remote"}]}`))
		case r.Method == http.MethodPost && r.URL.Path == "/sessions-sync":
			if err := json.NewDecoder(r.Body).Decode(&pushed); err != nil {
				t.Errorf("decode push: %v", err)
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, signedIn())
	chats, err := client.FetchSessions(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(chats) != 1 || chats[0].ID != "s1" {
		t.Fatalf("chats %+v", chats)
	}

	if err := client.PushSessions(context.Background(), chats); err != nil {
		t.Fatalf("push: %v", err)
	}
	if len(pushed.Chats) != 1 || pushed.Chats[0].Topic != "remote" {
		t.Fatalf("pushed %+v", pushed.Chats)
	}
}

func TestTrackActivityBody(t *testing.T) {
	var got struct {
		Activities []ActivityRecord `json:"activities"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/activity-track" {
			t.Errorf("path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, signedIn())
	err := client.TrackActivity(context.Background(), []ActivityRecord{
		{ID: "a1", Type: ActivityPaperGenerated, Timestamp: time.Now()},
	})
	if err != nil {
		t.Fatalf("track: %v", err)
	}
	if len(got.Activities) != 1 || got.Activities[0].Type != ActivityPaperGenerated {
		t.Fatalf("activities %+v", got.Activities)
	}
}
