package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"warden/internal/domain"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, "warden-app", "service-secret")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestNewClient_MalformedBaseURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "localhost:8080"} {
		if _, err := NewClient(raw, "id", "key"); !errors.Is(err, ErrMalformedEndpoint) {
			t.Errorf("NewClient(%q) error = %v, want ErrMalformedEndpoint", raw, err)
		}
	}
}

func TestFetchBlockLists_SendsCredentials(t *testing.T) {
	var gotServiceKey, gotAuth string

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotServiceKey = r.Header.Get(ServiceKeyHeader)
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]domain.BlockList{{ID: 1, Name: "Distractions"}})
	}))

	lists, err := client.FetchBlockLists(context.Background())
	if err != nil {
		t.Fatalf("FetchBlockLists: %v", err)
	}
	if len(lists) != 1 || lists[0].Name != "Distractions" {
		t.Fatalf("unexpected lists: %+v", lists)
	}
	if gotServiceKey != "service-secret" {
		t.Fatalf("service key header = %q", gotServiceKey)
	}
	if gotAuth != "" {
		t.Fatalf("unexpected bearer before first auth: %q", gotAuth)
	}
}

func TestSingleReauthRetry(t *testing.T) {
	var listCalls, tokenCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		json.NewEncoder(w).Encode(tokenResponse{Token: "fresh-token"})
	})
	mux.HandleFunc("GET /block-lists", func(w http.ResponseWriter, r *http.Request) {
		if listCalls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Header.Get("Authorization") != "Bearer fresh-token" {
			t.Errorf("retry missing fresh bearer, got %q", r.Header.Get("Authorization"))
		}
		json.NewEncoder(w).Encode([]domain.BlockList{})
	})

	client := newTestClient(t, mux)

	if _, err := client.FetchBlockLists(context.Background()); err != nil {
		t.Fatalf("FetchBlockLists after reauth: %v", err)
	}
	if got := tokenCalls.Load(); got != 1 {
		t.Fatalf("token endpoint called %d times, want 1", got)
	}
	if got := listCalls.Load(); got != 2 {
		t.Fatalf("list endpoint called %d times, want 2", got)
	}
}

func TestSecondUnauthorizedSurfaces(t *testing.T) {
	var listCalls, tokenCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		json.NewEncoder(w).Encode(tokenResponse{Token: "stale-token"})
	})
	mux.HandleFunc("GET /schedules", func(w http.ResponseWriter, r *http.Request) {
		listCalls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	})

	client := newTestClient(t, mux)

	_, err := client.FetchSchedules(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("error = %v, want ErrUnauthorized", err)
	}
	if got := tokenCalls.Load(); got != 1 {
		t.Fatalf("token endpoint called %d times, want 1 (no retry loop)", got)
	}
	if got := listCalls.Load(); got != 2 {
		t.Fatalf("schedules endpoint called %d times, want 2", got)
	}
}

func TestReauthDenied(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("GET /block-lists", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	client := newTestClient(t, mux)

	_, err := client.FetchBlockLists(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("error = %v, want ErrUnauthorized", err)
	}
}

func TestDeleteTreats404AsSuccess(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such item", http.StatusNotFound)
	}))

	if err := client.DeleteItem(context.Background(), 3, 99); err != nil {
		t.Fatalf("DeleteItem on missing target: %v, want success", err)
	}
	if err := client.DeleteBlockList(context.Background(), 42); err != nil {
		t.Fatalf("DeleteBlockList on missing target: %v, want success", err)
	}
	if err := client.DeleteSchedule(context.Background(), 7); err != nil {
		t.Fatalf("DeleteSchedule on missing target: %v, want success", err)
	}
}

func TestErrorMapping(t *testing.T) {
	t.Run("client error keeps body", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad schedule window", http.StatusUnprocessableEntity)
		}))

		_, err := client.CreateSchedule(context.Background(), domain.Schedule{})
		var clientErr *ClientError
		if !errors.As(err, &clientErr) {
			t.Fatalf("error = %v, want *ClientError", err)
		}
		if clientErr.Code != http.StatusUnprocessableEntity {
			t.Fatalf("code = %d, want 422", clientErr.Code)
		}
		if clientErr.Body == "" {
			t.Fatal("expected raw body for diagnostics")
		}
	})

	t.Run("server error", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))

		_, err := client.FetchAppCategories(context.Background())
		var serverErr *ServerError
		if !errors.As(err, &serverErr) {
			t.Fatalf("error = %v, want *ServerError", err)
		}
		if serverErr.Code != http.StatusBadGateway {
			t.Fatalf("code = %d, want 502", serverErr.Code)
		}
	})

	t.Run("decoding error", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("{not json"))
		}))

		_, err := client.FetchBlockLists(context.Background())
		var decodeErr *DecodingError
		if !errors.As(err, &decodeErr) {
			t.Fatalf("error = %v, want *DecodingError", err)
		}
	})

	t.Run("404 outside delete is a client error", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "missing", http.StatusNotFound)
		}))

		_, err := client.UpdateBlockList(context.Background(), domain.BlockList{ID: 9})
		var clientErr *ClientError
		if !errors.As(err, &clientErr) || clientErr.Code != http.StatusNotFound {
			t.Fatalf("error = %v, want 404 *ClientError", err)
		}
	})
}
