package sentiment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAnalyze(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analyze" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Text != "Super ambiance" {
			t.Errorf("text = %q", req.Text)
		}
		json.NewEncoder(w).Encode(map[string]any{"label": "positive", "score": 0.97, "stars": 5})
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL).Analyze(context.Background(), "Super ambiance")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.Label != LabelPositive || got.Stars != 5 {
		t.Errorf("got %+v, want POSITIVE / 5 stars", got)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	t.Run("unconfigured", func(t *testing.T) {
		if _, err := NewClient("").Analyze(context.Background(), "x"); err == nil {
			t.Error("want error for empty base URL")
		}
	})
	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()
		if _, err := NewClient(srv.URL).Analyze(context.Background(), "x"); err == nil {
			t.Error("want error for 500 response")
		}
	})
	t.Run("unknown label", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"label": "MIXED", "score": 0.5, "stars": 3})
		}))
		defer srv.Close()
		if _, err := NewClient(srv.URL).Analyze(context.Background(), "x"); err == nil {
			t.Error("want error for unknown label")
		}
	})
}

func TestFromRating(t *testing.T) {
	tests := []struct {
		rating uint8
		label  string
	}{
		{5, LabelPositive},
		{4, LabelPositive},
		{3, LabelNeutral},
		{2, LabelNegative},
		{1, LabelNegative},
	}
	for _, tc := range tests {
		if got := FromRating(tc.rating); got.Label != tc.label {
			t.Errorf("FromRating(%d) = %s, want %s", tc.rating, got.Label, tc.label)
		}
	}
}
