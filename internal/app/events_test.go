package app

import (
	"strings"
	"testing"

	"github.com/blackwell-systems/focusledger/internal/ledger"
)

func TestParseEvent(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr bool
		want    Event
	}{
		{
			name: "focus with project",
			line: `{"type":"focus","tracked":true,"project":"myapp","path":"/src/myapp","at":1700000000000}`,
			want: Event{Type: "focus", Tracked: true, Project: "myapp", Path: "/src/myapp", At: 1700000000000},
		},
		{
			name: "input",
			line: `{"type":"input","kind":"key_down"}`,
			want: Event{Type: "input", Kind: "key_down"},
		},
		{
			name: "ai without attribution",
			line: `{"type":"ai"}`,
			want: Event{Type: "ai"},
		},
		{
			name:    "missing type",
			line:    `{"tracked":true}`,
			wantErr: true,
		},
		{
			name:    "unknown type",
			line:    `{"type":"resize"}`,
			wantErr: true,
		},
		{
			name:    "not json",
			line:    `focus myapp`,
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseEvent([]byte(tc.line))
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseEvent: %v", err)
			}
			if got != tc.want {
				t.Errorf("parseEvent = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestEventProjectRef(t *testing.T) {
	withPath := Event{Type: "focus", Project: "myapp", Path: "/src/myapp"}
	ref := withPath.projectRef()
	if ref.ID != ledger.LocationID("/src/myapp") {
		t.Errorf("path event got ID %q, want location-derived", ref.ID)
	}
	if ref.Name != "myapp" || ref.Path != "/src/myapp" {
		t.Errorf("unexpected ref %+v", ref)
	}

	nameOnly := Event{Type: "focus", Project: "myapp"}
	if got := nameOnly.projectRef().ID; got != ledger.NameID("myapp") {
		t.Errorf("name-only event got ID %q, want name-derived", got)
	}

	empty := Event{Type: "ai"}
	if got := empty.projectRef().ID; got != "" {
		t.Errorf("empty event got ID %q, want empty", got)
	}
}

func TestReadFeed_SkipsMalformedLines(t *testing.T) {
	feed := strings.Join([]string{
		`{"type":"input","kind":"key_down"}`,
		``,
		`not json at all`,
		`{"type":"resize"}`,
		`{"type":"focus","tracked":false}`,
	}, "\n")

	events := make(chan Event, 8)
	readFeed(strings.NewReader(feed), events, func(string, ...any) {})

	var got []Event
	for ev := range events {
		got = append(got, ev)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d: %+v", len(got), got)
	}
	if got[0].Type != "input" || got[1].Type != "focus" {
		t.Errorf("unexpected events: %+v", got)
	}
}
