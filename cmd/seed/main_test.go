package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/starquake/trivia/internal/dbtest"
)

func TestRun(t *testing.T) {
	t.Parallel()

	dbURI := dbtest.SetupTestDB(t)
	getenv := func(key string) string {
		return map[string]string{"LOG_LEVEL": "info"}[key]
	}

	var out bytes.Buffer
	if err := run(t.Context(), []string{"-uri", dbURI}, getenv, &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if got, want := out.String(), "inserted=19"; !strings.Contains(got, want) {
		t.Errorf("output = %q, should contain %q", got, want)
	}

	out.Reset()
	if err := run(t.Context(), []string{"-uri", dbURI}, getenv, &out); err != nil {
		t.Fatalf("second run() error = %v", err)
	}
	if got, want := out.String(), "inserted=0"; !strings.Contains(got, want) {
		t.Errorf("output = %q, should contain %q", got, want)
	}
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		env     map[string]string
		wantErr string
	}{
		{name: "bad config", env: map[string]string{"LOG_LEVEL": "loud"}, wantErr: "error parsing config"},
		{name: "unknown flag", args: []string{"-nope"}, wantErr: "error parsing flags"},
		{name: "unknown driver", args: []string{"-driver", "oracle"}, wantErr: "error resolving database driver"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			err := run(t.Context(), tt.args, func(key string) string { return tt.env[key] }, &out)
			if err == nil {
				t.Fatal("got nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err.Error() = %q, should contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}
