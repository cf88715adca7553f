package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
		want    string
	}{
		{"text info", "info", "text", false, "level=INFO"},
		{"json debug", "DEBUG", "json", false, `"level":"INFO"`},
		{"bad level", "loud", "text", true, ""},
		{"bad format", "info", "xml", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := NewLogger(&buf, tt.level, tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewLogger() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			logger.Info("hello")
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output %q missing %q", buf.String(), tt.want)
			}
		})
	}
}

func TestListenAddr(t *testing.T) {
	if got := ListenAddr("8081"); got != ":8081" {
		t.Errorf("ListenAddr() = %q", got)
	}
}
