package logger

import "testing"

func TestNew(t *testing.T) {
	tests := []struct {
		level string
		env   string
		debug bool
	}{
		{level: "debug", env: "development", debug: true},
		{level: "info", env: "production", debug: false},
		{level: "nao-existe", env: "", debug: false},
	}

	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.env, func(t *testing.T) {
			log, err := New(tt.level, tt.env)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if got := log.Core().Enabled(-1); got != tt.debug {
				t.Errorf("debug enabled = %v, want %v", got, tt.debug)
			}
		})
	}
}
