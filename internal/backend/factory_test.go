package backend

import (
	"context"
	"testing"

	"spendwise/internal/config"
	"spendwise/internal/core"
)

func TestFromAppConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.Config
		want    BackendType
		wantErr bool
	}{
		{name: "nil config", cfg: nil, wantErr: true},
		{name: "memory", cfg: &config.Config{DataBackend: "memory"}, want: MemoryBackend},
		{name: "sqlite default template", cfg: &config.Config{DataBackend: "sqlite"}, want: SQLiteBackend},
		{name: "unknown backend", cfg: &config.Config{DataBackend: "sheets"}, wantErr: true},
		{name: "bad template", cfg: &config.Config{DataBackend: "sqlite", SQLiteDSNTemplate: "file:x.db"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAppConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromAppConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got.Type != tt.want {
				t.Errorf("FromAppConfig() type = %v, want %v", got.Type, tt.want)
			}
		})
	}
}

func TestFactoryOpensIsolatedStores(t *testing.T) {
	for _, bt := range []BackendType{MemoryBackend, SQLiteBackend} {
		t.Run(bt.String(), func(t *testing.T) {
			f, err := NewFactory(Config{Type: bt, SQLiteDSNTemplate: "file:factory-test-%s?mode=memory&cache=shared"}, nil)
			if err != nil {
				t.Fatalf("NewFactory: %v", err)
			}
			ctx := context.Background()

			a, err := f.Open(ctx, core.NewTransactionID())
			if err != nil {
				t.Fatalf("Open a: %v", err)
			}
			defer a.Close()
			b, err := f.Open(ctx, core.NewTransactionID())
			if err != nil {
				t.Fatalf("Open b: %v", err)
			}
			defer b.Close()

			tx := core.Transaction{
				ID:          "t1",
				Amount:      core.Money{Cents: 500},
				AmountText:  "5",
				Date:        core.NewDate(2024, 1, 5),
				Description: "Lunch",
				Category:    core.Food,
			}
			if err := a.Add(ctx, tx); err != nil {
				t.Fatalf("Add: %v", err)
			}

			got, err := b.List(ctx)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(got) != 0 {
				t.Errorf("session b sees %d transactions from session a", len(got))
			}
		})
	}
}

func TestFactoryRejectsEmptySession(t *testing.T) {
	f, err := NewFactory(Config{Type: MemoryBackend}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Open(context.Background(), ""); err == nil {
		t.Error("Open(\"\") expected error")
	}
}
