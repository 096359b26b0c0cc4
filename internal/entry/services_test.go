package entry

import (
	"context"
	"errors"
	"testing"
)

func TestServices(t *testing.T) {
	s := NewServices()
	ctx := context.Background()

	if s.Has(Domain, ServiceExportIntegrations) {
		t.Fatal("Has() = true on empty registry")
	}
	if err := s.Call(ctx, Domain, ServiceExportIntegrations); !errors.Is(err, ErrServiceNotFound) {
		t.Errorf("Call() error = %v, want ErrServiceNotFound", err)
	}

	calls := 0
	s.Register(Domain, ServiceExportIntegrations, func(context.Context) error {
		calls++
		return nil
	})
	if !s.Has(Domain, ServiceExportIntegrations) {
		t.Fatal("Has() = false after Register")
	}
	if err := s.Call(ctx, Domain, ServiceExportIntegrations); err != nil {
		t.Errorf("Call() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if got := s.List(); len(got) != 1 || got[0] != "integration_list_exporter.export_integrations" {
		t.Errorf("List() = %v", got)
	}

	s.Remove(Domain, ServiceExportIntegrations)
	s.Remove(Domain, ServiceExportIntegrations)
	if s.Has(Domain, ServiceExportIntegrations) {
		t.Error("Has() = true after Remove")
	}
}
