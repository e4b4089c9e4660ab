package config_test

import (
	"testing"

	"github.com/jlevy/markform/internal/markform/config"
)

func TestNewHarnessOptions_MatchesGlossaryDefaults(t *testing.T) {
	o := config.NewHarnessOptions()
	if o.MaxTurns != config.DefaultMaxTurns || o.FillMode != "continue" {
		t.Fatalf("unexpected defaults: %+v", o)
	}
}

func TestCreateConfigFromOptions_RejectsBadFillMode(t *testing.T) {
	o := config.NewHarnessOptions()
	o.FillMode = "nonsense"
	if _, err := config.CreateConfigFromOptions(o); err == nil {
		t.Fatalf("expected validation error for invalid fill mode")
	}
}

func TestCreateConfigFromOptions_CompletesZeroBudgets(t *testing.T) {
	o := &config.HarnessOptions{FillMode: "continue"}
	c, err := config.CreateConfigFromOptions(o)
	if err != nil {
		t.Fatalf("CreateConfigFromOptions: %v", err)
	}
	if c.MaxTurns != config.DefaultMaxTurns {
		t.Fatalf("expected Complete() to fill in the default MaxTurns, got %d", c.MaxTurns)
	}
}
