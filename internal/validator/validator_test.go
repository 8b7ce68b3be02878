package validator

import (
	"testing"

	"github.com/bgrierson/lead-filter-bot/internal/models"
)

func TestValidateGuildSettings(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		mutate  func(*models.GuildSettings)
		wantErr bool
	}{
		{"defaults are valid", func(s *models.GuildSettings) {}, false},
		{"full-text scope", func(s *models.GuildSettings) { s.BlockScanScope = "full-text" }, false},
		{"empty scope allowed", func(s *models.GuildSettings) { s.BlockScanScope = "" }, false},
		{"negative roi", func(s *models.GuildSettings) { s.MinROI = -1 }, true},
		{"absurd roi", func(s *models.GuildSettings) { s.MinROI = 5000 }, true},
		{"profit below sentinel", func(s *models.GuildSettings) { s.MinProfit = -2 }, true},
		{"dedupe window too long", func(s *models.GuildSettings) { s.DedupeHours = 200 }, true},
		{"unknown scope", func(s *models.GuildSettings) { s.BlockScanScope = "everywhere" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := models.DefaultSettings(20)
			tt.mutate(&settings)

			err := v.ValidateStruct(settings)
			if tt.wantErr && err == nil {
				t.Error("expected a validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
