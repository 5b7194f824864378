package handlers

import "testing"

func TestSplitCallback(t *testing.T) {
	tests := []struct {
		data       string
		wantAction string
		wantArg    string
	}{
		{"main_menu", "main_menu", ""},
		{"supplies", "supplies", ""},
		{"supplies:add", "supplies:add", ""},
		{"timers:add", "timers:add", ""},
		{"supply:3f1c9a2e-1111-2222-3333-444455556666", "supply", "3f1c9a2e-1111-2222-3333-444455556666"},
		{"supply_inc:abc", "supply_inc", "abc"},
		{"addcat:test-strips", "addcat", "test-strips"},
		{"addtimer:infusion-set", "addtimer", "infusion-set"},
	}

	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			action, arg := splitCallback(tt.data)
			if action != tt.wantAction || arg != tt.wantArg {
				t.Errorf("splitCallback(%q) = (%q, %q), want (%q, %q)",
					tt.data, action, arg, tt.wantAction, tt.wantArg)
			}
		})
	}
}
