// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package i18n

import "testing"

func TestNew(t *testing.T) {
	t.Run("new localizer with explicit locale", func(t *testing.T) {
		l, err := New("pt-BR")
		if err != nil {
			t.Fatalf("failed to create localizer: %s", err)
		}
		if l == nil {
			t.Fatal("expected localizer to be non-nil")
		}
		if got := l.Get("Neighborhood"); got != "Bairro" {
			t.Errorf("expected localized message to be %q, got %q", "Bairro", got)
		}
		if got := l.Get("Street"); got != "Logradouro" {
			t.Errorf("expected localized message to be %q, got %q", "Logradouro", got)
		}
	})
	t.Run("underscore locale spellings resolve the same catalog", func(t *testing.T) {
		l, err := New("pt_BR")
		if err != nil {
			t.Fatalf("failed to create localizer: %s", err)
		}
		if got := l.Get("Neighborhood"); got != "Bairro" {
			t.Errorf("expected localized message to be %q, got %q", "Bairro", got)
		}
	})
	t.Run("new localizer with empty locale falls back gracefully", func(t *testing.T) {
		l, err := New("")
		if err != nil {
			t.Fatalf("failed to create localizer: %s", err)
		}
		if got := l.Get("Street"); got == "" {
			t.Error("expected localized message to be non-empty")
		}
	})
}
