// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/guiabr/guia/internal/address"
	"github.com/guiabr/guia/internal/i18n"
)

func testPresenter(t *testing.T, loc string, lang language.Tag) *Presenter {
	t.Helper()
	localizer, err := i18n.New(loc)
	if err != nil {
		t.Fatalf("failed to create localizer: %s", err)
	}
	return New(localizer, lang)
}

func TestPresenter_AddressCard(t *testing.T) {
	addr := address.Standardized{
		Logradouro:     "Rua Direita",
		Bairro:         "Milho Verde",
		BairroCompleto: "Milho Verde",
		Cidade:         "Serro",
		Estado:         "Minas Gerais",
		CEP:            "39150-000",
		Pais:           "Brasil",
		PaisCodigo:     "br",
	}
	t.Run("all present fields are rendered", func(t *testing.T) {
		pres := testPresenter(t, "en", language.English)
		card := pres.AddressCard(addr, time.Time{})
		for _, want := range []string{"Current address", "Rua Direita", "Milho Verde", "Serro", "Minas Gerais", "39150-000", "Brasil"} {
			if !strings.Contains(card, want) {
				t.Errorf("expected card to contain %q, got:\n%s", want, card)
			}
		}
	})
	t.Run("absent fields are omitted", func(t *testing.T) {
		pres := testPresenter(t, "en", language.English)
		card := pres.AddressCard(address.Standardized{Cidade: "Serro"}, time.Time{})
		if strings.Contains(card, "Street") {
			t.Errorf("expected no street row, got:\n%s", card)
		}
		if strings.Contains(card, "Number") {
			t.Errorf("expected no number row, got:\n%s", card)
		}
		if !strings.Contains(card, "Serro") {
			t.Errorf("expected city row, got:\n%s", card)
		}
	})
	t.Run("label columns are aligned on display width", func(t *testing.T) {
		pres := testPresenter(t, "en", language.English)
		card := pres.AddressCard(addr, time.Time{})
		// "Neighborhood:" is the widest label, every value starts right after
		// its padded column.
		wantCol := 2 + len("Neighborhood:") + 1
		for _, value := range []string{"Rua Direita", "Milho Verde", "Serro", "Minas Gerais"} {
			for _, line := range strings.Split(card, "\n") {
				if strings.Contains(line, value) {
					if idx := strings.Index(line, value); idx != wantCol {
						t.Errorf("expected %q to start at column %d, got %d in %q", value, wantCol, idx, line)
					}
					break
				}
			}
		}
	})
	t.Run("the last update footer is rendered for a non-zero time", func(t *testing.T) {
		pres := testPresenter(t, "en", language.English)
		card := pres.AddressCard(addr, time.Now().Add(-2*time.Minute))
		if !strings.Contains(card, "Last update") {
			t.Errorf("expected a last update footer, got:\n%s", card)
		}
	})
	t.Run("labels are localized for pt_BR", func(t *testing.T) {
		pres := testPresenter(t, "pt_BR", language.BrazilianPortuguese)
		card := pres.AddressCard(addr, time.Time{})
		if !strings.Contains(card, "Endereço atual") {
			t.Errorf("expected localized heading, got:\n%s", card)
		}
		if !strings.Contains(card, "Logradouro") {
			t.Errorf("expected localized street label, got:\n%s", card)
		}
	})
}

func TestPresenter_changeAnnouncements(t *testing.T) {
	details := address.ChangeDetails{
		HasChanged: true,
		Previous:   address.FieldValues{Value: "Centro", Display: "Centro"},
		Current:    address.FieldValues{Value: "Bela Vista", Display: "Bela Vista, Região Central"},
	}
	t.Run("a bairro change names both display values", func(t *testing.T) {
		pres := testPresenter(t, "en", language.English)
		line := pres.BairroChange(details)
		if !strings.Contains(line, "Centro") || !strings.Contains(line, "Bela Vista, Região Central") {
			t.Errorf("expected both display values, got %q", line)
		}
	})
	t.Run("a bairro change is localized for pt_BR", func(t *testing.T) {
		pres := testPresenter(t, "pt_BR", language.BrazilianPortuguese)
		line := pres.BairroChange(details)
		if !strings.Contains(line, "Bairro alterado de") {
			t.Errorf("expected localized announcement, got %q", line)
		}
	})
	t.Run("a street change falls back to the comparison value", func(t *testing.T) {
		pres := testPresenter(t, "en", language.English)
		line := pres.LogradouroChange(address.ChangeDetails{
			HasChanged: true,
			Previous:   address.FieldValues{Value: "Rua Direita"},
			Current:    address.FieldValues{Value: "Rua da Praia"},
		})
		if !strings.Contains(line, "Rua Direita") || !strings.Contains(line, "Rua da Praia") {
			t.Errorf("expected both street names, got %q", line)
		}
	})
	t.Run("an absent side renders as unknown", func(t *testing.T) {
		pres := testPresenter(t, "en", language.English)
		line := pres.BairroChange(address.ChangeDetails{
			HasChanged: true,
			Current:    address.FieldValues{Value: "Centro", Display: "Centro"},
		})
		if !strings.Contains(line, "unknown") {
			t.Errorf("expected an unknown placeholder, got %q", line)
		}
	})
	t.Run("the arrival line names the neighborhood", func(t *testing.T) {
		pres := testPresenter(t, "pt_BR", language.BrazilianPortuguese)
		line := pres.Arrival("Milho Verde")
		if !strings.Contains(line, "Você está agora em Milho Verde") {
			t.Errorf("expected localized arrival line, got %q", line)
		}
	})
}
