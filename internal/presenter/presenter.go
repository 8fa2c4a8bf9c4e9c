// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package presenter renders standardized addresses and change announcements
// as localized terminal text.
package presenter

import (
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/vorlif/humanize"
	"github.com/vorlif/humanize/locale/ptBR"
	"github.com/vorlif/spreak"
	"golang.org/x/text/language"

	"github.com/guiabr/guia/internal/address"
)

// Presenter renders address cards and one-line change announcements.
type Presenter struct {
	localizer *spreak.Localizer
	humanizer *humanize.Humanizer
}

// New returns a Presenter rendering in the language of the given localizer.
// pt-BR is the only bundled humanize locale, matching the shipped message
// catalog; any other tag falls back to humanize's built-in English.
func New(localizer *spreak.Localizer, lang language.Tag) *Presenter {
	collection := humanize.MustNew(humanize.WithLocale(ptBR.New()))
	return &Presenter{
		localizer: localizer,
		humanizer: collection.CreateHumanizer(lang),
	}
}

type cardRow struct {
	label string
	value string
}

// AddressCard renders the given address as a labeled card. Absent fields are
// omitted, the label column is aligned on display width. The updated time is
// rendered as a relative "last update" footer when non-zero.
func (p *Presenter) AddressCard(addr address.Standardized, updated time.Time) string {
	rows := make([]cardRow, 0, 7)
	for _, row := range []cardRow{
		{p.localizer.Get("Street"), addr.Logradouro},
		{p.localizer.Get("Number"), addr.Numero},
		{p.localizer.Get("Neighborhood"), addr.BairroCompleto},
		{p.localizer.Get("City"), addr.Cidade},
		{p.localizer.Get("State"), addr.Estado},
		{p.localizer.Get("Postal code"), addr.CEP},
		{p.localizer.Get("Country"), addr.Pais},
	} {
		if row.value != "" {
			rows = append(rows, row)
		}
	}

	width := 0
	for _, row := range rows {
		if w := runewidth.StringWidth(row.label + ":"); w > width {
			width = w
		}
	}

	var sb strings.Builder
	sb.WriteString(p.localizer.Get("Current address"))
	sb.WriteString("\n")
	for _, row := range rows {
		sb.WriteString("  ")
		sb.WriteString(runewidth.FillRight(row.label+":", width))
		sb.WriteString(" ")
		sb.WriteString(row.value)
		sb.WriteString("\n")
	}
	if !updated.IsZero() {
		sb.WriteString("  ")
		sb.WriteString(p.localizer.Get("Last update"))
		sb.WriteString(": ")
		sb.WriteString(p.humanizer.NaturalTime(updated))
		sb.WriteString("\n")
	}
	return sb.String()
}

// BairroChange renders a one-line announcement of a neighborhood change.
func (p *Presenter) BairroChange(details address.ChangeDetails) string {
	return p.localizer.Getf("Neighborhood changed from %s to %s",
		p.displayOrUnknown(details.Previous), p.displayOrUnknown(details.Current))
}

// LogradouroChange renders a one-line announcement of a street change.
func (p *Presenter) LogradouroChange(details address.ChangeDetails) string {
	return p.localizer.Getf("Street changed from %s to %s",
		p.displayOrUnknown(details.Previous), p.displayOrUnknown(details.Current))
}

// Arrival renders the "you are now in" announcement for the given
// neighborhood display value.
func (p *Presenter) Arrival(bairroCompleto string) string {
	if bairroCompleto == "" {
		bairroCompleto = p.localizer.Get("unknown")
	}
	return p.localizer.Getf("You are now in %s", bairroCompleto)
}

func (p *Presenter) displayOrUnknown(values address.FieldValues) string {
	if values.Display != "" {
		return values.Display
	}
	if values.Value != "" {
		return values.Value
	}
	return p.localizer.Get("unknown")
}
