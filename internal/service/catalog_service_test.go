package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"pocketguide/internal/model"
)

func TestValidateCity(t *testing.T) {
	assert.NoError(t, validateCity(&model.City{Name: "Париж"}))
	assert.ErrorIs(t, validateCity(&model.City{Name: "П"}), ErrValidation)
	assert.ErrorIs(t, validateCity(&model.City{Name: strings.Repeat("а", 101)}), ErrValidation)
}

func TestValidateExcursion(t *testing.T) {
	ok := &model.Excursion{Title: "Старый город", Description: "Прогулка по историческому центру"}
	assert.NoError(t, validateExcursion(ok))

	assert.ErrorIs(t, validateExcursion(&model.Excursion{Title: "Тур", Description: ok.Description}), ErrValidation)
	assert.ErrorIs(t, validateExcursion(&model.Excursion{Title: ok.Title, Description: "коротко"}), ErrValidation)
}

func TestValidatePoint(t *testing.T) {
	ok := model.Point{Order: 1, Title: "Лувр", Text: "Рассказ о музее и его истории", Lat: 48.86, Lng: 2.33}
	assert.NoError(t, validatePoint(&ok))

	cases := []struct {
		name   string
		mutate func(p *model.Point)
	}{
		{"order ниже диапазона", func(p *model.Point) { p.Order = 0 }},
		{"order выше диапазона", func(p *model.Point) { p.Order = 101 }},
		{"короткий title", func(p *model.Point) { p.Title = "Лу" }},
		{"короткий text", func(p *model.Point) { p.Text = "мало" }},
		{"широта вне диапазона", func(p *model.Point) { p.Lat = 91 }},
		{"долгота вне диапазона", func(p *model.Point) { p.Lng = -181 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := ok
			tc.mutate(&p)
			assert.ErrorIs(t, validatePoint(&p), ErrValidation)
		})
	}
}
