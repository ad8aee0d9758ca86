package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmountMajor(t *testing.T) {
	tests := []struct {
		name  string
		minor int64
		want  int64
	}{
		{"whole units", 490000, 4900},
		{"single minor unit rounds down", 1, 0},
		{"half unit rounds up", 150, 2},
		{"below half rounds down", 149, 1},
		{"zero", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ConfirmedPayment{AmountMinor: tt.minor}
			assert.Equal(t, tt.want, p.AmountMajor())
		})
	}
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		name      string
		fullName  string
		wantFirst string
		wantLast  string
	}{
		{"two tokens", "Jane Doe", "Jane", "Doe"},
		{"single token reuses first as last", "Madonna", "Madonna", "Madonna"},
		{"three tokens", "Jane Anne Doe", "Jane", "Anne Doe"},
		{"surrounding whitespace", "  Jane   Doe  ", "Jane", "Doe"},
		{"empty", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ConfirmedPayment{FullName: tt.fullName}
			first, last := p.SplitName()
			assert.Equal(t, tt.wantFirst, first)
			assert.Equal(t, tt.wantLast, last)
		})
	}
}
