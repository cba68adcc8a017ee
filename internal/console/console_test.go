package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPrompter(input string) (*Prompter, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return NewPrompter(strings.NewReader(input), out), out
}

func TestDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "blank uses today", input: "\n", want: "2024-05-01"},
		{name: "explicit date", input: " 2024-04-30 \n", want: "2024-04-30"},
		{name: "eof uses today", input: "", want: "2024-05-01"},
		{name: "bad date", input: "30/04/2024\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, out := newTestPrompter(tt.input)
			got, err := p.Date("Date of bet", "2024-05-01")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAnswer)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "Date of bet (YYYY-MM-DD) [2024-05-01]: ", out.String())
		})
	}
}

func TestYesNo(t *testing.T) {
	tests := []struct {
		input   string
		want    bool
		wantErr bool
	}{
		{input: "y\n", want: true},
		{input: "Y\n", want: true},
		{input: "n\n", want: false},
		{input: "yes\n", wantErr: true},
		{input: "\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			p, _ := newTestPrompter(tt.input)
			got, err := p.YesNo("Did it win?")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAnswer)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFloat(t *testing.T) {
	p, out := newTestPrompter("\n4.5\nabc\n")

	v, err := p.Float("SP decimal odds", 3.5)
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)
	assert.Contains(t, out.String(), "press Enter to use 3.5")

	v, err = p.Float("SP decimal odds", 3.5)
	require.NoError(t, err)
	assert.Equal(t, 4.5, v)

	_, err = p.Float("SP decimal odds", 3.5)
	assert.ErrorIs(t, err, ErrInvalidAnswer)
}

func TestSequentialAnswers(t *testing.T) {
	p, _ := newTestPrompter("2024-05-02\ny\n\n")

	date, err := p.Date("Date", "2024-05-01")
	require.NoError(t, err)
	won, err := p.YesNo("Won")
	require.NoError(t, err)
	sp, err := p.Float("SP", 5)
	require.NoError(t, err)

	assert.Equal(t, "2024-05-02", date)
	assert.True(t, won)
	assert.Equal(t, 5.0, sp)
}
