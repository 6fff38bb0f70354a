package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2024-03-05", want: NewDate(2024, time.March, 5)},
		{in: "2024-03-05T23:10:00+05:30", want: NewDate(2024, time.March, 5)},
		{in: "05/03/2024", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got.Time), "got %v", got)
		})
	}
}

func TestDate_Within(t *testing.T) {
	d := MustParseDate("2024-02-10")
	from, to := MustParseDate("2024-02-10"), MustParseDate("2024-02-20")
	before := MustParseDate("2024-02-11")

	assert.True(t, d.Within(nil, nil))
	assert.True(t, d.Within(&from, &to), "bounds are inclusive")
	assert.True(t, d.Within(nil, &from))
	assert.False(t, d.Within(&before, nil))
	assert.False(t, MustParseDate("2024-02-21").Within(&from, &to))
}

func TestDate_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		D Date `json:"d"`
	}{MustParseDate("2024-12-31")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2024-12-31"}`, string(b))

	var out struct {
		D Date `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"d":"2025-01-02"}`), &out))
	assert.Equal(t, "2025-01-02", out.D.String())

	assert.Error(t, json.Unmarshal([]byte(`{"d":"tomorrow"}`), &out))
	assert.Equal(t, "", Date{}.String())
}
