package app

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	a := &App{Location: time.UTC}

	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{name: "explicit date", value: "2015-04-01", want: time.Date(2015, time.April, 1, 0, 0, 0, 0, time.UTC)},
		{name: "wrong layout", value: "01/04/2015", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.ParseDate(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("ParseDate() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("empty is today", func(t *testing.T) {
		got, err := a.ParseDate("")
		if err != nil {
			t.Fatal(err)
		}
		if got.Hour() != 0 || got.Location() != time.UTC {
			t.Errorf("ParseDate(\"\") = %v, want a UTC calendar day", got)
		}
	})
}
