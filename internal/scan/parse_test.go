package scan

import (
	"reflect"
	"testing"

	"wifiwarden/internal/model"
)

func TestParseDiscoveryOutput(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want []model.Sighting
	}{
		{
			name: "typical output",
			out: "Currently scanning: Finished!   |   Screen View: Unique Hosts\n" +
				"\n" +
				"192.168.1.1    aa:bb:cc:00:11:22      1      60  SomeVendor\n" +
				"192.168.1.10   00:11:22:33:44:55      1      60  Intel Corporate\n",
			want: []model.Sighting{
				{IP: "192.168.1.1", MAC: "AA:BB:CC:00:11:22"},
				{IP: "192.168.1.10", MAC: "00:11:22:33:44:55"},
			},
		},
		{
			name: "empty output",
			out:  "",
			want: nil,
		},
		{
			name: "no matching lines",
			out:  "Currently scanning: 192.168.1.0/24\n-- Active scan --\n",
			want: nil,
		},
		{
			name: "indented lines are not records",
			out:  "   192.168.1.5   de:ad:be:ef:00:01   1  60  Vendor\n",
			want: nil,
		},
		{
			name: "record without second field skipped",
			out:  "192.168.1.5\n192.168.1.6  aa:aa:aa:aa:aa:06  1  60  V\n",
			want: []model.Sighting{
				{IP: "192.168.1.6", MAC: "AA:AA:AA:AA:AA:06"},
			},
		},
		{
			name: "duplicates preserved for the registry to handle",
			out: "192.168.1.9  ff:ff:ff:ff:ff:ff  1  60  V\n" +
				"192.168.1.9  ff:ff:ff:ff:ff:ff  1  60  V\n",
			want: []model.Sighting{
				{IP: "192.168.1.9", MAC: "FF:FF:FF:FF:FF:FF"},
				{IP: "192.168.1.9", MAC: "FF:FF:FF:FF:FF:FF"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDiscoveryOutput([]byte(tt.out))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseDiscoveryOutput() = %v, want %v", got, tt.want)
			}
		})
	}
}
