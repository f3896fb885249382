package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cargotrace/internal/lifecycle"
)

func TestParseCode(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    Code
		reject  bool
	}{
		{
			name:    "container label",
			payload: "3FA85F64B2C1-C001",
			want:    Code{Kind: KindContainer, ContainerID: "3FA85F64B2C1-C001"},
		},
		{
			name:    "shipment manifest code",
			payload: "SHIPMENT:SHP-001",
			want:    Code{Kind: KindShipment, ShipmentHash: "SHP-001"},
		},
		{
			name:    "surrounding whitespace trimmed",
			payload: "  3FA85F64B2C1-C002\n",
			want:    Code{Kind: KindContainer, ContainerID: "3FA85F64B2C1-C002"},
		},
		{name: "empty", payload: "", reject: true},
		{name: "illegal characters", payload: "not-a-container-id!!", reject: true},
		{name: "shipment prefix with garbage", payload: "SHIPMENT:oh no!", reject: true},
		{name: "shipment prefix empty", payload: "SHIPMENT:", reject: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, rej := ParseCode(tc.payload)
			if tc.reject {
				require.NotNil(t, rej)
				assert.Equal(t, lifecycle.ReasonInvalidQRFormat, rej.Reason)
				return
			}
			require.Nil(t, rej)
			assert.Equal(t, tc.want, code)
		})
	}
}
