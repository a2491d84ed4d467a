package ld2410

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_decodeReportBasic(t *testing.T) {
	r := Report{
		Type:                ReportTypeBasic,
		TargetState:         TargetMovingAndStatic,
		MovingDistanceCM:    120,
		MovingEnergy:        80,
		StaticDistanceCM:    150,
		StaticEnergy:        60,
		DetectionDistanceCM: 150,
	}
	wire := EncodeReport(r)

	d := &decodeBuf{buf: wire}
	res := d.tryParse()
	require.True(t, res.ok)

	got, err := decodeReport(res.frame.Payload)
	require.NoError(t, err)
	assert.Equal(t, r, got)
}

func Test_decodeReportEngineeringWithLightLevel(t *testing.T) {
	light := uint8(3)
	pin := uint8(1)
	r := Report{
		Type:                ReportTypeEngineering,
		TargetState:         TargetMoving,
		MovingDistanceCM:    90,
		MovingEnergy:        70,
		StaticDistanceCM:    0,
		StaticEnergy:        0,
		DetectionDistanceCM: 90,
		Engineering: &EngineeringReport{
			MaxGate:            8,
			MaxMovingGate:      8,
			MaxStaticGate:      7,
			MovingEnergyByGate: []uint8{10, 20, 30, 40, 50, 60, 70, 80, 90},
			StaticEnergyByGate: []uint8{0, 0, 0, 0, 0, 0, 0, 0, 0},
			LightLevel:         &light,
			OutPinLevel:        &pin,
		},
	}
	wire := EncodeReport(r)

	d := &decodeBuf{buf: wire}
	res := d.tryParse()
	require.True(t, res.ok)

	got, err := decodeReport(res.frame.Payload)
	require.NoError(t, err)
	require.NotNil(t, got.Engineering)
	assert.Equal(t, r, got)
}

func Test_decodeReportRejectsBadTerminator(t *testing.T) {
	r := Report{Type: ReportTypeBasic, TargetState: TargetNone}
	wire := EncodeReport(r)

	d := &decodeBuf{buf: wire}
	res := d.tryParse()
	require.True(t, res.ok)

	payload := res.frame.Payload
	payload[len(payload)-1] ^= 0xFF

	_, err := decodeReport(payload)
	assert.ErrorIs(t, err, ErrPayloadSchemaMismatch)
}

func Test_targetStateAndReportTypeStrings(t *testing.T) {
	assert.Equal(t, "moving+static", TargetMovingAndStatic.String())
	assert.Equal(t, "engineering", ReportTypeEngineering.String())
	assert.Equal(t, "basic", ReportTypeBasic.String())
}
