package ld2410

import (
	"encoding/binary"
	"fmt"
)

// Command codes. Non-exhaustive set supported by this client; ack codes
// are the request code ORed with ackCodeBit.
const (
	CmdEnterConfig             uint16 = 0x00FF
	CmdLeaveConfig             uint16 = 0x00FE
	CmdSetParameters           uint16 = 0x0060
	CmdGetParameters           uint16 = 0x0061
	CmdStartEngineeringMode    uint16 = 0x0062
	CmdStopEngineeringMode     uint16 = 0x0063
	CmdSetGateSensitivity      uint16 = 0x0064
	CmdGetFirmwareVersion      uint16 = 0x00A0
	CmdSetBaudRate             uint16 = 0x00A1
	CmdFactoryReset            uint16 = 0x00A2
	CmdRestartModule           uint16 = 0x00A3
	CmdSetBluetoothMode        uint16 = 0x00A4
	CmdGetMACAddress           uint16 = 0x00A5
	CmdSetBluetoothPassword    uint16 = 0x00A9
	CmdSetDistanceResolution   uint16 = 0x00AA
	CmdGetDistanceResolution   uint16 = 0x00AB
	CmdSetLightControl         uint16 = 0x00AD
	CmdGetLightControl         uint16 = 0x00AE
)

const enterConfigProtocolVersion uint16 = 0x0001

// GateAll is the sentinel gate index meaning "apply to every gate",
// carried on the wire as 0xFFFFFFFF.
const GateAll = -1

const gateAllWire uint32 = 0xFFFFFFFF

// appendIndexedU32 appends the device's "indexed word" TLV form used
// throughout the command argument layouts: a 16-bit word-select index
// followed by a 32-bit little-endian value.
func appendIndexedU32(buf []byte, index uint16, val uint32) []byte {
	buf = binary.LittleEndian.AppendUint16(buf, index)
	buf = binary.LittleEndian.AppendUint32(buf, val)
	return buf
}

// encodeEnterConfigArgs builds the enter-config command arguments.
func encodeEnterConfigArgs() []byte {
	return binary.LittleEndian.AppendUint16(nil, enterConfigProtocolVersion)
}

// EnterConfigReply is the parsed reply to enter-config.
type EnterConfigReply struct {
	ProtocolVersion uint16
	BufferSize      uint16
}

func decodeEnterConfigReply(args []byte) (EnterConfigReply, error) {
	if len(args) < 4 {
		return EnterConfigReply{}, ErrTruncatedPayload
	}
	return EnterConfigReply{
		ProtocolVersion: binary.LittleEndian.Uint16(args[0:2]),
		BufferSize:      binary.LittleEndian.Uint16(args[2:4]),
	}, nil
}

// encodeSetParametersArgs builds the set-parameters command arguments.
func encodeSetParametersArgs(p Parameters) []byte {
	var buf []byte
	buf = appendIndexedU32(buf, 0x0000, uint32(p.MaxDistanceGate))
	buf = appendIndexedU32(buf, 0x0001, uint32(p.MaxMovingGate))
	buf = appendIndexedU32(buf, 0x0002, uint32(p.MaxStaticGate))
	buf = appendIndexedU32(buf, 0x0003, uint32(p.PresenceTimeoutSeconds))
	return buf
}

// GetParametersReply is the parsed reply to get-parameters.
type GetParametersReply struct {
	Parameters Parameters
}

func decodeGetParametersReply(args []byte) (GetParametersReply, error) {
	// 0xAA header byte, max_gate, max_moving, max_static, moving_sens[9],
	// static_sens[9], timeout:u16
	const need = 1 + 3 + 9 + 9 + 2
	if len(args) < need {
		return GetParametersReply{}, ErrTruncatedPayload
	}
	if args[0] != 0xAA {
		return GetParametersReply{}, ErrPayloadSchemaMismatch
	}
	p := Parameters{
		MaxDistanceGate:        args[1],
		MaxMovingGate:          args[2],
		MaxStaticGate:          args[3],
		MovingSensitivity:      append([]uint8(nil), args[4:13]...),
		StaticSensitivity:      append([]uint8(nil), args[13:22]...),
		PresenceTimeoutSeconds: binary.LittleEndian.Uint16(args[22:24]),
	}
	return GetParametersReply{Parameters: p}, nil
}

// encodeSetGateSensitivityArgs builds the set-gate-sensitivity command
// arguments. gate of GateAll is encoded as the wire "all gates" sentinel.
func encodeSetGateSensitivityArgs(gate int, moving, static uint32) []byte {
	var wireGate uint32
	if gate == GateAll {
		wireGate = gateAllWire
	} else {
		wireGate = uint32(gate)
	}
	var buf []byte
	buf = appendIndexedU32(buf, 0x0000, wireGate)
	buf = appendIndexedU32(buf, 0x0001, moving)
	buf = appendIndexedU32(buf, 0x0002, static)
	return buf
}

// FirmwareVersion is the parsed reply to get-firmware-version.
type FirmwareVersion struct {
	Type     uint16
	Major    uint8
	Minor    uint8
	Revision uint32 // packed BCD, e.g. 0x23022511
}

func decodeFirmwareVersionReply(args []byte) (FirmwareVersion, error) {
	if len(args) < 8 {
		return FirmwareVersion{}, ErrTruncatedPayload
	}
	return FirmwareVersion{
		Type:     binary.LittleEndian.Uint16(args[0:2]),
		Major:    args[2],
		Minor:    args[3],
		Revision: binary.LittleEndian.Uint32(args[4:8]),
	}, nil
}

// String renders the BCD revision as "Vmajor.minor.revision".
func (v FirmwareVersion) String() string {
	return fmt.Sprintf("V%d.%02d.%08X", v.Major, v.Minor, v.Revision)
}

func encodeSetBaudRateArgs(index uint16) []byte {
	return binary.LittleEndian.AppendUint16(nil, index)
}

// DistanceResolution selects the gate width.
type DistanceResolution uint16

const (
	DistanceResolutionCoarse DistanceResolution = 0 // 75cm gates
	DistanceResolutionFine   DistanceResolution = 1 // 20cm gates
)

func (r DistanceResolution) String() string {
	switch r {
	case DistanceResolutionCoarse:
		return "75cm"
	case DistanceResolutionFine:
		return "20cm"
	default:
		return "unknown"
	}
}

func encodeSetDistanceResolutionArgs(r DistanceResolution) []byte {
	return binary.LittleEndian.AppendUint16(nil, uint16(r))
}

func decodeGetDistanceResolutionReply(args []byte) (DistanceResolution, error) {
	if len(args) < 2 {
		return 0, ErrTruncatedPayload
	}
	return DistanceResolution(binary.LittleEndian.Uint16(args[0:2])), nil
}

func encodeSetBluetoothModeArgs(enable bool) []byte {
	var v uint16
	if enable {
		v = 1
	}
	return binary.LittleEndian.AppendUint16(nil, v)
}

func decodeMACAddressReply(args []byte) ([6]byte, error) {
	var mac [6]byte
	if len(args) < 6 {
		return mac, ErrTruncatedPayload
	}
	copy(mac[:], args[:6])
	return mac, nil
}

func encodeSetBluetoothPasswordArgs(password string) []byte {
	return []byte(password)
}

// LightControl is the argument/reply layout shared by set/get
// light-control, present only on firmware that supports the optional
// auxiliary light sensor and output pin.
type LightControl struct {
	Source         uint8
	Threshold      uint8
	OutPinDefault  uint8
}

func encodeSetLightControlArgs(c LightControl) []byte {
	return []byte{c.Source, c.Threshold, c.OutPinDefault}
}

func decodeLightControlReply(args []byte) (LightControl, error) {
	if len(args) < 3 {
		return LightControl{}, ErrTruncatedPayload
	}
	return LightControl{Source: args[0], Threshold: args[1], OutPinDefault: args[2]}, nil
}
