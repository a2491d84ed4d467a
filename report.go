package ld2410

import "encoding/binary"

// ReportType distinguishes the two report payload layouts.
type ReportType byte

const (
	ReportTypeEngineering ReportType = 0x01
	ReportTypeBasic       ReportType = 0x02
)

func (t ReportType) String() string {
	switch t {
	case ReportTypeEngineering:
		return "engineering"
	case ReportTypeBasic:
		return "basic"
	default:
		return "unknown"
	}
}

// TargetState classifies what kind of target, if any, the device
// currently detects.
type TargetState byte

const (
	TargetNone             TargetState = 0
	TargetMoving           TargetState = 1
	TargetStatic           TargetState = 2
	TargetMovingAndStatic  TargetState = 3
)

func (s TargetState) String() string {
	switch s {
	case TargetNone:
		return "none"
	case TargetMoving:
		return "moving"
	case TargetStatic:
		return "static"
	case TargetMovingAndStatic:
		return "moving+static"
	default:
		return "unknown"
	}
}

// Report is a decoded periodic sensor report. Engineering is non-nil
// only for ReportTypeEngineering payloads.
type Report struct {
	Type                ReportType
	TargetState         TargetState
	MovingDistanceCM    uint16
	MovingEnergy        uint8
	StaticDistanceCM    uint16
	StaticEnergy        uint8
	DetectionDistanceCM uint16
	Engineering         *EngineeringReport
}

// EngineeringReport carries the extra fields present only when
// engineering mode is active.
type EngineeringReport struct {
	MaxGate            uint8
	MaxMovingGate      uint8
	MaxStaticGate      uint8
	MovingEnergyByGate []uint8
	StaticEnergyByGate []uint8
	// LightLevel and OutPinLevel are nil on firmware that omits them.
	LightLevel  *uint8
	OutPinLevel *uint8
}

const reportEnvelopeLen = 9 // target_state + moving(3) + static(3) + detection(2)
const reportTerminator0 = 0x55
const reportTerminator1 = 0x00

// EncodeReport builds the wire bytes for a report frame from r. Used by
// test doubles that play the device side of the protocol.
func EncodeReport(r Report) []byte {
	payload := make([]byte, 0, 1+reportEnvelopeLen+2)
	payload = append(payload, byte(r.Type))
	payload = append(payload, byte(r.TargetState))
	payload = binary.LittleEndian.AppendUint16(payload, r.MovingDistanceCM)
	payload = append(payload, r.MovingEnergy)
	payload = binary.LittleEndian.AppendUint16(payload, r.StaticDistanceCM)
	payload = append(payload, r.StaticEnergy)
	payload = binary.LittleEndian.AppendUint16(payload, r.DetectionDistanceCM)
	if r.Type == ReportTypeEngineering && r.Engineering != nil {
		e := r.Engineering
		payload = append(payload, e.MaxGate, e.MaxMovingGate, e.MaxStaticGate)
		payload = append(payload, e.MovingEnergyByGate...)
		payload = append(payload, e.StaticEnergyByGate...)
		if e.LightLevel != nil && e.OutPinLevel != nil {
			payload = append(payload, *e.LightLevel, *e.OutPinLevel)
		}
	}
	payload = append(payload, reportTerminator0, reportTerminator1)
	return Frame{Dialect: DialectReport, Payload: payload}.Encode()
}

// decodeReport interprets a DialectReport frame's payload: a 1-byte
// report type, the envelope/engineering body, and a 0x55 0x00 tail.
func decodeReport(payload []byte) (Report, error) {
	if len(payload) < 1+reportEnvelopeLen+2 {
		return Report{}, ErrTruncatedPayload
	}
	reportType := ReportType(payload[0])
	if payload[len(payload)-2] != reportTerminator0 || payload[len(payload)-1] != reportTerminator1 {
		return Report{}, ErrPayloadSchemaMismatch
	}
	body := payload[1 : len(payload)-2]
	if len(body) < reportEnvelopeLen {
		return Report{}, ErrTruncatedPayload
	}
	envelope := body[:reportEnvelopeLen]
	rest := body[reportEnvelopeLen:]

	r := Report{
		Type:                reportType,
		TargetState:         TargetState(envelope[0]),
		MovingDistanceCM:    binary.LittleEndian.Uint16(envelope[1:3]),
		MovingEnergy:        envelope[3],
		StaticDistanceCM:    binary.LittleEndian.Uint16(envelope[4:6]),
		StaticEnergy:        envelope[6],
		DetectionDistanceCM: binary.LittleEndian.Uint16(envelope[7:9]),
	}

	switch reportType {
	case ReportTypeBasic:
		if len(rest) != 0 {
			return Report{}, ErrPayloadSchemaMismatch
		}
		return r, nil
	case ReportTypeEngineering:
		if len(rest) < 3 {
			return Report{}, ErrTruncatedPayload
		}
		maxGate := rest[0]
		gateCount := int(maxGate) + 1
		need := 3 + 2*gateCount
		if len(rest) < need {
			return Report{}, ErrTruncatedPayload
		}
		moving := append([]uint8(nil), rest[3:3+gateCount]...)
		static := append([]uint8(nil), rest[3+gateCount:3+2*gateCount]...)
		eng := &EngineeringReport{
			MaxGate:            maxGate,
			MaxMovingGate:      rest[1],
			MaxStaticGate:      rest[2],
			MovingEnergyByGate: moving,
			StaticEnergyByGate: static,
		}
		tail := rest[need:]
		switch len(tail) {
		case 0:
		case 2:
			light, pin := tail[0], tail[1]
			eng.LightLevel = &light
			eng.OutPinLevel = &pin
		default:
			return Report{}, ErrPayloadSchemaMismatch
		}
		r.Engineering = eng
		return r, nil
	default:
		return Report{}, ErrPayloadSchemaMismatch
	}
}
