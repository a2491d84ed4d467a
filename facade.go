package ld2410

import "context"

// GetParameters issues get-parameters and returns the device's current
// detection-range and sensitivity configuration.
func (c *ConfigSession) GetParameters(ctx context.Context) (Parameters, error) {
	args, err := c.s.issue(ctx, CmdGetParameters, nil)
	if err != nil {
		return Parameters{}, err
	}
	reply, err := decodeGetParametersReply(args)
	if err != nil {
		return Parameters{}, &CommandReplyError{Code: CmdGetParameters}
	}
	return reply.Parameters, nil
}

// SetParameters validates the ordering invariant locally
// (MaxMovingGate/MaxStaticGate <= MaxDistanceGate <= 8) before writing
// anything to the wire, then issues set-parameters.
func (c *ConfigSession) SetParameters(ctx context.Context, p Parameters) error {
	if err := p.Validate(); err != nil {
		return err
	}
	_, err := c.s.issue(ctx, CmdSetParameters, encodeSetParametersArgs(p))
	return err
}

// SetGateSensitivity sets the moving/static sensitivity thresholds for
// one gate, or every gate when gate is GateAll. Argument validation is
// local, before any I/O.
func (c *ConfigSession) SetGateSensitivity(ctx context.Context, gate int, moving, static int) error {
	if gate != GateAll && (gate < 0 || gate > MaxGateIndex) {
		return &CommandParamError{Field: "gate", Reason: "must be 0-8 or GateAll"}
	}
	if moving < 0 || moving > 100 {
		return &CommandParamError{Field: "moving", Reason: "must be 0-100"}
	}
	if static < 0 || static > 100 {
		return &CommandParamError{Field: "static", Reason: "must be 0-100"}
	}
	args := encodeSetGateSensitivityArgs(gate, uint32(moving), uint32(static))
	_, err := c.s.issue(ctx, CmdSetGateSensitivity, args)
	return err
}

// SetEngineeringMode starts or stops engineering mode; subsequent
// reports switch layout accordingly.
func (c *ConfigSession) SetEngineeringMode(ctx context.Context, enabled bool) error {
	code := CmdStopEngineeringMode
	if enabled {
		code = CmdStartEngineeringMode
	}
	_, err := c.s.issue(ctx, code, nil)
	return err
}

// GetFirmwareVersion returns the device's firmware version.
func (c *ConfigSession) GetFirmwareVersion(ctx context.Context) (FirmwareVersion, error) {
	args, err := c.s.issue(ctx, CmdGetFirmwareVersion, nil)
	if err != nil {
		return FirmwareVersion{}, err
	}
	v, err := decodeFirmwareVersionReply(args)
	if err != nil {
		return FirmwareVersion{}, &CommandReplyError{Code: CmdGetFirmwareVersion}
	}
	return v, nil
}

// SetBaudRate selects one of the device's 8 predefined baud rates by
// index. The device must be restarted (RestartModule) for the change to
// take effect.
func (c *ConfigSession) SetBaudRate(ctx context.Context, index int) error {
	if index < 1 || index > 8 {
		return &CommandParamError{Field: "index", Reason: "must be 1-8"}
	}
	_, err := c.s.issue(ctx, CmdSetBaudRate, encodeSetBaudRateArgs(uint16(index)))
	return err
}

// SetDistanceResolution selects the gate width. The device must be
// restarted for the change to take effect; a get issued before restart
// may already report the new value, a known device quirk this client
// does not paper over.
func (c *ConfigSession) SetDistanceResolution(ctx context.Context, r DistanceResolution) error {
	_, err := c.s.issue(ctx, CmdSetDistanceResolution, encodeSetDistanceResolutionArgs(r))
	return err
}

// GetDistanceResolution returns whatever the device currently reports.
// No caching or reconciliation with a prior SetDistanceResolution call
// is performed.
func (c *ConfigSession) GetDistanceResolution(ctx context.Context) (DistanceResolution, error) {
	args, err := c.s.issue(ctx, CmdGetDistanceResolution, nil)
	if err != nil {
		return 0, err
	}
	r, err := decodeGetDistanceResolutionReply(args)
	if err != nil {
		return 0, &CommandReplyError{Code: CmdGetDistanceResolution}
	}
	return r, nil
}

// SetBluetoothMode enables or disables the device's bluetooth radio.
func (c *ConfigSession) SetBluetoothMode(ctx context.Context, enabled bool) error {
	_, err := c.s.issue(ctx, CmdSetBluetoothMode, encodeSetBluetoothModeArgs(enabled))
	return err
}

// GetMACAddress returns the device's bluetooth MAC address, or the
// all-zero sentinel when the bluetooth chip is absent.
func (c *ConfigSession) GetMACAddress(ctx context.Context) ([6]byte, error) {
	args, err := c.s.issue(ctx, CmdGetMACAddress, nil)
	if err != nil {
		return [6]byte{}, err
	}
	mac, err := decodeMACAddressReply(args)
	if err != nil {
		return [6]byte{}, &CommandReplyError{Code: CmdGetMACAddress}
	}
	return mac, nil
}

// SetBluetoothPassword sets the 6-character ASCII bluetooth pairing
// password. Length and character range are validated locally.
func (c *ConfigSession) SetBluetoothPassword(ctx context.Context, password string) error {
	if len(password) != 6 {
		return &CommandParamError{Field: "password", Reason: "must be exactly 6 characters"}
	}
	for i := 0; i < len(password); i++ {
		if password[i] < 0x20 || password[i] > 0x7E {
			return &CommandParamError{Field: "password", Reason: "must be printable ASCII"}
		}
	}
	_, err := c.s.issue(ctx, CmdSetBluetoothPassword, encodeSetBluetoothPasswordArgs(password))
	return err
}

// SetLightControl configures the auxiliary light sensor/output pin.
// Optional on firmware that supports it; a *CommandStatusError is
// surfaced verbatim when unsupported.
func (c *ConfigSession) SetLightControl(ctx context.Context, lc LightControl) error {
	_, err := c.s.issue(ctx, CmdSetLightControl, encodeSetLightControlArgs(lc))
	return err
}

// GetLightControl reads back the auxiliary light sensor/output pin
// configuration. Optional on firmware that supports it; a
// *CommandStatusError is surfaced verbatim when unsupported.
func (c *ConfigSession) GetLightControl(ctx context.Context) (LightControl, error) {
	args, err := c.s.issue(ctx, CmdGetLightControl, nil)
	if err != nil {
		return LightControl{}, err
	}
	lc, err := decodeLightControlReply(args)
	if err != nil {
		return LightControl{}, &CommandReplyError{Code: CmdGetLightControl}
	}
	return lc, nil
}

// FactoryReset restores the device's factory default configuration.
func (c *ConfigSession) FactoryReset(ctx context.Context) error {
	_, err := c.s.issue(ctx, CmdFactoryReset, nil)
	return err
}

// RestartModule issues restart-module and waits for its ack, then
// treats the device's subsequent re-enumeration (transport loss) as the
// expected *ModuleRestartedError. Callers must exit any open
// ConfigSession scope and typically wait before reconnecting.
func (s *Session) RestartModule(ctx context.Context) error {
	return s.restart(ctx)
}
