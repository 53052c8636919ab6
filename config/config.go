/*
NAME
  config.go

DESCRIPTION
  Config holds the tunable parameters for a goesrx receive pipeline:
  downlink selection, DSP loop gains, queue sizing and the logger shared
  by every stage.

AUTHORS
  Adapted from revid/config/config.go.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package config holds the configuration for a goesrx pipeline instance.
package config

import (
	"errors"
	"time"

	"github.com/ausocean/utils/logging"
)

// Downlink identifies which of the two GOES downlinks is being received;
// they differ in symbol rate and in HRIT's use of NRZ-M line coding.
type Downlink int

const (
	// NothingDefined indicates no downlink has been selected.
	NothingDefined Downlink = iota
	LRIT
	HRIT
)

// Nominal symbol rates, in symbols per second, for each downlink.
const (
	LRITSymbolRate = 293883
	HRITSymbolRate = 927000
)

// Config collects the parameters of a receive pipeline. Zero-value fields
// are defaulted by Validate.
type Config struct {
	// Downlink selects LRIT or HRIT; this determines the default
	// SymbolRate. The packetizer detects LRIT or HRIT from the sync
	// word it locks onto, not from this field.
	Downlink Downlink

	// SampleRate is the I/Q sample rate in samples/sec produced by Source.
	SampleRate int

	// SymbolRate is the downlink's symbol rate in symbols/sec. Defaults
	// to LRITSymbolRate or HRITSymbolRate based on Downlink.
	SymbolRate int

	// AGC parameters. See dsp/agc.
	AGCAlpha     float64
	AGCMin       float64
	AGCMax       float64
	AGCInitGain  float64

	// RRC matched filter parameters. See dsp/rrc.
	RRCTaps       int
	RRCRolloff    float64
	RRCDecimation int

	// Costas loop parameters. See dsp/costas.
	CostasDamping      float64
	CostasBandwidth    float64
	CostasMaxDeviation float64

	// Mueller-Müller clock recovery parameters. See dsp/clock.
	ClockGainMu    float64
	ClockGainOmega float64
	ClockOmegaTol  float64 // fraction of nominal, e.g. 0.035 for ±3.5%.

	// QueueCapacity is the number of buffers held by each inter-stage
	// queue; QueueElementSamples is the per-buffer sample count (must
	// be a multiple of 4).
	QueueCapacity       int
	QueueElementSamples int

	// AcquisitionTimeout is carried in the configuration but is not read
	// by any stage: stages wait on their queues without a timeout.
	AcquisitionTimeout time.Duration

	// Logger receives structured log lines from every stage.
	Logger logging.Logger

	// LogLevel is applied to Logger once it is known to be valid.
	LogLevel int8
}

// Validate checks field validity and fills in defaults for zero-value
// fields, logging each default applied. Logger must already be set.
func (c *Config) Validate() error {
	if c.Logger == nil {
		return errors.New("config: Logger must be set before Validate")
	}

	if c.Downlink != LRIT && c.Downlink != HRIT {
		return errors.New("config: Downlink must be LRIT or HRIT")
	}

	if c.SampleRate <= 0 {
		return errors.New("config: SampleRate must be positive")
	}

	if c.SymbolRate <= 0 {
		def := LRITSymbolRate
		if c.Downlink == HRIT {
			def = HRITSymbolRate
		}
		c.LogInvalidField("SymbolRate", def)
		c.SymbolRate = def
	}

	if c.AGCAlpha <= 0 {
		c.LogInvalidField("AGCAlpha", defaultAGCAlpha)
		c.AGCAlpha = defaultAGCAlpha
	}
	if c.AGCMin <= 0 {
		c.LogInvalidField("AGCMin", defaultAGCMin)
		c.AGCMin = defaultAGCMin
	}
	if c.AGCMax <= 0 {
		c.LogInvalidField("AGCMax", defaultAGCMax)
		c.AGCMax = defaultAGCMax
	}
	if c.AGCInitGain <= 0 {
		c.LogInvalidField("AGCInitGain", defaultAGCInitGain)
		c.AGCInitGain = defaultAGCInitGain
	}

	if c.RRCTaps <= 0 {
		c.LogInvalidField("RRCTaps", defaultRRCTaps)
		c.RRCTaps = defaultRRCTaps
	}
	if c.RRCRolloff <= 0 {
		c.LogInvalidField("RRCRolloff", defaultRRCRolloff)
		c.RRCRolloff = defaultRRCRolloff
	}
	if c.RRCDecimation <= 0 {
		c.LogInvalidField("RRCDecimation", defaultRRCDecimation)
		c.RRCDecimation = defaultRRCDecimation
	}

	if c.CostasDamping <= 0 {
		c.LogInvalidField("CostasDamping", defaultCostasDamping)
		c.CostasDamping = defaultCostasDamping
	}
	if c.CostasBandwidth <= 0 {
		c.LogInvalidField("CostasBandwidth", defaultCostasBandwidth)
		c.CostasBandwidth = defaultCostasBandwidth
	}
	if c.CostasMaxDeviation <= 0 {
		c.LogInvalidField("CostasMaxDeviation", defaultCostasMaxDeviation)
		c.CostasMaxDeviation = defaultCostasMaxDeviation
	}

	if c.ClockGainMu <= 0 {
		c.LogInvalidField("ClockGainMu", defaultClockGainMu)
		c.ClockGainMu = defaultClockGainMu
	}
	if c.ClockGainOmega <= 0 {
		c.LogInvalidField("ClockGainOmega", defaultClockGainOmega)
		c.ClockGainOmega = defaultClockGainOmega
	}
	if c.ClockOmegaTol <= 0 {
		c.LogInvalidField("ClockOmegaTol", defaultClockOmegaTol)
		c.ClockOmegaTol = defaultClockOmegaTol
	}

	if c.QueueCapacity <= 0 {
		c.LogInvalidField("QueueCapacity", defaultQueueCapacity)
		c.QueueCapacity = defaultQueueCapacity
	}
	if c.QueueElementSamples <= 0 || c.QueueElementSamples%4 != 0 {
		c.LogInvalidField("QueueElementSamples", defaultQueueElementSamples)
		c.QueueElementSamples = defaultQueueElementSamples
	}

	c.Logger.SetLevel(c.LogLevel)
	return nil
}

// LogInvalidField logs that a configuration field was unset or invalid and
// that a default is being substituted.
func (c *Config) LogInvalidField(name string, def interface{}) {
	c.Logger.Info(name+" bad or unset, defaulting", name, def)
}

// Default parameter values, drawn from the receiver design in spec.
const (
	defaultAGCAlpha    = 1e-4
	defaultAGCMin      = 1e-6
	defaultAGCMax      = 1e6
	defaultAGCInitGain = 1

	defaultRRCTaps       = 32
	defaultRRCRolloff    = 0.35
	defaultRRCDecimation = 1

	defaultCostasDamping      = 0.7071067811865476 // sqrt(2)/2
	defaultCostasBandwidth    = 0.005
	defaultCostasMaxDeviation = 0.01

	defaultClockGainMu    = 0.05
	defaultClockGainOmega = 0.0005
	defaultClockOmegaTol  = 0.035

	defaultQueueCapacity       = 8
	defaultQueueElementSamples = 4096
)
